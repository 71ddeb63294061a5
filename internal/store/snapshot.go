package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Snapshot describes one saved version of a key.
type Snapshot struct {
	ID           string    `json:"id"`
	Key          string    `json:"key"`
	Seq          int64     `json:"seq"`
	Size         int       `json:"size"`
	SavedAt      time.Time `json:"saved_at"`
	RestoredFrom string    `json:"restored_from,omitempty"`
}

// newSnapshotID generates a time-sortable UUIDv7.
func newSnapshotID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Load returns the newest value saved under key.
// Returns ErrNotFound if the key was never saved.
func (s *SQLite) Load(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM snapshots
		WHERE key = ?
		ORDER BY seq DESC
		LIMIT 1
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	return []byte(value), nil
}

// Save appends value as the newest snapshot of key.
func (s *SQLite) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.insertSnapshot(ctx, s.db, key, value, "")
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// History returns snapshots of key, newest first. A limit <= 0 returns all.
//
// Returns an empty slice (not nil) if the key was never saved.
func (s *SQLite) History(ctx context.Context, key string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, key, seq, size, saved_at, restored_from
		FROM snapshots
		WHERE key = ?
		ORDER BY seq DESC
		LIMIT ?
	`, key, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []Snapshot{}
	for rows.Next() {
		var (
			snap    Snapshot
			savedAt string
		)
		if err := rows.Scan(&snap.ID, &snap.Key, &snap.Seq, &snap.Size, &savedAt, &snap.RestoredFrom); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: parse saved_at: %w", snap.ID, err)
		}
		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// Restore makes the value of an earlier snapshot the newest one again by
// appending a copy. The copy remembers the snapshot it came from.
//
// Returns ErrNotFound if key has no snapshot with that id.
func (s *SQLite) Restore(ctx context.Context, key, snapshotID string) (Snapshot, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("restore: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var value string
	err = tx.QueryRowContext(ctx, `
		SELECT value FROM snapshots WHERE key = ? AND id = ?
	`, key, snapshotID).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("restore %s: %w", snapshotID, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("restore %s: %w", snapshotID, err)
	}

	snap, err := s.insertSnapshot(ctx, tx, key, []byte(value), snapshotID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("restore %s: %w", snapshotID, err)
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("restore: commit: %w", err)
	}
	return snap, nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLite) insertSnapshot(ctx context.Context, db execer, key string, value []byte, restoredFrom string) (Snapshot, error) {
	id, err := s.newID()
	if err != nil {
		return Snapshot{}, fmt.Errorf("generate snapshot id: %w", err)
	}

	snap := Snapshot{
		ID:           id,
		Key:          key,
		Size:         len(value),
		SavedAt:      s.now().UTC(),
		RestoredFrom: restoredFrom,
	}

	result, err := db.ExecContext(ctx, `
		INSERT INTO snapshots (id, key, value, size, saved_at, restored_from)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		snap.ID,
		snap.Key,
		string(value),
		snap.Size,
		snap.SavedAt.Format(time.RFC3339Nano),
		snap.RestoredFrom,
	)
	if err != nil {
		return Snapshot{}, err
	}

	snap.Seq, err = result.LastInsertId()
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot seq: %w", err)
	}
	return snap, nil
}
