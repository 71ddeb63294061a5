package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// DefaultKey is the storage key the record list is saved under.
const DefaultKey = "experiences"

// Storage is the key-value persistence the ledger mirrors its records into.
//
// Load returns ErrNotFound (optionally wrapped) for a key that was never saved.
// Save replaces the whole value stored under key.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}

// Ledger owns the ordered list of experience records.
//
// Thread-safety: all methods are safe for concurrent use, although the
// ledger is designed around a single caller.
type Ledger struct {
	mu      sync.Mutex
	storage Storage
	key     string
	clock   Clock
	ids     IDGenerator
	log     *slog.Logger
	records []Record
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the source of "today".
func WithClock(c Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithIDs overrides the id generator.
func WithIDs(g IDGenerator) Option {
	return func(l *Ledger) { l.ids = g }
}

// WithLogger sets the logger used for storage diagnostics.
func WithLogger(log *slog.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(l *Ledger) { l.key = key }
}

// Open creates a ledger backed by storage and loads the stored records.
// Missing or unparsable data yields an empty ledger, never an error.
func Open(ctx context.Context, storage Storage, opts ...Option) (*Ledger, error) {
	if storage == nil {
		return nil, errors.New("ledger: storage is required")
	}

	l := &Ledger{
		storage: storage,
		key:     DefaultKey,
		clock:   SystemClock{},
		ids:     NewMillisIDs(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.records = l.load(ctx)
	return l, nil
}

// load reads the record list from storage, failing soft.
func (l *Ledger) load(ctx context.Context) []Record {
	data, err := l.storage.Load(ctx, l.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			l.log.Debug("no stored records", "key", l.key)
		} else {
			l.log.Warn("reading stored records failed, starting empty", "key", l.key, "error", err)
		}
		return []Record{}
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		l.log.Warn("stored records are unparsable, starting empty", "key", l.key, "error", err)
		return []Record{}
	}
	if records == nil {
		records = []Record{}
	}

	l.log.Debug("records loaded", "key", l.key, "count", len(records))
	return records
}

// Reload discards the in-memory list and reads it again from storage.
func (l *Ledger) Reload(ctx context.Context) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = l.load(ctx)
	return slices.Clone(l.records)
}

// AddOrUpdate validates in and records it.
//
// When editID names an existing record, that record is replaced in place and
// keeps its id and list position. Otherwise (editID zero or unknown) a new
// record is appended with a fresh id. The full list is saved before the
// change becomes visible; the updated list is returned.
func (l *Ledger) AddOrUpdate(ctx context.Context, in Input, editID ID) ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, err := buildRecord(in, l.clock.Today())
	if err != nil {
		return nil, err
	}

	next := slices.Clone(l.records)
	if i := l.indexOf(editID); editID != 0 && i >= 0 {
		rec.ID = editID
		next[i] = rec
	} else {
		rec.ID = l.nextID()
		next = append(next, rec)
	}

	if err := l.commit(ctx, next); err != nil {
		return nil, err
	}

	l.log.Debug("record saved", "id", rec.ID, "company", rec.CompanyName, "duration", rec.Duration.String())
	return slices.Clone(l.records), nil
}

// Add appends a new record.
func (l *Ledger) Add(ctx context.Context, in Input) (Record, error) {
	records, err := l.AddOrUpdate(ctx, in, 0)
	if err != nil {
		return Record{}, err
	}
	return records[len(records)-1], nil
}

// Update replaces the record with the given id. An unknown id appends a new
// record, as AddOrUpdate does.
func (l *Ledger) Update(ctx context.Context, id ID, in Input) ([]Record, error) {
	return l.AddOrUpdate(ctx, in, id)
}

// Edit returns the editable fields of a record for re-populating a form.
// The boolean is false when no record has that id.
func (l *Ledger) Edit(id ID) (Input, bool) {
	rec, ok := l.Get(id)
	if !ok {
		return Input{}, false
	}
	return rec.Input(), true
}

// Delete removes the record with the given id and saves the list.
// Deleting an unknown id is a no-op and does not touch storage.
func (l *Ledger) Delete(ctx context.Context, id ID) ([]Record, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return slices.Clone(l.records), false, nil
	}

	next := slices.Delete(slices.Clone(l.records), i, i+1)
	if err := l.commit(ctx, next); err != nil {
		return nil, false, err
	}

	l.log.Debug("record deleted", "id", id)
	return slices.Clone(l.records), true, nil
}

// Refresh recomputes the durations of ongoing records against today and
// saves the list when any changed. It returns the number of records updated.
func (l *Ledger) Refresh(ctx context.Context) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := l.clock.Today()
	next := slices.Clone(l.records)
	changed := 0
	for i, rec := range next {
		if !rec.Ongoing() || rec.JoinDate.After(today) {
			continue
		}
		if d := Between(rec.JoinDate, today); d != rec.Duration {
			next[i].Duration = d
			changed++
		}
	}
	if changed == 0 {
		return 0, nil
	}

	if err := l.commit(ctx, next); err != nil {
		return 0, err
	}
	return changed, nil
}

// Aggregate returns the normalized sum of all record durations.
func (l *Ledger) Aggregate() Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	ds := make([]Duration, len(l.records))
	for i, rec := range l.records {
		ds[i] = rec.Duration
	}
	return Sum(ds...)
}

// Records returns a copy of the records in insertion order.
func (l *Ledger) Records() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.records)
}

// Get returns the record with the given id.
func (l *Ledger) Get(id ID) (Record, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i := l.indexOf(id); i >= 0 {
		return l.records[i], true
	}
	return Record{}, false
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Key returns the storage key of the ledger.
func (l *Ledger) Key() string {
	return l.key
}

// commit saves next and, only on success, makes it the current list.
// Callers must hold l.mu.
func (l *Ledger) commit(ctx context.Context, next []Record) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	if err := l.storage.Save(ctx, l.key, data); err != nil {
		l.log.Error("saving records failed, change rolled back", "key", l.key, "error", err)
		return &StorageWriteError{Key: l.key, Err: err}
	}

	l.records = next
	return nil
}

// indexOf returns the list position of id, or -1. Callers must hold l.mu.
func (l *Ledger) indexOf(id ID) int {
	return slices.IndexFunc(l.records, func(r Record) bool { return r.ID == id })
}

// nextID returns a generated id strictly above every id in the list.
// Callers must hold l.mu.
func (l *Ledger) nextID() ID {
	id := l.ids.Next()
	var highest ID
	for _, r := range l.records {
		highest = max(highest, r.ID)
	}
	if id <= highest {
		id = highest + 1
	}
	return id
}
