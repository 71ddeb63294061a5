package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/roach88/tenure/internal/config"
	"github.com/roach88/tenure/internal/ledger"
	"github.com/roach88/tenure/internal/store"
)

// session is an open database plus the ledger loaded from it.
type session struct {
	store  *store.SQLite
	ledger *ledger.Ledger
	log    *slog.Logger
}

// openSession opens the configured database and loads the ledger.
// The caller must Close the session.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	path := opts.Database
	if path == "" {
		path = config.DefaultDatabasePath()
	}

	log := opts.Logger()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to create database directory", err)
		}
	}

	log.Debug("opening database", "path", path)
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	key := opts.Key
	if key == "" {
		key = ledger.DefaultKey
	}
	ledgerOpts := []ledger.Option{
		ledger.WithKey(key),
		ledger.WithLogger(log),
	}
	if opts.Clock != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithClock(opts.Clock))
	}
	if opts.IDs != nil {
		ledgerOpts = append(ledgerOpts, ledger.WithIDs(opts.IDs))
	}

	l, err := ledger.Open(ctx, st, ledgerOpts...)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitFailure, "failed to open ledger", err)
	}

	return &session{store: st, ledger: l, log: log}, nil
}

// Close releases the database.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Error("error closing database", "error", err)
	}
}

// ledgerFailure reports a rejected mutation and returns the matching exit error.
// Validation errors and storage failures exit 1; anything else is returned as-is.
func ledgerFailure(f *OutputFormatter, err error) error {
	var ve *ledger.ValidationError
	var se *ledger.StorageWriteError

	switch {
	case errors.As(err, &ve):
		if f.Format == "json" {
			_ = f.Error(CodeValidation, ve.Message, map[string]string{"field": ve.Field})
		}
		return NewExitError(ExitFailure, ve.Message)

	case errors.As(err, &se):
		if f.Format == "json" {
			_ = f.Error(CodeStorage, "changes were not saved", se.Err.Error())
		}
		f.Warn("changes were not saved; the ledger is unchanged")
		return WrapExitError(ExitFailure, "failed to save records", se.Err)

	default:
		return err
	}
}

// validationField returns the input field a validation error names.
func validationField(err error) string {
	var ve *ledger.ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}

// parseRecordID parses a record id argument.
func parseRecordID(arg string) (ledger.ID, error) {
	id, err := ledger.ParseID(arg)
	if err != nil {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid record id %q", arg))
	}
	return id, nil
}

// notFound reports a missing record id.
func notFound(f *OutputFormatter, id ledger.ID) error {
	msg := fmt.Sprintf("no record with id %s", id)
	if f.Format == "json" {
		_ = f.Error(CodeNotFound, msg, nil)
	}
	return NewExitError(ExitCommandError, msg)
}
