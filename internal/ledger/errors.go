package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Storage implementations (optionally wrapped)
// when nothing was ever saved under a key.
var ErrNotFound = errors.New("not found")

// ValidationError reports input the ledger refuses to record.
//
// The message is meant for the person filling in the form. Validation errors
// never change ledger state.
type ValidationError struct {
	// Field is the input field at fault (companyName, position, joinDate, leaveDate).
	Field string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// StorageWriteError reports that the storage rejected a save.
// The mutation that triggered it was rolled back.
type StorageWriteError struct {
	Key string
	Err error
}

// Error implements the error interface.
func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("save %q: %v", e.Key, e.Err)
}

// Unwrap returns the underlying storage error.
func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// IsValidation returns true if err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsStorageWrite returns true if err is (or wraps) a *StorageWriteError.
func IsStorageWrite(err error) bool {
	var se *StorageWriteError
	return errors.As(err, &se)
}

func missingField(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: "please provide company name, position, and joining date",
	}
}

func invalidDate(field, value string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s %q is not a valid date (want YYYY-MM-DD)", fieldLabel(field), value),
	}
}

func fieldLabel(field string) string {
	switch field {
	case "companyName":
		return "company name"
	case "joinDate":
		return "joining date"
	case "leaveDate":
		return "leaving date"
	default:
		return field
	}
}
