package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the survey and BOM packages.
var (
	// ErrNotFound is returned when an address or ID does not resolve.
	// Stale references are expected after concurrent edits, so callers
	// treat this as recoverable.
	ErrNotFound = errors.New("not found")

	// ErrInvalidParent is returned when a structural insert targets a node
	// that cannot contain the inserted kind. This is a programming error
	// on the caller's side, never a user-facing condition.
	ErrInvalidParent = errors.New("invalid parent for insert")
)

// ValidationError reports a rejected mutation: a required field is missing
// or a value is out of range. The operation was not applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Validationf builds a ValidationError for the given field.
func Validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
