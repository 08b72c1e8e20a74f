// Package apperr defines the error taxonomy shared by the service layer.
//
// Validation failures are recoverable by the caller and never partially
// applied; authorization is checked before any ledger read; store failures
// are wrapped and surfaced as-is, never retried here.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks a missing group, expense, member, or token.
	ErrNotFound = errors.New("not found")

	// ErrNotMember marks an actor who is not a current member of the
	// target group.
	ErrNotMember = errors.New("not a member of this group")

	// ErrUnauthenticated marks a request without a valid identity.
	ErrUnauthenticated = errors.New("authentication required")
)

// ValidationError describes malformed or inconsistent caller input.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// NotFoundf wraps ErrNotFound with a description of what was missing.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Storef wraps an underlying persistence failure.
func Storef(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
