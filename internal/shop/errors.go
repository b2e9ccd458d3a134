package shop

import (
	"errors"
	"fmt"
)

// Sentinel errors checked with errors.Is; the HTTP layer maps them to status
// codes without inspecting message text.
var (
	ErrValidation     = errors.New("validation failed")
	ErrAuthentication = errors.New("authentication required")
	ErrAuthorization  = errors.New("permission denied")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
)

// FieldError carries the failing field alongside a sentinel so responses can
// name what was wrong without leaking internals.
type FieldError struct {
	Err    error
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *FieldError) Unwrap() error { return e.Err }

func Invalid(field, reason string) error {
	return &FieldError{Err: ErrValidation, Field: field, Reason: reason}
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Conflict(field, reason string) error {
	return &FieldError{Err: ErrConflict, Field: field, Reason: reason}
}
