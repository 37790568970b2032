package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")

	// ErrPageOutOfRange is returned when a page past the end of a non-empty
	// listing is requested.
	ErrPageOutOfRange = fmt.Errorf("page out of range: %w", ErrNotFound)

	ErrStore  = errors.New("metadata store failure")
	ErrBlobIO = errors.New("blob storage failure")

	// ErrFatalJob marks thumbnail jobs that cannot succeed on retry.
	ErrFatalJob = errors.New("fatal job error")
)

// Parent check failures.
const (
	ReasonParentNotFound  = "Parent not found"
	ReasonParentNotFolder = "Parent is not a folder"
)

// ValidationError reports a missing or invalid request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
