package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the parent of every user-correctable input error.
	ErrValidation = errors.New("validation failed")

	// ErrMissingFields is returned when name or url is blank after trimming.
	ErrMissingFields = fmt.Errorf("%w: name and url are required", ErrValidation)

	// ErrInvalidURL is returned when url is not an absolute URL with a host.
	ErrInvalidURL = fmt.Errorf("%w: invalid url", ErrValidation)

	// ErrDuplicateURL is returned when another bookmark already owns the url.
	ErrDuplicateURL = errors.New("url already bookmarked")

	// ErrNotFound is returned when no bookmark has the requested id.
	ErrNotFound = errors.New("bookmark not found")
)

// StorageError wraps a failure of the persistence backend.
// Op names the store operation, Err is the backend error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorage reports whether err is (or wraps) a StorageError.
func IsStorage(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
