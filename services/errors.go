package services

import (
	"errors"
	"fmt"
)

// Engine failure taxonomy. Handlers map these to HTTP statuses; anything
// wrapped in StorageError is the only failure a client should retry.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrTaskNotFound     = errors.New("task not found")
	ErrAlreadyCompleted = errors.New("task already completed")
	ErrAlreadyReferred  = errors.New("user already has a referrer")
	ErrInvalidInput     = errors.New("invalid input")
)

// StorageError wraps a failure of the storage adapter.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage failure during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

// IsStorageError reports whether err originated in the storage adapter.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
