package tasks

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a rejected title. The collection is left unchanged.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an operation on an id the collection does not hold.
	ErrNotFound = errors.New("task not found")
	// ErrPersistence marks a failed durable read or write.
	ErrPersistence = errors.New("persistence failed")
)

// PersistenceError wraps a storage failure. It matches both ErrPersistence
// and the underlying cause with errors.Is.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s tasks: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

func notFoundError(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
