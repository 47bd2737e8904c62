package services

import (
	"errors"
	"fmt"

	"github.com/mkingstonsqr/tile-notes/store"
)

var (
	ErrNoteNotFound          = errors.New("note not found")
	ErrTaskNotFound          = errors.New("task not found")
	ErrAttachmentNotFound    = errors.New("attachment not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrEmailTaken            = errors.New("email already registered")
	ErrCompletionUnavailable = errors.New("completion service not configured")
	ErrMalformedCompletion   = errors.New("malformed completion response")
	ErrSchedulerStopped      = errors.New("enrichment scheduler stopped")
)

// PersistenceError reports a write the remote store rejected.
// Local state is never changed when one is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// persistErr wraps a store error, translating store.ErrNotFound into notFound.
func persistErr(op string, err error, notFound error) error {
	if errors.Is(err, store.ErrNotFound) {
		err = notFound
	}
	return &PersistenceError{Op: op, Err: err}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
