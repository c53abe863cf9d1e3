package store

import (
	"github.com/pkg/errors"
)

var (
	// ErrValidation reports a conversation that cannot be persisted as given.
	ErrValidation = errors.New("invalid conversation")
	// ErrNotFound covers rows that do not exist as well as rows owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrStorage wraps failures of the database engine.
	ErrStorage = errors.New("storage failure")
	// ErrInternal reports persisted data that can no longer be decoded.
	ErrInternal = errors.New("corrupt stored data")
)

type storageError struct {
	msg   string
	cause error
}

func (e *storageError) Error() string {
	return e.msg + ": " + ErrStorage.Error() + ": " + e.cause.Error()
}

func (e *storageError) Is(target error) bool {
	return target == ErrStorage
}

func (e *storageError) Unwrap() error {
	return e.cause
}

// classify passes through errors that already belong to the taxonomy and
// marks everything else as ErrStorage, keeping the cause reachable.
func classify(err error, msg string) error {
	if err == nil {
		return nil
	}
	for _, known := range []error{ErrValidation, ErrNotFound, ErrStorage, ErrInternal} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &storageError{msg: msg, cause: err}
}
