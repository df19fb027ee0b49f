package queue

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by errors.Is for any NotFoundError.
var ErrNotFound = errors.New("episode not found")

// ErrorClassifier allows errors to declare their classification so transports
// can map them to status codes without type switches.
type ErrorClassifier interface {
	// ErrorKind returns a string classification of the error.
	// Known kinds: "not_found", "validation", "store".
	ErrorKind() string
}

// NotFoundError reports an episode id with no backing row.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("episode %d not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) ErrorKind() string { return "not_found" }

// StoreError wraps a failure of the underlying database. The transaction it
// happened in has been rolled back.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) ErrorKind() string { return "store" }

// InvalidTargetError reports a rank the orderer refuses to place an episode at.
type InvalidTargetError struct {
	Target Target
	// Max is the largest rank accepted at the time of the call, or -1 when
	// the target was rejected before the queue was read.
	Max int
}

func (e *InvalidTargetError) Error() string {
	if e.Max < 0 {
		return fmt.Sprintf("invalid queue target %s", e.Target)
	}
	return fmt.Sprintf("invalid queue target %s: queue accepts ranks 0..%d", e.Target, e.Max)
}

func (e *InvalidTargetError) ErrorKind() string { return "validation" }

// KindOf returns the ErrorKind of err, or "internal" when err does not classify itself.
func KindOf(err error) string {
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	return "internal"
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
