package core

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for conditions the caller is expected to branch on.
var (
	// ErrNotFound indicates the input document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument indicates a configuration or programming error,
	// such as a non-positive chunk size.
	ErrInvalidArgument = errors.New("invalid argument")
)

// StoreError wraps a failure from the vector store. Fatal during ingestion,
// reported-and-continue during a retrieval turn.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vector store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ProviderError wraps a failure from the embedding or chat provider.
// Never fatal to the session once the loop is running.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsCancellation reports whether err is a cooperative cancellation rather
// than a failure. Cancellation is a normal termination path and must not be
// reported as an error to the user.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
