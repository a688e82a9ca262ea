package core

import (
	"errors"
	"fmt"
)

// ErrNoResponderAvailable is returned by routing when the registry holds no
// enabled responders. It is fatal to the request.
var ErrNoResponderAvailable = errors.New("no responder available")

// ErrRateLimited is returned when guardrails reject a request before any
// work is done.
var ErrRateLimited = errors.New("rate limited")

// ContextFetchError wraps a failed context retrieval. Context is an
// optimization, not a correctness requirement, so callers treat this as
// non-fatal and proceed with an empty context set.
type ContextFetchError struct {
	Err error
}

func (e *ContextFetchError) Error() string {
	return fmt.Sprintf("context fetch failed: %v", e.Err)
}

func (e *ContextFetchError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a failed conversation write. It is fatal to the
// request at the point it occurs, even though computed answers exist; the
// caller decides whether to retry or accept an unpersisted result.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
