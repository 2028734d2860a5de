package companion

import (
	"errors"
)

var (
	// ErrEmptyMessage rejects turns with no message text before any side
	// effect happens.
	ErrEmptyMessage = errors.New("message is required")

	// ErrUnauthenticated rejects turns without a caller identity.
	ErrUnauthenticated = errors.New("caller identity is required")

	// ErrConversationNotFound covers both a missing conversation and one
	// owned by a different user; callers cannot tell the two apart.
	ErrConversationNotFound = errors.New("conversation not found")

	ErrNoStorage = errors.New("storage is not configured")
)

// UpstreamError marks a model-call failure. The turn aborts, the already
// persisted user message stays, and no retry is attempted.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return "model call failed: " + e.Err.Error()
}

func (e *UpstreamError) Unwrap() error { return e.Err }
