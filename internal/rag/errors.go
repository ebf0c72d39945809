package rag

import (
	"errors"
	"fmt"
)

var (
	// ErrIO wraps failures to write or read the processed-text file.
	ErrIO = errors.New("processed text i/o failed")
	// ErrMissingContext is returned when retrieval runs before anything was ingested.
	ErrMissingContext = errors.New("no document has been ingested")
	// ErrDocumentNotFound is returned when a requested document ID is not stored.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrNotConfigured is returned when an optional collaborator was not supplied.
	ErrNotConfigured = errors.New("not configured")
	// ErrChatService matches any *ChatServiceError via errors.Is.
	ErrChatService = errors.New("chat service failed")
)

// ChatServiceError reports a failed chat completion. There is no fallback answer.
type ChatServiceError struct {
	Model string
	Err   error
}

func (e *ChatServiceError) Error() string {
	return fmt.Sprintf("chat completion with model %s: %v", e.Model, e.Err)
}

func (e *ChatServiceError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrChatService.
func (e *ChatServiceError) Is(target error) bool {
	return target == ErrChatService
}
