package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is the sentinel for a missing entity id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is the sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// NotFound wraps ErrNotFound with the entity kind and id that were looked up.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// StorageError wraps a failure of the underlying persistence layer
// (disk full, corruption, unavailable database).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// UnsupportedMediaError means an audio/video resource could not be decoded.
// Terminal for that resource; callers must not retry.
type UnsupportedMediaError struct {
	Source string
	Err    error
}

func (e *UnsupportedMediaError) Error() string {
	return fmt.Sprintf("unsupported media %s: %v", e.Source, e.Err)
}
func (e *UnsupportedMediaError) Unwrap() error { return e.Err }

// TranscriptionError wraps a recognizer load or inference failure.
// A request fails as a whole; there is no partial resume.
type TranscriptionError struct {
	Stage string
	Err   error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription %s: %v", e.Stage, e.Err)
}
func (e *TranscriptionError) Unwrap() error { return e.Err }

// SummarizationError is internal to the summarization client. It is never
// returned to callers; the client degrades to an extractive summary instead.
// RetryAfter carries the server's Retry-After wait when one was sent.
type SummarizationError struct {
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *SummarizationError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("summarization http %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("summarization: %v", e.Err)
}
func (e *SummarizationError) Unwrap() error { return e.Err }

func (e *SummarizationError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func (e *SummarizationError) RetryDelayHint() time.Duration {
	if e == nil {
		return 0
	}
	return e.RetryAfter
}
