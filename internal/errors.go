package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRated is returned when a message already carries feedback
	ErrAlreadyRated = errors.New("message already has feedback")
	// ErrBusy is returned when a turn is started while another is in flight
	ErrBusy = errors.New("a request is already in flight")
	// ErrUnknownFilter is returned for an analytics filter key that does not exist
	ErrUnknownFilter = errors.New("unknown analytics filter")
)

// APIError represents a failed call to the assistant service
type APIError struct {
	Op         string // "chat", "clarify", "history", "feedback", "analytics"
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api error: %s %s (status %d): %v", e.Op, e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("api error: %s %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ParseError represents errors decoding a service payload or local file
type ParseError struct {
	Source string // "response", "config"
	Key    string // endpoint or file path
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error [%s] %s: %v", e.Source, e.Key, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ClarificationError represents an API selection that the current
// clarification state cannot accept
type ClarificationError struct {
	State       ClarificationState
	SelectedAPI string
}

func (e *ClarificationError) Error() string {
	return fmt.Sprintf("clarification error: cannot select %q while %s", e.SelectedAPI, e.State)
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
