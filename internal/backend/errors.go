package backend

import (
	"errors"
	"fmt"
)

// Kind classifies a backend failure.
type Kind int

const (
	// NetworkError is a transport failure: connection, request, or body read.
	NetworkError Kind = iota + 1
	// ProtocolError is a response that is not JSON or lacks the expected field.
	ProtocolError
)

func (k Kind) String() string {
	switch k {
	case NetworkError:
		return "network error"
	case ProtocolError:
		return "protocol error"
	default:
		return "unknown error"
	}
}

// Sentinels matched by (*Error).Is.
var (
	ErrNetwork  = errors.New("network error")
	ErrProtocol = errors.New("protocol error")
)

// Error is returned by every Client operation.
type Error struct {
	Kind     Kind
	Endpoint string
	// StatusCode is the HTTP status when a response was received, else 0.
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Endpoint, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == NetworkError
	case ErrProtocol:
		return e.Kind == ProtocolError
	}
	return false
}
