package vsm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures the user may see.
type ErrorKind int

const (
	// NetworkFailure means no response was received.
	NetworkFailure ErrorKind = iota + 1
	// BackendError means the backend answered with an "error" key or a
	// non-2xx status.
	BackendError
	// UnrecognizedResponse means the body parsed but matched no known
	// message, or did not parse at all.
	UnrecognizedResponse
	// MalformedPayload marks a results row that is not a (name, score)
	// pair. It is logged, never shown.
	MalformedPayload
)

func (k ErrorKind) String() string {
	switch k {
	case NetworkFailure:
		return "network_failure"
	case BackendError:
		return "backend_error"
	case UnrecognizedResponse:
		return "unrecognized_response"
	case MalformedPayload:
		return "malformed_payload"
	default:
		return "unknown"
	}
}

// Error carries a kind and the human-readable text for the error banner.
type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the ErrorKind carried by err, or zero when err is not an
// *Error.
func KindOf(err error) ErrorKind {
	var vErr *Error
	if errors.As(err, &vErr) {
		return vErr.Kind
	}
	return 0
}

// IsKind reports whether err carries kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
