package service

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation.
type Kind int

const (
	// KindUnknown is never produced by this module; it is what KindOf
	// reports for foreign errors.
	KindUnknown Kind = iota

	// KindValidation is locally detectable bad input. It never reaches the network.
	KindValidation

	// KindUnauthorized means the credential is missing or was rejected.
	KindUnauthorized

	// KindRejected means the server refused a well-formed request.
	KindRejected

	// KindNotFound means the target resource does not exist (any more).
	KindNotFound

	// KindNetwork means no response was received.
	KindNetwork

	// KindMalformedResponse means a response arrived but had the wrong shape.
	KindMalformedResponse
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindValidation:        "validation",
	KindUnauthorized:      "unauthorized",
	KindRejected:          "rejected",
	KindNotFound:          "not found",
	KindNetwork:           "network error",
	KindMalformedResponse: "malformed response",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the failure value of every Service operation.
type Error struct {
	Kind    Kind
	Message string

	// Status is the HTTP status code when a response was received.
	Status int

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so that
// errors.Is(err, service.ErrNotFound) works on wrapped failures.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Status == 0
}

// Sentinels for errors.Is matching by kind.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrUnauthorized      = &Error{Kind: KindUnauthorized}
	ErrRejected          = &Error{Kind: KindRejected}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrNetwork           = &Error{Kind: KindNetwork}
	ErrMalformedResponse = &Error{Kind: KindMalformedResponse}
)

// Errorf builds an *Error of the given kind.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
