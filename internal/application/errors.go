package application

import (
	"errors"
)

// Kind classifies service failures for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindAuthentication
)

// Error carries a public Message and the internal cause Err.
// Only Message may be shown to callers; Err is for server-side logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(msg string, err error) error {
	return &Error{Kind: KindValidation, Message: msg, Err: err}
}

func notFoundError(msg string, err error) error {
	return &Error{Kind: KindNotFound, Message: msg, Err: err}
}

func authenticationError(msg string, err error) error {
	return &Error{Kind: KindAuthentication, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// PublicMessage returns the text that is safe to send to a client.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

var (
	// ErrInvalidCredentials is the cause attached to every login rejection.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrWeakPassword       = errors.New("password does not meet strength requirements")
	ErrPasswordTooLong    = errors.New("password is too long")
	ErrInvalidStatus      = errors.New("invalid status")
)
