package domain

import (
	"errors"
	"strings"
)

// Error kinds. Every error returned by the core wraps exactly one of these so
// the transport layer can map it to a status code with errors.Is.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrUserNotFound       = newKindError(ErrNotFound, "User not found")
	ErrOrderNotFound      = newKindError(ErrNotFound, "Order not found")
	ErrUserExists         = newKindError(ErrConflict, "User already exists with this email")
	ErrEmailInUse         = newKindError(ErrConflict, "Email already in use")
	ErrInvalidCredentials = newKindError(ErrUnauthorized, "Invalid credentials")

	// ErrTrackingNumberTaken is returned by the order store when a generated
	// tracking number collides with an existing one.
	ErrTrackingNumberTaken = newKindError(ErrConflict, "tracking number already in use")
)

type kindError struct {
	kind error
	msg  string
}

func newKindError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// Message returns the client-facing text of err: the message of the
// innermost domain error it wraps, or err.Error() when there is none.
func Message(err error) string {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.msg
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}

// ValidationError carries one message per offending field. It matches
// ErrInvalidInput under errors.Is.
type ValidationError struct {
	Errors []string
}

// NewValidationError builds a ValidationError from the given messages.
func NewValidationError(msgs ...string) *ValidationError {
	return &ValidationError{Errors: msgs}
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return ErrInvalidInput.Error()
	}
	return strings.Join(e.Errors, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// Add appends a field message.
func (e *ValidationError) Add(msg string) {
	e.Errors = append(e.Errors, msg)
}

// OrNil returns nil when no messages were collected, so callers can write
// `if err := v.OrNil(); err != nil`.
func (e *ValidationError) OrNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}
