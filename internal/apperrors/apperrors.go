package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the HTTP layer can pick a status code
// without inspecting message strings.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindConflict
	KindAuth
	KindForbidden
	KindIntegration
	KindInternal
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind of err, or KindInternal when err is not an
// *Error from this package.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Sentinel errors shared across repositories and services.
var (
	ErrUnauthorized      = New(KindAuth, "invalid credentials")
	ErrForbidden         = New(KindForbidden, "insufficient permissions")
	ErrEmailNotConfirmed = New(KindAuth, "invalid credentials") // same message as ErrUnauthorized, no enumeration
	ErrUserConflict      = New(KindConflict, "an account with that username or email already exists")
)
