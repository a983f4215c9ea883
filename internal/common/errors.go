package common

import (
	"errors"
	"fmt"
)

// Error categories. Every error returned by services wraps exactly one of
// them, so callers can map failures with errors.Is.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)

// Domain errors carrying a client-facing detail message.
var (
	ErrUserNotFound = NewError(ErrNotFound, "User not found")

	ErrUsernameRegistered = NewError(ErrConflict, "Username already registered")
	ErrEmailRegistered    = NewError(ErrConflict, "Email already registered")
	ErrUsernameTaken      = NewError(ErrConflict, "Username already taken")
	ErrEmailTaken         = NewError(ErrConflict, "Email already taken")

	ErrBadCredentials    = NewError(ErrUnauthorized, "Incorrect username or password")
	ErrInvalidToken      = NewError(ErrUnauthorized, "Invalid authentication credentials")
	ErrWrongPassword     = NewError(ErrUnauthorized, "Incorrect current password")
	ErrEmptyPassword     = NewError(ErrInvalidArgument, "Password must not be empty")
	ErrInvalidPageNumber = NewError(ErrInvalidArgument, "Page number must be greater than 0")
)

// Error is a categorized error with a message safe to return to API clients.
type Error struct {
	Kind   error
	Detail string
}

// NewError builds an Error of the given category.
func NewError(kind error, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// Errorf builds an Error of the given category with a formatted detail.
func Errorf(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string { return e.Detail }

func (e *Error) Unwrap() error { return e.Kind }

// Detail returns the client-facing message of err when it carries one,
// and fallback otherwise.
func Detail(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return fallback
}
