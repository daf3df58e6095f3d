package domain

import "errors"

// Error kinds. Every error returned by the services wraps exactly one of
// these so the transport layer can pick a status code with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrTooManyAttempts    = errors.New("too many login attempts")
)

// Error pairs an error kind with the message shown to the caller.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

// Validation returns an ErrValidation carrying msg.
func Validation(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

// Conflict returns an ErrConflict carrying msg.
func Conflict(msg string) error {
	return &Error{Kind: ErrConflict, Msg: msg}
}

// Store-level failures shared by every repository implementation.
var (
	ErrUserNotFound    = &Error{Kind: ErrNotFound, Msg: "user not found"}
	ErrUserExists      = &Error{Kind: ErrConflict, Msg: "email already exists"}
	ErrClientNotFound  = &Error{Kind: ErrNotFound, Msg: "client not found"}
	ErrCuitTaken       = &Error{Kind: ErrConflict, Msg: "cuit already exists for this user"}
	ErrClientInUse     = &Error{Kind: ErrConflict, Msg: "client has linked accounts"}
	ErrAccountNotFound = &Error{Kind: ErrNotFound, Msg: "account not found"}
	ErrAccountExists   = &Error{Kind: ErrConflict, Msg: "account name already exists"}
	ErrClientLinked    = &Error{Kind: ErrConflict, Msg: "client already has an account"}
)
