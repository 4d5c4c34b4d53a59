package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error types for the session server
var (
	// Authentication errors
	ErrUnauthorizedRequest = errors.New("unauthorized request")
	ErrInvalidCredentials  = errors.New("invalid user credentials")
	ErrUserNotFound        = errors.New("user does not exist")

	// Token errors
	ErrInvalidAccessToken  = errors.New("invalid access token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenReused  = errors.New("refresh token is expired or used")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Kind classifies a failure so the transport layer can pick a status code
// without inspecting messages.
type Kind int

const (
	KindUnknown Kind = iota
	KindUnauthenticated
	KindInvalidCredentials
	KindInvalidToken
	KindTokenReused
	KindNotFound
	KindPersistenceFailure
	KindBadRequest
	KindConflict
	KindRateLimited
)

var kindNames = map[Kind]string{
	KindUnknown:            "unknown",
	KindUnauthenticated:    "unauthenticated",
	KindInvalidCredentials: "invalid_credentials",
	KindInvalidToken:       "invalid_token",
	KindTokenReused:        "token_reused",
	KindNotFound:           "not_found",
	KindPersistenceFailure: "persistence_failure",
	KindBadRequest:         "bad_request",
	KindConflict:           "conflict",
	KindRateLimited:        "rate_limited",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// StatusCode maps a failure kind onto the HTTP status returned to callers.
func (k Kind) StatusCode() int {
	switch k {
	case KindUnauthenticated, KindInvalidCredentials, KindInvalidToken, KindTokenReused:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure carrying a caller-facing message and,
// optionally, the underlying cause.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies err. The message is what the caller sees; err is kept for logs.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the caller-facing message of err. Unclassified errors are
// never exposed and collapse to a generic message.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ErrInternal.Error()
}

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
