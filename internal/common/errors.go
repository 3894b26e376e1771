// Package common defines shared constants and sentinel errors used across
// the eventhub server layers. Callers should use errors.Is to match these
// values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorValidation = errors.New("validation error")
	ErrorForbidden  = errors.New("forbidden")

	// Authentication errors.
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrTooManyAttempts    = errors.New("too many login attempts")
	ErrInvalidArgument    = errors.New("invalid argument")

	// Token errors. Every specific kind wraps ErrInvalidToken, so callers that
	// only care about "bad token" can match the parent.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = fmt.Errorf("%w: token expired", ErrInvalidToken)
	ErrInvalidSignature    = fmt.Errorf("%w: signature is invalid", ErrInvalidToken)
	ErrInvalidIssuer       = fmt.Errorf("%w: issuer is invalid", ErrInvalidToken)
	ErrInvalidAudience     = fmt.Errorf("%w: audience is invalid", ErrInvalidToken)
	ErrMalformedToken      = fmt.Errorf("%w: token is malformed", ErrInvalidToken)
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshTokenInvalid = errors.New("refresh token mismatch")

	// Event and registration errors.
	ErrEventNotFound             = fmt.Errorf("event %w", ErrorNotFound)
	ErrRegistrationNotFound      = fmt.Errorf("registration %w", ErrorNotFound)
	ErrCannotRegisterForOwnEvent = errors.New("cannot register for own event")
	ErrAlreadyRegistered         = errors.New("already registered for event")
	ErrInvalidImage              = errors.New("invalid image")
)

// ValidationError carries a fixed client-facing message and matches
// ErrorValidation with errors.Is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return ErrorValidation }

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}
