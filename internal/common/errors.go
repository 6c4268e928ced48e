// Package common defines shared constants, sentinel errors and small helpers
// used across the authkeeper server. Callers should use errors.Is to match
// the error values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal = errors.New("internal error")

	// Caller-facing authentication errors.
	ErrParams                     = errors.New("invalid params")
	ErrUnauthorized               = errors.New("unauthorized")
	ErrAccountNotFound            = errors.New("account not found")
	ErrEmailAlreadyRegistered     = errors.New("email already registered")
	ErrPasswordIncorrect          = errors.New("password incorrect")
	ErrInvalidVerificationSession = errors.New("invalid verification session")
	ErrIncorrectVerificationCode  = errors.New("incorrect verification code")
	ErrOAuth                      = errors.New("oauth error")

	// ErrMalformedToken is returned for refresh tokens without the jti/secret
	// separator. It matches ErrUnauthorized as well.
	ErrMalformedToken = malformedTokenError{}

	// Auth errors (invalid or malformed access token).
	ErrInvalidToken = errors.New("invalid token")

	// Outbound delivery errors (email).
	ErrDelivery = errors.New("delivery error")
)

type malformedTokenError struct{}

func (malformedTokenError) Error() string { return "malformed token" }

func (malformedTokenError) Is(target error) bool { return target == ErrUnauthorized }
