// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")

	// A conditional write lost its precondition to a concurrent writer.
	// This is an expected race outcome, not an infrastructure failure.
	ErrPreconditionFailed = errors.New("precondition failed")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Login failures. ErrInvalidCredentials covers both an unknown email
	// and a wrong password so an anonymous caller cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountPending     = errors.New("account pending approval")
	ErrAccountRejected    = errors.New("account rejected")

	// Reset-token failures are deliberately undifferentiated: malformed,
	// unknown, expired, already used and hash mismatch all map here.
	ErrTokenInvalid = errors.New("token invalid")
)
