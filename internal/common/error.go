// Package common defines shared constants and sentinel errors used across
// the jobfind server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal       = errors.New("internal error")
	ErrorValidation     = errors.New("validation error")
	ErrStoreUnavailable = errors.New("store unavailable")

	// Auth errors.
	ErrAuthenticationFailed = errors.New("bad credentials")
	ErrUnauthenticated      = errors.New("unauthenticated")
	ErrDuplicateEmail       = errors.New("email already exists")

	// Token lifecycle errors.
	ErrMissingToken = errors.New("missing refresh token")
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("refresh token revoked")

	// Startup errors.
	ErrConfig = errors.New("invalid config")
)
