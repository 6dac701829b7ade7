package auth

import "errors"

var (
	// ErrDuplicate is returned when an email is already registered to another user.
	ErrDuplicate = errors.New("email already in use")
	// ErrUserNotFound is returned by the repository when no user matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials covers every login failure: unknown email and
	// wrong password are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrGenAccessToken is returned when we cannot create a JWT.
	ErrGenAccessToken = errors.New("failed to generate access token")
)

// Token verification failures. Verify wraps one of these around the
// underlying jwt error.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
)

// Token issuer construction errors.
var (
	ErrSecretTooShort = errors.New("jwt secret too short")
	ErrInvalidTTL     = errors.New("token ttl must be positive")
)
