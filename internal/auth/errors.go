package auth

import "errors"

// Sentinel errors for token operations.
var (
	// ErrTokenInvalid indicates the token failed signature, expiry, or
	// claim validation.
	ErrTokenInvalid = errors.New("auth: token invalid")
)
