package csg

import (
	"errors"
	"fmt"
)

// Sentinel errors for remote-account operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, csg.ErrNotLoggedIn) {
//	    // session expired
//	}
var (
	// ErrInvalidCredentials indicates the stored credentials were rejected.
	ErrInvalidCredentials = errors.New("csg: invalid credentials")

	// ErrNotLoggedIn indicates the session token is no longer valid.
	ErrNotLoggedIn = errors.New("csg: not logged in")
)

// APIError is a generic error response from the CSG backend.
type APIError struct {
	// Sta is the backend status code ("00" means success).
	Sta string

	// Message is the backend-supplied error description.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("csg: api error sta=%s: %s", e.Sta, e.Message)
}
