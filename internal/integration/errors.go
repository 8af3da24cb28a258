package integration

import "errors"

// Sentinel errors for lifecycle operations.
//
// These errors can be checked using errors.Is() for specific handling:
//
//	if errors.Is(err, integration.ErrAuthExpired) {
//	    // trigger reauthentication instead of retrying setup
//	}
var (
	// ErrAuthExpired indicates the stored session was rejected during
	// setup. The entry needs reauthentication, not a retry.
	ErrAuthExpired = errors.New("integration: authentication expired")

	// ErrEntryNotLoaded indicates an operation needed a loaded entry
	// but the entry is not currently set up.
	ErrEntryNotLoaded = errors.New("integration: entry not loaded")
)
