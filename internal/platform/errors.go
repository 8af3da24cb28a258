package platform

import "errors"

// Domain errors for the platform package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, platform.ErrDeviceNotFound) {
//	    // handle not found case
//	}
var (
	// ErrEntryNotFound is returned when a config entry ID does not exist.
	ErrEntryNotFound = errors.New("platform: entry not found")

	// ErrEntryExists is returned when creating an entry with an ID that already exists.
	ErrEntryExists = errors.New("platform: entry already exists")

	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = errors.New("platform: device not found")

	// ErrEntityNotFound is returned when an entity ID does not exist.
	ErrEntityNotFound = errors.New("platform: entity not found")

	// ErrServiceNotFound is returned when calling a service that is not registered.
	ErrServiceNotFound = errors.New("platform: service not found")

	// ErrServiceExists is returned when registering a service name that is
	// already registered.
	ErrServiceExists = errors.New("platform: service already registered")

	// ErrInvalidServiceData is returned when a service call payload fails
	// validation.
	ErrInvalidServiceData = errors.New("platform: invalid service data")
)
