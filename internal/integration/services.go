package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-gridstat/internal/platform"
)

// Services registered under the grid_stat domain.
const (
	// ServicePurgeDeviceData purges recorded history for one device.
	// Payload: {"device_id": "<registry device id>"}
	ServicePurgeDeviceData = "purge_device_data"

	// ServicePurgeAllData purges recorded history for every entry of the
	// domain. No payload.
	ServicePurgeAllData = "purge_all_data"
)

// ensureServices registers the grid_stat services if they are not
// already registered. Called on every entry setup; only the first
// setup actually registers. A concurrent registration losing the race
// is treated as success.
func (c *Controller) ensureServices() {
	register := func(service string, handler platform.ServiceHandler) {
		if c.bus.HasService(DomainGridStat, service) {
			return
		}
		if err := c.bus.Register(DomainGridStat, service, handler); err != nil {
			if errors.Is(err, platform.ErrServiceExists) {
				return
			}
			c.logger.Error("service registration failed", "service", service, "error", err)
		}
	}

	register(ServicePurgeDeviceData, c.handlePurgeDevice)
	register(ServicePurgeAllData, c.handlePurgeAll)
}

// removeServices unregisters the grid_stat services. Called when the
// last loaded entry unloads; removal of an absent service is a no-op.
func (c *Controller) removeServices() {
	c.bus.Remove(DomainGridStat, ServicePurgeDeviceData)
	c.bus.Remove(DomainGridStat, ServicePurgeAllData)
	c.logger.Debug("services unregistered, no entries remain")
}

// handlePurgeDevice validates the payload and purges one device.
func (c *Controller) handlePurgeDevice(ctx context.Context, call platform.ServiceCall) error {
	raw, ok := call.Data["device_id"]
	if !ok {
		return fmt.Errorf("%w: missing device_id", platform.ErrInvalidServiceData)
	}
	deviceID, ok := raw.(string)
	if !ok || deviceID == "" {
		return fmt.Errorf("%w: device_id must be a non-empty string", platform.ErrInvalidServiceData)
	}

	return c.PurgeDevice(ctx, deviceID)
}

// handlePurgeAll purges every entry of the domain.
func (c *Controller) handlePurgeAll(ctx context.Context, _ platform.ServiceCall) error {
	return c.PurgeAll(ctx)
}
