package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-gridstat/internal/platform"
	"github.com/nerrad567/gray-logic-gridstat/internal/recorder"
)

// PurgeDevice removes recorded history for every entity of one device,
// disabled entities included.
//
// An unknown device is logged and treated as a no-op so a stale service
// call cannot fail a user-facing purge. Recorder failures are likewise
// logged and swallowed; purging is best effort.
func (c *Controller) PurgeDevice(ctx context.Context, deviceID string) error {
	device, err := c.devices.Get(ctx, deviceID)
	if err != nil {
		if errors.Is(err, platform.ErrDeviceNotFound) {
			c.logger.Warn("purge requested for unknown device", "device_id", deviceID)
			return nil
		}
		return fmt.Errorf("looking up device %s: %w", deviceID, err)
	}

	entities, err := c.entities.EntriesForDevice(ctx, device.ID, true)
	if err != nil {
		return fmt.Errorf("listing entities for device %s: %w", deviceID, err)
	}

	c.purgeEntities(ctx, entityIDs(entities), "device_id", deviceID)
	return nil
}

// PurgeEntry removes recorded history for every entity of one entry.
func (c *Controller) PurgeEntry(ctx context.Context, entryID string) error {
	entities, err := c.entities.EntriesForEntry(ctx, entryID)
	if err != nil {
		return fmt.Errorf("listing entities for entry %s: %w", entryID, err)
	}

	c.purgeEntities(ctx, entityIDs(entities), "entry_id", entryID)
	return nil
}

// PurgeAll removes recorded history for every entry of the domain,
// one entry at a time.
func (c *Controller) PurgeAll(ctx context.Context) error {
	entries, err := c.store.Entries(ctx, DomainGridStat)
	if err != nil {
		return fmt.Errorf("listing entries: %w", err)
	}

	for _, entry := range entries {
		if err := c.PurgeEntry(ctx, entry.EntryID); err != nil {
			return err
		}
	}
	return nil
}

// purgeEntities performs one blocking recorder purge call. An empty
// entity list short-circuits without touching the recorder. Recorder
// errors are logged, not returned.
func (c *Controller) purgeEntities(ctx context.Context, ids []string, scopeKey, scopeVal string) {
	if len(ids) == 0 {
		c.logger.Debug("nothing to purge", scopeKey, scopeVal)
		return
	}

	data := map[string]any{"entity_ids": ids}
	err := c.bus.Call(ctx, recorder.Domain, recorder.ServicePurgeEntities, data, true)
	if err != nil {
		c.logger.Warn("history purge failed",
			scopeKey, scopeVal,
			"entities", len(ids),
			"error", err,
		)
		return
	}

	c.logger.Info("history purged", scopeKey, scopeVal, "entities", len(ids))
}

// entityIDs projects registry records to their entity IDs.
func entityIDs(entities []platform.EntityEntry) []string {
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.EntityID)
	}
	return ids
}
