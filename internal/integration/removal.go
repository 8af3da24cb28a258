package integration

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-gridstat/internal/csg"
	"github.com/nerrad567/gray-logic-gridstat/internal/platform"
)

// RemoveDevice removes one electricity account from an entry.
//
// The account number is taken from the device's composite identifiers.
// When the entry opted in to history deletion the account's recorded
// data is purged first (best effort); the registry detachment that
// follows is unconditional, so the account disappears from the system
// even if the purge or individual registry removals fail. The entry's
// stored data is rewritten last with the account dropped and a fresh
// modification timestamp.
func (c *Controller) RemoveDevice(ctx context.Context, entryID, deviceID string) error {
	device, err := c.devices.Get(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("looking up device %s: %w", deviceID, err)
	}

	account := device.AccountNumber()
	if account == "" {
		return fmt.Errorf("device %s has no account identifier", deviceID)
	}

	entry, err := c.store.Get(ctx, entryID)
	if err != nil {
		return fmt.Errorf("loading entry %s: %w", entryID, err)
	}

	all, err := c.entities.EntriesForEntry(ctx, entryID)
	if err != nil {
		return fmt.Errorf("listing entities for entry %s: %w", entryID, err)
	}

	// The account number is embedded in every unique ID it owns.
	var ids []string
	for _, e := range all {
		if strings.Contains(e.UniqueID, account) {
			ids = append(ids, e.EntityID)
		}
	}

	if entry.Data.Settings.DeleteEntityDataOnRemoval {
		c.purgeEntities(ctx, ids, "account", account)
	}

	for _, id := range ids {
		if err := c.entities.Remove(ctx, id); err != nil {
			c.logger.Warn("entity detach failed", "entity_id", id, "error", err)
		}
	}
	if err := c.devices.Remove(ctx, deviceID); err != nil {
		c.logger.Warn("device detach failed", "device_id", deviceID, "error", err)
	}

	data := entry.Data.Clone()
	delete(data.Accounts, account)
	data.UpdatedAt = strconv.FormatInt(time.Now().UnixMilli(), 10)

	if err := c.store.UpdateEntry(ctx, entryID, data); err != nil {
		return fmt.Errorf("updating entry %s after account removal: %w", entryID, err)
	}

	c.logger.Info("account removed",
		"entry_id", entryID,
		"account", account,
		"entities", len(ids),
	)
	return nil
}

// RemoveEntry removes a config entry permanently.
//
// The workflow runs in phases: unload if still loaded, purge recorded
// history when the entry opted in, terminate the remote session, then
// delete the stored entry (devices and entities cascade). The logout
// runs on the worker executor; a still-valid session that fails to log
// out is an error, a session already expired is not.
func (c *Controller) RemoveEntry(ctx context.Context, entryID string) error {
	entry, err := c.store.Get(ctx, entryID)
	if err != nil {
		return fmt.Errorf("loading entry %s: %w", entryID, err)
	}

	if _, loaded := c.clientFor(entryID); loaded {
		if err := c.UnloadEntry(ctx, entryID); err != nil {
			return err
		}
	}

	if entry.Data.Settings.DeleteEntityDataOnRemoval {
		if err := c.PurgeEntry(ctx, entryID); err != nil {
			return err
		}
	}

	if err := c.logout(ctx, entry.Data); err != nil {
		return fmt.Errorf("logging out entry %s: %w", entryID, err)
	}

	if err := c.store.Remove(ctx, entryID); err != nil {
		return fmt.Errorf("removing entry %s: %w", entryID, err)
	}

	c.logger.Info("entry removed", "entry_id", entryID, "username", entry.Data.Username)
	return nil
}

// logout terminates the remote session if it is still valid.
func (c *Controller) logout(ctx context.Context, data platform.EntryData) error {
	client := c.loader(csg.Credentials{AuthToken: data.AuthToken})

	return c.exec.Do(ctx, func() error {
		loggedIn, err := client.VerifyLogin(ctx)
		if err != nil {
			return err
		}
		if !loggedIn {
			return nil
		}
		return client.Logout(ctx, data.LoginType)
	})
}
