package sensor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-gridstat/internal/csg"
	"github.com/nerrad567/gray-logic-gridstat/internal/platform"
)

// Forwarder is the sensor platform's entry point. It satisfies the
// lifecycle controller's PlatformForwarder contract.
//
// Thread Safety: SetupEntry and UnloadEntry are safe for concurrent use.
type Forwarder struct {
	devices  platform.DeviceRegistry
	entities platform.EntityRegistry
	writer   ReadingWriter
	interval time.Duration
	logger   Logger

	mu           sync.Mutex
	coordinators map[string]*Coordinator
}

// NewForwarder creates the sensor platform.
//
// writer may be nil when the recorder is disabled; entries then get
// their registry records but no polling coordinator.
func NewForwarder(devices platform.DeviceRegistry, entities platform.EntityRegistry, writer ReadingWriter, interval time.Duration) *Forwarder {
	return &Forwarder{
		devices:      devices,
		entities:     entities,
		writer:       writer,
		interval:     interval,
		logger:       noopLogger{},
		coordinators: make(map[string]*Coordinator),
	}
}

// SetLogger sets the logger for the sensor platform.
func (f *Forwarder) SetLogger(logger Logger) {
	f.logger = logger
}

// SetupEntry registers one device per account with an energy and a cost
// sensor each, then starts the entry's polling coordinator.
//
// Registration is idempotent; records that already exist are left
// untouched, so reloading an entry never duplicates or renames them.
func (f *Forwarder) SetupEntry(ctx context.Context, entry *platform.ConfigEntry, client csg.Client) error {
	accounts := make([]string, 0, len(entry.Data.Accounts))
	for number := range entry.Data.Accounts {
		accounts = append(accounts, number)
	}
	sort.Strings(accounts)

	for _, account := range accounts {
		meta := entry.Data.Accounts[account]
		name := meta.Name
		if name == "" {
			name = "Account " + account
		}

		device := &platform.DeviceEntry{
			ID:      DeviceID(account),
			EntryID: entry.EntryID,
			Name:    name,
			Identifiers: []platform.Identifier{
				{Domain: entry.Domain, ID: account},
			},
		}
		if err := f.devices.Ensure(ctx, device); err != nil {
			return fmt.Errorf("registering device for account %s: %w", account, err)
		}

		for _, kind := range []string{KindEnergy, KindCost} {
			entity := &platform.EntityEntry{
				EntityID: EntityID(account, kind),
				UniqueID: UniqueID(account, kind),
				DeviceID: device.ID,
				EntryID:  entry.EntryID,
			}
			if err := f.entities.Ensure(ctx, entity); err != nil {
				return fmt.Errorf("registering %s sensor for account %s: %w", kind, account, err)
			}
		}
	}

	f.startCoordinator(entry.EntryID, client, accounts)
	return nil
}

// startCoordinator begins polling for an entry when the client can
// fetch usage and a writer is available.
func (f *Forwarder) startCoordinator(entryID string, client csg.Client, accounts []string) {
	fetcher, ok := client.(csg.Fetcher)
	if !ok || f.writer == nil || len(accounts) == 0 {
		f.logger.Debug("no coordinator for entry", "entry_id", entryID)
		return
	}

	coord := NewCoordinator(fetcher, f.writer, accounts, f.interval, f.logger)

	f.mu.Lock()
	if old, exists := f.coordinators[entryID]; exists {
		// Reload path: replace the running coordinator
		f.mu.Unlock()
		old.Stop()
		f.mu.Lock()
	}
	f.coordinators[entryID] = coord
	f.mu.Unlock()

	coord.Start()
	f.logger.Info("coordinator started", "entry_id", entryID, "accounts", len(accounts))
}

// UnloadEntry stops the entry's coordinator. Registry records stay in
// place; a later reload picks them up again.
func (f *Forwarder) UnloadEntry(_ context.Context, entryID string) error {
	f.mu.Lock()
	coord, ok := f.coordinators[entryID]
	delete(f.coordinators, entryID)
	f.mu.Unlock()

	if ok {
		coord.Stop()
		f.logger.Info("coordinator stopped", "entry_id", entryID)
	}
	return nil
}

// Close stops every running coordinator.
func (f *Forwarder) Close() {
	f.mu.Lock()
	coords := make([]*Coordinator, 0, len(f.coordinators))
	for id, c := range f.coordinators {
		coords = append(coords, c)
		delete(f.coordinators, id)
	}
	f.mu.Unlock()

	for _, c := range coords {
		c.Stop()
	}
}
