package integration

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/gray-logic-gridstat/internal/csg"
	"github.com/nerrad567/gray-logic-gridstat/internal/platform"
	"github.com/nerrad567/gray-logic-gridstat/internal/worker"
)

// DomainGridStat is the integration's domain tag. Entries, devices,
// and services all carry it.
const DomainGridStat = "grid_stat"

// Logger defines the logging interface used by the Controller.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// PlatformForwarder hands a loaded entry to the sensor platform and
// takes it back on unload. The sensor package implements it.
type PlatformForwarder interface {
	// SetupEntry creates the entry's devices and entities and starts
	// its update coordinator.
	SetupEntry(ctx context.Context, entry *platform.ConfigEntry, client csg.Client) error

	// UnloadEntry stops the entry's coordinator and releases platform
	// resources. Registry records are left in place.
	UnloadEntry(ctx context.Context, entryID string) error
}

// entryState is the in-memory runtime state of a loaded entry.
type entryState struct {
	client csg.Client
}

// Controller drives config entry lifecycle for the grid_stat domain.
//
// Thread Safety: All exported methods are safe for concurrent use. A
// single mutex guards the loaded-entry map; blocking remote calls run
// on the worker executor, never under the lock.
type Controller struct {
	store     platform.EntryStore
	devices   platform.DeviceRegistry
	entities  platform.EntityRegistry
	bus       *platform.ServiceBus
	loader    csg.Loader
	forwarder PlatformForwarder
	exec      *worker.Executor
	logger    Logger

	mu     sync.Mutex
	active map[string]*entryState
}

// NewController creates a lifecycle controller.
// All collaborators are required except the logger.
func NewController(
	store platform.EntryStore,
	devices platform.DeviceRegistry,
	entities platform.EntityRegistry,
	bus *platform.ServiceBus,
	loader csg.Loader,
	forwarder PlatformForwarder,
	exec *worker.Executor,
) *Controller {
	return &Controller{
		store:     store,
		devices:   devices,
		entities:  entities,
		bus:       bus,
		loader:    loader,
		forwarder: forwarder,
		exec:      exec,
		logger:    noopLogger{},
		active:    make(map[string]*entryState),
	}
}

// SetLogger sets the logger for the controller.
func (c *Controller) SetLogger(logger Logger) {
	c.logger = logger
}

// SetupEntry loads a config entry.
//
// The stored session is verified against the backend before anything
// else happens; verification runs on the worker executor so the caller
// is never blocked under the controller lock. A rejected session
// returns ErrAuthExpired, a transport failure returns the underlying
// error so the caller can retry setup later.
//
// Once verified, the entry is forwarded to the sensor platform and the
// grid_stat services are registered (a no-op if an earlier entry
// already registered them).
func (c *Controller) SetupEntry(ctx context.Context, entryID string) error {
	entry, err := c.store.Get(ctx, entryID)
	if err != nil {
		return fmt.Errorf("loading entry %s: %w", entryID, err)
	}

	client := c.loader(csg.Credentials{AuthToken: entry.Data.AuthToken})

	var loggedIn bool
	err = c.exec.Do(ctx, func() error {
		var verifyErr error
		loggedIn, verifyErr = client.VerifyLogin(ctx)
		return verifyErr
	})
	if err != nil {
		return fmt.Errorf("verifying session for entry %s: %w", entryID, err)
	}
	if !loggedIn {
		c.logger.Warn("stored session rejected, entry needs reauthentication",
			"entry_id", entryID,
			"username", entry.Data.Username,
		)
		return fmt.Errorf("%w: entry %s", ErrAuthExpired, entryID)
	}

	c.mu.Lock()
	c.active[entryID] = &entryState{client: client}
	c.mu.Unlock()

	if err := c.forwarder.SetupEntry(ctx, entry, client); err != nil {
		c.mu.Lock()
		delete(c.active, entryID)
		c.mu.Unlock()
		return fmt.Errorf("forwarding entry %s to sensor platform: %w", entryID, err)
	}

	c.ensureServices()

	c.logger.Info("entry loaded",
		"entry_id", entryID,
		"username", entry.Data.Username,
		"accounts", len(entry.Data.Accounts),
	)
	return nil
}

// UnloadEntry unloads a config entry.
//
// The sensor platform is torn down first; the entry's runtime state is
// then dropped. When no loaded entries remain the grid_stat services
// are unregistered. Registry records and the stored entry survive an
// unload.
func (c *Controller) UnloadEntry(ctx context.Context, entryID string) error {
	c.mu.Lock()
	_, loaded := c.active[entryID]
	c.mu.Unlock()
	if !loaded {
		return fmt.Errorf("%w: %s", ErrEntryNotLoaded, entryID)
	}

	if err := c.forwarder.UnloadEntry(ctx, entryID); err != nil {
		return fmt.Errorf("unloading entry %s from sensor platform: %w", entryID, err)
	}

	c.mu.Lock()
	delete(c.active, entryID)
	remaining := len(c.active)
	c.mu.Unlock()

	if remaining == 0 {
		c.removeServices()
	}

	c.logger.Info("entry unloaded", "entry_id", entryID, "remaining", remaining)
	return nil
}

// clientFor returns the loaded entry's remote client.
func (c *Controller) clientFor(entryID string) (csg.Client, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.active[entryID]
	if !ok {
		return nil, false
	}
	return state.client, true
}

// loadedCount returns the number of currently loaded entries.
func (c *Controller) loadedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}
