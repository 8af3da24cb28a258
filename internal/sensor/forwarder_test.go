package sensor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-gridstat/internal/platform"
)

type memDevices struct {
	mu      sync.Mutex
	devices map[string]*platform.DeviceEntry
}

func (r *memDevices) Get(_ context.Context, id string) (*platform.DeviceEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.devices[id]
	if !ok {
		return nil, platform.ErrDeviceNotFound
	}
	return d, nil
}

func (r *memDevices) ListForEntry(context.Context, string) ([]platform.DeviceEntry, error) {
	return nil, nil
}

func (r *memDevices) Ensure(_ context.Context, d *platform.DeviceEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.devices[d.ID]; !ok {
		r.devices[d.ID] = d
	}
	return nil
}

func (r *memDevices) Remove(context.Context, string) error { return nil }

type memEntities struct {
	mu       sync.Mutex
	entities map[string]*platform.EntityEntry
}

func (r *memEntities) Get(_ context.Context, id string) (*platform.EntityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entities[id]
	if !ok {
		return nil, platform.ErrEntityNotFound
	}
	return e, nil
}

func (r *memEntities) EntriesForDevice(context.Context, string, bool) ([]platform.EntityEntry, error) {
	return nil, nil
}

func (r *memEntities) EntriesForEntry(context.Context, string) ([]platform.EntityEntry, error) {
	return nil, nil
}

func (r *memEntities) Ensure(_ context.Context, e *platform.EntityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entities[e.EntityID]; !ok {
		r.entities[e.EntityID] = e
	}
	return nil
}

func (r *memEntities) Remove(context.Context, string) error { return nil }

// sessionOnlyClient implements csg.Client but not csg.Fetcher.
type sessionOnlyClient struct{}

func (sessionOnlyClient) VerifyLogin(context.Context) (bool, error) { return true, nil }
func (sessionOnlyClient) Logout(context.Context, string) error      { return nil }

// fullClient also fetches usage.
type fullClient struct {
	sessionOnlyClient
	fakeFetcher
}

func testEntry(accounts ...string) *platform.ConfigEntry {
	accts := make(map[string]platform.Account, len(accounts))
	for _, n := range accounts {
		accts[n] = platform.Account{Number: n}
	}
	return &platform.ConfigEntry{
		EntryID: "entry-1",
		Domain:  "grid_stat",
		Data:    platform.EntryData{Accounts: accts},
	}
}

func newTestForwarder(writer ReadingWriter) (*Forwarder, *memDevices, *memEntities) {
	devices := &memDevices{devices: make(map[string]*platform.DeviceEntry)}
	entities := &memEntities{entities: make(map[string]*platform.EntityEntry)}
	return NewForwarder(devices, entities, writer, time.Hour), devices, entities
}

func TestForwarder_SetupEntry(t *testing.T) {
	fwd, devices, entities := newTestForwarder(&fakeWriter{})
	defer fwd.Close()
	ctx := context.Background()

	client := &fullClient{fakeFetcher: fakeFetcher{usage: map[string][2]float64{}}}
	if err := fwd.SetupEntry(ctx, testEntry("001", "002"), client); err != nil {
		t.Fatalf("SetupEntry() error = %v", err)
	}

	for _, account := range []string{"001", "002"} {
		dev, err := devices.Get(ctx, DeviceID(account))
		if err != nil {
			t.Fatalf("device for account %s not registered", account)
		}
		if dev.AccountNumber() != account {
			t.Errorf("AccountNumber() = %q, want %q", dev.AccountNumber(), account)
		}

		for _, kind := range []string{KindEnergy, KindCost} {
			if _, err := entities.Get(ctx, EntityID(account, kind)); err != nil {
				t.Errorf("%s sensor for account %s not registered", kind, account)
			}
		}
	}
}

func TestForwarder_SetupEntryIdempotent(t *testing.T) {
	fwd, devices, _ := newTestForwarder(&fakeWriter{})
	defer fwd.Close()
	ctx := context.Background()

	client := &fullClient{fakeFetcher: fakeFetcher{usage: map[string][2]float64{}}}
	if err := fwd.SetupEntry(ctx, testEntry("001"), client); err != nil {
		t.Fatalf("first SetupEntry() error = %v", err)
	}

	// Reload must not duplicate or rename anything
	if err := fwd.SetupEntry(ctx, testEntry("001"), client); err != nil {
		t.Fatalf("second SetupEntry() error = %v", err)
	}
	if len(devices.devices) != 1 {
		t.Errorf("device count = %d, want 1", len(devices.devices))
	}
}

func TestForwarder_NoCoordinatorWithoutFetcher(t *testing.T) {
	fwd, _, _ := newTestForwarder(&fakeWriter{})
	defer fwd.Close()

	if err := fwd.SetupEntry(context.Background(), testEntry("001"), sessionOnlyClient{}); err != nil {
		t.Fatalf("SetupEntry() error = %v", err)
	}

	fwd.mu.Lock()
	defer fwd.mu.Unlock()
	if len(fwd.coordinators) != 0 {
		t.Error("coordinator started for a client that cannot fetch usage")
	}
}

func TestForwarder_UnloadStopsCoordinator(t *testing.T) {
	fwd, _, _ := newTestForwarder(&fakeWriter{})
	ctx := context.Background()

	client := &fullClient{fakeFetcher: fakeFetcher{usage: map[string][2]float64{"001": {1, 1}}}}
	if err := fwd.SetupEntry(ctx, testEntry("001"), client); err != nil {
		t.Fatalf("SetupEntry() error = %v", err)
	}

	if err := fwd.UnloadEntry(ctx, "entry-1"); err != nil {
		t.Fatalf("UnloadEntry() error = %v", err)
	}

	fwd.mu.Lock()
	defer fwd.mu.Unlock()
	if len(fwd.coordinators) != 0 {
		t.Error("coordinator still tracked after unload")
	}
}

func TestIDs(t *testing.T) {
	if got := EntityID("0123456789", KindEnergy); got != "sensor.csg_0123456789_energy" {
		t.Errorf("EntityID() = %q", got)
	}
	if got := UniqueID("0123456789", KindCost); got != "csg-0123456789-cost" {
		t.Errorf("UniqueID() = %q", got)
	}
	if got := DeviceID("0123456789"); got != "csg-0123456789" {
		t.Errorf("DeviceID() = %q", got)
	}
}
