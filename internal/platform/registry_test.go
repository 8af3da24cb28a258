package platform

import (
	"context"
	"errors"
	"testing"
)

func testDevice(id, entryID, account string) *DeviceEntry {
	return &DeviceEntry{
		ID:      id,
		EntryID: entryID,
		Name:    "Account " + account,
		Identifiers: []Identifier{
			{Domain: "grid_stat", ID: account},
		},
	}
}

func testEntity(entityID, uniqueID, deviceID, entryID string, disabled bool) *EntityEntry {
	return &EntityEntry{
		EntityID: entityID,
		UniqueID: uniqueID,
		DeviceID: deviceID,
		EntryID:  entryID,
		Disabled: disabled,
	}
}

func TestDeviceRegistry_EnsureAndGet(t *testing.T) {
	reg := NewSQLiteDeviceRegistry(setupTestDB(t))
	ctx := context.Background()

	dev := testDevice("dev-1", "entry-1", "001")
	if err := reg.Ensure(ctx, dev); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}

	got, err := reg.Get(ctx, "dev-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.AccountNumber() != "001" {
		t.Errorf("AccountNumber() = %q, want 001", got.AccountNumber())
	}
	if got.Name != "Account 001" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestDeviceRegistry_EnsureIdempotent(t *testing.T) {
	reg := NewSQLiteDeviceRegistry(setupTestDB(t))
	ctx := context.Background()

	if err := reg.Ensure(ctx, testDevice("dev-1", "entry-1", "001")); err != nil {
		t.Fatalf("first Ensure() error = %v", err)
	}

	// Re-running setup must not error or overwrite
	renamed := testDevice("dev-1", "entry-1", "001")
	renamed.Name = "Renamed"
	if err := reg.Ensure(ctx, renamed); err != nil {
		t.Fatalf("second Ensure() error = %v", err)
	}

	got, err := reg.Get(ctx, "dev-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Account 001" {
		t.Errorf("Name = %q, Ensure() should not overwrite", got.Name)
	}
}

func TestDeviceRegistry_GetNotFound(t *testing.T) {
	reg := NewSQLiteDeviceRegistry(setupTestDB(t))

	_, err := reg.Get(context.Background(), "missing")
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Get() error = %v, want ErrDeviceNotFound", err)
	}
}

func TestDeviceRegistry_ListForEntry(t *testing.T) {
	reg := NewSQLiteDeviceRegistry(setupTestDB(t))
	ctx := context.Background()

	for _, d := range []*DeviceEntry{
		testDevice("dev-1", "entry-1", "001"),
		testDevice("dev-2", "entry-1", "002"),
		testDevice("dev-3", "entry-2", "003"),
	} {
		if err := reg.Ensure(ctx, d); err != nil {
			t.Fatalf("Ensure(%s) error = %v", d.ID, err)
		}
	}

	devices, err := reg.ListForEntry(ctx, "entry-1")
	if err != nil {
		t.Fatalf("ListForEntry() error = %v", err)
	}
	if len(devices) != 2 {
		t.Errorf("ListForEntry() count = %d, want 2", len(devices))
	}
}

func TestDeviceRegistry_Remove(t *testing.T) {
	reg := NewSQLiteDeviceRegistry(setupTestDB(t))
	ctx := context.Background()

	if err := reg.Ensure(ctx, testDevice("dev-1", "entry-1", "001")); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if err := reg.Remove(ctx, "dev-1"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := reg.Remove(ctx, "dev-1"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("second Remove() error = %v, want ErrDeviceNotFound", err)
	}
}

func TestEntityRegistry_EntriesForDevice(t *testing.T) {
	reg := NewSQLiteEntityRegistry(setupTestDB(t))
	ctx := context.Background()

	entities := []*EntityEntry{
		testEntity("sensor.csg_001_energy", "csg-001-energy", "dev-1", "entry-1", false),
		testEntity("sensor.csg_001_cost", "csg-001-cost", "dev-1", "entry-1", true),
		testEntity("sensor.csg_002_energy", "csg-002-energy", "dev-2", "entry-1", false),
	}
	for _, e := range entities {
		if err := reg.Ensure(ctx, e); err != nil {
			t.Fatalf("Ensure(%s) error = %v", e.EntityID, err)
		}
	}

	// Including disabled
	all, err := reg.EntriesForDevice(ctx, "dev-1", true)
	if err != nil {
		t.Fatalf("EntriesForDevice() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("EntriesForDevice(include disabled) count = %d, want 2", len(all))
	}

	// Excluding disabled
	enabled, err := reg.EntriesForDevice(ctx, "dev-1", false)
	if err != nil {
		t.Fatalf("EntriesForDevice() error = %v", err)
	}
	if len(enabled) != 1 {
		t.Errorf("EntriesForDevice(exclude disabled) count = %d, want 1", len(enabled))
	}
	if enabled[0].EntityID != "sensor.csg_001_energy" {
		t.Errorf("enabled entity = %q", enabled[0].EntityID)
	}
}

func TestEntityRegistry_EntriesForEntry(t *testing.T) {
	reg := NewSQLiteEntityRegistry(setupTestDB(t))
	ctx := context.Background()

	for _, e := range []*EntityEntry{
		testEntity("sensor.csg_001_energy", "csg-001-energy", "dev-1", "entry-1", false),
		testEntity("sensor.csg_002_energy", "csg-002-energy", "dev-2", "entry-1", true),
		testEntity("sensor.csg_003_energy", "csg-003-energy", "dev-3", "entry-2", false),
	} {
		if err := reg.Ensure(ctx, e); err != nil {
			t.Fatalf("Ensure(%s) error = %v", e.EntityID, err)
		}
	}

	// Disabled entities are included for entry-wide enumeration
	entities, err := reg.EntriesForEntry(ctx, "entry-1")
	if err != nil {
		t.Fatalf("EntriesForEntry() error = %v", err)
	}
	if len(entities) != 2 {
		t.Errorf("EntriesForEntry() count = %d, want 2", len(entities))
	}
}

func TestEntityRegistry_Remove(t *testing.T) {
	reg := NewSQLiteEntityRegistry(setupTestDB(t))
	ctx := context.Background()

	if err := reg.Ensure(ctx,
		testEntity("sensor.csg_001_energy", "csg-001-energy", "dev-1", "entry-1", false)); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if err := reg.Remove(ctx, "sensor.csg_001_energy"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := reg.Get(ctx, "sensor.csg_001_energy"); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("Get() after Remove() error = %v, want ErrEntityNotFound", err)
	}
}
