package integration

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/nerrad567/gray-logic-gridstat/internal/platform"
	"github.com/nerrad567/gray-logic-gridstat/internal/recorder"
)

func TestController_PurgeDevice(t *testing.T) {
	h := newHarness(t)
	h.addEntry(t, "entry-1", false, "001")
	h.addDevice(t, "dev-1", "entry-1", "001", true) // cost entity disabled

	if err := h.controller.PurgeDevice(context.Background(), "dev-1"); err != nil {
		t.Fatalf("PurgeDevice() error = %v", err)
	}

	calls := h.purgeCalls()
	if len(calls) != 1 {
		t.Fatalf("recorder calls = %d, want 1", len(calls))
	}
	got := append([]string(nil), calls[0]...)
	sort.Strings(got)
	want := []string{"sensor.csg_001_cost", "sensor.csg_001_energy"}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("purged entities = %v, want %v (disabled included)", got, want)
	}
}

func TestController_PurgeDevice_UnknownDevice(t *testing.T) {
	h := newHarness(t)

	// A stale service call for a vanished device is a logged no-op
	if err := h.controller.PurgeDevice(context.Background(), "ghost"); err != nil {
		t.Fatalf("PurgeDevice() error = %v, want nil", err)
	}
	if len(h.purgeCalls()) != 0 {
		t.Error("recorder invoked for unknown device")
	}
}

func TestController_PurgeDevice_NoEntities(t *testing.T) {
	h := newHarness(t)
	h.addEntry(t, "entry-1", false, "001")
	err := h.devices.Ensure(context.Background(), &platform.DeviceEntry{
		ID:          "dev-bare",
		EntryID:     "entry-1",
		Identifiers: []platform.Identifier{{Domain: DomainGridStat, ID: "001"}},
	})
	if err != nil {
		t.Fatalf("seeding device: %v", err)
	}

	if err := h.controller.PurgeDevice(context.Background(), "dev-bare"); err != nil {
		t.Fatalf("PurgeDevice() error = %v", err)
	}
	if len(h.purgeCalls()) != 0 {
		t.Error("recorder invoked for device with no entities")
	}
}

func TestController_PurgeDevice_RecorderFailureSwallowed(t *testing.T) {
	h := newHarness(t)
	h.addEntry(t, "entry-1", false, "001")
	h.addDevice(t, "dev-1", "entry-1", "001", false)

	h.bus.Remove(recorder.Domain, recorder.ServicePurgeEntities)
	if err := h.bus.Register(recorder.Domain, recorder.ServicePurgeEntities,
		func(context.Context, platform.ServiceCall) error {
			return errors.New("influx unavailable")
		}); err != nil {
		t.Fatalf("registering failing recorder: %v", err)
	}

	// Purging is best effort; a recorder fault must not surface
	if err := h.controller.PurgeDevice(context.Background(), "dev-1"); err != nil {
		t.Errorf("PurgeDevice() error = %v, want nil", err)
	}
}

func TestController_PurgeAll(t *testing.T) {
	h := newHarness(t)
	h.addEntry(t, "entry-1", false, "001")
	h.addEntry(t, "entry-2", false, "002")
	h.addDevice(t, "dev-1", "entry-1", "001", false)
	h.addDevice(t, "dev-2", "entry-2", "002", false)

	if err := h.controller.PurgeAll(context.Background()); err != nil {
		t.Fatalf("PurgeAll() error = %v", err)
	}

	// One blocking recorder call per entry
	calls := h.purgeCalls()
	if len(calls) != 2 {
		t.Fatalf("recorder calls = %d, want 2", len(calls))
	}

	var all []string
	for _, c := range calls {
		all = append(all, c...)
	}
	if len(all) != 4 {
		t.Errorf("total purged entities = %d, want 4", len(all))
	}
}

func TestController_PurgeServiceHandlers(t *testing.T) {
	h := newHarness(t)
	h.addEntry(t, "entry-1", false, "001")
	h.addDevice(t, "dev-1", "entry-1", "001", false)
	ctx := context.Background()

	if err := h.controller.SetupEntry(ctx, "entry-1"); err != nil {
		t.Fatalf("SetupEntry() error = %v", err)
	}

	// Valid device purge through the bus
	err := h.bus.Call(ctx, DomainGridStat, ServicePurgeDeviceData,
		map[string]any{"device_id": "dev-1"}, true)
	if err != nil {
		t.Fatalf("purge_device_data call error = %v", err)
	}
	if len(h.purgeCalls()) != 1 {
		t.Errorf("recorder calls = %d, want 1", len(h.purgeCalls()))
	}

	// Malformed payloads are rejected before any purge work
	for _, data := range []map[string]any{
		{},
		{"device_id": ""},
		{"device_id": 42},
	} {
		err := h.bus.Call(ctx, DomainGridStat, ServicePurgeDeviceData, data, true)
		if !errors.Is(err, platform.ErrInvalidServiceData) {
			t.Errorf("call with %v: error = %v, want ErrInvalidServiceData", data, err)
		}
	}

	// purge_all_data needs no payload
	if err := h.bus.Call(ctx, DomainGridStat, ServicePurgeAllData, nil, true); err != nil {
		t.Fatalf("purge_all_data call error = %v", err)
	}
}
