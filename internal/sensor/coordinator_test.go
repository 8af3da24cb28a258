package sensor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeFetcher scripts per-account usage results.
type fakeFetcher struct {
	mu      sync.Mutex
	usage   map[string][2]float64
	failFor map[string]error
	calls   []string
}

func (f *fakeFetcher) MonthUsage(_ context.Context, account string) (float64, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, account)
	if err, ok := f.failFor[account]; ok {
		return 0, 0, err
	}
	u := f.usage[account]
	return u[0], u[1], nil
}

type reading struct {
	entityID string
	value    float64
}

// fakeWriter collects written readings.
type fakeWriter struct {
	mu     sync.Mutex
	energy []reading
	cost   []reading
}

func (w *fakeWriter) WriteEnergyReading(entityID string, kwh float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.energy = append(w.energy, reading{entityID, kwh})
}

func (w *fakeWriter) WriteCostReading(entityID string, cost float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cost = append(w.cost, reading{entityID, cost})
}

func (w *fakeWriter) counts() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.energy), len(w.cost)
}

func TestCoordinator_ImmediateRefresh(t *testing.T) {
	fetcher := &fakeFetcher{usage: map[string][2]float64{"001": {120.5, 66.2}}}
	writer := &fakeWriter{}

	coord := NewCoordinator(fetcher, writer, []string{"001"}, time.Hour, nil)
	coord.Start()
	defer coord.Stop()

	deadline := time.After(2 * time.Second)
	for {
		if e, c := writer.counts(); e == 1 && c == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first refresh never recorded readings")
		case <-time.After(5 * time.Millisecond):
		}
	}

	writer.mu.Lock()
	defer writer.mu.Unlock()
	if writer.energy[0].entityID != "sensor.csg_001_energy" || writer.energy[0].value != 120.5 {
		t.Errorf("energy reading = %+v", writer.energy[0])
	}
	if writer.cost[0].entityID != "sensor.csg_001_cost" || writer.cost[0].value != 66.2 {
		t.Errorf("cost reading = %+v", writer.cost[0])
	}
}

func TestCoordinator_FetchFailureSkipsAccount(t *testing.T) {
	fetcher := &fakeFetcher{
		usage:   map[string][2]float64{"002": {50, 25}},
		failFor: map[string]error{"001": errors.New("backend down")},
	}
	writer := &fakeWriter{}

	coord := NewCoordinator(fetcher, writer, []string{"001", "002"}, time.Hour, nil)
	coord.Start()
	defer coord.Stop()

	deadline := time.After(2 * time.Second)
	for {
		if e, _ := writer.counts(); e == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("healthy account never recorded")
		case <-time.After(5 * time.Millisecond):
		}
	}

	writer.mu.Lock()
	defer writer.mu.Unlock()
	if writer.energy[0].entityID != "sensor.csg_002_energy" {
		t.Errorf("recorded entity = %q, want account 002's sensor", writer.energy[0].entityID)
	}
}

func TestCoordinator_StopIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{usage: map[string][2]float64{}}
	coord := NewCoordinator(fetcher, &fakeWriter{}, nil, time.Hour, nil)
	coord.Start()

	coord.Stop()
	coord.Stop()
}

func TestCoordinator_PeriodicRefresh(t *testing.T) {
	fetcher := &fakeFetcher{usage: map[string][2]float64{"001": {1, 1}}}
	writer := &fakeWriter{}

	coord := NewCoordinator(fetcher, writer, []string{"001"}, 20*time.Millisecond, nil)
	coord.Start()
	defer coord.Stop()

	deadline := time.After(2 * time.Second)
	for {
		if e, _ := writer.counts(); e >= 2 {
			return
		}
		select {
		case <-deadline:
			t.Fatal("no periodic refresh observed")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
