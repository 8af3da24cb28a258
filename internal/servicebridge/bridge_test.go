package servicebridge

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-gridstat/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-gridstat/internal/platform"
)

// fakeConn captures subscriptions and published messages.
type fakeConn struct {
	mu         sync.Mutex
	subscribed []string
	handler    mqtt.MessageHandler
	published  map[string][]byte
}

func newFakeConn() *fakeConn {
	return &fakeConn{published: make(map[string][]byte)}
}

func (c *fakeConn) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribed = append(c.subscribed, topic)
	c.handler = handler
	return nil
}

func (c *fakeConn) Unsubscribe(topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, t := range c.subscribed {
		if t == topic {
			c.subscribed = append(c.subscribed[:i], c.subscribed[i+1:]...)
			break
		}
	}
	return nil
}

func (c *fakeConn) Publish(topic string, payload []byte, _ byte, _ bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published[topic] = payload
	return nil
}

func (c *fakeConn) resultFor(domain, service string) (result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.published[mqtt.Topics{}.ServiceResult(domain, service)]
	if !ok {
		return result{}, false
	}
	var res result
	if err := json.Unmarshal(payload, &res); err != nil {
		return result{}, false
	}
	return res, true
}

func newTestBridge(t *testing.T) (*Bridge, *fakeConn, *platform.ServiceBus) {
	t.Helper()

	conn := newFakeConn()
	bus := platform.NewServiceBus()
	bridge := New(conn, bus, 1)
	if err := bridge.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return bridge, conn, bus
}

func TestBridge_StartSubscribes(t *testing.T) {
	_, conn, _ := newTestBridge(t)

	if len(conn.subscribed) != 1 || conn.subscribed[0] != "gridstat/service/+/+" {
		t.Errorf("subscribed topics = %v", conn.subscribed)
	}
}

func TestBridge_DispatchesServiceCall(t *testing.T) {
	_, conn, bus := newTestBridge(t)

	var got platform.ServiceCall
	err := bus.Register("grid_stat", "purge_device_data",
		func(_ context.Context, call platform.ServiceCall) error {
			got = call
			return nil
		})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	topic := mqtt.Topics{}.ServiceRequest("grid_stat", "purge_device_data")
	if err := conn.handler(topic, []byte(`{"device_id":"csg-001"}`)); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	if got.Data["device_id"] != "csg-001" {
		t.Errorf("handler payload = %v", got.Data)
	}

	res, ok := conn.resultFor("grid_stat", "purge_device_data")
	if !ok {
		t.Fatal("no result published")
	}
	if res.State != "completed" {
		t.Errorf("result state = %q, want completed", res.State)
	}
}

func TestBridge_EmptyPayload(t *testing.T) {
	_, conn, bus := newTestBridge(t)

	called := false
	err := bus.Register("grid_stat", "purge_all_data",
		func(context.Context, platform.ServiceCall) error {
			called = true
			return nil
		})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	topic := mqtt.Topics{}.ServiceRequest("grid_stat", "purge_all_data")
	if err := conn.handler(topic, nil); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if !called {
		t.Error("service not invoked for empty payload")
	}
}

func TestBridge_FailedCallPublishesError(t *testing.T) {
	_, conn, bus := newTestBridge(t)

	err := bus.Register("grid_stat", "purge_all_data",
		func(context.Context, platform.ServiceCall) error {
			return errors.New("purge exploded")
		})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	topic := mqtt.Topics{}.ServiceRequest("grid_stat", "purge_all_data")
	if err := conn.handler(topic, nil); err == nil {
		t.Error("handler error = nil, want error")
	}

	res, ok := conn.resultFor("grid_stat", "purge_all_data")
	if !ok {
		t.Fatal("no result published")
	}
	if res.State != "failed" || res.Error == "" {
		t.Errorf("result = %+v, want failed with error", res)
	}
}

func TestBridge_UnknownService(t *testing.T) {
	_, conn, _ := newTestBridge(t)

	topic := mqtt.Topics{}.ServiceRequest("ghost", "nothing")
	if err := conn.handler(topic, nil); err == nil {
		t.Error("handler error = nil, want error")
	}

	res, ok := conn.resultFor("ghost", "nothing")
	if !ok {
		t.Fatal("no result published")
	}
	if res.State != "failed" {
		t.Errorf("result state = %q, want failed", res.State)
	}
}

func TestBridge_InvalidJSON(t *testing.T) {
	_, conn, _ := newTestBridge(t)

	topic := mqtt.Topics{}.ServiceRequest("grid_stat", "purge_all_data")
	if err := conn.handler(topic, []byte(`{not json`)); err == nil {
		t.Error("handler error = nil, want error")
	}

	res, ok := conn.resultFor("grid_stat", "purge_all_data")
	if !ok {
		t.Fatal("no result published")
	}
	if res.State != "failed" {
		t.Errorf("result state = %q, want failed", res.State)
	}
}

func TestBridge_StopUnsubscribes(t *testing.T) {
	bridge, conn, _ := newTestBridge(t)

	if err := bridge.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if len(conn.subscribed) != 0 {
		t.Errorf("still subscribed: %v", conn.subscribed)
	}
}
