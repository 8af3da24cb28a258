// Package servicebridge exposes the service bus over MQTT.
//
// Automations and external tooling invoke services by publishing to
// gridstat/service/{domain}/{service}; the bridge runs the call on the
// bus and publishes the outcome to gridstat/result/{domain}/{service}.
// Service calls over the bridge are always blocking so the result
// message reflects the real outcome.
package servicebridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-gridstat/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-gridstat/internal/platform"
)

// callTimeout bounds one service invocation triggered over MQTT.
const callTimeout = 5 * time.Minute

// Logger defines the logging interface used by the bridge.
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

// Conn is the slice of the MQTT client the bridge needs.
// *mqtt.Client satisfies it; tests substitute fakes.
type Conn interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// result is the wire form of a service invocation outcome.
type result struct {
	Domain  string `json:"domain"`
	Service string `json:"service"`
	State   string `json:"state"`
	Error   string `json:"error,omitempty"`
}

// Bridge routes MQTT service requests onto the service bus.
type Bridge struct {
	conn   Conn
	bus    *platform.ServiceBus
	qos    byte
	logger Logger
}

// New creates a service bridge.
func New(conn Conn, bus *platform.ServiceBus, qos byte) *Bridge {
	return &Bridge{
		conn:   conn,
		bus:    bus,
		qos:    qos,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the bridge.
func (b *Bridge) SetLogger(logger Logger) {
	b.logger = logger
}

// Start subscribes to the service request hierarchy.
func (b *Bridge) Start() error {
	topic := mqtt.Topics{}.AllServiceRequests()
	if err := b.conn.Subscribe(topic, b.qos, b.handleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	b.logger.Info("service bridge listening", "topic", topic)
	return nil
}

// Stop unsubscribes from the service request hierarchy.
func (b *Bridge) Stop() error {
	return b.conn.Unsubscribe(mqtt.Topics{}.AllServiceRequests())
}

// handleMessage runs one service invocation from an MQTT request.
// An empty payload means a service call without data; anything else
// must be a JSON object.
func (b *Bridge) handleMessage(topic string, payload []byte) error {
	domain, service, ok := mqtt.Topics{}.ParseServiceRequest(topic)
	if !ok {
		return fmt.Errorf("unexpected topic %q", topic)
	}

	var data map[string]any
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &data); err != nil {
			b.publishResult(domain, service, fmt.Errorf("invalid payload: %w", err))
			return fmt.Errorf("decoding payload for %s.%s: %w", domain, service, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	err := b.bus.Call(ctx, domain, service, data, true)
	b.publishResult(domain, service, err)
	if err != nil {
		return fmt.Errorf("calling %s.%s: %w", domain, service, err)
	}

	b.logger.Debug("service call completed over bridge", "domain", domain, "service", service)
	return nil
}

// publishResult reports an invocation outcome on the result topic.
func (b *Bridge) publishResult(domain, service string, callErr error) {
	res := result{Domain: domain, Service: service, State: "completed"}
	if callErr != nil {
		res.State = "failed"
		res.Error = callErr.Error()
	}

	payload, err := json.Marshal(res)
	if err != nil {
		b.logger.Error("encoding service result", "error", err)
		return
	}

	topic := mqtt.Topics{}.ServiceResult(domain, service)
	if err := b.conn.Publish(topic, payload, b.qos, false); err != nil {
		b.logger.Warn("publishing service result failed", "topic", topic, "error", err)
	}
}
