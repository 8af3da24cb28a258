package platform

import (
	"context"
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the ServiceBus.
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

// ServiceHandler is the callback invoked when a registered service is called.
//
// Handlers receive the call payload and should validate it themselves,
// returning ErrInvalidServiceData (wrapped) for malformed payloads.
type ServiceHandler func(ctx context.Context, call ServiceCall) error

// ServiceCall is one invocation of a registered service.
type ServiceCall struct {
	// Domain is the service namespace (e.g. "grid_stat", "recorder").
	Domain string

	// Service is the operation name within the domain.
	Service string

	// Data is the call payload.
	Data map[string]any
}

// ServiceBus is the process-wide named-operation registry.
//
// Services are registered under (domain, service) pairs with at most one
// registration at a time. Registration and removal are guarded so that
// concurrent setup/unload sequences cannot race the handler map.
//
// All public methods are thread-safe.
type ServiceBus struct {
	handlers map[string]ServiceHandler
	mu       sync.RWMutex
	logger   Logger
}

// NewServiceBus creates an empty service bus.
func NewServiceBus() *ServiceBus {
	return &ServiceBus{
		handlers: make(map[string]ServiceHandler),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the service bus.
func (b *ServiceBus) SetLogger(logger Logger) {
	b.logger = logger
}

// HasService reports whether a service is currently registered.
func (b *ServiceBus) HasService(domain, service string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.handlers[serviceKey(domain, service)]
	return ok
}

// Register registers a handler under (domain, service).
// Returns ErrServiceExists if the pair is already registered; callers
// that need idempotence should check HasService first.
func (b *ServiceBus) Register(domain, service string, handler ServiceHandler) error {
	if handler == nil {
		return fmt.Errorf("%w: nil handler for %s.%s", ErrInvalidServiceData, domain, service)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := serviceKey(domain, service)
	if _, ok := b.handlers[key]; ok {
		return fmt.Errorf("%w: %s.%s", ErrServiceExists, domain, service)
	}
	b.handlers[key] = handler

	b.logger.Debug("service registered", "domain", domain, "service", service)
	return nil
}

// Remove unregisters a service. Removing an absent service is a no-op.
func (b *ServiceBus) Remove(domain, service string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := serviceKey(domain, service)
	if _, ok := b.handlers[key]; !ok {
		return
	}
	delete(b.handlers, key)

	b.logger.Debug("service removed", "domain", domain, "service", service)
}

// Call invokes a registered service.
//
// When blocking is true the handler runs on the calling goroutine and its
// error is returned. When blocking is false the handler runs in a new
// goroutine and errors are logged instead of returned.
//
// Returns ErrServiceNotFound if no handler is registered for the pair.
func (b *ServiceBus) Call(ctx context.Context, domain, service string, data map[string]any, blocking bool) error {
	b.mu.RLock()
	handler, ok := b.handlers[serviceKey(domain, service)]
	b.mu.RUnlock()

	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrServiceNotFound, domain, service)
	}

	call := ServiceCall{Domain: domain, Service: service, Data: data}

	if blocking {
		return handler(ctx, call)
	}

	go func() {
		if err := handler(ctx, call); err != nil {
			b.logger.Error("service call failed",
				"domain", domain,
				"service", service,
				"error", err,
			)
		}
	}()
	return nil
}

// serviceKey builds the handler map key for a (domain, service) pair.
func serviceKey(domain, service string) string {
	return domain + "." + service
}
