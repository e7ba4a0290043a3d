package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/ledger/pkg/domain/events"
	"github.com/amirasaad/ledger/pkg/eventbus"
)

// MemoryEventBus is a synchronous in-memory implementation of eventbus.Bus.
// Handler errors and panics are logged and never returned to the emitter.
type MemoryEventBus struct {
	handlers  map[string][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []events.Event
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryEventBus{
		handlers:  make(map[string][]eventbus.HandlerFunc),
		logger:    logger.With("bus", "memory"),
		published: make([]events.Event, 0),
	}
}

// Register registers a handler for a specific event type.
func (b *MemoryEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit dispatches the event to all registered handlers for its type.
func (b *MemoryEventBus) Emit(ctx context.Context, e events.Event) error {
	b.mu.Lock()
	b.published = append(b.published, e)
	handlers := append([]eventbus.HandlerFunc{}, b.handlers[e.Type()]...)
	b.mu.Unlock()

	for _, handler := range handlers {
		b.dispatch(ctx, handler, e)
	}
	return nil
}

func (b *MemoryEventBus) dispatch(ctx context.Context, handler eventbus.HandlerFunc, e events.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic recovered in event handler", "type", e.Type(), "panic", r)
		}
	}()
	if err := handler(ctx, e); err != nil {
		b.logger.Error("failed to process event", "type", e.Type(), "error", err)
	}
}

// Published returns a copy of the events emitted so far. Used by tests.
func (b *MemoryEventBus) Published() []events.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]events.Event(nil), b.published...)
}

// ClearPublished clears the list of published events.
func (b *MemoryEventBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = make([]events.Event, 0)
}

var _ eventbus.Bus = (*MemoryEventBus)(nil)
