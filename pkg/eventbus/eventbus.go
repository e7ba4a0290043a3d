package eventbus

import (
	"context"

	"github.com/amirasaad/ledger/pkg/domain/events"
)

// HandlerFunc processes a single event.
type HandlerFunc func(ctx context.Context, e events.Event) error

// Bus defines the contract for publishing and subscribing to domain events.
type Bus interface {
	Register(eventType string, handler HandlerFunc)
	Emit(ctx context.Context, e events.Event) error
}
