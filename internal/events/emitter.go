package events

import (
	"context"
	"log/slog"
	"sync"
)

// subscriptionBuffer is the channel capacity handed to each subscriber. A
// subscriber that falls this far behind starts losing events; delivery to
// handlers is never affected.
const subscriptionBuffer = 64

// InMemoryEventEmitter dispatches events to registered handlers synchronously
// and to subscribed channels without blocking.
type InMemoryEventEmitter struct {
	mu            sync.RWMutex
	handlers      []EventHandler
	subscriptions []chan *ProgressEvent
	logger        *slog.Logger
}

// NewInMemoryEventEmitter creates a new emitter.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	return &InMemoryEventEmitter{
		logger: logger.With("component", "event_emitter"),
	}
}

// RegisterHandler adds a handler that will receive every emitted event.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered event handler", "handler_count", len(e.handlers))
}

// Subscribe returns a channel carrying every subsequently emitted event.
// Slow subscribers lose events rather than stalling the engine.
func (e *InMemoryEventEmitter) Subscribe() <-chan *ProgressEvent {
	ch := make(chan *ProgressEvent, subscriptionBuffer)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subscriptions = append(e.subscriptions, ch)
	return ch
}

// EmitEvent publishes the event to all handlers and subscriptions. If a
// handler returns an error the event is still delivered to the rest, and the
// first error encountered is returned.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *ProgressEvent) error {
	e.mu.RLock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	subscriptions := make([]chan *ProgressEvent, len(e.subscriptions))
	copy(subscriptions, e.subscriptions)
	e.mu.RUnlock()

	e.logger.Debug("emitting event",
		"event_id", event.ID,
		"event_type", event.Type,
		"user_id", event.UserID,
		"handler_count", len(handlers))

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"event_type", event.Type)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	for _, sub := range subscriptions {
		select {
		case sub <- event:
		default:
			e.logger.Warn("dropping event for slow subscriber",
				"event_id", event.ID,
				"event_type", event.Type)
		}
	}

	return firstErr
}
