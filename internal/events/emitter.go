package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryEmitter dispatches events to handlers registered in process.
type InMemoryEmitter struct {
	handlers map[string][]Handler
	all      []Handler
	mu       sync.RWMutex
	logger   *slog.Logger
}

var _ Emitter = (*InMemoryEmitter)(nil)

// NewInMemoryEmitter creates an emitter with no handlers.
func NewInMemoryEmitter(logger *slog.Logger) *InMemoryEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEmitter{
		handlers: make(map[string][]Handler),
		logger:   logger.With("component", "event_emitter"),
	}
}

// Subscribe registers a handler for the given event types. With no types
// the handler receives every event.
func (e *InMemoryEmitter) Subscribe(handler Handler, types ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(types) == 0 {
		e.all = append(e.all, handler)
		return
	}
	for _, t := range types {
		e.handlers[t] = append(e.handlers[t], handler)
	}
}

// EmitEvent delivers the event to every matching handler. A failing handler
// does not stop delivery to the others; the first error is returned.
func (e *InMemoryEmitter) EmitEvent(ctx context.Context, event *Event) error {
	e.mu.RLock()
	handlers := make([]Handler, 0, len(e.all)+len(e.handlers[event.Type]))
	handlers = append(handlers, e.handlers[event.Type]...)
	handlers = append(handlers, e.all...)
	e.mu.RUnlock()

	if len(handlers) == 0 {
		e.logger.Debug("no handlers for event",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	var firstErr error
	for i, h := range handlers {
		if err := h.HandleEvent(ctx, event); err != nil {
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
	return firstErr
}
