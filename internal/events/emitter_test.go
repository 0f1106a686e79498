package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// recordingHandler counts the events it receives.
type recordingHandler struct {
	err    error
	events []*Event
}

func (h *recordingHandler) HandleEvent(_ context.Context, e *Event) error {
	h.events = append(h.events, e)
	return h.err
}

func TestInMemoryEmitter(t *testing.T) {
	t.Parallel()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("no handlers", func(t *testing.T) {
		t.Parallel()
		e := NewInMemoryEmitter(logger)
		assert.NoError(t, e.EmitEvent(ctx, &Event{Type: TypeTopicCompleted}))
	})

	t.Run("routes by type", func(t *testing.T) {
		t.Parallel()
		e := NewInMemoryEmitter(logger)
		completed := &recordingHandler{}
		every := &recordingHandler{}
		e.Subscribe(completed, TypeTopicCompleted)
		e.Subscribe(every)

		assert.NoError(t, e.EmitEvent(ctx, &Event{Type: TypeTopicCompleted}))
		assert.NoError(t, e.EmitEvent(ctx, &Event{Type: TypeTopicReviewed}))

		assert.Len(t, completed.events, 1)
		assert.Len(t, every.events, 2)
	})

	t.Run("failing handler does not stop delivery", func(t *testing.T) {
		t.Parallel()
		e := NewInMemoryEmitter(logger)
		failing := &recordingHandler{err: errors.New("handler error")}
		ok := &recordingHandler{}
		e.Subscribe(failing, TypeTopicReviewed)
		e.Subscribe(ok, TypeTopicReviewed)

		err := e.EmitEvent(ctx, &Event{Type: TypeTopicReviewed})
		assert.EqualError(t, err, "handler error")
		assert.Len(t, failing.events, 1)
		assert.Len(t, ok.events, 1)
	})
}
