package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types.
const (
	TypeTopicCompleted      = "topic.completed"
	TypeTopicReviewed       = "topic.reviewed"
	TypeNotificationCreated = "notification.created"
	TypeStudyPlanChanged    = "study_plan.changed"
	TypeProfileUpdated      = "learner.profile_updated"
)

// Event describes a committed change to one learner's data.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	LearnerID uuid.UUID `json:"learner_id"`

	// Payload holds type-specific data serialized as JSON.
	Payload json.RawMessage `json:"payload,omitempty"`

	OccurredAt time.Time `json:"occurred_at"`
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// NewEvent builds an event for the learner. A nil payload is omitted.
func NewEvent(eventType string, learnerID uuid.UUID, payload any, at time.Time) (*Event, error) {
	e := &Event{
		ID:         uuid.New(),
		Type:       eventType,
		LearnerID:  learnerID,
		OccurredAt: at,
	}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		e.Payload = b
	}
	return e, nil
}

// RewardPayload accompanies topic.completed and topic.reviewed events.
type RewardPayload struct {
	TopicID      uuid.UUID  `json:"topic_id"`
	Points       int        `json:"points"`
	ReviewCount  int        `json:"review_count"`
	NextReviewAt *time.Time `json:"next_review_at,omitempty"`
	Early        bool       `json:"early,omitempty"`
}

// Handler reacts to events.
type Handler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent implements Handler.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// Emitter publishes events to interested handlers.
type Emitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}

// NopEmitter discards every event.
type NopEmitter struct{}

// EmitEvent implements Emitter.
func (NopEmitter) EmitEvent(context.Context, *Event) error { return nil }
