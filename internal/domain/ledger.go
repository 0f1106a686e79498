package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RewardAction is the kind of event that earned points.
type RewardAction string

// Reward actions.
const (
	ActionTopicCompleted RewardAction = "topic_completed"
	ActionTopicReviewed  RewardAction = "topic_reviewed"
)

// Valid reports whether a is a known reward action.
func (a RewardAction) Valid() bool {
	return a == ActionTopicCompleted || a == ActionTopicReviewed
}

// RewardLedgerEntry records one award of points. Entries are append-only.
// OccurredAt may be the zero time for entries whose timestamp is unknown;
// such entries count towards lifetime totals but not towards any day.
type RewardLedgerEntry struct {
	ID         uuid.UUID    `json:"id"`
	LearnerID  uuid.UUID    `json:"learner_id"`
	TopicID    *uuid.UUID   `json:"topic_id,omitempty"`
	Action     RewardAction `json:"action"`
	Points     int          `json:"points"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// NewLedgerEntry creates a ledger entry for a topic action.
func NewLedgerEntry(learnerID, topicID uuid.UUID, action RewardAction, points int, at time.Time) (*RewardLedgerEntry, error) {
	tid := topicID
	e := &RewardLedgerEntry{
		ID:         uuid.New(),
		LearnerID:  learnerID,
		TopicID:    &tid,
		Action:     action,
		Points:     points,
		OccurredAt: at,
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Dated reports whether the entry has a usable timestamp.
func (e *RewardLedgerEntry) Dated() bool {
	return !e.OccurredAt.IsZero()
}

// Validate checks if the entry has valid data.
func (e *RewardLedgerEntry) Validate() error {
	if e.ID == uuid.Nil {
		return fmt.Errorf("%w: ledger entry ID cannot be empty", ErrValidation)
	}
	if e.LearnerID == uuid.Nil {
		return ErrLearnerIDEmpty
	}
	if !e.Action.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, e.Action)
	}
	if e.Points < 0 {
		return fmt.Errorf("%w: ledger points cannot be negative", ErrValidation)
	}
	return nil
}
