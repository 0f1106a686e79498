package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationKind classifies learner notifications.
type NotificationKind string

// NotificationReviewDue tells the learner that topics are waiting for review.
const NotificationReviewDue NotificationKind = "review_due"

// Notification is a message shown to a learner until it is marked read.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	LearnerID uuid.UUID        `json:"learner_id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewReviewDueNotification builds the reminder for count due topics.
func NewReviewDueNotification(learnerID uuid.UUID, count int, now time.Time) (*Notification, error) {
	if learnerID == uuid.Nil {
		return nil, ErrLearnerIDEmpty
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: reminder needs at least one due topic", ErrValidation)
	}

	msg := "You have 1 topic due for review today."
	if count > 1 {
		msg = fmt.Sprintf("You have %d topics due for review today.", count)
	}

	return &Notification{
		ID:        uuid.New(),
		LearnerID: learnerID,
		Kind:      NotificationReviewDue,
		Message:   msg,
		CreatedAt: now.UTC(),
	}, nil
}
