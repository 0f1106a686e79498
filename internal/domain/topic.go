package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Topic-specific validation errors
var (
	ErrTopicIDEmpty        = errors.New("topic ID cannot be empty")
	ErrTopicSubjectIDEmpty = errors.New("topic subject ID cannot be empty")
	ErrTopicLearnerIDEmpty = errors.New("topic learner ID cannot be empty")
	ErrTopicTitleEmpty     = errors.New("topic title cannot be empty")
)

// MaxTitleLength bounds subject and topic titles.
const MaxTitleLength = 200

// TopicState is the lifecycle state of a topic. A topic only ever moves
// from NotStarted to Completed.
type TopicState string

// Topic states.
const (
	TopicNotStarted TopicState = "not_started"
	TopicCompleted  TopicState = "completed"
)

// Topic is a unit of study inside a subject.
type Topic struct {
	ID             uuid.UUID  `json:"id"`
	SubjectID      uuid.UUID  `json:"subject_id"`
	LearnerID      uuid.UUID  `json:"learner_id"`
	Title          string     `json:"title"`
	Notes          string     `json:"notes,omitempty"`
	Difficulty     Difficulty `json:"difficulty"`
	State          TopicState `json:"state"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	LastReviewedAt *time.Time `json:"last_reviewed_at,omitempty"`
	NextReviewAt   *time.Time `json:"next_review_at,omitempty"`
	PointsAwarded  int        `json:"points_awarded"`
	ReviewCount    int        `json:"review_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// NewTopic creates a not-started topic owned by learnerID inside subjectID.
func NewTopic(learnerID, subjectID uuid.UUID, title, notes string, difficulty Difficulty, now time.Time) (*Topic, error) {
	t := &Topic{
		ID:         uuid.New(),
		SubjectID:  subjectID,
		LearnerID:  learnerID,
		Title:      strings.TrimSpace(title),
		Notes:      notes,
		Difficulty: difficulty,
		State:      TopicNotStarted,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// IsCompleted reports whether the topic has been completed.
func (t *Topic) IsCompleted() bool {
	return t.State == TopicCompleted
}

// Validate checks field-level rules and the lifecycle invariants:
// CompletedAt and NextReviewAt are set exactly when the topic is completed,
// and the counters are never negative.
func (t *Topic) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTopicIDEmpty
	}
	if t.SubjectID == uuid.Nil {
		return ErrTopicSubjectIDEmpty
	}
	if t.LearnerID == uuid.Nil {
		return ErrTopicLearnerIDEmpty
	}
	if strings.TrimSpace(t.Title) == "" {
		return ErrTopicTitleEmpty
	}
	if len(t.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title longer than %d characters", ErrValidation, MaxTitleLength)
	}
	if !t.Difficulty.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, t.Difficulty)
	}
	if t.PointsAwarded < 0 || t.ReviewCount < 0 {
		return fmt.Errorf("%w: negative counters", ErrInconsistentTopic)
	}

	switch t.State {
	case TopicNotStarted:
		if t.CompletedAt != nil || t.NextReviewAt != nil || t.LastReviewedAt != nil || t.ReviewCount != 0 {
			return fmt.Errorf("%w: not started topic carries completion data", ErrInconsistentTopic)
		}
	case TopicCompleted:
		if t.CompletedAt == nil || t.NextReviewAt == nil {
			return fmt.Errorf("%w: completed topic missing completion data", ErrInconsistentTopic)
		}
	default:
		return fmt.Errorf("%w: unknown state %q", ErrInconsistentTopic, t.State)
	}

	return nil
}

// Clone returns a deep copy of the topic, including its time pointers.
func (t *Topic) Clone() *Topic {
	if t == nil {
		return nil
	}
	c := *t
	c.CompletedAt = cloneTime(t.CompletedAt)
	c.LastReviewedAt = cloneTime(t.LastReviewedAt)
	c.NextReviewAt = cloneTime(t.NextReviewAt)
	return &c
}

// UpdateDetails changes the editable fields of a topic. Difficulty may only
// change before completion, since the awarded points and the review schedule
// already depend on it afterwards.
func (t *Topic) UpdateDetails(title, notes string, difficulty Difficulty, now time.Time) error {
	updated := t.Clone()
	updated.Title = strings.TrimSpace(title)
	updated.Notes = notes
	if difficulty != "" && difficulty != t.Difficulty {
		if t.IsCompleted() {
			return fmt.Errorf("%w: difficulty cannot change after completion", ErrValidation)
		}
		updated.Difficulty = difficulty
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	updated.UpdatedAt = now.UTC()
	*t = *updated
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
