package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Subject-specific validation errors
var (
	ErrSubjectIDEmpty        = errors.New("subject ID cannot be empty")
	ErrSubjectLearnerIDEmpty = errors.New("subject learner ID cannot be empty")
	ErrSubjectTitleEmpty     = errors.New("subject title cannot be empty")
	ErrSubjectDateRange      = errors.New("subject end date is before start date")
	ErrSubjectDailyHours     = errors.New("subject daily hours must be between 0 and 24")
)

// Subject groups topics under a study plan with a date range and a daily
// time budget.
type Subject struct {
	ID          uuid.UUID  `json:"id"`
	LearnerID   uuid.UUID  `json:"learner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	DailyHours  float64    `json:"daily_hours"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     time.Time  `json:"end_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SubjectParams carries the editable fields of a subject.
type SubjectParams struct {
	Title       string
	Description string
	Difficulty  Difficulty
	DailyHours  float64
	StartDate   time.Time
	EndDate     time.Time
}

// NewSubject creates a subject owned by learnerID.
func NewSubject(learnerID uuid.UUID, p SubjectParams, now time.Time) (*Subject, error) {
	s := &Subject{
		ID:        uuid.New(),
		LearnerID: learnerID,
		CreatedAt: now.UTC(),
	}
	s.apply(p, now)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Update replaces the editable fields, leaving the subject untouched if the
// result would be invalid.
func (s *Subject) Update(p SubjectParams, now time.Time) error {
	updated := *s
	updated.apply(p, now)
	if err := updated.Validate(); err != nil {
		return err
	}
	*s = updated
	return nil
}

func (s *Subject) apply(p SubjectParams, now time.Time) {
	s.Title = strings.TrimSpace(p.Title)
	s.Description = p.Description
	s.Difficulty = p.Difficulty
	s.DailyHours = p.DailyHours
	s.StartDate = p.StartDate.UTC()
	s.EndDate = p.EndDate.UTC()
	s.UpdatedAt = now.UTC()
}

// CoversDay reports whether the calendar day containing t falls inside the
// subject's schedule window. All three dates are read in loc.
func (s *Subject) CoversDay(t time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	day := t.In(loc).Format(time.DateOnly)
	return s.StartDate.In(loc).Format(time.DateOnly) <= day &&
		day <= s.EndDate.In(loc).Format(time.DateOnly)
}

// Validate checks if the Subject has valid data.
func (s *Subject) Validate() error {
	if s.ID == uuid.Nil {
		return ErrSubjectIDEmpty
	}
	if s.LearnerID == uuid.Nil {
		return ErrSubjectLearnerIDEmpty
	}
	if s.Title == "" {
		return ErrSubjectTitleEmpty
	}
	if len(s.Title) > MaxTitleLength {
		return fmt.Errorf("%w: title longer than %d characters", ErrValidation, MaxTitleLength)
	}
	if !s.Difficulty.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, s.Difficulty)
	}
	if s.DailyHours <= 0 || s.DailyHours > 24 {
		return ErrSubjectDailyHours
	}
	if s.EndDate.Before(s.StartDate) {
		return ErrSubjectDateRange
	}
	return nil
}
