package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrLearnerIDEmpty is returned when a learner ID is empty or nil.
var ErrLearnerIDEmpty = errors.New("learner ID cannot be empty")

// Learner is the owner of subjects, topics and the reward ledger.
// CurrentPoints is the running balance; it always equals the sum of the
// learner's ledger entries.
type Learner struct {
	ID            uuid.UUID `json:"id"`
	DisplayName   string    `json:"display_name"`
	CurrentPoints int       `json:"current_points"`
	Timezone      string    `json:"timezone"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewLearner creates a learner with a zero balance.
func NewLearner(id uuid.UUID, displayName, timezone string, now time.Time) (*Learner, error) {
	l := &Learner{
		ID:          id,
		DisplayName: displayName,
		Timezone:    timezone,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks if the Learner has valid data.
func (l *Learner) Validate() error {
	if l.ID == uuid.Nil {
		return ErrLearnerIDEmpty
	}
	if l.CurrentPoints < 0 {
		return fmt.Errorf("%w: current points cannot be negative", ErrValidation)
	}
	if len(l.DisplayName) > MaxTitleLength {
		return fmt.Errorf("%w: display name longer than %d characters", ErrValidation, MaxTitleLength)
	}
	return ValidateTimezone(l.Timezone)
}

// ValidateTimezone accepts an empty name, meaning the server default, or
// an IANA zone name.
func ValidateTimezone(name string) error {
	if name == "" {
		return nil
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("%w: unknown timezone %q", ErrValidation, name)
	}
	return nil
}

// SetProfile replaces the learner's display name and timezone, leaving
// the learner untouched if the result would be invalid.
func (l *Learner) SetProfile(displayName, timezone string, now time.Time) error {
	updated := *l
	updated.DisplayName = strings.TrimSpace(displayName)
	updated.Timezone = timezone
	updated.UpdatedAt = now.UTC()
	if err := updated.Validate(); err != nil {
		return err
	}
	*l = updated
	return nil
}

// Location resolves the learner's reporting timezone. An empty or unknown
// zone name falls back to the supplied default.
func (l *Learner) Location(fallback *time.Location) *time.Location {
	if fallback == nil {
		fallback = time.UTC
	}
	if l == nil || l.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}
