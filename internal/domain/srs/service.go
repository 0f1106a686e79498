// Package srs implements the spaced-repetition review scheduler: given a
// topic's difficulty and how many times it has been reviewed, it decides the
// calendar day of the next review.
package srs

import (
	"errors"
	"fmt"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
)

// ErrInvalidReviewCount is returned for a negative review count.
var ErrInvalidReviewCount = errors.New("review count cannot be negative")

// Scheduler computes next review dates.
type Scheduler interface {
	// Schedule returns the start of the calendar day (in now's location) on
	// which a topic of the given difficulty, reviewed reviewCount times so
	// far, should next be reviewed. The result is always on a later date
	// than now.
	//
	// Returns domain.ErrInvalidDifficulty for an unknown difficulty and
	// ErrInvalidReviewCount for a negative count.
	Schedule(difficulty domain.Difficulty, reviewCount int, now time.Time) (time.Time, error)

	// Interval returns the capped interval in days without applying it to a
	// date.
	Interval(difficulty domain.Difficulty, reviewCount int) (float64, error)
}

// defaultScheduler is the standard implementation of the Scheduler interface
type defaultScheduler struct {
	params *Params
}

var _ Scheduler = (*defaultScheduler)(nil)

// NewDefaultScheduler creates a scheduler with default parameters.
func NewDefaultScheduler() Scheduler {
	return &defaultScheduler{params: NewDefaultParams()}
}

// NewSchedulerWithParams creates a scheduler with custom parameters.
func NewSchedulerWithParams(params *Params) (Scheduler, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: params cannot be nil", ErrInvalidParams)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &defaultScheduler{params: params}, nil
}

// Schedule implements Scheduler.
func (s *defaultScheduler) Schedule(
	difficulty domain.Difficulty,
	reviewCount int,
	now time.Time,
) (time.Time, error) {
	days, err := s.Interval(difficulty, reviewCount)
	if err != nil {
		return time.Time{}, err
	}
	return addInterval(now, days), nil
}

// Interval implements Scheduler.
func (s *defaultScheduler) Interval(difficulty domain.Difficulty, reviewCount int) (float64, error) {
	if !difficulty.Valid() {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidDifficulty, difficulty)
	}
	if reviewCount < 0 {
		return 0, ErrInvalidReviewCount
	}
	return intervalDays(difficulty, reviewCount, s.params), nil
}
