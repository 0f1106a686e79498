// Package lifecycle implements the two-state topic machine. Completing a
// topic and reviewing it both produce a new topic value and the ledger entry
// that pays for the transition; persisting them together is the caller's
// job.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/domain/reward"
	"github.com/arch2702/smart-study-scheduler/internal/domain/srs"
)

// Transition is the outcome of a lifecycle operation.
type Transition struct {
	// Topic is the updated copy. The input topic is left untouched.
	Topic *domain.Topic
	// Entry is the ledger entry to append alongside the topic update.
	Entry *domain.RewardLedgerEntry
	// Points is the amount to add to the learner's balance.
	Points int
	// Early is set when a review happens before the topic's scheduled date.
	Early bool
}

// Engine applies lifecycle transitions.
type Engine struct {
	scheduler srs.Scheduler
}

// NewEngine creates an engine that schedules reviews with scheduler.
func NewEngine(scheduler srs.Scheduler) *Engine {
	if scheduler == nil {
		scheduler = srs.NewDefaultScheduler()
	}
	return &Engine{scheduler: scheduler}
}

// Complete moves a not-started topic to completed, awards completion points
// and schedules the first review.
//
// Returns domain.ErrAlreadyCompleted when the topic is already completed and
// domain.ErrInvalidDifficulty when its difficulty is unknown.
func (e *Engine) Complete(topic *domain.Topic, now time.Time) (*Transition, error) {
	if topic == nil {
		return nil, fmt.Errorf("%w: topic cannot be nil", domain.ErrValidation)
	}
	if topic.IsCompleted() {
		return nil, domain.ErrAlreadyCompleted
	}

	points, err := reward.Award(domain.ActionTopicCompleted, topic.Difficulty)
	if err != nil {
		return nil, err
	}
	next, err := e.scheduler.Schedule(topic.Difficulty, 0, now)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule first review: %w", err)
	}
	entry, err := domain.NewLedgerEntry(topic.LearnerID, topic.ID, domain.ActionTopicCompleted, points, now)
	if err != nil {
		return nil, err
	}

	updated := topic.Clone()
	completedAt := now
	updated.State = domain.TopicCompleted
	updated.CompletedAt = &completedAt
	updated.NextReviewAt = &next
	updated.PointsAwarded += points
	updated.UpdatedAt = now.UTC()

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	return &Transition{Topic: updated, Entry: entry, Points: points}, nil
}

// Review records a review of a completed topic, awards review points and
// schedules the next review. Reviews before the scheduled date are allowed
// and flagged through Transition.Early.
//
// Returns domain.ErrNotYetCompleted when the topic has not been completed.
func (e *Engine) Review(topic *domain.Topic, now time.Time) (*Transition, error) {
	if topic == nil {
		return nil, fmt.Errorf("%w: topic cannot be nil", domain.ErrValidation)
	}
	if !topic.IsCompleted() {
		return nil, domain.ErrNotYetCompleted
	}

	points, err := reward.Award(domain.ActionTopicReviewed, topic.Difficulty)
	if err != nil {
		return nil, err
	}
	reviewCount := topic.ReviewCount + 1
	next, err := e.scheduler.Schedule(topic.Difficulty, reviewCount, now)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule next review: %w", err)
	}
	entry, err := domain.NewLedgerEntry(topic.LearnerID, topic.ID, domain.ActionTopicReviewed, points, now)
	if err != nil {
		return nil, err
	}

	early := topic.NextReviewAt != nil && !srs.DateOnOrBefore(*topic.NextReviewAt, now, now.Location())

	updated := topic.Clone()
	reviewedAt := now
	updated.ReviewCount = reviewCount
	updated.LastReviewedAt = &reviewedAt
	updated.NextReviewAt = &next
	updated.PointsAwarded += points
	updated.UpdatedAt = now.UTC()

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	return &Transition{Topic: updated, Entry: entry, Points: points, Early: early}, nil
}
