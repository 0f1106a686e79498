package task

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Reminder creates a due-review reminder for one learner. It returns nil
// when no reminder was needed.
type Reminder interface {
	RemindDue(ctx context.Context, learnerID uuid.UUID) (*domain.Notification, error)
}

// LearnerLister enumerates learners.
type LearnerLister interface {
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Learners int
	Created  int
	Failed   int
	Duration time.Duration
}

// ReminderSweep visits every learner with bounded concurrency.
type ReminderSweep struct {
	learners    LearnerLister
	reminder    Reminder
	concurrency int
	logger      *slog.Logger
}

// NewReminderSweep creates a sweep. Concurrency below one means one.
func NewReminderSweep(learners LearnerLister, reminder Reminder, concurrency int, logger *slog.Logger) *ReminderSweep {
	if learners == nil {
		panic("learners cannot be nil")
	}
	if reminder == nil {
		panic("reminder cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		logger.Warn("invalid sweep concurrency, using 1", "specified", concurrency)
		concurrency = 1
	}
	return &ReminderSweep{
		learners:    learners,
		reminder:    reminder,
		concurrency: concurrency,
		logger:      logger.With(slog.String("component", "reminder_sweep")),
	}
}

// Run performs one sweep. A failure for one learner is logged and counted
// but does not stop the others; Run only fails when the learner list cannot
// be read or ctx is cancelled.
func (s *ReminderSweep) Run(ctx context.Context) (SweepResult, error) {
	started := time.Now()
	ids, err := s.learners.ListIDs(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	var created, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := s.reminder.RemindDue(gctx, id)
			switch {
			case err == nil:
				if n != nil {
					created.Add(1)
				}
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			case errors.Is(err, store.ErrLearnerNotFound):
			default:
				failed.Add(1)
				s.logger.Error("reminder failed",
					"learner_id", id,
					"error", err)
			}
			return nil
		})
	}

	err = g.Wait()
	res := SweepResult{
		Learners: len(ids),
		Created:  int(created.Load()),
		Failed:   int(failed.Load()),
		Duration: time.Since(started),
	}
	if err != nil {
		return res, err
	}

	s.logger.Info("reminder sweep finished",
		"learners", res.Learners,
		"created", res.Created,
		"failed", res.Failed,
		"duration", res.Duration)
	return res, nil
}
