package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
)

// Job is a unit of periodic work.
type Job interface {
	Run(ctx context.Context) (SweepResult, error)
}

// Scheduler runs a Job on a fixed interval. Runs never overlap: a run that
// is still going when the next tick arrives causes that tick to be skipped.
type Scheduler struct {
	cron     *gocron.Scheduler
	job      Job
	interval time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(job Job, interval time.Duration, logger *slog.Logger) *Scheduler {
	if job == nil {
		panic("job cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if interval < time.Minute {
		interval = time.Minute
	}
	cron := gocron.NewScheduler(time.UTC)
	cron.SingletonModeAll()
	return &Scheduler{
		cron:     cron,
		job:      job,
		interval: interval,
		logger:   logger.With(slog.String("component", "scheduler")),
	}
}

// Start schedules the job and runs it once right away.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errors.New("scheduler already started")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	if _, err := s.cron.Every(s.interval).Do(s.tick); err != nil {
		s.cancel()
		s.cancel = nil
		return err
	}
	s.cron.StartAsync()
	s.logger.Info("scheduler started", "interval", s.interval.String())
	return nil
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	if _, err := s.job.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("scheduled job failed", "error", err)
	}
}

// Stop cancels any running job and stops scheduling new ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}
