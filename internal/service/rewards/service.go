// Package rewards reports a learner's points, achievements and due reviews.
// Summaries are computed from a consistent snapshot of the learner's data
// and cached per reporting day until the learner's data changes.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/clock"
	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/domain/reward"
	"github.com/arch2702/smart-study-scheduler/internal/events"
	"github.com/arch2702/smart-study-scheduler/internal/platform/cache"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/service"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
)

// ErrLedgerMismatch is returned by ReconcileBalance when the learner's
// balance differs from the sum of the ledger.
var ErrLedgerMismatch = errors.New("learner balance does not match reward ledger")

// Reconciliation compares a learner's balance with the ledger.
type Reconciliation struct {
	LearnerID uuid.UUID `json:"learner_id"`
	Balance   int       `json:"balance"`
	LedgerSum int       `json:"ledger_sum"`
	Entries   int       `json:"entries"`
}

// Dashboard is the learner's overview for one reporting day.
type Dashboard struct {
	AsOf            time.Time
	Today           string
	CurrentPoints   int
	TotalSubjects   int
	TotalTopics     int
	CompletedTopics int
	DueReviews      int
	// TodaysSubjects are the subjects whose schedule window contains Today.
	TodaysSubjects []*domain.Subject
}

// Service answers reward queries. A zero asOf means now; a date-only
// asOf names that day in the learner's timezone.
type Service interface {
	// GetAchievementSummary aggregates the learner's rewards as of asOf.
	// Unknown learners get an empty summary.
	GetAchievementSummary(ctx context.Context, learnerID uuid.UUID, asOf reward.AsOf) (*reward.Summary, error)

	// ListDueReviews returns the completed topics due on or before asOf's
	// date in the learner's timezone.
	ListDueReviews(ctx context.Context, learnerID uuid.UUID, asOf reward.AsOf) ([]*domain.Topic, error)

	// GetDashboard counts the learner's subjects, topics and due reviews
	// and lists the subjects scheduled for asOf's date.
	GetDashboard(ctx context.Context, learnerID uuid.UUID, asOf reward.AsOf) (*Dashboard, error)

	// ReconcileBalance checks that the learner's balance equals the sum of
	// the ledger. It returns the comparison together with
	// ErrLedgerMismatch when they differ.
	ReconcileBalance(ctx context.Context, learnerID uuid.UUID) (*Reconciliation, error)
}

// Options tunes the service.
type Options struct {
	DefaultLocation *time.Location
	RecentLimit     int
}

type serviceImpl struct {
	uow    store.UnitOfWork
	cache  cache.SummaryCache
	clock  clock.Clock
	opts   Options
	logger *slog.Logger
}

var _ Service = (*serviceImpl)(nil)

// NewService creates a rewards Service. A nil cache disables caching.
func NewService(
	uow store.UnitOfWork,
	summaries cache.SummaryCache,
	clk clock.Clock,
	opts Options,
	logger *slog.Logger,
) Service {
	if uow == nil {
		panic("uow cannot be nil")
	}
	if summaries == nil {
		summaries = cache.Nop{}
	}
	if clk == nil {
		clk = clock.Real
	}
	if opts.DefaultLocation == nil {
		opts.DefaultLocation = time.UTC
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = reward.DefaultRecentLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &serviceImpl{
		uow:    uow,
		cache:  summaries,
		clock:  clk,
		opts:   opts,
		logger: logger.With(slog.String("component", "rewards_service")),
	}
}

// learnerLocation reads the learner's reporting timezone. Missing learners
// report in the default location.
func (s *serviceImpl) learnerLocation(ctx context.Context, repos store.Repositories, learnerID uuid.UUID) (*domain.Learner, *time.Location, error) {
	learner, err := repos.Learners.GetByID(ctx, learnerID)
	if err != nil {
		if errors.Is(err, store.ErrLearnerNotFound) {
			return nil, s.opts.DefaultLocation, nil
		}
		return nil, nil, err
	}
	return learner, learner.Location(s.opts.DefaultLocation), nil
}

// cacheField identifies one reporting day of one timezone.
func cacheField(asOf time.Time, loc *time.Location) string {
	return asOf.In(loc).Format(reward.DateLayout) + "|" + loc.String()
}

func (s *serviceImpl) GetAchievementSummary(
	ctx context.Context,
	learnerID uuid.UUID,
	asOf reward.AsOf,
) (*reward.Summary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.clock.Now()

	// The generation is read before the snapshot so that any commit the
	// snapshot misses also advances it, and the write below is refused.
	gen, cacheable := s.cache.Generation(ctx, learnerID)

	var (
		summary *reward.Summary
		field   string
		hit     bool
	)
	err := s.uow.Snapshot(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		learner, loc, err := s.learnerLocation(ctx, repos, learnerID)
		if err != nil {
			return err
		}
		at := asOf.Resolve(now, loc)

		field = cacheField(at, loc)
		if cached, ok := s.cache.Get(ctx, learnerID, field); ok {
			cached.AsOf = at
			summary, hit = cached, true
			return nil
		}

		topics, err := repos.Topics.ListByLearner(ctx, learnerID)
		if err != nil {
			return fmt.Errorf("failed to list topics: %w", err)
		}
		ledger, err := repos.Ledger.ListByLearner(ctx, learnerID)
		if err != nil {
			return fmt.Errorf("failed to list ledger: %w", err)
		}

		in := reward.Input{
			Topics:      topics,
			Ledger:      ledger,
			LearnerID:   learnerID,
			Location:    loc,
			AsOf:        at,
			RecentLimit: s.opts.RecentLimit,
		}
		if learner != nil {
			in.CurrentPoints = learner.CurrentPoints
		}
		summary = reward.Aggregate(in)
		if summary.Reconstructed {
			log.Info("summary built from reconstructed ledger",
				slog.String("learner_id", learnerID.String()),
				slog.Int("entries", summary.TotalRewards))
		}
		return nil
	})
	if err != nil {
		log.Error("failed to build achievement summary",
			slog.String("learner_id", learnerID.String()),
			slog.String("as_of", asOf.String()),
			slog.String("error", err.Error()))
		return nil, service.NewServiceError("get_achievement_summary", "failed to build summary", err)
	}
	if !hit && cacheable {
		s.cache.Set(ctx, learnerID, gen, field, summary)
	}
	return summary, nil
}

func (s *serviceImpl) ListDueReviews(ctx context.Context, learnerID uuid.UUID, asOf reward.AsOf) ([]*domain.Topic, error) {
	now := s.clock.Now()

	var due []*domain.Topic
	err := s.uow.Snapshot(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		_, loc, err := s.learnerLocation(ctx, repos, learnerID)
		if err != nil {
			return err
		}
		topics, err := repos.Topics.ListByLearner(ctx, learnerID)
		if err != nil {
			return fmt.Errorf("failed to list topics: %w", err)
		}
		due = reward.DueReviews(topics, asOf.Resolve(now, loc), loc)
		return nil
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list due reviews",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil, service.NewServiceError("list_due_reviews", "failed to list due reviews", err)
	}
	return due, nil
}

func (s *serviceImpl) GetDashboard(ctx context.Context, learnerID uuid.UUID, asOf reward.AsOf) (*Dashboard, error) {
	now := s.clock.Now()

	d := &Dashboard{TodaysSubjects: []*domain.Subject{}}
	err := s.uow.Snapshot(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		learner, loc, err := s.learnerLocation(ctx, repos, learnerID)
		if err != nil {
			return err
		}
		d.AsOf = asOf.Resolve(now, loc)
		d.Today = d.AsOf.In(loc).Format(reward.DateLayout)
		if learner != nil {
			d.CurrentPoints = learner.CurrentPoints
		}

		subjects, err := repos.Subjects.ListByLearner(ctx, learnerID)
		if err != nil {
			return fmt.Errorf("failed to list subjects: %w", err)
		}
		topics, err := repos.Topics.ListByLearner(ctx, learnerID)
		if err != nil {
			return fmt.Errorf("failed to list topics: %w", err)
		}

		d.TotalSubjects = len(subjects)
		for _, subject := range subjects {
			if subject.CoversDay(d.AsOf, loc) {
				d.TodaysSubjects = append(d.TodaysSubjects, subject)
			}
		}
		d.TotalTopics = len(topics)
		for _, topic := range topics {
			if topic.IsCompleted() {
				d.CompletedTopics++
			}
		}
		d.DueReviews = len(reward.DueReviews(topics, d.AsOf, loc))
		return nil
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to build dashboard",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil, service.NewServiceError("get_dashboard", "failed to build dashboard", err)
	}
	return d, nil
}

func (s *serviceImpl) ReconcileBalance(ctx context.Context, learnerID uuid.UUID) (*Reconciliation, error) {
	rec := &Reconciliation{LearnerID: learnerID}
	err := s.uow.Snapshot(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		learner, err := repos.Learners.GetByID(ctx, learnerID)
		if err != nil {
			return err
		}
		entries, err := repos.Ledger.ListByLearner(ctx, learnerID)
		if err != nil {
			return err
		}
		rec.Balance = learner.CurrentPoints
		rec.Entries = len(entries)
		for _, e := range entries {
			rec.LedgerSum += e.Points
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrLearnerNotFound) {
			return nil, err
		}
		return nil, service.NewServiceError("reconcile_balance", "failed to read balance", err)
	}

	if rec.Balance != rec.LedgerSum {
		logger.FromContextOrDefault(ctx, s.logger).Error("balance drift detected",
			slog.String("learner_id", learnerID.String()),
			slog.Int("balance", rec.Balance),
			slog.Int("ledger_sum", rec.LedgerSum))
		return rec, ErrLedgerMismatch
	}
	return rec, nil
}

// InvalidationHandler drops cached summaries whenever a learner's rewards
// or study plan change.
func InvalidationHandler(summaries cache.SummaryCache) events.Handler {
	return events.HandlerFunc(func(ctx context.Context, event *events.Event) error {
		return summaries.Invalidate(ctx, event.LearnerID)
	})
}

// InvalidatingEvents lists the event types that make cached summaries stale.
var InvalidatingEvents = []string{
	events.TypeTopicCompleted,
	events.TypeTopicReviewed,
	events.TypeStudyPlanChanged,
	events.TypeProfileUpdated,
}
