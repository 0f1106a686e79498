package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/clock"
	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/domain/lifecycle"
	"github.com/arch2702/smart-study-scheduler/internal/events"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/service"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
)

var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	uow     store.UnitOfWork
	engine  *lifecycle.Engine
	emitter events.Emitter
	clock   clock.Clock
	opts    Options
	logger  *slog.Logger
}

// NewService creates a progress Service. A nil emitter discards events.
func NewService(
	uow store.UnitOfWork,
	engine *lifecycle.Engine,
	emitter events.Emitter,
	clk clock.Clock,
	opts Options,
	logger *slog.Logger,
) Service {
	if uow == nil {
		panic("uow cannot be nil")
	}
	if engine == nil {
		panic("engine cannot be nil")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if clk == nil {
		clk = clock.Real
	}
	if opts.DefaultLocation == nil {
		opts.DefaultLocation = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &serviceImpl{
		uow:     uow,
		engine:  engine,
		emitter: emitter,
		clock:   clk,
		opts:    opts,
		logger:  logger.With(slog.String("component", "progress_service")),
	}
}

type transitionFn func(topic *domain.Topic, now time.Time) (*lifecycle.Transition, error)

func (s *serviceImpl) MarkComplete(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Topic, error) {
	tr, err := s.apply(ctx, learnerID, topicID, s.engine.Complete)
	if err != nil {
		return nil, s.mapError(ctx, err, learnerID, topicID, NewMarkCompleteError)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("topic completed",
		slog.String("learner_id", learnerID.String()),
		slog.String("topic_id", topicID.String()),
		slog.Int("points", tr.Points),
		slog.Time("next_review_at", *tr.Topic.NextReviewAt))

	s.emit(ctx, events.TypeTopicCompleted, learnerID, tr)
	return tr.Topic, nil
}

func (s *serviceImpl) RecordReview(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Topic, error) {
	tr, err := s.apply(ctx, learnerID, topicID, s.engine.Review)
	if err != nil {
		return nil, s.mapError(ctx, err, learnerID, topicID, NewRecordReviewError)
	}

	log := logger.FromContextOrDefault(ctx, s.logger)
	if tr.Early {
		log.Warn("topic reviewed before its scheduled date",
			slog.String("learner_id", learnerID.String()),
			slog.String("topic_id", topicID.String()))
	}
	log.Info("topic reviewed",
		slog.String("learner_id", learnerID.String()),
		slog.String("topic_id", topicID.String()),
		slog.Int("review_count", tr.Topic.ReviewCount),
		slog.Int("points", tr.Points),
		slog.Time("next_review_at", *tr.Topic.NextReviewAt))

	s.emit(ctx, events.TypeTopicReviewed, learnerID, tr)
	return tr.Topic, nil
}

// apply runs one transition as the single writer for the learner. The topic
// update, the ledger entry and the balance change commit together.
func (s *serviceImpl) apply(
	ctx context.Context,
	learnerID, topicID uuid.UUID,
	transition transitionFn,
) (*lifecycle.Transition, error) {
	var result *lifecycle.Transition

	err := s.uow.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		learner, err := repos.Learners.GetByID(ctx, learnerID)
		if err != nil {
			return err
		}
		topic, err := service.OwnedTopic(ctx, repos, learnerID, topicID)
		if err != nil {
			return err
		}

		if s.opts.VerifyBalance {
			sum, err := repos.Ledger.SumByLearner(ctx, learnerID)
			if err != nil {
				return fmt.Errorf("failed to sum ledger: %w", err)
			}
			if sum != learner.CurrentPoints {
				return fmt.Errorf("%w: balance %d, ledger %d", ErrBalanceDrift, learner.CurrentPoints, sum)
			}
		}

		now := s.clock.Now().In(learner.Location(s.opts.DefaultLocation))
		tr, err := transition(topic, now)
		if err != nil {
			return err
		}

		if err := repos.Topics.Update(ctx, tr.Topic); err != nil {
			return fmt.Errorf("failed to update topic: %w", err)
		}
		if err := repos.Ledger.Append(ctx, tr.Entry); err != nil {
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}
		if err := repos.Learners.AddPoints(ctx, learnerID, tr.Points); err != nil {
			return fmt.Errorf("failed to add points: %w", err)
		}

		result = tr
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *serviceImpl) mapError(
	ctx context.Context,
	err error,
	learnerID, topicID uuid.UUID,
	wrap func(string, error) *ServiceError,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	switch {
	case errors.Is(err, domain.ErrAlreadyCompleted),
		errors.Is(err, domain.ErrNotYetCompleted),
		errors.Is(err, domain.ErrInvalidDifficulty):
		log.Debug("transition rejected",
			slog.String("learner_id", learnerID.String()),
			slog.String("topic_id", topicID.String()),
			slog.String("reason", err.Error()))
		return err
	case errors.Is(err, store.ErrLearnerNotFound), errors.Is(err, store.ErrTopicNotFound):
		return store.ErrTopicNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}

	log.Error("transition failed",
		slog.String("learner_id", learnerID.String()),
		slog.String("topic_id", topicID.String()),
		slog.String("error", err.Error()))
	return wrap("failed to apply transition", err)
}

// emit publishes the committed transition. Handler failures are logged and
// never undo the transition.
func (s *serviceImpl) emit(ctx context.Context, eventType string, learnerID uuid.UUID, tr *lifecycle.Transition) {
	payload := events.RewardPayload{
		TopicID:      tr.Topic.ID,
		Points:       tr.Points,
		ReviewCount:  tr.Topic.ReviewCount,
		NextReviewAt: tr.Topic.NextReviewAt,
		Early:        tr.Early,
	}
	event, err := events.NewEvent(eventType, learnerID, payload, tr.Entry.OccurredAt)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to publish progress event",
			slog.String("event_type", eventType),
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
	}
}
