// Package notifications creates and serves learner notifications. The only
// kind today is the daily due-review reminder.
package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/clock"
	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/domain/reward"
	"github.com/arch2702/smart-study-scheduler/internal/domain/srs"
	"github.com/arch2702/smart-study-scheduler/internal/events"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/service"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
)

// Service manages notifications.
type Service interface {
	// List returns the learner's notifications, newest first.
	List(ctx context.Context, learnerID uuid.UUID) ([]*domain.Notification, error)

	// MarkRead flags a notification as read. Notifications of other
	// learners are reported as store.ErrNotificationNotFound.
	MarkRead(ctx context.Context, learnerID, notificationID uuid.UUID) error

	// RemindDue creates a review_due notification when the learner has
	// topics due today and has not been reminded yet today. It returns nil
	// when no notification was created.
	RemindDue(ctx context.Context, learnerID uuid.UUID) (*domain.Notification, error)
}

type serviceImpl struct {
	uow             store.UnitOfWork
	emitter         events.Emitter
	clock           clock.Clock
	defaultLocation *time.Location
	logger          *slog.Logger
}

var _ Service = (*serviceImpl)(nil)

// NewService creates a notifications Service.
func NewService(
	uow store.UnitOfWork,
	emitter events.Emitter,
	clk clock.Clock,
	defaultLocation *time.Location,
	logger *slog.Logger,
) Service {
	if uow == nil {
		panic("uow cannot be nil")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if clk == nil {
		clk = clock.Real
	}
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &serviceImpl{
		uow:             uow,
		emitter:         emitter,
		clock:           clk,
		defaultLocation: defaultLocation,
		logger:          logger.With(slog.String("component", "notification_service")),
	}
}

func (s *serviceImpl) List(ctx context.Context, learnerID uuid.UUID) ([]*domain.Notification, error) {
	var list []*domain.Notification
	err := s.uow.Snapshot(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		var err error
		list, err = repos.Notifications.ListByLearner(ctx, learnerID)
		return err
	})
	if err != nil {
		return nil, service.NewServiceError("list_notifications", "failed to list notifications", err)
	}
	return list, nil
}

func (s *serviceImpl) MarkRead(ctx context.Context, learnerID, notificationID uuid.UUID) error {
	err := s.uow.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		n, err := repos.Notifications.GetByID(ctx, notificationID)
		if err != nil {
			return err
		}
		if n.LearnerID != learnerID {
			return store.ErrNotificationNotFound
		}
		return repos.Notifications.MarkRead(ctx, notificationID)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotificationNotFound), errors.Is(err, store.ErrLearnerNotFound):
		return store.ErrNotificationNotFound
	default:
		return service.NewServiceError("mark_notification_read", "failed to mark notification read", err)
	}
}

func (s *serviceImpl) RemindDue(ctx context.Context, learnerID uuid.UUID) (*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var created *domain.Notification
	err := s.uow.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		learner, err := repos.Learners.GetByID(ctx, learnerID)
		if err != nil {
			return err
		}
		loc := learner.Location(s.defaultLocation)
		now := s.clock.Now().In(loc)

		topics, err := repos.Topics.ListByLearner(ctx, learnerID)
		if err != nil {
			return fmt.Errorf("failed to list topics: %w", err)
		}
		due := reward.DueReviews(topics, now, loc)
		if len(due) == 0 {
			return nil
		}

		latest, err := repos.Notifications.LatestByKind(ctx, learnerID, domain.NotificationReviewDue)
		switch {
		case err == nil:
			if srs.SameDate(latest.CreatedAt, now, loc) {
				return nil
			}
		case errors.Is(err, store.ErrNotificationNotFound):
		default:
			return fmt.Errorf("failed to read latest reminder: %w", err)
		}

		n, err := domain.NewReviewDueNotification(learnerID, len(due), now)
		if err != nil {
			return err
		}
		if err := repos.Notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("failed to create reminder: %w", err)
		}
		created = n
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrLearnerNotFound) {
			return nil, err
		}
		return nil, service.NewServiceError("remind_due", "failed to create reminder", err)
	}

	if created != nil {
		log.Info("review reminder created",
			slog.String("learner_id", learnerID.String()),
			slog.String("notification_id", created.ID.String()))
		if event, err := events.NewEvent(events.TypeNotificationCreated, learnerID, nil, created.CreatedAt); err == nil {
			if err := s.emitter.EmitEvent(ctx, event); err != nil {
				log.Warn("failed to publish notification event", slog.String("error", err.Error()))
			}
		}
	}
	return created, nil
}
