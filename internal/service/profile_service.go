package service

import (
	"context"
	"log/slog"

	"github.com/arch2702/smart-study-scheduler/internal/clock"
	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/events"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
)

// ProfileUpdate carries the editable profile fields. Nil fields keep their
// current value; an empty Timezone resets to the server default.
type ProfileUpdate struct {
	DisplayName *string
	Timezone    *string
}

// ProfileService reads and edits the authenticated learner's profile. The
// profile's timezone decides which calendar day rewards and reviews are
// reported in.
type ProfileService interface {
	GetProfile(ctx context.Context, learnerID uuid.UUID) (*domain.Learner, error)
	UpdateProfile(ctx context.Context, learnerID uuid.UUID, update ProfileUpdate) (*domain.Learner, error)
}

type profileService struct {
	uow         store.UnitOfWork
	provisioner *LearnerProvisioner
	emitter     events.Emitter
	clock       clock.Clock
	logger      *slog.Logger
}

var _ ProfileService = (*profileService)(nil)

// NewProfileService creates a ProfileService. Profile changes are announced
// as events.TypeProfileUpdated.
func NewProfileService(
	uow store.UnitOfWork,
	provisioner *LearnerProvisioner,
	emitter events.Emitter,
	clk clock.Clock,
	logger *slog.Logger,
) ProfileService {
	if uow == nil {
		panic("uow cannot be nil")
	}
	if provisioner == nil {
		panic("provisioner cannot be nil")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if clk == nil {
		clk = clock.Real
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &profileService{
		uow:         uow,
		provisioner: provisioner,
		emitter:     emitter,
		clock:       clk,
		logger:      logger.With(slog.String("component", "profile_service")),
	}
}

func (s *profileService) fail(ctx context.Context, op, msg string, learnerID uuid.UUID, err error) error {
	if passThrough(err) {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Error(msg,
		slog.String("operation", op),
		slog.String("learner_id", learnerID.String()),
		slog.String("error", err.Error()))
	return NewServiceError(op, msg, err)
}

func (s *profileService) GetProfile(ctx context.Context, learnerID uuid.UUID) (*domain.Learner, error) {
	learner, err := s.provisioner.Ensure(ctx, learnerID)
	if err != nil {
		return nil, s.fail(ctx, "get_profile", "failed to load profile", learnerID, err)
	}
	return learner, nil
}

func (s *profileService) UpdateProfile(
	ctx context.Context,
	learnerID uuid.UUID,
	update ProfileUpdate,
) (*domain.Learner, error) {
	const op = "update_profile"

	if _, err := s.provisioner.Ensure(ctx, learnerID); err != nil {
		return nil, s.fail(ctx, op, "failed to provision learner", learnerID, err)
	}

	var updated *domain.Learner
	err := s.uow.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		learner, err := repos.Learners.GetByID(ctx, learnerID)
		if err != nil {
			return err
		}
		displayName, timezone := learner.DisplayName, learner.Timezone
		if update.DisplayName != nil {
			displayName = *update.DisplayName
		}
		if update.Timezone != nil {
			timezone = *update.Timezone
		}
		if err := learner.SetProfile(displayName, timezone, s.clock.Now()); err != nil {
			return err
		}
		if err := repos.Learners.UpdateProfile(ctx, learner); err != nil {
			return err
		}
		updated = learner
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, op, "failed to update profile", learnerID, err)
	}

	event, err := events.NewEvent(events.TypeProfileUpdated, learnerID, nil, s.clock.Now())
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to publish profile update",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("profile updated",
		slog.String("learner_id", learnerID.String()),
		slog.String("timezone", updated.Timezone))
	return updated, nil
}
