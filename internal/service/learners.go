package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arch2702/smart-study-scheduler/internal/clock"
	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
)

// LearnerProvisioner creates learner records on first use. Learners are
// authenticated by an external identity service, so the first request
// carrying a new subject claim is what brings the learner into existence.
type LearnerProvisioner struct {
	learners store.LearnerStore
	clock    clock.Clock
	logger   *slog.Logger
}

// NewLearnerProvisioner creates a provisioner backed by learners.
func NewLearnerProvisioner(learners store.LearnerStore, clk clock.Clock, logger *slog.Logger) *LearnerProvisioner {
	if learners == nil {
		panic("learners cannot be nil")
	}
	if clk == nil {
		clk = clock.Real
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LearnerProvisioner{
		learners: learners,
		clock:    clk,
		logger:   logger.With(slog.String("component", "learner_provisioner")),
	}
}

// Ensure returns the learner, creating an empty one if needed.
func (p *LearnerProvisioner) Ensure(ctx context.Context, learnerID uuid.UUID) (*domain.Learner, error) {
	l, err := domain.NewLearner(learnerID, "", "", p.clock.Now())
	if err != nil {
		return nil, err
	}
	stored, err := p.learners.Ensure(ctx, l)
	if err != nil {
		logger.FromContextOrDefault(ctx, p.logger).Error("failed to provision learner",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to provision learner: %w", err)
	}
	return stored, nil
}
