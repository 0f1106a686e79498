package mocks

import (
	"context"
	"sync"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/domain/reward"
	"github.com/arch2702/smart-study-scheduler/internal/service/rewards"
	"github.com/google/uuid"
)

// MockRewardsService implements rewards.Service for testing.
type MockRewardsService struct {
	GetAchievementSummaryFn func(ctx context.Context, learnerID uuid.UUID, asOf reward.AsOf) (*reward.Summary, error)
	ListDueReviewsFn        func(ctx context.Context, learnerID uuid.UUID, asOf reward.AsOf) ([]*domain.Topic, error)
	GetDashboardFn          func(ctx context.Context, learnerID uuid.UUID, asOf reward.AsOf) (*rewards.Dashboard, error)
	ReconcileBalanceFn      func(ctx context.Context, learnerID uuid.UUID) (*rewards.Reconciliation, error)

	// Default response values
	Summary        *reward.Summary
	DueTopics      []*domain.Topic
	Dashboard      *rewards.Dashboard
	Reconciliation *rewards.Reconciliation
	Err            error

	mu   sync.Mutex
	AsOf []reward.AsOf
}

var _ rewards.Service = (*MockRewardsService)(nil)

func (m *MockRewardsService) record(asOf reward.AsOf) {
	m.mu.Lock()
	m.AsOf = append(m.AsOf, asOf)
	m.mu.Unlock()
}

// LastAsOf returns the asOf of the most recent dated query, or the zero value.
func (m *MockRewardsService) LastAsOf() reward.AsOf {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.AsOf) == 0 {
		return reward.AsOf{}
	}
	return m.AsOf[len(m.AsOf)-1]
}

// GetAchievementSummary implements rewards.Service.
func (m *MockRewardsService) GetAchievementSummary(
	ctx context.Context,
	learnerID uuid.UUID,
	asOf reward.AsOf,
) (*reward.Summary, error) {
	m.record(asOf)
	if m.GetAchievementSummaryFn != nil {
		return m.GetAchievementSummaryFn(ctx, learnerID, asOf)
	}
	return m.Summary, m.Err
}

// ListDueReviews implements rewards.Service.
func (m *MockRewardsService) ListDueReviews(
	ctx context.Context,
	learnerID uuid.UUID,
	asOf reward.AsOf,
) ([]*domain.Topic, error) {
	m.record(asOf)
	if m.ListDueReviewsFn != nil {
		return m.ListDueReviewsFn(ctx, learnerID, asOf)
	}
	return m.DueTopics, m.Err
}

// GetDashboard implements rewards.Service.
func (m *MockRewardsService) GetDashboard(
	ctx context.Context,
	learnerID uuid.UUID,
	asOf reward.AsOf,
) (*rewards.Dashboard, error) {
	m.record(asOf)
	if m.GetDashboardFn != nil {
		return m.GetDashboardFn(ctx, learnerID, asOf)
	}
	return m.Dashboard, m.Err
}

// ReconcileBalance implements rewards.Service.
func (m *MockRewardsService) ReconcileBalance(ctx context.Context, learnerID uuid.UUID) (*rewards.Reconciliation, error) {
	if m.ReconcileBalanceFn != nil {
		return m.ReconcileBalanceFn(ctx, learnerID)
	}
	return m.Reconciliation, m.Err
}
