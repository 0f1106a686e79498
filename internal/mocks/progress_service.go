package mocks

import (
	"context"
	"sync"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/service/progress"
	"github.com/google/uuid"
)

// MockProgressService implements progress.Service for testing.
type MockProgressService struct {
	MarkCompleteFn func(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Topic, error)
	RecordReviewFn func(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Topic, error)

	// Default response values
	Topic *domain.Topic
	Err   error

	mu       sync.Mutex
	TopicIDs []uuid.UUID
}

var _ progress.Service = (*MockProgressService)(nil)

func (m *MockProgressService) record(topicID uuid.UUID) {
	m.mu.Lock()
	m.TopicIDs = append(m.TopicIDs, topicID)
	m.mu.Unlock()
}

// Calls returns how many transitions were requested.
func (m *MockProgressService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.TopicIDs)
}

// MarkComplete implements progress.Service.
func (m *MockProgressService) MarkComplete(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Topic, error) {
	m.record(topicID)
	if m.MarkCompleteFn != nil {
		return m.MarkCompleteFn(ctx, learnerID, topicID)
	}
	return m.Topic, m.Err
}

// RecordReview implements progress.Service.
func (m *MockProgressService) RecordReview(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Topic, error) {
	m.record(topicID)
	if m.RecordReviewFn != nil {
		return m.RecordReviewFn(ctx, learnerID, topicID)
	}
	return m.Topic, m.Err
}
