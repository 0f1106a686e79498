package mocks

import (
	"context"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/service/notifications"
	"github.com/google/uuid"
)

// MockNotificationService implements notifications.Service for testing.
type MockNotificationService struct {
	ListFn      func(ctx context.Context, learnerID uuid.UUID) ([]*domain.Notification, error)
	MarkReadFn  func(ctx context.Context, learnerID, notificationID uuid.UUID) error
	RemindDueFn func(ctx context.Context, learnerID uuid.UUID) (*domain.Notification, error)

	Notifications []*domain.Notification
	Err           error
}

var _ notifications.Service = (*MockNotificationService)(nil)

// List implements notifications.Service.
func (m *MockNotificationService) List(ctx context.Context, learnerID uuid.UUID) ([]*domain.Notification, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, learnerID)
	}
	return m.Notifications, m.Err
}

// MarkRead implements notifications.Service.
func (m *MockNotificationService) MarkRead(ctx context.Context, learnerID, notificationID uuid.UUID) error {
	if m.MarkReadFn != nil {
		return m.MarkReadFn(ctx, learnerID, notificationID)
	}
	return m.Err
}

// RemindDue implements notifications.Service.
func (m *MockNotificationService) RemindDue(ctx context.Context, learnerID uuid.UUID) (*domain.Notification, error) {
	if m.RemindDueFn != nil {
		return m.RemindDueFn(ctx, learnerID)
	}
	return nil, m.Err
}
