package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
)

// PostgresNotificationStore implements store.NotificationStore.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// NewPostgresNotificationStore creates a notification store on db.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresNotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

const notificationColumns = `id, learner_id, kind, message, read, created_at`

func scanNotification(row interface{ Scan(...any) error }) (*domain.Notification, error) {
	var n domain.Notification
	var kind string
	if err := row.Scan(&n.ID, &n.LearnerID, &kind, &n.Message, &n.Read, &n.CreatedAt); err != nil {
		return nil, err
	}
	n.Kind = domain.NotificationKind(kind)
	return &n, nil
}

// Create implements store.NotificationStore.Create.
func (s *PostgresNotificationStore) Create(ctx context.Context, n *domain.Notification) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.LearnerID, string(n.Kind), n.Message, n.Read, n.CreatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create notification",
			slog.String("error", err.Error()),
			slog.String("learner_id", n.LearnerID.String()))
		return mapEntityError(err, store.ErrNotificationNotFound, store.ErrLearnerNotFound)
	}
	return nil
}

// ListByLearner implements store.NotificationStore.ListByLearner.
func (s *PostgresNotificationStore) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE learner_id = $1
		ORDER BY created_at DESC, id`, learnerID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]*domain.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return out, nil
}

// GetByID implements store.NotificationStore.GetByID.
func (s *PostgresNotificationStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row)
	if err != nil {
		return nil, mapEntityError(err, store.ErrNotificationNotFound, nil)
	}
	return n, nil
}

// MarkRead implements store.NotificationStore.MarkRead.
func (s *PostgresNotificationStore) MarkRead(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrNotificationNotFound)
}

// LatestByKind implements store.NotificationStore.LatestByKind.
func (s *PostgresNotificationStore) LatestByKind(
	ctx context.Context,
	learnerID uuid.UUID,
	kind domain.NotificationKind,
) (*domain.Notification, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+notificationColumns+`
		FROM notifications
		WHERE learner_id = $1 AND kind = $2
		ORDER BY created_at DESC
		LIMIT 1`, learnerID, string(kind))
	n, err := scanNotification(row)
	if err != nil {
		return nil, mapEntityError(err, store.ErrNotificationNotFound, nil)
	}
	return n, nil
}
