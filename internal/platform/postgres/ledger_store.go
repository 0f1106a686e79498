package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
)

// PostgresLedgerStore implements store.LedgerStore on the append-only
// reward_ledger table. Insertion order is the seq column.
type PostgresLedgerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.LedgerStore = (*PostgresLedgerStore)(nil)

// NewPostgresLedgerStore creates a ledger store on db.
func NewPostgresLedgerStore(db store.DBTX, logger *slog.Logger) *PostgresLedgerStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLedgerStore{
		db:     db,
		logger: logger.With(slog.String("component", "ledger_store")),
	}
}

// Append implements store.LedgerStore.Append. A zero OccurredAt is stored
// as NULL.
func (s *PostgresLedgerStore) Append(ctx context.Context, e *domain.RewardLedgerEntry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	var occurredAt *time.Time
	if e.Dated() {
		t := e.OccurredAt
		occurredAt = &t
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reward_ledger (id, learner_id, topic_id, action, points, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.LearnerID, e.TopicID, string(e.Action), e.Points, occurredAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to append ledger entry",
			slog.String("error", err.Error()),
			slog.String("learner_id", e.LearnerID.String()),
			slog.String("action", string(e.Action)))
		return MapError(err)
	}
	return nil
}

// ListByLearner implements store.LedgerStore.ListByLearner.
func (s *PostgresLedgerStore) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.RewardLedgerEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, learner_id, topic_id, action, points, occurred_at
		FROM reward_ledger
		WHERE learner_id = $1
		ORDER BY seq`, learnerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list ledger",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]*domain.RewardLedgerEntry, 0)
	for rows.Next() {
		var (
			e          domain.RewardLedgerEntry
			topicID    uuid.NullUUID
			action     string
			occurredAt sql.NullTime
		)
		if err := rows.Scan(&e.ID, &e.LearnerID, &topicID, &action, &e.Points, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		if topicID.Valid {
			id := topicID.UUID
			e.TopicID = &id
		}
		e.Action = domain.RewardAction(action)
		if occurredAt.Valid {
			e.OccurredAt = occurredAt.Time
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return entries, nil
}

// SumByLearner implements store.LedgerStore.SumByLearner.
func (s *PostgresLedgerStore) SumByLearner(ctx context.Context, learnerID uuid.UUID) (int, error) {
	var sum int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(points), 0) FROM reward_ledger WHERE learner_id = $1`, learnerID,
	).Scan(&sum)
	if err != nil {
		return 0, MapError(err)
	}
	return sum, nil
}
