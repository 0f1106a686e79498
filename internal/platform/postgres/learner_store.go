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

// PostgresLearnerStore implements store.LearnerStore.
type PostgresLearnerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.LearnerStore = (*PostgresLearnerStore)(nil)

// NewPostgresLearnerStore creates a learner store on db.
func NewPostgresLearnerStore(db store.DBTX, logger *slog.Logger) *PostgresLearnerStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresLearnerStore{
		db:     db,
		logger: logger.With(slog.String("component", "learner_store")),
	}
}

const learnerColumns = `id, display_name, current_points, timezone, created_at, updated_at`

func scanLearner(row interface{ Scan(...any) error }) (*domain.Learner, error) {
	var l domain.Learner
	if err := row.Scan(&l.ID, &l.DisplayName, &l.CurrentPoints, &l.Timezone, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

// Create implements store.LearnerStore.Create.
func (s *PostgresLearnerStore) Create(ctx context.Context, learner *domain.Learner) error {
	if err := learner.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO learners (`+learnerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		learner.ID, learner.DisplayName, learner.CurrentPoints, learner.Timezone,
		learner.CreatedAt, learner.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrLearnerExists, err)
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create learner",
			slog.String("error", err.Error()),
			slog.String("learner_id", learner.ID.String()))
		return MapError(err)
	}
	return nil
}

// Ensure implements store.LearnerStore.Ensure.
func (s *PostgresLearnerStore) Ensure(ctx context.Context, learner *domain.Learner) (*domain.Learner, error) {
	if err := learner.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO learners (`+learnerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`,
		learner.ID, learner.DisplayName, learner.CurrentPoints, learner.Timezone,
		learner.CreatedAt, learner.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to ensure learner",
			slog.String("error", err.Error()),
			slog.String("learner_id", learner.ID.String()))
		return nil, MapError(err)
	}
	return s.GetByID(ctx, learner.ID)
}

// GetByID implements store.LearnerStore.GetByID.
func (s *PostgresLearnerStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Learner, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+learnerColumns+` FROM learners WHERE id = $1`, id)
	learner, err := scanLearner(row)
	if err != nil {
		return nil, mapEntityError(err, store.ErrLearnerNotFound, nil)
	}
	return learner, nil
}

// UpdateProfile implements store.LearnerStore.UpdateProfile.
func (s *PostgresLearnerStore) UpdateProfile(ctx context.Context, learner *domain.Learner) error {
	if err := learner.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE learners
		SET display_name = $2, timezone = $3, updated_at = $4
		WHERE id = $1`,
		learner.ID, learner.DisplayName, learner.Timezone, learner.UpdatedAt,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update learner profile",
			slog.String("error", err.Error()),
			slog.String("learner_id", learner.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrLearnerNotFound)
}

// AddPoints implements store.LearnerStore.AddPoints.
func (s *PostgresLearnerStore) AddPoints(ctx context.Context, id uuid.UUID, delta int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE learners
		SET current_points = current_points + $2, updated_at = NOW()
		WHERE id = $1`, id, delta)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to add points",
			slog.String("error", err.Error()),
			slog.String("learner_id", id.String()),
			slog.Int("delta", delta))
		if IsCheckConstraintViolation(err) {
			return fmt.Errorf("%w: balance cannot become negative", store.ErrUpdateFailed)
		}
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrLearnerNotFound)
}

// ListIDs implements store.LearnerStore.ListIDs.
func (s *PostgresLearnerStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM learners ORDER BY id`)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan learner id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, MapError(rows.Err())
}

// lockLearner takes the row lock that serializes units of work for one
// learner.
func lockLearner(ctx context.Context, db store.DBTX, id uuid.UUID) error {
	var locked uuid.UUID
	err := db.QueryRowContext(ctx, `SELECT id FROM learners WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	return mapEntityError(err, store.ErrLearnerNotFound, nil)
}
