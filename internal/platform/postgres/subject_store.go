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

// PostgresSubjectStore implements store.SubjectStore.
type PostgresSubjectStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.SubjectStore = (*PostgresSubjectStore)(nil)

// NewPostgresSubjectStore creates a subject store on db, which may be a pool
// or a transaction. If logger is nil, a default logger will be used.
func NewPostgresSubjectStore(db store.DBTX, logger *slog.Logger) *PostgresSubjectStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSubjectStore{
		db:     db,
		logger: logger.With(slog.String("component", "subject_store")),
	}
}

const subjectColumns = `id, learner_id, title, description, difficulty, daily_hours,
	start_date, end_date, created_at, updated_at`

func scanSubject(row interface{ Scan(...any) error }) (*domain.Subject, error) {
	var s domain.Subject
	var difficulty string
	err := row.Scan(
		&s.ID, &s.LearnerID, &s.Title, &s.Description, &difficulty, &s.DailyHours,
		&s.StartDate, &s.EndDate, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Difficulty = domain.Difficulty(difficulty)
	return &s, nil
}

// Create implements store.SubjectStore.Create.
func (s *PostgresSubjectStore) Create(ctx context.Context, subject *domain.Subject) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := subject.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subjects (`+subjectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		subject.ID, subject.LearnerID, subject.Title, subject.Description, string(subject.Difficulty),
		subject.DailyHours, subject.StartDate, subject.EndDate, subject.CreatedAt, subject.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create subject",
			slog.String("error", err.Error()),
			slog.String("subject_id", subject.ID.String()))
		return mapEntityError(err, store.ErrSubjectNotFound, store.ErrLearnerNotFound)
	}
	return nil
}

// GetByID implements store.SubjectStore.GetByID.
func (s *PostgresSubjectStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subject, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id = $1`, id)
	subject, err := scanSubject(row)
	if err != nil {
		return nil, mapEntityError(err, store.ErrSubjectNotFound, nil)
	}
	return subject, nil
}

// ListByLearner implements store.SubjectStore.ListByLearner.
func (s *PostgresSubjectStore) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.Subject, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+subjectColumns+`
		FROM subjects
		WHERE learner_id = $1
		ORDER BY start_date, title, id`, learnerID)
	if err != nil {
		log.Error("failed to list subjects",
			slog.String("error", err.Error()),
			slog.String("learner_id", learnerID.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	subjects := make([]*domain.Subject, 0)
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, subject)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return subjects, nil
}

// Update implements store.SubjectStore.Update.
func (s *PostgresSubjectStore) Update(ctx context.Context, subject *domain.Subject) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := subject.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE subjects
		SET title = $2, description = $3, difficulty = $4, daily_hours = $5,
		    start_date = $6, end_date = $7, updated_at = $8
		WHERE id = $1 AND learner_id = $9`,
		subject.ID, subject.Title, subject.Description, string(subject.Difficulty), subject.DailyHours,
		subject.StartDate, subject.EndDate, subject.UpdatedAt, subject.LearnerID,
	)
	if err != nil {
		log.Error("failed to update subject",
			slog.String("error", err.Error()),
			slog.String("subject_id", subject.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrSubjectNotFound)
}

// Delete implements store.SubjectStore.Delete. Topics are removed by the
// foreign key cascade.
func (s *PostgresSubjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete subject",
			slog.String("error", err.Error()),
			slog.String("subject_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrSubjectNotFound)
}
