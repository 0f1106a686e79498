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

// PostgresTopicStore implements store.TopicStore.
type PostgresTopicStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.TopicStore = (*PostgresTopicStore)(nil)

// NewPostgresTopicStore creates a topic store on db.
func NewPostgresTopicStore(db store.DBTX, logger *slog.Logger) *PostgresTopicStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTopicStore{
		db:     db,
		logger: logger.With(slog.String("component", "topic_store")),
	}
}

const topicColumns = `id, subject_id, learner_id, title, notes, difficulty, state,
	completed_at, last_reviewed_at, next_review_at, points_awarded, review_count,
	created_at, updated_at`

func scanTopic(row interface{ Scan(...any) error }) (*domain.Topic, error) {
	var (
		t                                   domain.Topic
		difficulty, state                   string
		completedAt, lastReviewed, nextDate sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.SubjectID, &t.LearnerID, &t.Title, &t.Notes, &difficulty, &state,
		&completedAt, &lastReviewed, &nextDate, &t.PointsAwarded, &t.ReviewCount,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Difficulty = domain.Difficulty(difficulty)
	t.State = domain.TopicState(state)
	t.CompletedAt = timePtr(completedAt)
	t.LastReviewedAt = timePtr(lastReviewed)
	t.NextReviewAt = timePtr(nextDate)
	return &t, nil
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time
	return &v
}

// Create implements store.TopicStore.Create.
func (s *PostgresTopicStore) Create(ctx context.Context, topic *domain.Topic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := topic.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	// The subject must belong to the same learner as the topic.
	var owner uuid.UUID
	err := s.db.QueryRowContext(ctx, `SELECT learner_id FROM subjects WHERE id = $1`, topic.SubjectID).Scan(&owner)
	if err != nil {
		return mapEntityError(err, store.ErrSubjectNotFound, nil)
	}
	if owner != topic.LearnerID {
		return store.ErrSubjectNotFound
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO topics (`+topicColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		topic.ID, topic.SubjectID, topic.LearnerID, topic.Title, topic.Notes,
		string(topic.Difficulty), string(topic.State),
		topic.CompletedAt, topic.LastReviewedAt, topic.NextReviewAt,
		topic.PointsAwarded, topic.ReviewCount, topic.CreatedAt, topic.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create topic",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()))
		return mapEntityError(err, store.ErrTopicNotFound, store.ErrSubjectNotFound)
	}
	return nil
}

// GetByID implements store.TopicStore.GetByID.
func (s *PostgresTopicStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+topicColumns+` FROM topics WHERE id = $1`, id)
	topic, err := scanTopic(row)
	if err != nil {
		return nil, mapEntityError(err, store.ErrTopicNotFound, nil)
	}
	return topic, nil
}

// ListBySubject implements store.TopicStore.ListBySubject.
func (s *PostgresTopicStore) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*domain.Topic, error) {
	return s.list(ctx, `SELECT `+topicColumns+` FROM topics WHERE subject_id = $1 ORDER BY seq`, subjectID)
}

// ListByLearner implements store.TopicStore.ListByLearner.
func (s *PostgresTopicStore) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.Topic, error) {
	return s.list(ctx, `SELECT `+topicColumns+` FROM topics WHERE learner_id = $1 ORDER BY seq`, learnerID)
}

func (s *PostgresTopicStore) list(ctx context.Context, query string, id uuid.UUID) ([]*domain.Topic, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list topics",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	topics := make([]*domain.Topic, 0)
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return topics, nil
}

// Update implements store.TopicStore.Update.
func (s *PostgresTopicStore) Update(ctx context.Context, topic *domain.Topic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := topic.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE topics
		SET title = $2, notes = $3, difficulty = $4, state = $5,
		    completed_at = $6, last_reviewed_at = $7, next_review_at = $8,
		    points_awarded = $9, review_count = $10, updated_at = $11
		WHERE id = $1 AND learner_id = $12`,
		topic.ID, topic.Title, topic.Notes, string(topic.Difficulty), string(topic.State),
		topic.CompletedAt, topic.LastReviewedAt, topic.NextReviewAt,
		topic.PointsAwarded, topic.ReviewCount, topic.UpdatedAt, topic.LearnerID,
	)
	if err != nil {
		log.Error("failed to update topic",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTopicNotFound)
}

// Delete implements store.TopicStore.Delete.
func (s *PostgresTopicStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM topics WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete topic",
			slog.String("error", err.Error()),
			slog.String("topic_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTopicNotFound)
}
