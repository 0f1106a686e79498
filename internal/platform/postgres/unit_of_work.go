package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
)

// NewRepositories returns the PostgreSQL stores bound to db.
func NewRepositories(db store.DBTX, logger *slog.Logger) store.Repositories {
	return store.Repositories{
		Subjects:      NewPostgresSubjectStore(db, logger),
		Topics:        NewPostgresTopicStore(db, logger),
		Learners:      NewPostgresLearnerStore(db, logger),
		Ledger:        NewPostgresLedgerStore(db, logger),
		Notifications: NewPostgresNotificationStore(db, logger),
	}
}

// UnitOfWork implements store.UnitOfWork with one SQL transaction per unit.
type UnitOfWork struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ store.UnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork creates a unit of work runner on db.
func NewUnitOfWork(db *sql.DB, logger *slog.Logger) *UnitOfWork {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UnitOfWork{db: db, logger: logger}
}

// Within implements store.UnitOfWork. The learner row is locked with
// SELECT ... FOR UPDATE before fn runs, which serializes concurrent units
// for the same learner until commit.
func (u *UnitOfWork) Within(ctx context.Context, learnerID uuid.UUID, fn store.UnitFn) error {
	return store.RunInTransaction(ctx, u.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if err := lockLearner(ctx, tx, learnerID); err != nil {
			return err
		}
		return fn(ctx, NewRepositories(tx, u.logger))
	})
}

// Snapshot implements store.UnitOfWork with a read-only repeatable-read
// transaction, so every query in fn sees the same committed state.
func (u *UnitOfWork) Snapshot(ctx context.Context, learnerID uuid.UUID, fn store.UnitFn) error {
	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	return store.RunInTransaction(ctx, u.db, opts, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, NewRepositories(tx, u.logger))
	})
}
