package store

import (
	"context"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/google/uuid"
)

// SubjectStore defines the interface for subject persistence.
type SubjectStore interface {
	// Create saves a new subject.
	// Returns ErrLearnerNotFound if the owning learner does not exist.
	Create(ctx context.Context, subject *domain.Subject) error

	// GetByID retrieves a subject by ID.
	// Returns ErrSubjectNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Subject, error)

	// ListByLearner returns the learner's subjects ordered by start date, then title.
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.Subject, error)

	// Update replaces the editable fields of a subject.
	// Returns ErrSubjectNotFound if it does not exist.
	Update(ctx context.Context, subject *domain.Subject) error

	// Delete removes a subject together with all of its topics. Ledger
	// entries of those topics are kept and lose their topic reference.
	// Returns ErrSubjectNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// TopicStore defines the interface for topic persistence.
type TopicStore interface {
	// Create saves a new topic.
	// Returns ErrSubjectNotFound if the subject does not exist.
	Create(ctx context.Context, topic *domain.Topic) error

	// GetByID retrieves a topic by ID.
	// Returns ErrTopicNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error)

	// ListBySubject returns a subject's topics in creation order.
	ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*domain.Topic, error)

	// ListByLearner returns all of a learner's topics in creation order.
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.Topic, error)

	// Update stores every mutable field of the topic, including its
	// lifecycle fields. Returns ErrTopicNotFound if it does not exist.
	Update(ctx context.Context, topic *domain.Topic) error

	// Delete removes a topic. Its ledger entries are kept.
	// Returns ErrTopicNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// LearnerStore defines the interface for learner persistence.
type LearnerStore interface {
	// Create saves a new learner.
	// Returns ErrLearnerExists if the ID is taken.
	Create(ctx context.Context, learner *domain.Learner) error

	// Ensure creates the learner unless one with the same ID already exists
	// and returns the stored learner either way.
	Ensure(ctx context.Context, learner *domain.Learner) (*domain.Learner, error)

	// GetByID retrieves a learner by ID.
	// Returns ErrLearnerNotFound if it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Learner, error)

	// UpdateProfile stores the learner's display name and timezone.
	// Returns ErrLearnerNotFound if the learner does not exist.
	UpdateProfile(ctx context.Context, learner *domain.Learner) error

	// AddPoints adds delta to the learner's balance.
	// Returns ErrLearnerNotFound if the learner does not exist.
	AddPoints(ctx context.Context, id uuid.UUID, delta int) error

	// ListIDs returns the IDs of all learners.
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// LedgerStore is the append-only reward ledger.
type LedgerStore interface {
	// Append adds an entry. Entries are never updated or deleted.
	Append(ctx context.Context, entry *domain.RewardLedgerEntry) error

	// ListByLearner returns the learner's entries in insertion order.
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.RewardLedgerEntry, error)

	// SumByLearner returns the total points of the learner's entries.
	SumByLearner(ctx context.Context, learnerID uuid.UUID) (int, error)
}

// NotificationStore defines the interface for notification persistence.
type NotificationStore interface {
	Create(ctx context.Context, n *domain.Notification) error

	// ListByLearner returns the learner's notifications, newest first.
	ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.Notification, error)

	// GetByID returns ErrNotificationNotFound if the notification does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error)

	// MarkRead flags a notification as read.
	// Returns ErrNotificationNotFound if it does not exist.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// LatestByKind returns the learner's newest notification of kind.
	// Returns ErrNotificationNotFound if there is none.
	LatestByKind(ctx context.Context, learnerID uuid.UUID, kind domain.NotificationKind) (*domain.Notification, error)
}

// Repositories bundles the stores that share one connection or transaction.
type Repositories struct {
	Subjects      SubjectStore
	Topics        TopicStore
	Learners      LearnerStore
	Ledger        LedgerStore
	Notifications NotificationStore
}

// UnitFn is the body of a unit of work. The repositories it receives are
// bound to the unit and must not be used after it returns.
type UnitFn func(ctx context.Context, repos Repositories) error

// UnitOfWork runs groups of store operations atomically.
type UnitOfWork interface {
	// Within runs fn as the single writer for learnerID. Either every write
	// made through the supplied repositories is committed or none is, and no
	// reader observes a partial result. Concurrent units for the same
	// learner are serialized.
	//
	// Returns ErrLearnerNotFound if the learner does not exist.
	Within(ctx context.Context, learnerID uuid.UUID, fn UnitFn) error

	// Snapshot runs fn against a consistent read-only view of learnerID's
	// data. Writes made through the supplied repositories are discarded or
	// rejected.
	Snapshot(ctx context.Context, learnerID uuid.UUID, fn UnitFn) error
}
