package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
)

// rootRepos serves reads from committed partitions and routes each write
// through its own unit of work.
type rootRepos struct {
	s *Store
}

type (
	rootSubjects      rootRepos
	rootTopics        rootRepos
	rootLearners      rootRepos
	rootLedger        rootRepos
	rootNotifications rootRepos
)

var (
	_ store.SubjectStore      = (*rootSubjects)(nil)
	_ store.TopicStore        = (*rootTopics)(nil)
	_ store.LearnerStore      = (*rootLearners)(nil)
	_ store.LedgerStore       = (*rootLedger)(nil)
	_ store.NotificationStore = (*rootNotifications)(nil)
)

// ownedBy resolves the learner owning id, translating a miss into notFound.
func (r *rootRepos) ownedBy(id uuid.UUID, notFound error) (uuid.UUID, error) {
	learnerID, ok := r.s.owner(id)
	if !ok {
		return uuid.Nil, notFound
	}
	return learnerID, nil
}

func mapOwned(err, notFound error) error {
	if errors.Is(err, store.ErrNotFound) && !errors.Is(err, notFound) {
		return notFound
	}
	return err
}

// Subjects

func (r *rootSubjects) Create(ctx context.Context, s *domain.Subject) error {
	return r.s.Within(ctx, s.LearnerID, func(ctx context.Context, repos store.Repositories) error {
		return repos.Subjects.Create(ctx, s)
	})
}

func (r *rootSubjects) GetByID(ctx context.Context, id uuid.UUID) (*domain.Subject, error) {
	var out *domain.Subject
	err := r.s.readOwned(id, func(p *partition) error {
		var err error
		out, err = (&view{p: p, learnerID: p.learner.ID}).repositories().Subjects.GetByID(ctx, id)
		return err
	})
	return out, mapOwned(err, store.ErrSubjectNotFound)
}

func (r *rootSubjects) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.Subject, error) {
	out := make([]*domain.Subject, 0)
	r.s.readLearner(learnerID, func(p *partition) {
		out, _ = (&view{p: p, learnerID: learnerID}).repositories().Subjects.ListByLearner(ctx, learnerID)
	})
	return out, nil
}

func (r *rootSubjects) Update(ctx context.Context, s *domain.Subject) error {
	learnerID, err := (*rootRepos)(r).ownedBy(s.ID, store.ErrSubjectNotFound)
	if err != nil {
		return err
	}
	return r.s.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		return repos.Subjects.Update(ctx, s)
	})
}

func (r *rootSubjects) Delete(ctx context.Context, id uuid.UUID) error {
	learnerID, err := (*rootRepos)(r).ownedBy(id, store.ErrSubjectNotFound)
	if err != nil {
		return err
	}
	return r.s.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		return repos.Subjects.Delete(ctx, id)
	})
}

// Topics

func (r *rootTopics) Create(ctx context.Context, t *domain.Topic) error {
	return r.s.Within(ctx, t.LearnerID, func(ctx context.Context, repos store.Repositories) error {
		return repos.Topics.Create(ctx, t)
	})
}

func (r *rootTopics) GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	var out *domain.Topic
	err := r.s.readOwned(id, func(p *partition) error {
		var err error
		out, err = (&view{p: p, learnerID: p.learner.ID}).repositories().Topics.GetByID(ctx, id)
		return err
	})
	return out, mapOwned(err, store.ErrTopicNotFound)
}

func (r *rootTopics) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*domain.Topic, error) {
	out := make([]*domain.Topic, 0)
	err := r.s.readOwned(subjectID, func(p *partition) error {
		var err error
		out, err = (&view{p: p, learnerID: p.learner.ID}).repositories().Topics.ListBySubject(ctx, subjectID)
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return make([]*domain.Topic, 0), nil
	}
	return out, err
}

func (r *rootTopics) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.Topic, error) {
	out := make([]*domain.Topic, 0)
	r.s.readLearner(learnerID, func(p *partition) {
		out, _ = (&view{p: p, learnerID: learnerID}).repositories().Topics.ListByLearner(ctx, learnerID)
	})
	return out, nil
}

func (r *rootTopics) Update(ctx context.Context, t *domain.Topic) error {
	learnerID, err := (*rootRepos)(r).ownedBy(t.ID, store.ErrTopicNotFound)
	if err != nil {
		return err
	}
	return r.s.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		return repos.Topics.Update(ctx, t)
	})
}

func (r *rootTopics) Delete(ctx context.Context, id uuid.UUID) error {
	learnerID, err := (*rootRepos)(r).ownedBy(id, store.ErrTopicNotFound)
	if err != nil {
		return err
	}
	return r.s.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		return repos.Topics.Delete(ctx, id)
	})
}

// Learners

func (r *rootLearners) Create(_ context.Context, l *domain.Learner) error {
	if err := l.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if _, created := r.s.createLearner(l); !created {
		return store.ErrLearnerExists
	}
	return nil
}

func (r *rootLearners) Ensure(_ context.Context, l *domain.Learner) (*domain.Learner, error) {
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	stored, _ := r.s.createLearner(l)
	return stored, nil
}

func (r *rootLearners) GetByID(_ context.Context, id uuid.UUID) (*domain.Learner, error) {
	var out *domain.Learner
	r.s.readLearner(id, func(p *partition) {
		c := *p.learner
		out = &c
	})
	if out == nil {
		return nil, store.ErrLearnerNotFound
	}
	return out, nil
}

func (r *rootLearners) UpdateProfile(ctx context.Context, l *domain.Learner) error {
	return r.s.Within(ctx, l.ID, func(ctx context.Context, repos store.Repositories) error {
		return repos.Learners.UpdateProfile(ctx, l)
	})
}

func (r *rootLearners) AddPoints(ctx context.Context, id uuid.UUID, delta int) error {
	return r.s.Within(ctx, id, func(ctx context.Context, repos store.Repositories) error {
		return repos.Learners.AddPoints(ctx, id, delta)
	})
}

func (r *rootLearners) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	return r.s.learnerIDs(), nil
}

// Ledger

func (r *rootLedger) Append(ctx context.Context, e *domain.RewardLedgerEntry) error {
	return r.s.Within(ctx, e.LearnerID, func(ctx context.Context, repos store.Repositories) error {
		return repos.Ledger.Append(ctx, e)
	})
}

func (r *rootLedger) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.RewardLedgerEntry, error) {
	out := make([]*domain.RewardLedgerEntry, 0)
	r.s.readLearner(learnerID, func(p *partition) {
		out, _ = (&view{p: p, learnerID: learnerID}).repositories().Ledger.ListByLearner(ctx, learnerID)
	})
	return out, nil
}

func (r *rootLedger) SumByLearner(ctx context.Context, learnerID uuid.UUID) (int, error) {
	sum := 0
	r.s.readLearner(learnerID, func(p *partition) {
		sum, _ = (&view{p: p, learnerID: learnerID}).repositories().Ledger.SumByLearner(ctx, learnerID)
	})
	return sum, nil
}

// Notifications

func (r *rootNotifications) Create(ctx context.Context, n *domain.Notification) error {
	return r.s.Within(ctx, n.LearnerID, func(ctx context.Context, repos store.Repositories) error {
		return repos.Notifications.Create(ctx, n)
	})
}

func (r *rootNotifications) ListByLearner(ctx context.Context, learnerID uuid.UUID) ([]*domain.Notification, error) {
	out := make([]*domain.Notification, 0)
	r.s.readLearner(learnerID, func(p *partition) {
		out, _ = (&view{p: p, learnerID: learnerID}).repositories().Notifications.ListByLearner(ctx, learnerID)
	})
	return out, nil
}

func (r *rootNotifications) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var out *domain.Notification
	err := r.s.readOwned(id, func(p *partition) error {
		var err error
		out, err = (&view{p: p, learnerID: p.learner.ID}).repositories().Notifications.GetByID(ctx, id)
		return err
	})
	return out, mapOwned(err, store.ErrNotificationNotFound)
}

func (r *rootNotifications) MarkRead(ctx context.Context, id uuid.UUID) error {
	learnerID, err := (*rootRepos)(r).ownedBy(id, store.ErrNotificationNotFound)
	if err != nil {
		return err
	}
	return r.s.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		return repos.Notifications.MarkRead(ctx, id)
	})
}

func (r *rootNotifications) LatestByKind(
	ctx context.Context,
	learnerID uuid.UUID,
	kind domain.NotificationKind,
) (*domain.Notification, error) {
	var (
		out *domain.Notification
		err = store.ErrNotificationNotFound
	)
	r.s.readLearner(learnerID, func(p *partition) {
		out, err = (&view{p: p, learnerID: learnerID}).repositories().Notifications.LatestByKind(ctx, learnerID, kind)
	})
	return out, err
}
