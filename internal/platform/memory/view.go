package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
)

// view exposes one learner's partition through the store interfaces. It is
// used by a single goroutine and needs no locking. Entities belonging to
// other learners are invisible.
type view struct {
	p         *partition
	learnerID uuid.UUID
}

type (
	viewSubjects      view
	viewTopics        view
	viewLearners      view
	viewLedger        view
	viewNotifications view
)

var (
	_ store.SubjectStore      = (*viewSubjects)(nil)
	_ store.TopicStore        = (*viewTopics)(nil)
	_ store.LearnerStore      = (*viewLearners)(nil)
	_ store.LedgerStore       = (*viewLedger)(nil)
	_ store.NotificationStore = (*viewNotifications)(nil)
)

func (v *view) repositories() store.Repositories {
	return store.Repositories{
		Subjects:      (*viewSubjects)(v),
		Topics:        (*viewTopics)(v),
		Learners:      (*viewLearners)(v),
		Ledger:        (*viewLedger)(v),
		Notifications: (*viewNotifications)(v),
	}
}

func (v *view) checkOwner(entity string, learnerID uuid.UUID) error {
	if learnerID != v.learnerID {
		return fmt.Errorf("%w: %s belongs to another learner", store.ErrInvalidEntity, entity)
	}
	if v.p.learner == nil {
		return store.ErrLearnerNotFound
	}
	return nil
}

// Subjects

func (v *viewSubjects) Create(_ context.Context, s *domain.Subject) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if err := (*view)(v).checkOwner("subject", s.LearnerID); err != nil {
		return err
	}
	if _, ok := v.p.subjects[s.ID]; ok {
		return fmt.Errorf("%w: subject", store.ErrDuplicate)
	}
	c := *s
	v.p.subjects[s.ID] = &c
	return nil
}

func (v *viewSubjects) GetByID(_ context.Context, id uuid.UUID) (*domain.Subject, error) {
	s, ok := v.p.subjects[id]
	if !ok {
		return nil, store.ErrSubjectNotFound
	}
	c := *s
	return &c, nil
}

func (v *viewSubjects) ListByLearner(_ context.Context, learnerID uuid.UUID) ([]*domain.Subject, error) {
	out := make([]*domain.Subject, 0)
	if learnerID != v.learnerID {
		return out, nil
	}
	for _, s := range v.p.subjects {
		c := *s
		out = append(out, &c)
	}
	sortSubjects(out)
	return out, nil
}

func (v *viewSubjects) Update(_ context.Context, s *domain.Subject) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	existing, ok := v.p.subjects[s.ID]
	if !ok || s.LearnerID != v.learnerID {
		return store.ErrSubjectNotFound
	}
	c := *s
	c.CreatedAt = existing.CreatedAt
	v.p.subjects[s.ID] = &c
	return nil
}

func (v *viewSubjects) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := v.p.subjects[id]; !ok {
		return store.ErrSubjectNotFound
	}
	delete(v.p.subjects, id)
	for topicID, t := range v.p.topics {
		if t.SubjectID == id {
			(*viewTopics)(v).remove(topicID)
		}
	}
	return nil
}

func sortSubjects(s []*domain.Subject) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].StartDate.Equal(s[j].StartDate) {
			return s[i].StartDate.Before(s[j].StartDate)
		}
		if s[i].Title != s[j].Title {
			return s[i].Title < s[j].Title
		}
		return s[i].ID.String() < s[j].ID.String()
	})
}

// Topics

func (v *viewTopics) Create(_ context.Context, t *domain.Topic) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if err := (*view)(v).checkOwner("topic", t.LearnerID); err != nil {
		return err
	}
	if _, ok := v.p.subjects[t.SubjectID]; !ok {
		return store.ErrSubjectNotFound
	}
	if _, ok := v.p.topics[t.ID]; ok {
		return fmt.Errorf("%w: topic", store.ErrDuplicate)
	}
	v.p.topics[t.ID] = t.Clone()
	v.p.topicOrder = append(v.p.topicOrder, t.ID)
	return nil
}

func (v *viewTopics) GetByID(_ context.Context, id uuid.UUID) (*domain.Topic, error) {
	t, ok := v.p.topics[id]
	if !ok {
		return nil, store.ErrTopicNotFound
	}
	return t.Clone(), nil
}

func (v *viewTopics) ListBySubject(_ context.Context, subjectID uuid.UUID) ([]*domain.Topic, error) {
	out := make([]*domain.Topic, 0)
	for _, id := range v.p.topicOrder {
		if t := v.p.topics[id]; t.SubjectID == subjectID {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (v *viewTopics) ListByLearner(_ context.Context, learnerID uuid.UUID) ([]*domain.Topic, error) {
	out := make([]*domain.Topic, 0)
	if learnerID != v.learnerID {
		return out, nil
	}
	for _, id := range v.p.topicOrder {
		out = append(out, v.p.topics[id].Clone())
	}
	return out, nil
}

func (v *viewTopics) Update(_ context.Context, t *domain.Topic) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	existing, ok := v.p.topics[t.ID]
	if !ok || t.LearnerID != v.learnerID {
		return store.ErrTopicNotFound
	}
	c := t.Clone()
	c.SubjectID = existing.SubjectID
	c.CreatedAt = existing.CreatedAt
	v.p.topics[t.ID] = c
	return nil
}

func (v *viewTopics) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := v.p.topics[id]; !ok {
		return store.ErrTopicNotFound
	}
	v.remove(id)
	return nil
}

// remove deletes a topic and detaches its ledger entries. Entries are
// immutable, so detached copies replace them.
func (v *viewTopics) remove(id uuid.UUID) {
	delete(v.p.topics, id)
	for i, tid := range v.p.topicOrder {
		if tid == id {
			v.p.topicOrder = append(v.p.topicOrder[:i:i], v.p.topicOrder[i+1:]...)
			break
		}
	}
	for i, e := range v.p.ledger {
		if e.TopicID != nil && *e.TopicID == id {
			detached := *e
			detached.TopicID = nil
			v.p.ledger[i] = &detached
		}
	}
}

// Learners

func (v *viewLearners) Create(_ context.Context, l *domain.Learner) error {
	if l.ID != v.learnerID {
		return fmt.Errorf("%w: learner outside unit of work", store.ErrInvalidEntity)
	}
	if v.p.learner != nil {
		return store.ErrLearnerExists
	}
	if err := l.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	c := *l
	v.p.learner = &c
	return nil
}

func (v *viewLearners) Ensure(ctx context.Context, l *domain.Learner) (*domain.Learner, error) {
	if v.p.learner == nil {
		if err := v.Create(ctx, l); err != nil {
			return nil, err
		}
	}
	return v.GetByID(ctx, l.ID)
}

func (v *viewLearners) GetByID(_ context.Context, id uuid.UUID) (*domain.Learner, error) {
	if id != v.learnerID || v.p.learner == nil {
		return nil, store.ErrLearnerNotFound
	}
	c := *v.p.learner
	return &c, nil
}

func (v *viewLearners) UpdateProfile(_ context.Context, l *domain.Learner) error {
	if l.ID != v.learnerID || v.p.learner == nil {
		return store.ErrLearnerNotFound
	}
	if err := l.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	v.p.learner.DisplayName = l.DisplayName
	v.p.learner.Timezone = l.Timezone
	v.p.learner.UpdatedAt = l.UpdatedAt
	return nil
}

func (v *viewLearners) AddPoints(_ context.Context, id uuid.UUID, delta int) error {
	if id != v.learnerID || v.p.learner == nil {
		return store.ErrLearnerNotFound
	}
	if v.p.learner.CurrentPoints+delta < 0 {
		return fmt.Errorf("%w: balance cannot become negative", store.ErrUpdateFailed)
	}
	v.p.learner.CurrentPoints += delta
	return nil
}

func (v *viewLearners) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	if v.p.learner == nil {
		return []uuid.UUID{}, nil
	}
	return []uuid.UUID{v.learnerID}, nil
}

// Ledger

func (v *viewLedger) Append(_ context.Context, e *domain.RewardLedgerEntry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if err := (*view)(v).checkOwner("ledger entry", e.LearnerID); err != nil {
		return err
	}
	for _, existing := range v.p.ledger {
		if existing.ID == e.ID {
			return fmt.Errorf("%w: ledger entry", store.ErrDuplicate)
		}
	}
	c := *e
	if e.TopicID != nil {
		tid := *e.TopicID
		c.TopicID = &tid
	}
	v.p.ledger = append(v.p.ledger, &c)
	return nil
}

func (v *viewLedger) ListByLearner(_ context.Context, learnerID uuid.UUID) ([]*domain.RewardLedgerEntry, error) {
	if learnerID != v.learnerID {
		return []*domain.RewardLedgerEntry{}, nil
	}
	return append([]*domain.RewardLedgerEntry{}, v.p.ledger...), nil
}

func (v *viewLedger) SumByLearner(_ context.Context, learnerID uuid.UUID) (int, error) {
	if learnerID != v.learnerID {
		return 0, nil
	}
	sum := 0
	for _, e := range v.p.ledger {
		sum += e.Points
	}
	return sum, nil
}

// Notifications

func (v *viewNotifications) Create(_ context.Context, n *domain.Notification) error {
	if err := (*view)(v).checkOwner("notification", n.LearnerID); err != nil {
		return err
	}
	if _, err := v.find(n.ID); err == nil {
		return fmt.Errorf("%w: notification", store.ErrDuplicate)
	}
	c := *n
	v.p.notifications = append(v.p.notifications, &c)
	return nil
}

func (v *viewNotifications) ListByLearner(_ context.Context, learnerID uuid.UUID) ([]*domain.Notification, error) {
	out := make([]*domain.Notification, 0, len(v.p.notifications))
	if learnerID != v.learnerID {
		return out, nil
	}
	for i := len(v.p.notifications) - 1; i >= 0; i-- {
		c := *v.p.notifications[i]
		out = append(out, &c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (v *viewNotifications) GetByID(_ context.Context, id uuid.UUID) (*domain.Notification, error) {
	n, err := v.find(id)
	if err != nil {
		return nil, err
	}
	c := *n
	return &c, nil
}

func (v *viewNotifications) MarkRead(_ context.Context, id uuid.UUID) error {
	n, err := v.find(id)
	if err != nil {
		return err
	}
	n.Read = true
	return nil
}

func (v *viewNotifications) LatestByKind(
	ctx context.Context,
	learnerID uuid.UUID,
	kind domain.NotificationKind,
) (*domain.Notification, error) {
	all, _ := v.ListByLearner(ctx, learnerID)
	for _, n := range all {
		if n.Kind == kind {
			return n, nil
		}
	}
	return nil, store.ErrNotificationNotFound
}

func (v *viewNotifications) find(id uuid.UUID) (*domain.Notification, error) {
	for _, n := range v.p.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, store.ErrNotificationNotFound
}
