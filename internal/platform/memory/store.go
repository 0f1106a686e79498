// Package memory is an in-process implementation of the store interfaces,
// used for local development and tests.
//
// All data is partitioned by learner. A unit of work copies the learner's
// partition, runs against the private copy and swaps it in on success, so
// readers only ever see committed partitions.
package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
)

type partition struct {
	learner       *domain.Learner
	subjects      map[uuid.UUID]*domain.Subject
	topics        map[uuid.UUID]*domain.Topic
	topicOrder    []uuid.UUID
	ledger        []*domain.RewardLedgerEntry
	notifications []*domain.Notification
}

func newPartition(l *domain.Learner) *partition {
	return &partition{
		learner:  l,
		subjects: make(map[uuid.UUID]*domain.Subject),
		topics:   make(map[uuid.UUID]*domain.Topic),
	}
}

func (p *partition) clone() *partition {
	c := newPartition(nil)
	if p.learner != nil {
		l := *p.learner
		c.learner = &l
	}
	for id, s := range p.subjects {
		v := *s
		c.subjects[id] = &v
	}
	for id, t := range p.topics {
		c.topics[id] = t.Clone()
	}
	c.topicOrder = append([]uuid.UUID(nil), p.topicOrder...)
	// Ledger entries are immutable and can be shared.
	c.ledger = append([]*domain.RewardLedgerEntry(nil), p.ledger...)
	for _, n := range p.notifications {
		v := *n
		c.notifications = append(c.notifications, &v)
	}
	return c
}

// ids returns every entity ID owned by the partition.
func (p *partition) ids() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.subjects)+len(p.topics)+len(p.notifications))
	for id := range p.subjects {
		ids = append(ids, id)
	}
	for id := range p.topics {
		ids = append(ids, id)
	}
	for _, n := range p.notifications {
		ids = append(ids, n.ID)
	}
	return ids
}

// Store holds every learner's partition.
type Store struct {
	mu         sync.RWMutex
	partitions map[uuid.UUID]*partition
	// owners maps subject, topic and notification IDs to their learner.
	owners map[uuid.UUID]uuid.UUID

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex

	logger *slog.Logger
}

var _ store.UnitOfWork = (*Store)(nil)

// New creates an empty store.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		partitions: make(map[uuid.UUID]*partition),
		owners:     make(map[uuid.UUID]uuid.UUID),
		locks:      make(map[uuid.UUID]*sync.Mutex),
		logger:     logger.With(slog.String("component", "memory_store")),
	}
}

// Repositories returns stores that operate outside any unit of work. Each
// write runs as its own unit.
func (s *Store) Repositories() store.Repositories {
	r := &rootRepos{s: s}
	return store.Repositories{
		Subjects:      (*rootSubjects)(r),
		Topics:        (*rootTopics)(r),
		Learners:      (*rootLearners)(r),
		Ledger:        (*rootLedger)(r),
		Notifications: (*rootNotifications)(r),
	}
}

func (s *Store) learnerLock(id uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	m, ok := s.locks[id]
	if !ok {
		m = &sync.Mutex{}
		s.locks[id] = m
	}
	return m
}

// Within implements store.UnitOfWork.
func (s *Store) Within(ctx context.Context, learnerID uuid.UUID, fn store.UnitFn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := s.learnerLock(learnerID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	base, ok := s.partitions[learnerID]
	var private *partition
	if ok {
		private = base.clone()
	}
	s.mu.RUnlock()
	if !ok {
		return store.ErrLearnerNotFound
	}

	v := &view{p: private, learnerID: learnerID}
	if err := fn(ctx, v.repositories()); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("discarded unit of work",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.commit(learnerID, base, private)
	return nil
}

// Snapshot implements store.UnitOfWork. Writes made by fn are discarded.
func (s *Store) Snapshot(ctx context.Context, learnerID uuid.UUID, fn store.UnitFn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	p, ok := s.partitions[learnerID]
	var c *partition
	if ok {
		c = p.clone()
	} else {
		c = newPartition(nil)
	}
	s.mu.RUnlock()

	v := &view{p: c, learnerID: learnerID}
	return fn(ctx, v.repositories())
}

func (s *Store) commit(learnerID uuid.UUID, old, next *partition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old != nil {
		for _, id := range old.ids() {
			delete(s.owners, id)
		}
	}
	for _, id := range next.ids() {
		s.owners[id] = learnerID
	}
	s.partitions[learnerID] = next
}

// createLearner inserts a partition for l. It reports false when the
// learner already exists.
func (s *Store) createLearner(l *domain.Learner) (*domain.Learner, bool) {
	lock := s.learnerLock(l.ID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.partitions[l.ID]; ok {
		existing := *p.learner
		return &existing, false
	}
	stored := *l
	s.partitions[l.ID] = newPartition(&stored)
	created := stored
	return &created, true
}

// readOwned runs fn with the committed partition of the learner owning id.
func (s *Store) readOwned(id uuid.UUID, fn func(p *partition) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	learnerID, ok := s.owners[id]
	if !ok {
		return store.ErrNotFound
	}
	return fn(s.partitions[learnerID])
}

func (s *Store) readLearner(learnerID uuid.UUID, fn func(p *partition)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.partitions[learnerID]; ok {
		fn(p)
	}
}

func (s *Store) owner(id uuid.UUID) (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	learnerID, ok := s.owners[id]
	return learnerID, ok
}

func (s *Store) learnerIDs() []uuid.UUID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(s.partitions))
	for id := range s.partitions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
