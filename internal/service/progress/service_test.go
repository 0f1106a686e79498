package progress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/clock"
	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/domain/lifecycle"
	"github.com/arch2702/smart-study-scheduler/internal/domain/srs"
	"github.com/arch2702/smart-study-scheduler/internal/events"
	"github.com/arch2702/smart-study-scheduler/internal/platform/memory"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// day returns 2024-03-04 plus n days at the given hour, UTC.
func day(n, hour int) time.Time {
	return time.Date(2024, 3, 4+n, hour, 0, 0, 0, time.UTC)
}

type mockEmitter struct {
	mock.Mock
}

func (m *mockEmitter) EmitEvent(ctx context.Context, e *events.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

type fixture struct {
	mem     *memory.Store
	clock   *clock.Fixed
	emitter *mockEmitter
	svc     Service
	learner uuid.UUID
	subject uuid.UUID
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFixture(t *testing.T, timezone string, opts Options) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := memory.New(discardLogger())
	clk := clock.NewFixed(day(0, 9))
	em := &mockEmitter{}
	em.On("EmitEvent", mock.Anything, mock.Anything).Return(nil).Maybe()

	learner, err := domain.NewLearner(uuid.New(), "Ada", timezone, clk.Now())
	require.NoError(t, err)
	require.NoError(t, mem.Repositories().Learners.Create(ctx, learner))

	subject, err := domain.NewSubject(learner.ID, domain.SubjectParams{
		Title: "Maths", Difficulty: domain.DifficultyMedium, DailyHours: 1,
		StartDate: day(0, 0), EndDate: day(30, 0),
	}, clk.Now())
	require.NoError(t, err)
	require.NoError(t, mem.Repositories().Subjects.Create(ctx, subject))

	return &fixture{
		mem:     mem,
		clock:   clk,
		emitter: em,
		svc:     NewService(mem, lifecycle.NewEngine(srs.NewDefaultScheduler()), em, clk, opts, discardLogger()),
		learner: learner.ID,
		subject: subject.ID,
	}
}

func (f *fixture) addTopic(t *testing.T, title string, d domain.Difficulty) *domain.Topic {
	t.Helper()
	topic, err := domain.NewTopic(f.learner, f.subject, title, "", d, f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, f.mem.Repositories().Topics.Create(context.Background(), topic))
	return topic
}

func (f *fixture) balance(t *testing.T) int {
	t.Helper()
	l, err := f.mem.Repositories().Learners.GetByID(context.Background(), f.learner)
	require.NoError(t, err)
	return l.CurrentPoints
}

func (f *fixture) ledger(t *testing.T) []*domain.RewardLedgerEntry {
	t.Helper()
	entries, err := f.mem.Repositories().Ledger.ListByLearner(context.Background(), f.learner)
	require.NoError(t, err)
	return entries
}

func (f *fixture) assertBalanceMatchesLedger(t *testing.T) {
	t.Helper()
	sum := 0
	for _, e := range f.ledger(t) {
		sum += e.Points
	}
	assert.Equal(t, sum, f.balance(t), "balance must equal the ledger sum")
}

func TestMarkComplete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "", Options{})
	topic := f.addTopic(t, "Algebra", domain.DifficultyMedium)

	got, err := f.svc.MarkComplete(ctx, f.learner, topic.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.TopicCompleted, got.State)
	assert.Equal(t, 20, got.PointsAwarded)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, day(0, 9), *got.CompletedAt)
	require.NotNil(t, got.NextReviewAt)
	assert.Equal(t, day(3, 0), *got.NextReviewAt)
	assert.Zero(t, got.ReviewCount)

	stored, err := f.mem.Repositories().Topics.GetByID(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, got, stored)

	entries := f.ledger(t)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionTopicCompleted, entries[0].Action)
	assert.Equal(t, 20, entries[0].Points)
	assert.Equal(t, topic.ID, *entries[0].TopicID)
	assert.Equal(t, 20, f.balance(t))

	f.emitter.AssertCalled(t, "EmitEvent", mock.Anything, mock.MatchedBy(func(e *events.Event) bool {
		return e.Type == events.TypeTopicCompleted && e.LearnerID == f.learner
	}))
}

func TestMarkCompleteTwiceLeavesStateUnchanged(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "", Options{})
	topic := f.addTopic(t, "Geometry", domain.DifficultyHard)

	first, err := f.svc.MarkComplete(ctx, f.learner, topic.ID)
	require.NoError(t, err)

	f.clock.Advance(2 * time.Hour)
	_, err = f.svc.MarkComplete(ctx, f.learner, topic.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	stored, err := f.mem.Repositories().Topics.GetByID(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, first, stored)
	assert.Len(t, f.ledger(t), 1)
	assert.Equal(t, 30, f.balance(t))
}

func TestRecordReview(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	tests := []struct {
		name     string
		reviewAt time.Time
		wantNext time.Time
	}{
		{"morning review", day(3, 9), day(7, 0)},
		{"afternoon review", day(3, 13), day(8, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t, "", Options{})
			topic := f.addTopic(t, "Calculus", domain.DifficultyMedium)
			_, err := f.svc.MarkComplete(ctx, f.learner, topic.ID)
			require.NoError(t, err)

			f.clock.Set(tc.reviewAt)
			got, err := f.svc.RecordReview(ctx, f.learner, topic.ID)
			require.NoError(t, err)

			assert.Equal(t, 1, got.ReviewCount)
			assert.Equal(t, 25, got.PointsAwarded)
			require.NotNil(t, got.LastReviewedAt)
			assert.Equal(t, tc.reviewAt, *got.LastReviewedAt)
			assert.Equal(t, tc.wantNext, *got.NextReviewAt)
			assert.Equal(t, day(0, 9), *got.CompletedAt, "completion time never changes")

			entries := f.ledger(t)
			require.Len(t, entries, 2)
			assert.Equal(t, domain.ActionTopicReviewed, entries[1].Action)
			assert.Equal(t, 5, entries[1].Points)
			assert.Equal(t, 25, f.balance(t))
		})
	}
}

func TestRecordReviewRejectsNotStartedTopic(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "", Options{})
	topic := f.addTopic(t, "Statistics", domain.DifficultyEasy)

	_, err := f.svc.RecordReview(ctx, f.learner, topic.ID)
	assert.ErrorIs(t, err, domain.ErrNotYetCompleted)

	stored, err := f.mem.Repositories().Topics.GetByID(ctx, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TopicNotStarted, stored.State)
	assert.Empty(t, f.ledger(t))
	assert.Zero(t, f.balance(t))
	f.emitter.AssertNotCalled(t, "EmitEvent", mock.Anything, mock.Anything)
}

func TestEarlyReviewIsAccepted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "", Options{})
	topic := f.addTopic(t, "Logic", domain.DifficultyEasy)
	_, err := f.svc.MarkComplete(ctx, f.learner, topic.ID)
	require.NoError(t, err)

	f.clock.Set(day(1, 10))
	got, err := f.svc.RecordReview(ctx, f.learner, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ReviewCount)
	assert.True(t, got.NextReviewAt.After(day(1, 10)))

	f.emitter.AssertCalled(t, "EmitEvent", mock.Anything, mock.MatchedBy(func(e *events.Event) bool {
		if e.Type != events.TypeTopicReviewed {
			return false
		}
		var p events.RewardPayload
		return e.UnmarshalPayload(&p) == nil && p.Early
	}))
}

func TestTransitionsUseLearnerTimezone(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "Asia/Kolkata", Options{})
	topic := f.addTopic(t, "Trigonometry", domain.DifficultyMedium)

	// 20:00 UTC is already 01:30 the next morning in Kolkata.
	f.clock.Set(day(0, 20))
	got, err := f.svc.MarkComplete(ctx, f.learner, topic.ID)
	require.NoError(t, err)

	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	want := time.Date(2024, 3, 8, 0, 0, 0, 0, kolkata)
	assert.True(t, want.Equal(*got.NextReviewAt), "got %s", got.NextReviewAt)
}

func TestOwnershipAndMissingTopics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "", Options{})
	topic := f.addTopic(t, "Sets", domain.DifficultyEasy)

	stranger, err := domain.NewLearner(uuid.New(), "Eve", "", f.clock.Now())
	require.NoError(t, err)
	require.NoError(t, f.mem.Repositories().Learners.Create(ctx, stranger))

	tests := []struct {
		name    string
		learner uuid.UUID
		topic   uuid.UUID
	}{
		{"other learner's topic", stranger.ID, topic.ID},
		{"unknown topic", f.learner, uuid.New()},
		{"unknown learner", uuid.New(), topic.ID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.MarkComplete(ctx, tc.learner, tc.topic)
			assert.ErrorIs(t, err, store.ErrTopicNotFound)
			_, err = f.svc.RecordReview(ctx, tc.learner, tc.topic)
			assert.ErrorIs(t, err, store.ErrTopicNotFound)
		})
	}

	assert.Empty(t, f.ledger(t))
}

func TestEmitterFailureDoesNotUndoTransition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "", Options{})
	em := &mockEmitter{}
	em.On("EmitEvent", mock.Anything, mock.Anything).Return(errors.New("handler down"))
	svc := NewService(f.mem, lifecycle.NewEngine(nil), em, f.clock, Options{}, discardLogger())
	topic := f.addTopic(t, "Probability", domain.DifficultyEasy)

	got, err := svc.MarkComplete(ctx, f.learner, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.PointsAwarded)
	assert.Equal(t, 10, f.balance(t))
	em.AssertNumberOfCalls(t, "EmitEvent", 1)
}

func TestConcurrentTransitionsKeepBalanceConsistent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "", Options{VerifyBalance: true})

	const n = 12
	topics := make([]*domain.Topic, n)
	for i := range topics {
		topics[i] = f.addTopic(t, "Topic", domain.DifficultyEasy)
	}

	var wg sync.WaitGroup
	for _, topic := range topics {
		for range 2 {
			wg.Add(1)
			go func(id uuid.UUID) {
				defer wg.Done()
				// Only one of the two calls per topic can succeed.
				_, _ = f.svc.MarkComplete(ctx, f.learner, id)
			}(topic.ID)
		}
	}
	wg.Wait()

	assert.Len(t, f.ledger(t), n)
	assert.Equal(t, n*10, f.balance(t))

	f.clock.Set(day(5, 9))
	for _, topic := range topics {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := f.svc.RecordReview(ctx, f.learner, id)
			assert.NoError(t, err)
		}(topic.ID)
	}
	wg.Wait()

	assert.Len(t, f.ledger(t), 2*n)
	assert.Equal(t, n*15, f.balance(t))
	f.assertBalanceMatchesLedger(t)
}

func TestVerifyBalanceDetectsDrift(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t, "", Options{VerifyBalance: true})
	topic := f.addTopic(t, "Graphs", domain.DifficultyMedium)

	require.NoError(t, f.mem.Repositories().Learners.AddPoints(ctx, f.learner, 50))

	_, err := f.svc.MarkComplete(ctx, f.learner, topic.ID)
	assert.ErrorIs(t, err, ErrBalanceDrift)

	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "mark_complete", se.Operation)
	assert.Empty(t, f.ledger(t))
}

// failingUnit is a store.UnitOfWork whose units always fail.
type failingUnit struct{ err error }

func (u failingUnit) Within(context.Context, uuid.UUID, store.UnitFn) error   { return u.err }
func (u failingUnit) Snapshot(context.Context, uuid.UUID, store.UnitFn) error { return u.err }

func TestStorageFailuresAreWrapped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cause := errors.New("connection refused")
	svc := NewService(failingUnit{err: cause}, lifecycle.NewEngine(nil), nil, clock.NewFixed(day(0, 9)), Options{}, discardLogger())

	_, err := svc.RecordReview(ctx, uuid.New(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "record_review", se.Operation)
}

func TestNewServicePanicsOnMissingDependencies(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewService(nil, lifecycle.NewEngine(nil), nil, nil, Options{}, nil) })
	assert.Panics(t, func() { NewService(failingUnit{}, nil, nil, nil, Options{}, nil) })
}
