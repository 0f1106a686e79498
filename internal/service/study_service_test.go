package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/clock"
	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/platform/memory"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

type studyFixture struct {
	mem   *memory.Store
	svc   StudyService
	clock *clock.Fixed
}

func newStudyFixture(t *testing.T) *studyFixture {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mem := memory.New(log)
	clk := clock.NewFixed(testNow)
	prov := NewLearnerProvisioner(mem.Repositories().Learners, clk, log)
	return &studyFixture{
		mem:   mem,
		svc:   NewStudyService(mem, prov, nil, clk, log),
		clock: clk,
	}
}

func subjectParams(title string) domain.SubjectParams {
	return domain.SubjectParams{
		Title:      title,
		Difficulty: domain.DifficultyMedium,
		DailyHours: 2,
		StartDate:  testNow,
		EndDate:    testNow.AddDate(0, 1, 0),
	}
}

func TestStudyServiceSubjects(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newStudyFixture(t)
	learnerID := uuid.New()

	subject, err := f.svc.CreateSubject(ctx, learnerID, subjectParams("Biology"))
	require.NoError(t, err)
	assert.Equal(t, learnerID, subject.LearnerID)

	learner, err := f.mem.Repositories().Learners.GetByID(ctx, learnerID)
	require.NoError(t, err, "creating a subject provisions the learner")
	assert.Zero(t, learner.CurrentPoints)

	list, err := f.svc.ListSubjects(ctx, learnerID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, subject.ID, list[0].ID)

	updated, err := f.svc.UpdateSubject(ctx, learnerID, subject.ID, subjectParams("Cell Biology"))
	require.NoError(t, err)
	assert.Equal(t, "Cell Biology", updated.Title)

	got, err := f.svc.GetSubject(ctx, learnerID, subject.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cell Biology", got.Title)

	require.NoError(t, f.svc.DeleteSubject(ctx, learnerID, subject.ID))
	_, err = f.svc.GetSubject(ctx, learnerID, subject.ID)
	assert.ErrorIs(t, err, store.ErrSubjectNotFound)
}

func TestStudyServiceValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newStudyFixture(t)
	learnerID := uuid.New()

	_, err := f.svc.CreateSubject(ctx, learnerID, subjectParams(""))
	assert.ErrorIs(t, err, domain.ErrSubjectTitleEmpty)

	bad := subjectParams("Chemistry")
	bad.Difficulty = "impossible"
	_, err = f.svc.CreateSubject(ctx, learnerID, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidDifficulty)

	subject, err := f.svc.CreateSubject(ctx, learnerID, subjectParams("Chemistry"))
	require.NoError(t, err)

	_, err = f.svc.CreateTopic(ctx, learnerID, TopicParams{SubjectID: subject.ID, Title: "Acids", Difficulty: "??"})
	assert.ErrorIs(t, err, domain.ErrInvalidDifficulty)

	_, err = f.svc.UpdateSubject(ctx, learnerID, subject.ID, subjectParams("  "))
	assert.ErrorIs(t, err, domain.ErrSubjectTitleEmpty)
}

func TestStudyServiceTopics(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newStudyFixture(t)
	learnerID := uuid.New()

	subject, err := f.svc.CreateSubject(ctx, learnerID, subjectParams("History"))
	require.NoError(t, err)

	first, err := f.svc.CreateTopic(ctx, learnerID, TopicParams{
		SubjectID: subject.ID, Title: "Rome", Difficulty: domain.DifficultyEasy,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TopicNotStarted, first.State)

	_, err = f.svc.CreateTopic(ctx, learnerID, TopicParams{
		SubjectID: subject.ID, Title: "Greece", Difficulty: domain.DifficultyHard,
	})
	require.NoError(t, err)

	topics, err := f.svc.ListTopics(ctx, learnerID, subject.ID)
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "Rome", topics[0].Title)
	assert.Equal(t, "Greece", topics[1].Title)

	f.clock.Advance(time.Hour)
	updated, err := f.svc.UpdateTopic(ctx, learnerID, first.ID, TopicUpdate{
		Title: "Ancient Rome", Notes: "Republic and Empire",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ancient Rome", updated.Title)
	assert.Equal(t, domain.DifficultyEasy, updated.Difficulty, "empty difficulty keeps the current one")
	assert.Equal(t, testNow.Add(time.Hour), updated.UpdatedAt)

	require.NoError(t, f.svc.DeleteTopic(ctx, learnerID, first.ID))
	_, err = f.svc.GetTopic(ctx, learnerID, first.ID)
	assert.ErrorIs(t, err, store.ErrTopicNotFound)

	topics, err = f.svc.ListTopics(ctx, learnerID, subject.ID)
	require.NoError(t, err)
	assert.Len(t, topics, 1)
}

func TestStudyServiceHidesOtherLearnersResources(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newStudyFixture(t)
	owner, intruder := uuid.New(), uuid.New()

	subject, err := f.svc.CreateSubject(ctx, owner, subjectParams("Physics"))
	require.NoError(t, err)
	topic, err := f.svc.CreateTopic(ctx, owner, TopicParams{
		SubjectID: subject.ID, Title: "Optics", Difficulty: domain.DifficultyMedium,
	})
	require.NoError(t, err)

	_, err = f.svc.CreateSubject(ctx, intruder, subjectParams("Own subject"))
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
		want error
	}{
		{"get subject", func() error { _, err := f.svc.GetSubject(ctx, intruder, subject.ID); return err }, store.ErrSubjectNotFound},
		{"update subject", func() error {
			_, err := f.svc.UpdateSubject(ctx, intruder, subject.ID, subjectParams("Hijacked"))
			return err
		}, store.ErrSubjectNotFound},
		{"delete subject", func() error { return f.svc.DeleteSubject(ctx, intruder, subject.ID) }, store.ErrSubjectNotFound},
		{"list topics", func() error { _, err := f.svc.ListTopics(ctx, intruder, subject.ID); return err }, store.ErrSubjectNotFound},
		{"create topic", func() error {
			_, err := f.svc.CreateTopic(ctx, intruder, TopicParams{SubjectID: subject.ID, Title: "x", Difficulty: domain.DifficultyEasy})
			return err
		}, store.ErrSubjectNotFound},
		{"get topic", func() error { _, err := f.svc.GetTopic(ctx, intruder, topic.ID); return err }, store.ErrTopicNotFound},
		{"update topic", func() error {
			_, err := f.svc.UpdateTopic(ctx, intruder, topic.ID, TopicUpdate{Title: "x"})
			return err
		}, store.ErrTopicNotFound},
		{"delete topic", func() error { return f.svc.DeleteTopic(ctx, intruder, topic.ID) }, store.ErrTopicNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.call(), tc.want)
		})
	}

	still, err := f.svc.GetTopic(ctx, owner, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, "Optics", still.Title)
}

func TestStudyServiceUnknownLearner(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newStudyFixture(t)
	stranger := uuid.New()

	subjects, err := f.svc.ListSubjects(ctx, stranger)
	require.NoError(t, err)
	assert.Empty(t, subjects)

	_, err = f.svc.UpdateTopic(ctx, stranger, uuid.New(), TopicUpdate{Title: "x"})
	assert.ErrorIs(t, err, store.ErrTopicNotFound)
}

func TestStudyServiceError(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection reset")
	err := NewServiceError("create_subject", "failed to create subject", cause)

	assert.Equal(t, "create_subject operation failed: failed to create subject: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	var se *ServiceError
	require.ErrorAs(t, error(err), &se)
	assert.Equal(t, "create_subject", se.Operation)

	bare := NewServiceError("list_topics", "no store", nil)
	assert.Equal(t, "list_topics operation failed: no store", bare.Error())
}
