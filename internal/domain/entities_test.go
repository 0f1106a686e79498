package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubjectParams() SubjectParams {
	return SubjectParams{
		Title:      "Calculus",
		Difficulty: DifficultyHard,
		DailyHours: 2,
		StartDate:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewSubject(t *testing.T) {
	s, err := NewSubject(uuid.New(), validSubjectParams(), testNow)
	require.NoError(t, err)
	assert.Equal(t, "Calculus", s.Title)
	assert.Equal(t, testNow, s.CreatedAt)
}

func TestSubjectValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *SubjectParams)
		wantErr error
	}{
		{"empty title", func(p *SubjectParams) { p.Title = " " }, ErrSubjectTitleEmpty},
		{"bad difficulty", func(p *SubjectParams) { p.Difficulty = "meh" }, ErrInvalidDifficulty},
		{"zero hours", func(p *SubjectParams) { p.DailyHours = 0 }, ErrSubjectDailyHours},
		{"too many hours", func(p *SubjectParams) { p.DailyHours = 25 }, ErrSubjectDailyHours},
		{"reversed dates", func(p *SubjectParams) { p.EndDate = p.StartDate.AddDate(0, 0, -1) }, ErrSubjectDateRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validSubjectParams()
			tc.mutate(&p)
			_, err := NewSubject(uuid.New(), p, testNow)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSubjectUpdateKeepsOriginalOnError(t *testing.T) {
	s, err := NewSubject(uuid.New(), validSubjectParams(), testNow)
	require.NoError(t, err)

	p := validSubjectParams()
	p.DailyHours = -1
	assert.ErrorIs(t, s.Update(p, testNow.Add(time.Hour)), ErrSubjectDailyHours)
	assert.Equal(t, 2.0, s.DailyHours)
	assert.Equal(t, testNow, s.UpdatedAt)

	p.DailyHours = 3
	require.NoError(t, s.Update(p, testNow.Add(time.Hour)))
	assert.Equal(t, 3.0, s.DailyHours)
}

func TestLearnerLocation(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	tests := []struct {
		name     string
		learner  *Learner
		fallback *time.Location
		want     *time.Location
	}{
		{"nil learner", nil, kolkata, kolkata},
		{"empty timezone", &Learner{}, kolkata, kolkata},
		{"unknown timezone", &Learner{Timezone: "Nowhere/Special"}, nil, time.UTC},
		{"valid timezone", &Learner{Timezone: "Asia/Kolkata"}, time.UTC, kolkata},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.learner.Location(tc.fallback)
			assert.Equal(t, tc.want.String(), got.String())
		})
	}
}

func TestLearnerSetProfile(t *testing.T) {
	l, err := NewLearner(uuid.New(), "", "", testNow)
	require.NoError(t, err)

	later := testNow.Add(time.Hour)
	require.NoError(t, l.SetProfile("  Ada  ", "America/New_York", later))
	assert.Equal(t, "Ada", l.DisplayName)
	assert.Equal(t, "America/New_York", l.Timezone)
	assert.Equal(t, later, l.UpdatedAt)

	err = l.SetProfile("Ada", "Mars/Olympus", later.Add(time.Hour))
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "America/New_York", l.Timezone, "a rejected update leaves the learner unchanged")
	assert.Equal(t, later, l.UpdatedAt)

	require.NoError(t, l.SetProfile("Ada", "", later))
	assert.Empty(t, l.Timezone)

	_, err = NewLearner(uuid.New(), "", "Nowhere/Special", testNow)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubjectCoversDay(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	s, err := NewSubject(uuid.New(), SubjectParams{
		Title:      "Statistics",
		Difficulty: DifficultyMedium,
		DailyHours: 1,
		StartDate:  time.Date(2024, 3, 10, 0, 0, 0, 0, newYork),
		EndDate:    time.Date(2024, 3, 12, 0, 0, 0, 0, newYork),
	}, testNow)
	require.NoError(t, err)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"day before", time.Date(2024, 3, 9, 23, 59, 0, 0, newYork), false},
		{"first day", time.Date(2024, 3, 10, 0, 0, 0, 0, newYork), true},
		{"last day evening", time.Date(2024, 3, 12, 22, 0, 0, 0, newYork), true},
		{"day after", time.Date(2024, 3, 13, 0, 0, 0, 0, newYork), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, s.CoversDay(tc.at, newYork))
		})
	}

	// 2024-03-13 02:00 UTC is still the evening of 03-12 in New York.
	assert.True(t, s.CoversDay(time.Date(2024, 3, 13, 2, 0, 0, 0, time.UTC), newYork))
}

func TestNewLedgerEntry(t *testing.T) {
	learnerID, topicID := uuid.New(), uuid.New()

	e, err := NewLedgerEntry(learnerID, topicID, ActionTopicCompleted, 20, testNow)
	require.NoError(t, err)
	require.NotNil(t, e.TopicID)
	assert.Equal(t, topicID, *e.TopicID)
	assert.True(t, e.Dated())

	_, err = NewLedgerEntry(learnerID, topicID, "topic_skipped", 5, testNow)
	assert.ErrorIs(t, err, ErrInvalidAction)

	_, err = NewLedgerEntry(learnerID, topicID, ActionTopicReviewed, -5, testNow)
	assert.ErrorIs(t, err, ErrValidation)

	undated := RewardLedgerEntry{}
	assert.False(t, undated.Dated())
}

func TestNewReviewDueNotification(t *testing.T) {
	n, err := NewReviewDueNotification(uuid.New(), 1, testNow)
	require.NoError(t, err)
	assert.Equal(t, "You have 1 topic due for review today.", n.Message)
	assert.False(t, n.Read)

	n, err = NewReviewDueNotification(uuid.New(), 3, testNow)
	require.NoError(t, err)
	assert.Equal(t, "You have 3 topics due for review today.", n.Message)

	_, err = NewReviewDueNotification(uuid.New(), 0, testNow)
	assert.ErrorIs(t, err, ErrValidation)
}
