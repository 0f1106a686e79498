package reward

import (
	"testing"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var learnerID = uuid.MustParse("0b7e0b66-4c4b-4f4e-8d8e-6f1e1d2c3b4a")

// asOf is Wednesday 2024-05-15 18:00 UTC.
var asOf = time.Date(2024, 5, 15, 18, 0, 0, 0, time.UTC)

func entry(action domain.RewardAction, points int, at time.Time) *domain.RewardLedgerEntry {
	tid := uuid.New()
	return &domain.RewardLedgerEntry{
		ID:         uuid.New(),
		LearnerID:  learnerID,
		TopicID:    &tid,
		Action:     action,
		Points:     points,
		OccurredAt: at,
	}
}

func completed(points int, at time.Time) *domain.RewardLedgerEntry {
	return entry(domain.ActionTopicCompleted, points, at)
}

func reviewed(at time.Time) *domain.RewardLedgerEntry {
	return entry(domain.ActionTopicReviewed, ReviewPoints, at)
}

func achievement(t *testing.T, s *Summary, key string) Achievement {
	t.Helper()
	for _, a := range s.Achievements {
		if a.Key == key {
			return a
		}
	}
	t.Fatalf("achievement %s not found", key)
	return Achievement{}
}

func TestAggregateFiveCompletionsOnOneDay(t *testing.T) {
	t.Parallel()

	var ledger []*domain.RewardLedgerEntry
	for i := 0; i < 5; i++ {
		ledger = append(ledger, completed(CompletionPointsMedium, asOf.Add(-time.Duration(i)*time.Hour)))
	}

	s := Aggregate(Input{Ledger: ledger, CurrentPoints: 100, AsOf: asOf, Location: time.UTC})

	assert.Equal(t, 5, s.DailyTopicsToday)
	assert.Equal(t, 100, s.DailyPointsToday)
	assert.Equal(t, 1, s.ConsistentLearnerDays)
	assert.Equal(t, 1, s.PointCollectorDays)

	cl := achievement(t, s, AchievementConsistentLearner)
	assert.Equal(t, 1.0, cl.Progress)
	assert.True(t, cl.Achieved)
	assert.Equal(t, 1.0, achievement(t, s, AchievementFirstSteps).Progress)
	assert.Equal(t, 1.0, achievement(t, s, AchievementPointCollector).Progress)
}

func TestAggregatePointCollectorPartialProgress(t *testing.T) {
	t.Parallel()

	// Three easy completions and one hard one total 60 points.
	ledger := []*domain.RewardLedgerEntry{
		completed(CompletionPointsEasy, asOf.Add(-3*time.Hour)),
		completed(CompletionPointsEasy, asOf.Add(-2*time.Hour)),
		completed(CompletionPointsEasy, asOf.Add(-1*time.Hour)),
		entry(domain.ActionTopicCompleted, 30, asOf.Add(-30*time.Minute)),
	}

	s := Aggregate(Input{Ledger: ledger, AsOf: asOf})

	assert.Equal(t, 60, s.DailyPointsToday)
	pc := achievement(t, s, AchievementPointCollector)
	assert.InDelta(t, 0.6, pc.Progress, 1e-9)
	assert.False(t, pc.Achieved)
	assert.Zero(t, s.PointCollectorDays)
	assert.InDelta(t, 0.8, achievement(t, s, AchievementConsistentLearner).Progress, 1e-9)
}

func TestAggregateDayBucketing(t *testing.T) {
	t.Parallel()

	morning := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 5, 10, 22, 0, 0, 0, time.UTC)
	nextDay := time.Date(2024, 5, 11, 1, 0, 0, 0, time.UTC)

	s := Aggregate(Input{
		Ledger: []*domain.RewardLedgerEntry{
			completed(60, morning),
			completed(40, evening),
			completed(90, nextDay),
		},
		AsOf: asOf,
	})

	require.Len(t, s.Days, 2)
	assert.Equal(t, DayStat{Date: "2024-05-10", Points: 100, Completions: 2}, s.Days[0])
	assert.Equal(t, DayStat{Date: "2024-05-11", Points: 90, Completions: 1}, s.Days[1])
	assert.Equal(t, 1, s.PointCollectorDays)
	assert.Zero(t, s.DailyPointsToday)
}

func TestAggregateBucketsInLearnerTimezone(t *testing.T) {
	t.Parallel()
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 20:00 UTC on the 14th is 01:30 on the 15th in Kolkata.
	lateUTC := time.Date(2024, 5, 14, 20, 0, 0, 0, time.UTC)
	ledger := []*domain.RewardLedgerEntry{completed(20, lateUTC)}

	inUTC := Aggregate(Input{Ledger: ledger, AsOf: asOf, Location: time.UTC})
	assert.Zero(t, inUTC.DailyTopicsToday)

	inKolkata := Aggregate(Input{Ledger: ledger, AsOf: asOf, Location: kolkata})
	// asOf is 23:30 on the 15th in Kolkata.
	assert.Equal(t, "2024-05-15", inKolkata.Today)
	assert.Equal(t, 1, inKolkata.DailyTopicsToday)
}

func TestAggregateUndatedEntriesCountOnlyTowardsLifetime(t *testing.T) {
	t.Parallel()

	s := Aggregate(Input{
		Ledger: []*domain.RewardLedgerEntry{
			completed(30, time.Time{}),
			completed(20, asOf.Add(-time.Hour)),
			reviewed(time.Time{}),
		},
		AsOf: asOf,
	})

	assert.Equal(t, 55, s.TotalPointsEarned)
	assert.Equal(t, 2, s.TopicsCompleted)
	assert.Equal(t, 1, s.TopicsReviewed)
	assert.Equal(t, 3, s.TotalRewards)
	assert.Equal(t, 2, s.UndatedEntries)
	assert.Equal(t, 20, s.DailyPointsToday, "undated entries must not be attributed to today")
	assert.Equal(t, 1, s.DailyTopicsToday)
	require.Len(t, s.Days, 1)
}

func TestAggregateWeeklyCountersAndStreak(t *testing.T) {
	t.Parallel()

	d := func(month, day, hour int) time.Time {
		return time.Date(2024, time.Month(month), day, hour, 0, 0, 0, time.UTC)
	}

	s := Aggregate(Input{
		Ledger: []*domain.RewardLedgerEntry{
			completed(10, d(5, 10, 9)), // previous week, breaks before the streak
			completed(20, d(5, 12, 9)), // Sunday, previous ISO week
			completed(30, d(5, 13, 9)), // Monday
			reviewed(d(5, 14, 9)),
			completed(10, d(5, 15, 9)),
			completed(10, d(5, 16, 9)), // after asOf, same week
		},
		AsOf: asOf,
	})

	assert.Equal(t, 30+5+10+10, s.WeeklyPoints)
	assert.Equal(t, 3, s.WeeklyTopics)
	assert.Equal(t, 4, s.CurrentStreak)
	assert.Zero(t, s.DailyReviewsToday)
}

func TestAggregateStreakSurvivesQuietToday(t *testing.T) {
	t.Parallel()

	yesterday := asOf.AddDate(0, 0, -1)
	s := Aggregate(Input{
		Ledger: []*domain.RewardLedgerEntry{
			completed(10, yesterday.AddDate(0, 0, -1)),
			completed(10, yesterday),
		},
		AsOf: asOf,
	})
	assert.Equal(t, 2, s.CurrentStreak)

	s = Aggregate(Input{
		Ledger: []*domain.RewardLedgerEntry{completed(10, asOf.AddDate(0, 0, -3))},
		AsOf:   asOf,
	})
	assert.Zero(t, s.CurrentStreak)
}

func TestAggregateRecentRewards(t *testing.T) {
	t.Parallel()

	var ledger []*domain.RewardLedgerEntry
	for i := 0; i < 7; i++ {
		ledger = append(ledger, completed(10+i, asOf.Add(time.Duration(i-7)*time.Hour)))
	}
	undated := completed(99, time.Time{})
	ledger = append(ledger, undated)

	s := Aggregate(Input{Ledger: ledger, AsOf: asOf, RecentLimit: 3})
	require.Len(t, s.RecentRewards, 3)
	assert.Equal(t, 16, s.RecentRewards[0].Points)
	assert.Equal(t, 15, s.RecentRewards[1].Points)
	assert.Equal(t, 14, s.RecentRewards[2].Points)

	s = Aggregate(Input{Ledger: ledger, AsOf: asOf, RecentLimit: 20})
	require.Len(t, s.RecentRewards, 8)
	assert.Same(t, undated, s.RecentRewards[7])

	s = Aggregate(Input{Ledger: ledger, AsOf: asOf})
	assert.Len(t, s.RecentRewards, DefaultRecentLimit)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	ledger := []*domain.RewardLedgerEntry{
		completed(10, asOf.Add(-2*time.Hour)),
		completed(20, asOf.Add(-time.Hour)),
	}
	first, second := ledger[0], ledger[1]

	Aggregate(Input{Ledger: ledger, AsOf: asOf})

	assert.Same(t, first, ledger[0])
	assert.Same(t, second, ledger[1])
}

func completedTopic(title string, difficulty domain.Difficulty, completedAt, next time.Time, lastReviewed *time.Time) *domain.Topic {
	c, n := completedAt, next
	reviews := 0
	points, _ := Award(domain.ActionTopicCompleted, difficulty)
	if lastReviewed != nil {
		reviews = 1
		points += ReviewPoints
	}
	return &domain.Topic{
		ID:             uuid.New(),
		SubjectID:      uuid.New(),
		LearnerID:      learnerID,
		Title:          title,
		Difficulty:     difficulty,
		State:          domain.TopicCompleted,
		CompletedAt:    &c,
		NextReviewAt:   &n,
		LastReviewedAt: lastReviewed,
		PointsAwarded:  points,
		ReviewCount:    reviews,
	}
}

func TestDueReviews(t *testing.T) {
	t.Parallel()

	todayMidnight := time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)
	reviewedToday := asOf.Add(-2 * time.Hour)
	reviewedYesterday := asOf.AddDate(0, 0, -1)

	overdue := completedTopic("B overdue", domain.DifficultyEasy, asOf.AddDate(0, 0, -10), todayMidnight.AddDate(0, 0, -2), nil)
	dueToday := completedTopic("A due today", domain.DifficultyHard, asOf.AddDate(0, 0, -2), todayMidnight, nil)
	dueTodayLate := completedTopic("C due tonight", domain.DifficultyHard, asOf.AddDate(0, 0, -2), todayMidnight.Add(23*time.Hour), &reviewedYesterday)
	alreadyDone := completedTopic("D reviewed today", domain.DifficultyMedium, asOf.AddDate(0, 0, -5), todayMidnight, &reviewedToday)
	future := completedTopic("E tomorrow", domain.DifficultyMedium, asOf, todayMidnight.AddDate(0, 0, 1), nil)
	notStarted := &domain.Topic{ID: uuid.New(), Title: "F not started", State: domain.TopicNotStarted}

	got := DueReviews(
		[]*domain.Topic{future, alreadyDone, dueTodayLate, notStarted, dueToday, overdue, nil},
		asOf,
		time.UTC,
	)

	require.Len(t, got, 3)
	assert.Same(t, overdue, got[0])
	assert.Same(t, dueToday, got[1])
	assert.Same(t, dueTodayLate, got[2])
}

func TestDueReviewsUsesLocationForDateComparison(t *testing.T) {
	t.Parallel()
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	// Next review at midnight on the 16th in UTC is still the 15th in LA.
	next := time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC)
	topic := completedTopic("Vectors", domain.DifficultyHard, asOf.AddDate(0, 0, -2), next, nil)

	assert.Empty(t, DueReviews([]*domain.Topic{topic}, asOf, time.UTC))
	assert.Len(t, DueReviews([]*domain.Topic{topic}, asOf, la), 1)
}

func TestAggregateReconstructsEmptyLedger(t *testing.T) {
	t.Parallel()

	completedAt := asOf.Add(-3 * time.Hour)
	lastReview := asOf.Add(-time.Hour)
	topic := completedTopic("Matrices", domain.DifficultyHard, completedAt.AddDate(0, 0, -4), asOf.AddDate(0, 0, 3), &lastReview)
	topic.CompletedAt = &completedAt
	topic.ReviewCount = 3
	topic.PointsAwarded = 30 + 3*ReviewPoints

	s := Aggregate(Input{Topics: []*domain.Topic{topic}, CurrentPoints: 45, LearnerID: learnerID, AsOf: asOf})

	assert.True(t, s.Reconstructed)
	assert.Equal(t, 45, s.TotalPointsEarned)
	assert.Equal(t, 35, s.DailyPointsToday)
	assert.Equal(t, 1, s.DailyTopicsToday)
	assert.Equal(t, 1, s.UndatedEntries)
	assert.Equal(t, 3, s.TotalRewards)
}

func TestReconstructLedger(t *testing.T) {
	t.Parallel()

	at := asOf.Add(-time.Hour)
	lastReview := asOf

	plain := completedTopic("Plain", domain.DifficultyMedium, at, asOf.AddDate(0, 0, 3), nil)
	reviewedTopic := completedTopic("Reviewed", domain.DifficultyEasy, at, asOf.AddDate(0, 0, 3), &lastReview)
	shortPoints := completedTopic("Short", domain.DifficultyHard, at, asOf.AddDate(0, 0, 2), nil)
	shortPoints.PointsAwarded = 12
	corrupt := completedTopic("Corrupt", domain.DifficultyEasy, at, asOf.AddDate(0, 0, 2), nil)
	corrupt.Difficulty = "weird"
	notStarted := &domain.Topic{ID: uuid.New(), State: domain.TopicNotStarted}

	entries := ReconstructLedger(learnerID, []*domain.Topic{plain, reviewedTopic, shortPoints, corrupt, notStarted})

	total := 0
	undated := 0
	for _, e := range entries {
		total += e.Points
		assert.Equal(t, learnerID, e.LearnerID)
		require.NoError(t, e.Validate())
		if !e.Dated() {
			undated++
		}
	}
	assert.Equal(t, 20+15+12+10, total)
	assert.Equal(t, 1, undated)
	assert.False(t, entries[len(entries)-1].Dated(), "undated entries sort last")

	again := ReconstructLedger(learnerID, []*domain.Topic{plain, reviewedTopic, shortPoints, corrupt, notStarted})
	require.Len(t, again, len(entries))
	for i := range entries {
		assert.Equal(t, entries[i].ID, again[i].ID, "reconstructed IDs are deterministic")
	}
}
