package reward

import (
	"sort"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/domain/srs"
	"github.com/google/uuid"
)

// DateLayout formats day-bucket keys.
const DateLayout = "2006-01-02"

// DefaultRecentLimit is the number of recent rewards returned when the
// input does not specify one.
const DefaultRecentLimit = 5

// Input is a consistent snapshot of one learner's data.
type Input struct {
	Topics []*domain.Topic
	// Ledger is in insertion order. When empty, entries are reconstructed
	// from the topics.
	Ledger        []*domain.RewardLedgerEntry
	LearnerID     uuid.UUID
	CurrentPoints int
	Location      *time.Location
	AsOf          time.Time
	RecentLimit   int
}

// DayStat is the bucket for one calendar date.
type DayStat struct {
	Date        string `json:"date"`
	Points      int    `json:"points"`
	Completions int    `json:"completions"`
	Reviews     int    `json:"reviews"`
}

// Summary is the aggregated view of a learner's rewards as of one instant.
type Summary struct {
	AsOf  time.Time `json:"as_of"`
	Today string    `json:"today"`

	CurrentPoints     int `json:"current_points"`
	TotalPointsEarned int `json:"total_points_earned"`
	TopicsCompleted   int `json:"topics_completed"`
	TopicsReviewed    int `json:"topics_reviewed"`
	TotalRewards      int `json:"total_rewards"`
	UndatedEntries    int `json:"undated_entries"`

	PointCollectorDays    int `json:"point_collector_days"`
	ConsistentLearnerDays int `json:"consistent_learner_days"`

	DailyPointsToday  int `json:"daily_points_today"`
	DailyTopicsToday  int `json:"daily_topics_today"`
	DailyReviewsToday int `json:"daily_reviews_today"`
	WeeklyPoints      int `json:"weekly_points"`
	WeeklyTopics      int `json:"weekly_topics"`
	CurrentStreak     int `json:"current_streak"`

	Achievements  []Achievement               `json:"achievements"`
	DueReviews    []*domain.Topic             `json:"due_reviews"`
	RecentRewards []*domain.RewardLedgerEntry `json:"recent_rewards"`
	Days          []DayStat                   `json:"days"`
	Reconstructed bool                        `json:"reconstructed"`
}

// Aggregate computes the summary. It never mutates its input.
func Aggregate(in Input) *Summary {
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	asOf := in.AsOf.In(loc)
	today := asOf.Format(DateLayout)

	ledger := in.Ledger
	reconstructed := false
	if len(ledger) == 0 {
		ledger = ReconstructLedger(in.LearnerID, in.Topics)
		reconstructed = len(ledger) > 0
	}

	s := &Summary{
		AsOf:          in.AsOf,
		Today:         today,
		CurrentPoints: in.CurrentPoints,
		Reconstructed: reconstructed,
	}

	buckets := make(map[string]*DayStat)
	for _, e := range ledger {
		s.TotalPointsEarned += e.Points
		s.TotalRewards++
		switch e.Action {
		case domain.ActionTopicCompleted:
			s.TopicsCompleted++
		case domain.ActionTopicReviewed:
			s.TopicsReviewed++
		}

		if !e.Dated() {
			s.UndatedEntries++
			continue
		}

		key := e.OccurredAt.In(loc).Format(DateLayout)
		b, ok := buckets[key]
		if !ok {
			b = &DayStat{Date: key}
			buckets[key] = b
		}
		b.Points += e.Points
		switch e.Action {
		case domain.ActionTopicCompleted:
			b.Completions++
		case domain.ActionTopicReviewed:
			b.Reviews++
		}
	}

	s.Days = make([]DayStat, 0, len(buckets))
	for _, b := range buckets {
		if b.Points >= PointCollectorThreshold {
			s.PointCollectorDays++
		}
		if b.Completions >= ConsistentLearnerThreshold {
			s.ConsistentLearnerDays++
		}
		s.Days = append(s.Days, *b)
	}
	sort.Slice(s.Days, func(i, j int) bool { return s.Days[i].Date < s.Days[j].Date })

	if b, ok := buckets[today]; ok {
		s.DailyPointsToday = b.Points
		s.DailyTopicsToday = b.Completions
		s.DailyReviewsToday = b.Reviews
	}

	weekStart := startOfISOWeek(asOf)
	for i := 0; i < 7; i++ {
		if b, ok := buckets[weekStart.AddDate(0, 0, i).Format(DateLayout)]; ok {
			s.WeeklyPoints += b.Points
			s.WeeklyTopics += b.Completions
		}
	}

	s.CurrentStreak = streak(buckets, asOf)
	s.Achievements = todaysAchievements(s.DailyPointsToday, s.DailyTopicsToday)
	s.DueReviews = DueReviews(in.Topics, in.AsOf, loc)

	limit := in.RecentLimit
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	s.RecentRewards = recent(ledger, limit)

	return s
}

// DueReviews returns the completed topics whose next review date is on or
// before asOf's date in loc and that were not already reviewed that day.
// Time of day is ignored. The result is ordered by next review date, then
// title.
func DueReviews(topics []*domain.Topic, asOf time.Time, loc *time.Location) []*domain.Topic {
	if loc == nil {
		loc = time.UTC
	}
	due := make([]*domain.Topic, 0)
	for _, t := range topics {
		if t == nil || !t.IsCompleted() || t.NextReviewAt == nil {
			continue
		}
		if !srs.DateOnOrBefore(*t.NextReviewAt, asOf, loc) {
			continue
		}
		if t.LastReviewedAt != nil && srs.SameDate(*t.LastReviewedAt, asOf, loc) {
			continue
		}
		due = append(due, t)
	}

	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if !a.NextReviewAt.Equal(*b.NextReviewAt) {
			return a.NextReviewAt.Before(*b.NextReviewAt)
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID.String() < b.ID.String()
	})
	return due
}

func startOfISOWeek(t time.Time) time.Time {
	day := srs.StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// streak counts consecutive active days ending today. A day without activity
// today does not break a streak that ran through yesterday.
func streak(buckets map[string]*DayStat, asOf time.Time) int {
	day := srs.StartOfDay(asOf)
	if _, ok := buckets[day.Format(DateLayout)]; !ok {
		day = day.AddDate(0, 0, -1)
	}

	n := 0
	for {
		if _, ok := buckets[day.Format(DateLayout)]; !ok {
			return n
		}
		n++
		day = day.AddDate(0, 0, -1)
	}
}

// recent returns up to limit entries, newest first. Undated entries sort
// after dated ones; ties keep the later-inserted entry first.
func recent(ledger []*domain.RewardLedgerEntry, limit int) []*domain.RewardLedgerEntry {
	out := make([]*domain.RewardLedgerEntry, len(ledger))
	for i, e := range ledger {
		out[len(ledger)-1-i] = e
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Dated() != b.Dated() {
			return a.Dated()
		}
		return a.OccurredAt.After(b.OccurredAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
