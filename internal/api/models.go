package api

import (
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/domain/reward"
	"github.com/arch2702/smart-study-scheduler/internal/service/rewards"
	"github.com/google/uuid"
)

// Request payloads

// SubjectRequest is the body of POST and PUT /api/subjects.
type SubjectRequest struct {
	Title       string    `json:"title"       validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
	Difficulty  string    `json:"difficulty"  validate:"required,oneof=easy medium hard"`
	DailyHours  float64   `json:"dailyHours"  validate:"gt=0,lte=24"`
	StartDate   time.Time `json:"startDate"   validate:"required"`
	EndDate     time.Time `json:"endDate"     validate:"required,gtefield=StartDate"`
}

func (r SubjectRequest) params() domain.SubjectParams {
	return domain.SubjectParams{
		Title:       r.Title,
		Description: r.Description,
		Difficulty:  domain.Difficulty(r.Difficulty),
		DailyHours:  r.DailyHours,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
	}
}

// CreateTopicRequest is the body of POST /api/topics.
type CreateTopicRequest struct {
	SubjectID  string `json:"subjectId"  validate:"required,uuid"`
	Title      string `json:"title"      validate:"required,max=200"`
	Notes      string `json:"notes"      validate:"max=10000"`
	Difficulty string `json:"difficulty" validate:"required,oneof=easy medium hard"`
}

// UpdateTopicRequest is the body of PUT /api/topics/{id}. An empty
// difficulty keeps the current one.
type UpdateTopicRequest struct {
	Title      string `json:"title"      validate:"required,max=200"`
	Notes      string `json:"notes"      validate:"max=10000"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
}

// UpdateProfileRequest is the body of PATCH /api/me. Omitted fields are
// kept; an empty timezone resets to the server default.
type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,max=200"`
	Timezone    *string `json:"timezone"    validate:"omitempty,tzname"`
}

// Responses

// SubjectResponse is the client view of a subject.
type SubjectResponse struct {
	ID          uuid.UUID `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Difficulty  string    `json:"difficulty"`
	DailyHours  float64   `json:"dailyHours"`
	StartDate   time.Time `json:"startDate"`
	EndDate     time.Time `json:"endDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TopicResponse is the client view of a topic. Field names follow the
// planner client: completed, points, nextReview and lastReviewed.
type TopicResponse struct {
	ID           uuid.UUID  `json:"_id"`
	SubjectID    uuid.UUID  `json:"subjectId"`
	Title        string     `json:"title"`
	Notes        string     `json:"notes"`
	Difficulty   string     `json:"difficulty"`
	Completed    bool       `json:"completed"`
	CompletedAt  *time.Time `json:"completedAt"`
	Points       int        `json:"points"`
	NextReview   *time.Time `json:"nextReview"`
	LastReviewed *time.Time `json:"lastReviewed"`
	ReviewCount  int        `json:"reviewCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NotificationResponse is the client view of a notification.
type NotificationResponse struct {
	ID        uuid.UUID `json:"_id"`
	Kind      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// AchievementResponse is today's progress towards one daily goal.
type AchievementResponse struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Threshold   int     `json:"threshold"`
	Actual      int     `json:"actual"`
	Progress    float64 `json:"progress"`
	Achieved    bool    `json:"achieved"`
}

// RewardEntryResponse is one ledger entry.
type RewardEntryResponse struct {
	ID         uuid.UUID  `json:"_id"`
	TopicID    *uuid.UUID `json:"topicId"`
	Action     string     `json:"action"`
	Points     int        `json:"points"`
	OccurredAt *time.Time `json:"occurredAt"`
}

// DayStatResponse holds the counters of one calendar date.
type DayStatResponse struct {
	Date        string `json:"date"`
	Points      int    `json:"points"`
	Completions int    `json:"completions"`
	Reviews     int    `json:"reviews"`
}

// RewardsResponse is the body of GET /api/rewards.
type RewardsResponse struct {
	AsOf  time.Time `json:"asOf"`
	Today string    `json:"today"`

	CurrentPoints     int `json:"currentPoints"`
	TotalPointsEarned int `json:"totalPointsEarned"`
	TopicsCompleted   int `json:"topicsCompleted"`
	TopicsReviewed    int `json:"topicsReviewed"`
	TotalRewards      int `json:"totalRewards"`
	UndatedEntries    int `json:"undatedEntries"`

	PointCollectorDays    int `json:"pointCollectorDays"`
	ConsistentLearnerDays int `json:"consistentLearnerDays"`

	DailyPointsToday  int `json:"dailyPointsToday"`
	DailyTopicsToday  int `json:"dailyTopicsToday"`
	DailyReviewsToday int `json:"dailyReviewsToday"`
	WeeklyPoints      int `json:"weeklyPoints"`
	WeeklyTopics      int `json:"weeklyTopics"`
	CurrentStreak     int `json:"currentStreak"`

	Achievements  []AchievementResponse `json:"achievements"`
	DueReviews    []TopicResponse       `json:"dueReviews"`
	RecentRewards []RewardEntryResponse `json:"recentRewards"`
	Days          []DayStatResponse     `json:"days"`
	Reconstructed bool                  `json:"reconstructed"`
}

// ReconciliationResponse is the body of GET /api/rewards/reconcile.
type ReconciliationResponse struct {
	Balance   int  `json:"balance"`
	LedgerSum int  `json:"ledgerSum"`
	Entries   int  `json:"entries"`
	Balanced  bool `json:"balanced"`
}

// ProfileResponse is the body of GET and PATCH /api/me.
type ProfileResponse struct {
	ID            uuid.UUID `json:"_id"`
	DisplayName   string    `json:"displayName"`
	Points        int       `json:"points"`
	Timezone      string    `json:"timezone"`
	EffectiveZone string    `json:"effectiveTimezone"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DashboardStatsResponse holds the dashboard counters.
type DashboardStatsResponse struct {
	TotalSubjects   int `json:"totalSubjects"`
	TotalTopics     int `json:"totalTopics"`
	CompletedTopics int `json:"completedTopics"`
	TotalPoints     int `json:"totalPoints"`
	DueReviews      int `json:"dueReviews"`
}

// DashboardResponse is the body of GET /api/dashboard.
type DashboardResponse struct {
	AsOf           time.Time              `json:"asOf"`
	Today          string                 `json:"today"`
	Stats          DashboardStatsResponse `json:"stats"`
	TodaysSubjects []SubjectResponse      `json:"todaysSubjects"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// Conversions

func subjectToResponse(s *domain.Subject) SubjectResponse {
	return SubjectResponse{
		ID:          s.ID,
		Title:       s.Title,
		Description: s.Description,
		Difficulty:  string(s.Difficulty),
		DailyHours:  s.DailyHours,
		StartDate:   s.StartDate,
		EndDate:     s.EndDate,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func subjectsToResponse(subjects []*domain.Subject) []SubjectResponse {
	out := make([]SubjectResponse, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, subjectToResponse(s))
	}
	return out
}

func topicToResponse(t *domain.Topic) TopicResponse {
	return TopicResponse{
		ID:           t.ID,
		SubjectID:    t.SubjectID,
		Title:        t.Title,
		Notes:        t.Notes,
		Difficulty:   string(t.Difficulty),
		Completed:    t.IsCompleted(),
		CompletedAt:  t.CompletedAt,
		Points:       t.PointsAwarded,
		NextReview:   t.NextReviewAt,
		LastReviewed: t.LastReviewedAt,
		ReviewCount:  t.ReviewCount,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func topicsToResponse(topics []*domain.Topic) []TopicResponse {
	out := make([]TopicResponse, 0, len(topics))
	for _, t := range topics {
		out = append(out, topicToResponse(t))
	}
	return out
}

func notificationsToResponse(ns []*domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, NotificationResponse{
			ID:        n.ID,
			Kind:      string(n.Kind),
			Message:   n.Message,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}

func summaryToResponse(s *reward.Summary) RewardsResponse {
	resp := RewardsResponse{
		AsOf:                  s.AsOf,
		Today:                 s.Today,
		CurrentPoints:         s.CurrentPoints,
		TotalPointsEarned:     s.TotalPointsEarned,
		TopicsCompleted:       s.TopicsCompleted,
		TopicsReviewed:        s.TopicsReviewed,
		TotalRewards:          s.TotalRewards,
		UndatedEntries:        s.UndatedEntries,
		PointCollectorDays:    s.PointCollectorDays,
		ConsistentLearnerDays: s.ConsistentLearnerDays,
		DailyPointsToday:      s.DailyPointsToday,
		DailyTopicsToday:      s.DailyTopicsToday,
		DailyReviewsToday:     s.DailyReviewsToday,
		WeeklyPoints:          s.WeeklyPoints,
		WeeklyTopics:          s.WeeklyTopics,
		CurrentStreak:         s.CurrentStreak,
		Achievements:          make([]AchievementResponse, 0, len(s.Achievements)),
		DueReviews:            topicsToResponse(s.DueReviews),
		RecentRewards:         make([]RewardEntryResponse, 0, len(s.RecentRewards)),
		Days:                  make([]DayStatResponse, 0, len(s.Days)),
		Reconstructed:         s.Reconstructed,
	}
	for _, a := range s.Achievements {
		resp.Achievements = append(resp.Achievements, AchievementResponse(a))
	}
	for _, e := range s.RecentRewards {
		entry := RewardEntryResponse{
			ID:      e.ID,
			TopicID: e.TopicID,
			Action:  string(e.Action),
			Points:  e.Points,
		}
		if e.Dated() {
			at := e.OccurredAt
			entry.OccurredAt = &at
		}
		resp.RecentRewards = append(resp.RecentRewards, entry)
	}
	for _, d := range s.Days {
		resp.Days = append(resp.Days, DayStatResponse(d))
	}
	return resp
}

func profileToResponse(l *domain.Learner, fallback *time.Location) ProfileResponse {
	return ProfileResponse{
		ID:            l.ID,
		DisplayName:   l.DisplayName,
		Points:        l.CurrentPoints,
		Timezone:      l.Timezone,
		EffectiveZone: l.Location(fallback).String(),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func dashboardToResponse(d *rewards.Dashboard) DashboardResponse {
	return DashboardResponse{
		AsOf:  d.AsOf,
		Today: d.Today,
		Stats: DashboardStatsResponse{
			TotalSubjects:   d.TotalSubjects,
			TotalTopics:     d.TotalTopics,
			CompletedTopics: d.CompletedTopics,
			TotalPoints:     d.CurrentPoints,
			DueReviews:      d.DueReviews,
		},
		TodaysSubjects: subjectsToResponse(d.TodaysSubjects),
	}
}

func reconciliationToResponse(rec *rewards.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		Balance:   rec.Balance,
		LedgerSum: rec.LedgerSum,
		Entries:   rec.Entries,
		Balanced:  rec.Balance == rec.LedgerSum,
	}
}
