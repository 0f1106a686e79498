package reward

// Achievement keys.
const (
	AchievementFirstSteps        = "first_steps"
	AchievementPointCollector    = "point_collector"
	AchievementConsistentLearner = "consistent_learner"
)

// Daily thresholds.
const (
	FirstStepsThreshold        = 1
	PointCollectorThreshold    = 100
	ConsistentLearnerThreshold = 5
)

// Achievement is today's progress towards one daily goal.
type Achievement struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Threshold   int     `json:"threshold"`
	Actual      int     `json:"actual"`
	Progress    float64 `json:"progress"`
	Achieved    bool    `json:"achieved"`
}

func newAchievement(key, name, description string, threshold, actual int) Achievement {
	return Achievement{
		Key:         key,
		Name:        name,
		Description: description,
		Threshold:   threshold,
		Actual:      actual,
		Progress:    Progress(actual, threshold),
		Achieved:    actual >= threshold,
	}
}

// Progress returns min(actual/threshold, 1) clamped at zero.
func Progress(actual, threshold int) float64 {
	if threshold <= 0 {
		return 1
	}
	if actual <= 0 {
		return 0
	}
	p := float64(actual) / float64(threshold)
	if p > 1 {
		return 1
	}
	return p
}

func todaysAchievements(pointsToday, completionsToday int) []Achievement {
	return []Achievement{
		newAchievement(AchievementFirstSteps, "First Steps",
			"Complete your first topic today", FirstStepsThreshold, completionsToday),
		newAchievement(AchievementPointCollector, "Point Collector",
			"Earn 100 points in a single day", PointCollectorThreshold, pointsToday),
		newAchievement(AchievementConsistentLearner, "Consistent Learner",
			"Complete 5 topics in a single day", ConsistentLearnerThreshold, completionsToday),
	}
}
