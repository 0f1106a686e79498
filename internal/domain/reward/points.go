// Package reward turns topic lifecycle events into points and aggregates a
// learner's reward ledger into day buckets, achievements and due reviews.
package reward

import (
	"fmt"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
)

// Point values.
const (
	CompletionPointsEasy   = 10
	CompletionPointsMedium = 20
	CompletionPointsHard   = 30
	ReviewPoints           = 5
)

// Award returns the points earned for action on a topic of the given
// difficulty. Completion points grow with difficulty; reviews earn a flat
// amount. The difficulty is validated for both actions so that a corrupt
// topic is rejected before any state changes.
func Award(action domain.RewardAction, difficulty domain.Difficulty) (int, error) {
	if !difficulty.Valid() {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidDifficulty, difficulty)
	}

	switch action {
	case domain.ActionTopicCompleted:
		switch difficulty {
		case domain.DifficultyEasy:
			return CompletionPointsEasy, nil
		case domain.DifficultyMedium:
			return CompletionPointsMedium, nil
		default:
			return CompletionPointsHard, nil
		}
	case domain.ActionTopicReviewed:
		return ReviewPoints, nil
	default:
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidAction, action)
	}
}
