package reward

import (
	"sort"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/google/uuid"
)

// reconstructNamespace seeds deterministic IDs for reconstructed entries so
// that repeated reads produce identical summaries.
var reconstructNamespace = uuid.MustParse("5d0c3f4e-7f0b-4a8e-9a52-0b8f6f2f6a11")

// ReconstructLedger derives ledger entries from topic fields for learners
// whose history predates the ledger. For every completed topic it emits:
//
//   - a completion entry at CompletedAt worth the completion award, or the
//     topic's PointsAwarded if that is smaller;
//   - a review entry at LastReviewedAt worth ReviewPoints, when the topic
//     has been reviewed and enough points remain;
//   - one undated entry holding any remaining points, since the timestamps
//     of earlier reviews are unknown.
//
// Topics with an invalid difficulty contribute a single undated entry for
// their PointsAwarded. The result is ordered by timestamp, undated last,
// which stands in for insertion order.
func ReconstructLedger(learnerID uuid.UUID, topics []*domain.Topic) []*domain.RewardLedgerEntry {
	var entries []*domain.RewardLedgerEntry

	for _, t := range topics {
		if t == nil || !t.IsCompleted() || t.PointsAwarded <= 0 {
			continue
		}
		topicID := t.ID
		remaining := t.PointsAwarded

		add := func(action domain.RewardAction, points int, at *time.Time, suffix string) {
			e := &domain.RewardLedgerEntry{
				ID:        uuid.NewSHA1(reconstructNamespace, []byte(topicID.String()+"/"+suffix)),
				LearnerID: learnerID,
				TopicID:   &topicID,
				Action:    action,
				Points:    points,
			}
			if at != nil {
				e.OccurredAt = *at
			}
			entries = append(entries, e)
			remaining -= points
		}

		completion, err := Award(domain.ActionTopicCompleted, t.Difficulty)
		if err != nil {
			add(domain.ActionTopicCompleted, remaining, nil, "undated")
			continue
		}

		add(domain.ActionTopicCompleted, min(completion, remaining), t.CompletedAt, "completed")

		if t.ReviewCount > 0 && t.LastReviewedAt != nil && remaining >= ReviewPoints {
			add(domain.ActionTopicReviewed, ReviewPoints, t.LastReviewedAt, "last-review")
		}

		if remaining > 0 {
			add(domain.ActionTopicReviewed, remaining, nil, "earlier-reviews")
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Dated() != b.Dated() {
			return a.Dated()
		}
		return a.OccurredAt.Before(b.OccurredAt)
	})
	return entries
}
