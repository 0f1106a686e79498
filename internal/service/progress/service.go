// Package progress applies topic lifecycle transitions for a learner and
// persists each one atomically with the ledger entry and balance change
// that pay for it.
package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/google/uuid"
)

// Service records study progress.
type Service interface {
	// MarkComplete moves a not-started topic to completed, awards the
	// completion points and schedules the first review.
	//
	// Returns:
	//   - domain.ErrAlreadyCompleted when the topic is already completed
	//   - store.ErrTopicNotFound when the topic does not exist or belongs to
	//     another learner
	//   - *ServiceError for storage failures
	MarkComplete(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Topic, error)

	// RecordReview registers a review of a completed topic, awards review
	// points and pushes the next review out. Reviews before the scheduled
	// date are accepted.
	//
	// Returns domain.ErrNotYetCompleted for a topic that has not been
	// completed, otherwise the same errors as MarkComplete.
	RecordReview(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Topic, error)
}

// ErrBalanceDrift is returned when a transition finds that the learner's
// balance does not match the ledger. The transition is not applied.
var ErrBalanceDrift = errors.New("learner balance does not match reward ledger")

// ServiceError wraps unexpected failures of the progress service.
type ServiceError struct {
	// Operation is "mark_complete" or "record_review".
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewMarkCompleteError returns a new ServiceError for the mark_complete operation.
func NewMarkCompleteError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "mark_complete", Message: message, Err: err}
}

// NewRecordReviewError returns a new ServiceError for the record_review operation.
func NewRecordReviewError(message string, err error) *ServiceError {
	return &ServiceError{Operation: "record_review", Message: message, Err: err}
}

// Options tunes the service.
type Options struct {
	// DefaultLocation is used for learners without a valid timezone.
	DefaultLocation *time.Location
	// VerifyBalance checks balance == sum(ledger) before every transition.
	VerifyBalance bool
}
