package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		err       error
		notFound  bool
		duplicate bool
		internal  bool
	}{
		{"nil", nil, false, false, false},
		{"generic not found", ErrNotFound, true, false, false},
		{"topic not found", ErrTopicNotFound, true, false, false},
		{"wrapped learner not found", fmt.Errorf("load: %w", ErrLearnerNotFound), true, false, false},
		{"learner exists", ErrLearnerExists, false, true, false},
		{"invalid entity", fmt.Errorf("%w: bad title", ErrInvalidEntity), false, false, false},
		{"driver failure", errors.New("connection reset"), false, false, true},
		{"transaction failure", ErrTransactionFailed, false, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.notFound, IsNotFoundError(tc.err))
			assert.Equal(t, tc.duplicate, IsDuplicateError(tc.err))
			assert.Equal(t, tc.internal, IsInternalError(tc.err))
		})
	}
}

func TestEntityNotFoundErrorsAreDistinct(t *testing.T) {
	t.Parallel()

	assert.NotErrorIs(t, ErrTopicNotFound, ErrSubjectNotFound)
	assert.NotErrorIs(t, ErrLearnerNotFound, ErrNotificationNotFound)
	assert.ErrorIs(t, ErrSubjectNotFound, ErrNotFound)
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	t.Run("with wrapped error", func(t *testing.T) {
		t.Parallel()
		err := NewStoreError("topic", "update", "failed to update topic", ErrTopicNotFound)

		assert.Equal(t, "update operation on topic failed: failed to update topic: entity not found: topic", err.Error())
		assert.ErrorIs(t, err, ErrTopicNotFound)

		var se *StoreError
		assert.ErrorAs(t, fmt.Errorf("outer: %w", err), &se)
		assert.Equal(t, "topic", se.Entity)
	})

	t.Run("without wrapped error", func(t *testing.T) {
		t.Parallel()
		err := NewStoreError("learner", "create", "boom", nil)
		assert.Equal(t, "create operation on learner failed: boom", err.Error())
		assert.Nil(t, err.Unwrap())
	})
}
