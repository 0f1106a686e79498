package service

import (
	"errors"
	"testing"

	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestServiceError(t *testing.T) {
	t.Parallel()

	cause := errors.New("database connection failed")
	tests := []struct {
		name     string
		err      *ServiceError
		expected string
	}{
		{
			name:     "with underlying error",
			err:      NewServiceError("create_subject", "failed to create subject", cause),
			expected: "create_subject operation failed: failed to create subject: database connection failed",
		},
		{
			name:     "without underlying error",
			err:      NewServiceError("delete_topic", "failed to delete topic", nil),
			expected: "delete_topic operation failed: failed to delete topic",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestServiceErrorUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := NewServiceError("update_topic", "failed", cause)
	assert.ErrorIs(t, err, cause)

	nested := NewServiceError("outer", "wrapped", NewServiceError("inner", "failed", store.ErrTopicNotFound))
	assert.ErrorIs(t, nested, store.ErrTopicNotFound)

	var target *ServiceError
	assert.True(t, errors.As(nested.Err, &target))
	assert.Equal(t, "inner", target.Operation)

	assert.Nil(t, NewServiceError("op", "msg", nil).Unwrap())
}
