package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/arch2702/smart-study-scheduler/internal/api/shared"
	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/service"
	"github.com/arch2702/smart-study-scheduler/internal/service/auth"
	"github.com/arch2702/smart-study-scheduler/internal/service/progress"
	"github.com/arch2702/smart-study-scheduler/internal/service/rewards"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
		msg  string
	}{
		{"topic not found", store.ErrTopicNotFound, http.StatusNotFound, "Topic not found"},
		{"wrapped subject not found", fmt.Errorf("lookup: %w", store.ErrSubjectNotFound), http.StatusNotFound, "Subject not found"},
		{"notification not found", store.ErrNotificationNotFound, http.StatusNotFound, "Notification not found"},
		{"already completed", domain.ErrAlreadyCompleted, http.StatusConflict, "Topic is already completed"},
		{"not yet completed", domain.ErrNotYetCompleted, http.StatusConflict, "Topic must be completed before it can be reviewed"},
		{"invalid difficulty", fmt.Errorf("%w: %q", domain.ErrInvalidDifficulty, "trivial"), http.StatusBadRequest, "Difficulty must be one of easy, medium, hard"},
		{"validation", fmt.Errorf("%w: title too long", domain.ErrValidation), http.StatusBadRequest, "Invalid request data"},
		{"field sentinel", domain.ErrSubjectDateRange, http.StatusBadRequest, "Subject end date is before start date"},
		{"invalid id", domain.ErrInvalidID, http.StatusBadRequest, "Invalid ID format"},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized, "Token expired"},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized, "Authentication required"},
		{
			"progress service failure",
			progress.NewMarkCompleteError("failed to persist", errors.New("pq: SELECT * FROM topics")),
			http.StatusInternalServerError,
			"An unexpected error occurred",
		},
		{
			"study service failure",
			service.NewServiceError("create_subject", "failed", errors.New("disk full")),
			http.StatusInternalServerError,
			"An unexpected error occurred",
		},
		{"ledger mismatch", rewards.ErrLedgerMismatch, http.StatusInternalServerError, "Reward balance is inconsistent"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "An unexpected error occurred"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
			assert.Equal(t, tc.msg, GetSafeErrorMessage(tc.err))
		})
	}
}

func TestGetSafeErrorMessageNil(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "An unexpected error occurred", GetSafeErrorMessage(nil))
}

func TestSanitizeValidationError(t *testing.T) {
	t.Parallel()

	err := shared.Validate.Struct(CreateTopicRequest{SubjectID: "x", Title: "", Difficulty: "easy"})
	assert.Equal(t, "Invalid subjectId: invalid ID format", SanitizeValidationError(err))
	assert.Equal(t, http.StatusBadRequest, MapErrorToStatusCode(err))

	assert.Equal(t, "Validation error", SanitizeValidationError(errors.New("plain")))
}

func TestHandleAPIErrorFallbackMessage(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/api/topics/x/complete", nil).
		WithContext(shared.SetTraceID(context.Background()))

	w := httptest.NewRecorder()
	HandleAPIError(w, r, errors.New("connection reset"), "Failed to complete topic")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to complete topic")
	assert.NotContains(t, w.Body.String(), "connection reset")

	w = httptest.NewRecorder()
	HandleAPIError(w, r, store.ErrTopicNotFound, "Failed to complete topic")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Topic not found")
}

func TestHealth(t *testing.T) {
	t.Parallel()

	healthy := HealthCheckFunc(func(context.Context) error { return nil })
	broken := HealthCheckFunc(func(context.Context) error { return errors.New("redis://:pw@cache:6379 refused") })

	w := httptest.NewRecorder()
	NewHealthHandler(map[string]HealthChecker{"database": healthy}, discardLogger()).
		Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = httptest.NewRecorder()
	NewHealthHandler(map[string]HealthChecker{"database": healthy, "cache": broken}, discardLogger()).
		Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable"}`, w.Body.String())
}
