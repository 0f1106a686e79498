package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/arch2702/smart-study-scheduler/internal/api/shared"
	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/service/auth"
	"github.com/arch2702/smart-study-scheduler/internal/service/rewards"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/go-playground/validator/v10"
)

// ErrUnauthenticated is reported when a protected handler runs without an
// authenticated learner in the request context.
var ErrUnauthenticated = errors.New("request is not authenticated")

// safeFieldErrors are domain validation errors whose text is fixed and may
// be shown to clients as is.
var safeFieldErrors = []error{
	domain.ErrSubjectTitleEmpty,
	domain.ErrSubjectDateRange,
	domain.ErrSubjectDailyHours,
	domain.ErrTopicTitleEmpty,
}

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking their types to clients. Resources owned by another learner are
// reported by the services as not found, so they map to 404 as well.
func MapErrorToStatusCode(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrMissingLearner):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrAlreadyCompleted),
		errors.Is(err, domain.ErrNotYetCompleted),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidDifficulty),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody),
		errors.As(err, &verrs),
		isFieldError(err):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

func isFieldError(err error) bool {
	for _, target := range safeFieldErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// GetSafeErrorMessage returns a client-facing message for err.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	for _, target := range safeFieldErrors {
		if errors.Is(err, target) {
			return upperFirst(target.Error())
		}
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return "Authentication required"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrMissingLearner):
		return "Invalid token"

	case errors.Is(err, store.ErrSubjectNotFound):
		return "Subject not found"
	case errors.Is(err, store.ErrTopicNotFound):
		return "Topic not found"
	case errors.Is(err, store.ErrNotificationNotFound):
		return "Notification not found"
	case errors.Is(err, store.ErrLearnerNotFound):
		return "Learner not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, domain.ErrAlreadyCompleted):
		return "Topic is already completed"
	case errors.Is(err, domain.ErrNotYetCompleted):
		return "Topic must be completed before it can be reviewed"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, domain.ErrInvalidDifficulty):
		return "Difficulty must be one of easy, medium, hard"
	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.As(err, &verrs):
		return SanitizeValidationError(err)
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case errors.Is(err, rewards.ErrLedgerMismatch):
		return "Reward balance is inconsistent"

	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a short message
// naming the first failing field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Validation error"
	}
	fe := verrs[0]
	return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gt", "gte":
		return "too small"
	case "max", "lt", "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	case "uuid", "uuid4":
		return "invalid ID format"
	case "gtefield":
		return "must not be before the start date"
	case "timezone", "tzname":
		return "unknown timezone"
	default:
		return "validation failed"
	}
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// HandleAPIError writes the error response for err. A non-empty
// fallbackMessage replaces the generic message of unmapped 500 errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallbackMessage != "" && !errors.Is(err, rewards.ErrLedgerMismatch) {
		message = fallbackMessage
	}

	var opts []shared.ResponseOption
	if status == http.StatusUnauthorized {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
