package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/arch2702/smart-study-scheduler/internal/api/shared"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/redact"
	"github.com/arch2702/smart-study-scheduler/internal/service/auth"
	"github.com/google/uuid"
)

// AuthMiddleware authenticates requests with bearer tokens.
type AuthMiddleware struct {
	verifier auth.TokenVerifier
}

// NewAuthMiddleware creates an AuthMiddleware backed by verifier.
func NewAuthMiddleware(verifier auth.TokenVerifier) *AuthMiddleware {
	if verifier == nil {
		panic("verifier cannot be nil for AuthMiddleware")
	}
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate verifies the Authorization header and stores the learner ID
// in the request context. The request logger gains a learner_id attribute.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.verifier.Verify(r.Context(), strings.TrimSpace(token))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrMissingToken),
				errors.Is(err, auth.ErrMissingLearner):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid token", err,
					shared.WithElevatedLogLevel())
			default:
				logger.FromContext(r.Context()).Error("failed to verify token",
					slog.String("error", redact.Error(err)))
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		ctx := shared.WithLearnerID(r.Context(), claims.LearnerID)
		ctx = logger.WithLogger(ctx, logger.FromContext(ctx).With(
			slog.String("learner_id", claims.LearnerID.String())))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetLearnerID extracts the authenticated learner from the request.
func GetLearnerID(r *http.Request) (uuid.UUID, bool) {
	return shared.LearnerIDFromContext(r.Context())
}
