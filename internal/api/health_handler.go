package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/api/shared"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/redact"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) error

// HealthCheck calls f.
func (f HealthCheckFunc) HealthCheck(ctx context.Context) error {
	return f(ctx)
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	checks  map[string]HealthChecker
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthHandler creates a HealthHandler running the named checks.
func NewHealthHandler(checks map[string]HealthChecker, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		checks:  checks,
		timeout: 2 * time.Second,
		logger:  logger.With(slog.String("component", "health_handler")),
	}
}

// Health responds 200 when every check passes and 503 otherwise. Failing
// dependency names are logged, not returned.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	for name, check := range h.checks {
		if err := check.HealthCheck(ctx); err != nil {
			log.Error("health check failed",
				slog.String("dependency", name),
				slog.String("error", redact.Error(err)))
			status = http.StatusServiceUnavailable
		}
	}

	body := HealthResponse{Status: "ok"}
	if status != http.StatusOK {
		body.Status = "unavailable"
	}
	shared.RespondWithJSON(w, r, status, body)
}
