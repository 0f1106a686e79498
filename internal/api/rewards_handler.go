package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/arch2702/smart-study-scheduler/internal/api/shared"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/service/rewards"
)

// RewardsHandler serves the due-review list, the dashboard and the
// achievement summary.
type RewardsHandler struct {
	rewards rewards.Service
	logger  *slog.Logger
}

// NewRewardsHandler creates a RewardsHandler.
func NewRewardsHandler(rewardsService rewards.Service, logger *slog.Logger) *RewardsHandler {
	if rewardsService == nil {
		panic("rewards service cannot be nil for RewardsHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RewardsHandler{
		rewards: rewardsService,
		logger:  logger.With(slog.String("component", "rewards_handler")),
	}
}

// ListDueReviews handles GET /api/reviews/due?asOf=.
func (h *RewardsHandler) ListDueReviews(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}
	asOf, err := parseAsOf(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	topics, err := h.rewards.ListDueReviews(r.Context(), learnerID, asOf)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due reviews")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, topicsToResponse(topics))
}

// GetRewards handles GET /api/rewards?asOf=.
func (h *RewardsHandler) GetRewards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}
	asOf, err := parseAsOf(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	summary, err := h.rewards.GetAchievementSummary(r.Context(), learnerID, asOf)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get rewards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, summaryToResponse(summary))
}

// GetDashboard handles GET /api/dashboard?asOf=.
func (h *RewardsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}
	asOf, err := parseAsOf(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	dashboard, err := h.rewards.GetDashboard(r.Context(), learnerID, asOf)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load dashboard")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, dashboardToResponse(dashboard))
}

// ReconcileRewards handles GET /api/rewards/reconcile. A mismatch between
// balance and ledger is reported in the body with balanced=false rather
// than as an error.
func (h *RewardsHandler) ReconcileRewards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	rec, err := h.rewards.ReconcileBalance(r.Context(), learnerID)
	switch {
	case errors.Is(err, rewards.ErrLedgerMismatch) && rec != nil:
		log.Warn("reward balance does not match ledger",
			slog.Int("balance", rec.Balance),
			slog.Int("ledger_sum", rec.LedgerSum))
	case err != nil:
		HandleAPIError(w, r, err, "Failed to reconcile rewards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, reconciliationToResponse(rec))
}
