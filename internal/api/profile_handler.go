package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/arch2702/smart-study-scheduler/internal/api/shared"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/service"
)

// ProfileHandler serves /api/me.
type ProfileHandler struct {
	profiles service.ProfileService
	// defaultZone is reported as the effective timezone of learners
	// without one.
	defaultZone *time.Location
	logger      *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles service.ProfileService, defaultZone *time.Location, logger *slog.Logger) *ProfileHandler {
	if profiles == nil {
		panic("profile service cannot be nil for ProfileHandler")
	}
	if defaultZone == nil {
		defaultZone = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandler{
		profiles:    profiles,
		defaultZone: defaultZone,
		logger:      logger.With(slog.String("component", "profile_handler")),
	}
}

// GetProfile handles GET /api/me.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	learner, err := h.profiles.GetProfile(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profileToResponse(learner, h.defaultZone))
}

// UpdateProfile handles PATCH /api/me.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	learner, err := h.profiles.UpdateProfile(r.Context(), learnerID, service.ProfileUpdate{
		DisplayName: req.DisplayName,
		Timezone:    req.Timezone,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profileToResponse(learner, h.defaultZone))
}
