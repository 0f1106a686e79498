package api

import (
	"log/slog"
	"net/http"

	"github.com/arch2702/smart-study-scheduler/internal/api/shared"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/service/notifications"
)

// NotificationHandler serves /api/notifications.
type NotificationHandler struct {
	notifications notifications.Service
	logger        *slog.Logger
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(svc notifications.Service, logger *slog.Logger) *NotificationHandler {
	if svc == nil {
		panic("notification service cannot be nil for NotificationHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{
		notifications: svc,
		logger:        logger.With(slog.String("component", "notification_handler")),
	}
}

// ListNotifications handles GET /api/notifications.
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	list, err := h.notifications.List(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list notifications")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, notificationsToResponse(list))
}

// MarkRead handles POST /api/notifications/{id}/read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, notificationID, ok := handleLearnerAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(r.Context(), learnerID, notificationID); err != nil {
		HandleAPIError(w, r, err, "Failed to mark notification as read")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
