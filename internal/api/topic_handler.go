package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/arch2702/smart-study-scheduler/internal/api/shared"
	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/service"
	"github.com/arch2702/smart-study-scheduler/internal/service/progress"
	"github.com/google/uuid"
)

// TopicHandler serves /api/topics, including the complete and review
// transitions.
type TopicHandler struct {
	study    service.StudyService
	progress progress.Service
	logger   *slog.Logger
}

// NewTopicHandler creates a TopicHandler.
func NewTopicHandler(study service.StudyService, progressService progress.Service, logger *slog.Logger) *TopicHandler {
	if study == nil {
		panic("study service cannot be nil for TopicHandler")
	}
	if progressService == nil {
		panic("progress service cannot be nil for TopicHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TopicHandler{
		study:    study,
		progress: progressService,
		logger:   logger.With(slog.String("component", "topic_handler")),
	}
}

// ListTopicsBySubject handles GET /api/topics/subject/{id}.
func (h *TopicHandler) ListTopicsBySubject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, subjectID, ok := handleLearnerAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	topics, err := h.study.ListTopics(r.Context(), learnerID, subjectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list topics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, topicsToResponse(topics))
}

// GetTopic handles GET /api/topics/{id}.
func (h *TopicHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, topicID, ok := handleLearnerAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	topic, err := h.study.GetTopic(r.Context(), learnerID, topicID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get topic")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, topicToResponse(topic))
}

// CreateTopic handles POST /api/topics.
func (h *TopicHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	var req CreateTopicRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	subjectID, err := uuid.Parse(req.SubjectID)
	if err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: subjectId", domain.ErrInvalidID), "")
		return
	}

	topic, err := h.study.CreateTopic(r.Context(), learnerID, service.TopicParams{
		SubjectID:  subjectID,
		Title:      req.Title,
		Notes:      req.Notes,
		Difficulty: domain.Difficulty(req.Difficulty),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create topic")
		return
	}

	log.Debug("topic created", slog.String("topic_id", topic.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, topicToResponse(topic))
}

// UpdateTopic handles PUT /api/topics/{id}.
func (h *TopicHandler) UpdateTopic(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, topicID, ok := handleLearnerAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req UpdateTopicRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	topic, err := h.study.UpdateTopic(r.Context(), learnerID, topicID, service.TopicUpdate{
		Title:      req.Title,
		Notes:      req.Notes,
		Difficulty: domain.Difficulty(req.Difficulty),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update topic")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, topicToResponse(topic))
}

// DeleteTopic handles DELETE /api/topics/{id}.
func (h *TopicHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, topicID, ok := handleLearnerAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.study.DeleteTopic(r.Context(), learnerID, topicID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete topic")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CompleteTopic handles POST /api/topics/{id}/complete.
func (h *TopicHandler) CompleteTopic(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, topicID, ok := handleLearnerAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	topic, err := h.progress.MarkComplete(r.Context(), learnerID, topicID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete topic")
		return
	}

	log.Debug("topic completed",
		slog.String("topic_id", topic.ID.String()),
		slog.Int("points", topic.PointsAwarded))
	shared.RespondWithJSON(w, r, http.StatusOK, topicToResponse(topic))
}

// ReviewTopic handles POST /api/topics/{id}/review.
func (h *TopicHandler) ReviewTopic(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, topicID, ok := handleLearnerAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	topic, err := h.progress.RecordReview(r.Context(), learnerID, topicID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record review")
		return
	}

	log.Debug("topic reviewed",
		slog.String("topic_id", topic.ID.String()),
		slog.Int("review_count", topic.ReviewCount))
	shared.RespondWithJSON(w, r, http.StatusOK, topicToResponse(topic))
}
