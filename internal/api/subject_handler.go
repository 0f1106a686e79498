package api

import (
	"log/slog"
	"net/http"

	"github.com/arch2702/smart-study-scheduler/internal/api/shared"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/service"
)

// SubjectHandler serves /api/subjects.
type SubjectHandler struct {
	study  service.StudyService
	logger *slog.Logger
}

// NewSubjectHandler creates a SubjectHandler.
func NewSubjectHandler(study service.StudyService, logger *slog.Logger) *SubjectHandler {
	if study == nil {
		panic("study service cannot be nil for SubjectHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SubjectHandler{
		study:  study,
		logger: logger.With(slog.String("component", "subject_handler")),
	}
}

// ListSubjects handles GET /api/subjects.
func (h *SubjectHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	subjects, err := h.study.ListSubjects(r.Context(), learnerID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list subjects")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, subjectsToResponse(subjects))
}

// CreateSubject handles POST /api/subjects.
func (h *SubjectHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, ok := requireLearner(w, r, log)
	if !ok {
		return
	}

	var req SubjectRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	subject, err := h.study.CreateSubject(r.Context(), learnerID, req.params())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create subject")
		return
	}

	log.Debug("subject created", slog.String("subject_id", subject.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, subjectToResponse(subject))
}

// GetSubject handles GET /api/subjects/{id}.
func (h *SubjectHandler) GetSubject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, subjectID, ok := handleLearnerAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	subject, err := h.study.GetSubject(r.Context(), learnerID, subjectID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get subject")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, subjectToResponse(subject))
}

// UpdateSubject handles PUT /api/subjects/{id}.
func (h *SubjectHandler) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, subjectID, ok := handleLearnerAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	var req SubjectRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}

	subject, err := h.study.UpdateSubject(r.Context(), learnerID, subjectID, req.params())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update subject")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, subjectToResponse(subject))
}

// DeleteSubject handles DELETE /api/subjects/{id}. Topics of the subject
// are deleted with it.
func (h *SubjectHandler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	learnerID, subjectID, ok := handleLearnerAndPathUUID(w, r, "id", log)
	if !ok {
		return
	}

	if err := h.study.DeleteSubject(r.Context(), learnerID, subjectID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete subject")
		return
	}

	log.Debug("subject deleted", slog.String("subject_id", subjectID.String()))
	w.WriteHeader(http.StatusNoContent)
}
