package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iudanet/cvagent/internal/scoring"
	"github.com/iudanet/cvagent/internal/server/storage"
	"github.com/iudanet/cvagent/pkg/api"
)

// ResumeHandler обрабатывает /api/resumes
type ResumeHandler struct {
	base
	resumes storage.ResumeStorage
	jobs    storage.JobRequirementStorage
}

// NewResumeHandler создает handler резюме
func NewResumeHandler(logger *slog.Logger, resumes storage.ResumeStorage, jobs storage.JobRequirementStorage) *ResumeHandler {
	return &ResumeHandler{
		base:    base{logger: logger},
		resumes: resumes,
		jobs:    jobs,
	}
}

// List обрабатывает GET /api/resumes?userId=
// userId другого пользователя дает пустой список
func (h *ResumeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if filter := r.URL.Query().Get("userId"); filter != "" && filter != userID {
		h.sendJSON(w, []*api.Resume{}, http.StatusOK)
		return
	}

	resumes, err := h.resumes.ListResumes(r.Context(), userID)
	if err != nil {
		h.storageError(w, r, err, "resume")
		return
	}

	h.sendJSON(w, resumes, http.StatusOK)
}

// Get обрабатывает GET /api/resumes/{id}
func (h *ResumeHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	resume, err := h.resumes.GetResume(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err, "resume")
		return
	}

	h.sendJSON(w, resume, http.StatusOK)
}

// Create обрабатывает POST /api/resumes
func (h *ResumeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var resume api.Resume
	if !h.decode(w, r, &resume) || !h.validate(w, &resume) {
		return
	}

	now := time.Now().UTC()
	resume.ID = uuid.New().String()
	resume.UserID = userID
	resume.CreatedAt = now
	resume.UpdatedAt = now

	if err := h.resumes.CreateResume(r.Context(), &resume); err != nil {
		h.storageError(w, r, err, "resume")
		return
	}

	h.logger.InfoContext(r.Context(), "resume created", slog.String("resume_id", resume.ID), slog.String("user_id", userID))
	h.sendJSON(w, &resume, http.StatusCreated)
}

// Update обрабатывает PUT /api/resumes/{id}
func (h *ResumeHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var resume api.Resume
	if !h.decode(w, r, &resume) || !h.validate(w, &resume) {
		return
	}

	existing, err := h.resumes.GetResume(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err, "resume")
		return
	}

	// id, владелец и дата создания из тела не принимаются
	resume.ID = existing.ID
	resume.UserID = existing.UserID
	resume.CreatedAt = existing.CreatedAt
	resume.UpdatedAt = time.Now().UTC()

	if err := h.resumes.UpdateResume(ctx, &resume); err != nil {
		h.storageError(w, r, err, "resume")
		return
	}

	h.sendJSON(w, &resume, http.StatusOK)
}

// Delete обрабатывает DELETE /api/resumes/{id}
func (h *ResumeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.resumes.DeleteResume(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.storageError(w, r, err, "resume")
		return
	}

	h.sendMessage(w, "resume deleted")
}

// Optimize обрабатывает POST /api/resumes/{id}/optimize.
// Оценивает резюме и сохраняет новую оценку с флагом aiOptimized.
func (h *ResumeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req api.OptimizeRequest
	if !h.decode(w, r, &req) || !h.validate(w, &req) {
		return
	}

	resume, err := h.resumes.GetResume(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err, "resume")
		return
	}

	job, ok := h.loadJob(w, r, h.jobs, userID, req.JobRequirementID)
	if !ok {
		return
	}

	input := scoring.ForResume(resume, req, job)
	result := scoring.Evaluate(input)

	resume.QualityScore = result.NewScore
	resume.AIOptimized = true
	if job != nil {
		match := scoring.MatchScore(input)
		resume.MatchScore = &match
	}
	resume.UpdatedAt = time.Now().UTC()

	if err := h.resumes.UpdateResume(ctx, resume); err != nil {
		h.storageError(w, r, err, "resume")
		return
	}

	h.logger.InfoContext(ctx, "resume optimized",
		slog.String("resume_id", resume.ID),
		slog.Float64("original_score", result.OriginalScore),
		slog.Float64("new_score", result.NewScore))

	h.sendJSON(w, result, http.StatusOK)
}

// Export обрабатывает GET /api/resumes/{id}/export?format=
func (h *ResumeHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	format, ok := h.exportFormat(w, r)
	if !ok {
		return
	}

	resume, err := h.resumes.GetResume(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err, "resume")
		return
	}

	file, err := exportDocument(format, resume.Title, resume, resumeSections(resume))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to export resume", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendFile(w, r, resume.Title, file)
}

// loadJob загружает вакансию для оптимизации; пустой id дает nil без ошибки
func (b base) loadJob(w http.ResponseWriter, r *http.Request, jobs storage.JobRequirementStorage, userID, id string) (*api.JobRequirement, bool) {
	if id == "" {
		return nil, true
	}

	job, err := jobs.GetJobRequirement(r.Context(), userID, id)
	if err != nil {
		b.storageError(w, r, err, "job requirement")
		return nil, false
	}
	return job, true
}
