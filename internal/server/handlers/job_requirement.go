package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/iudanet/cvagent/internal/server/storage"
	"github.com/iudanet/cvagent/pkg/api"
)

// JobRequirementHandler обрабатывает /api/job-requirements
type JobRequirementHandler struct {
	base
	jobs storage.JobRequirementStorage
}

// NewJobRequirementHandler создает handler вакансий
func NewJobRequirementHandler(logger *slog.Logger, jobs storage.JobRequirementStorage) *JobRequirementHandler {
	return &JobRequirementHandler{base: base{logger: logger}, jobs: jobs}
}

// List обрабатывает GET /api/job-requirements?userId=
func (h *JobRequirementHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if filter := r.URL.Query().Get("userId"); filter != "" && filter != userID {
		h.sendJSON(w, []*api.JobRequirement{}, http.StatusOK)
		return
	}

	jobs, err := h.jobs.ListJobRequirements(r.Context(), userID)
	if err != nil {
		h.storageError(w, r, err, "job requirement")
		return
	}

	h.sendJSON(w, jobs, http.StatusOK)
}

// Get обрабатывает GET /api/job-requirements/{id}
func (h *JobRequirementHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	job, err := h.jobs.GetJobRequirement(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err, "job requirement")
		return
	}

	h.sendJSON(w, job, http.StatusOK)
}

// Create обрабатывает POST /api/job-requirements
func (h *JobRequirementHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var job api.JobRequirement
	if !h.decode(w, r, &job) || !h.validate(w, &job) {
		return
	}

	now := time.Now().UTC()
	job.ID = uuid.New().String()
	job.UserID = userID
	job.CreatedAt = now
	job.UpdatedAt = now

	if err := h.jobs.CreateJobRequirement(r.Context(), &job); err != nil {
		h.storageError(w, r, err, "job requirement")
		return
	}

	h.sendJSON(w, &job, http.StatusCreated)
}

// Update обрабатывает PUT /api/job-requirements/{id}
func (h *JobRequirementHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var job api.JobRequirement
	if !h.decode(w, r, &job) || !h.validate(w, &job) {
		return
	}

	existing, err := h.jobs.GetJobRequirement(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err, "job requirement")
		return
	}

	job.ID = existing.ID
	job.UserID = existing.UserID
	job.CreatedAt = existing.CreatedAt
	job.UpdatedAt = time.Now().UTC()

	if err := h.jobs.UpdateJobRequirement(ctx, &job); err != nil {
		h.storageError(w, r, err, "job requirement")
		return
	}

	h.sendJSON(w, &job, http.StatusOK)
}

// Delete обрабатывает DELETE /api/job-requirements/{id}
func (h *JobRequirementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.jobs.DeleteJobRequirement(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.storageError(w, r, err, "job requirement")
		return
	}

	h.sendMessage(w, "job requirement deleted")
}
