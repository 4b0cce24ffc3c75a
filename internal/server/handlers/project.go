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

// ProjectHandler обрабатывает /api/projects.
// Проект всегда привязан к резюме того же владельца.
type ProjectHandler struct {
	base
	projects storage.ProjectStorage
	resumes  storage.ResumeStorage
}

// NewProjectHandler создает handler проектов
func NewProjectHandler(logger *slog.Logger, projects storage.ProjectStorage, resumes storage.ResumeStorage) *ProjectHandler {
	return &ProjectHandler{
		base:     base{logger: logger},
		projects: projects,
		resumes:  resumes,
	}
}

// List обрабатывает GET /api/projects?status=&tag=&q=
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := storage.ProjectFilter{
		Status: query.Get("status"),
		Tag:    query.Get("tag"),
		Query:  query.Get("q"),
	}
	if filter.Status != "" {
		if err := api.ValidateProjectStatus(filter.Status); err != nil {
			h.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	h.list(w, r, userID, filter)
}

// ListByResume обрабатывает GET /api/projects/resume/{resumeId}
func (h *ProjectHandler) ListByResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	resumeID := chi.URLParam(r, "resumeId")
	if _, err := h.resumes.GetResume(r.Context(), userID, resumeID); err != nil {
		h.storageError(w, r, err, "resume")
		return
	}

	h.list(w, r, userID, storage.ProjectFilter{ResumeID: resumeID})
}

func (h *ProjectHandler) list(w http.ResponseWriter, r *http.Request, userID string, filter storage.ProjectFilter) {
	projects, err := h.projects.ListProjects(r.Context(), userID, filter)
	if err != nil {
		h.storageError(w, r, err, "project")
		return
	}

	h.sendJSON(w, projects, http.StatusOK)
}

// Tags обрабатывает GET /api/projects/tags
func (h *ProjectHandler) Tags(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	tags, err := h.projects.ListProjectTags(r.Context(), userID)
	if err != nil {
		h.storageError(w, r, err, "project")
		return
	}

	h.sendJSON(w, tags, http.StatusOK)
}

// Get обрабатывает GET /api/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	project, err := h.projects.GetProject(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err, "project")
		return
	}

	h.sendJSON(w, project, http.StatusOK)
}

// Create обрабатывает POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var project api.Project
	if !h.decode(w, r, &project) || !h.validate(w, &project) {
		return
	}

	// Резюме должно принадлежать автору проекта
	if _, err := h.resumes.GetResume(ctx, userID, project.ResumeID); err != nil {
		h.storageError(w, r, err, "resume")
		return
	}

	now := time.Now().UTC()
	project.ID = uuid.New().String()
	project.UserID = userID
	project.CreatedAt = now
	project.UpdatedAt = now
	if project.Status == "" {
		project.Status = api.ProjectPlanning
	}

	if err := h.projects.CreateProject(ctx, &project); err != nil {
		h.storageError(w, r, err, "project")
		return
	}

	h.sendJSON(w, &project, http.StatusCreated)
}

// Update обрабатывает PUT /api/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var project api.Project
	if !h.decode(w, r, &project) || !h.validate(w, &project) {
		return
	}

	existing, err := h.projects.GetProject(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err, "project")
		return
	}

	if project.ResumeID != existing.ResumeID {
		if _, err := h.resumes.GetResume(ctx, userID, project.ResumeID); err != nil {
			h.storageError(w, r, err, "resume")
			return
		}
	}

	project.ID = existing.ID
	project.UserID = existing.UserID
	project.CreatedAt = existing.CreatedAt
	if project.Status == "" {
		project.Status = existing.Status
	}

	h.save(w, r, &project)
}

// UpdateStatus обрабатывает PUT /api/projects/{id}/status?status=
func (h *ProjectHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if err := api.ValidateProjectStatus(status); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.modify(w, r, func(p *api.Project) {
		p.Status = status
	})
}

// AddTag обрабатывает POST /api/projects/{id}/tags?tag=
func (h *ProjectHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	tag, err := api.NormalizeTag(r.URL.Query().Get("tag"))
	if err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.modify(w, r, func(p *api.Project) {
		p.AddTag(tag)
	})
}

// RemoveTag обрабатывает DELETE /api/projects/{id}/tags/{tag}.
// Отсутствующий тег не ошибка.
func (h *ProjectHandler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")

	h.modify(w, r, func(p *api.Project) {
		p.RemoveTag(tag)
	})
}

// Delete обрабатывает DELETE /api/projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.projects.DeleteProject(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.storageError(w, r, err, "project")
		return
	}

	h.sendMessage(w, "project deleted")
}

// modify загружает проект владельца, применяет change и сохраняет
func (h *ProjectHandler) modify(w http.ResponseWriter, r *http.Request, change func(*api.Project)) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	project, err := h.projects.GetProject(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err, "project")
		return
	}

	change(project)
	h.save(w, r, project)
}

func (h *ProjectHandler) save(w http.ResponseWriter, r *http.Request, project *api.Project) {
	project.UpdatedAt = time.Now().UTC()

	if err := h.projects.UpdateProject(r.Context(), project); err != nil {
		h.storageError(w, r, err, "project")
		return
	}

	h.sendJSON(w, project, http.StatusOK)
}
