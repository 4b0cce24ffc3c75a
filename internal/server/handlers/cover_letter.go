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

// CoverLetterHandler обрабатывает /api/cover-letters
type CoverLetterHandler struct {
	base
	letters   storage.CoverLetterStorage
	resumes   storage.ResumeStorage
	jobs      storage.JobRequirementStorage
	templates storage.TemplateStorage
}

// NewCoverLetterHandler создает handler сопроводительных писем
func NewCoverLetterHandler(
	logger *slog.Logger,
	letters storage.CoverLetterStorage,
	resumes storage.ResumeStorage,
	jobs storage.JobRequirementStorage,
	templates storage.TemplateStorage,
) *CoverLetterHandler {
	return &CoverLetterHandler{
		base:      base{logger: logger},
		letters:   letters,
		resumes:   resumes,
		jobs:      jobs,
		templates: templates,
	}
}

// List обрабатывает GET /api/cover-letters?status=&companyName=&resumeId=
func (h *CoverLetterHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := storage.CoverLetterFilter{
		Status:      q.Get("status"),
		CompanyName: q.Get("companyName"),
		ResumeID:    q.Get("resumeId"),
	}

	letters, err := h.letters.ListCoverLetters(r.Context(), userID, filter)
	if err != nil {
		h.storageError(w, r, err, "cover letter")
		return
	}

	h.sendJSON(w, letters, http.StatusOK)
}

// Get обрабатывает GET /api/cover-letters/{id}
func (h *CoverLetterHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	letter, err := h.letters.GetCoverLetter(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err, "cover letter")
		return
	}

	h.sendJSON(w, letter, http.StatusOK)
}

// CreateBasic обрабатывает POST /api/cover-letters/basic
func (h *CoverLetterHandler) CreateBasic(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req api.CoverLetterRequest
	if !h.decode(w, r, &req) || !h.validate(w, &req) {
		return
	}

	h.create(w, r, userID, &req, nil, nil)
}

// CreatePersonalized обрабатывает POST /api/cover-letters/personalized.
// Письмо собирается из резюме и вакансии пользователя.
func (h *CoverLetterHandler) CreatePersonalized(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req api.CoverLetterRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.ValidatePersonalized(); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	resume, err := h.resumes.GetResume(ctx, userID, req.ResumeID)
	if err != nil {
		h.storageError(w, r, err, "resume")
		return
	}

	job, ok := h.loadJob(w, r, h.jobs, userID, req.JobRequirementID)
	if !ok {
		return
	}

	h.create(w, r, userID, &req, resume, job)
}

func (h *CoverLetterHandler) create(w http.ResponseWriter, r *http.Request, userID string, req *api.CoverLetterRequest, resume *api.Resume, job *api.JobRequirement) {
	ctx := r.Context()
	now := time.Now().UTC()

	letter := &api.CoverLetter{
		ID:               uuid.New().String(),
		UserID:           userID,
		ResumeID:         req.ResumeID,
		JobRequirementID: req.JobRequirementID,
		Title:            req.Title,
		CompanyName:      req.CompanyName,
		Position:         req.Position,
		Status:           api.CoverLetterDraft,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	switch {
	case req.Content != nil:
		letter.Content = *req.Content
		letter.GeneratedBy = api.GeneratedByManual
	default:
		tmpl, ok := h.pickTemplate(w, r, req.TemplateID)
		if !ok {
			return
		}
		letter.TemplateID = tmpl.ID
		letter.Content = composeLetter(tmpl, req, resume, job)
		letter.GeneratedBy = api.GeneratedByTemplate
		if resume != nil {
			letter.GeneratedBy = api.GeneratedByAI
		}
	}

	if job != nil {
		input := scoring.ForCoverLetter(letter, api.OptimizeRequest{OptimizationType: api.OptimizeComprehensive}, job)
		match := scoring.MatchScore(input)
		letter.MatchScore = &match
	}

	if err := h.letters.CreateCoverLetter(ctx, letter); err != nil {
		h.storageError(w, r, err, "cover letter")
		return
	}

	h.logger.InfoContext(ctx, "cover letter created",
		slog.String("cover_letter_id", letter.ID),
		slog.String("generated_by", letter.GeneratedBy))

	h.sendJSON(w, letter, http.StatusCreated)
}

// pickTemplate возвращает запрошенный шаблон или шаблон по умолчанию
func (h *CoverLetterHandler) pickTemplate(w http.ResponseWriter, r *http.Request, id string) (*api.CoverLetterTemplate, bool) {
	if id != "" {
		tmpl, err := h.templates.GetTemplate(r.Context(), id)
		if err != nil {
			h.storageError(w, r, err, "template")
			return nil, false
		}
		return tmpl, true
	}

	templates, err := h.templates.ListTemplates(r.Context(), "")
	if err != nil {
		h.storageError(w, r, err, "template")
		return nil, false
	}
	if len(templates) == 0 {
		// без шаблонов письмо собирается из одних абзацев
		return &api.CoverLetterTemplate{Content: "Dear Hiring Manager,\n\n{{opening}}\n\n{{body}}\n\n{{name}}"}, true
	}
	// ListTemplates отдает шаблон по умолчанию первым
	return templates[0], true
}

// Customize обрабатывает PUT /api/cover-letters/{id}/customize.
// Меняет только переданные поля.
func (h *CoverLetterHandler) Customize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var custom api.CoverLetterCustomization
	if !h.decode(w, r, &custom) || !h.validate(w, &custom) {
		return
	}

	letter, err := h.letters.GetCoverLetter(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err, "cover letter")
		return
	}

	if custom.Title != "" {
		letter.Title = custom.Title
	}
	if custom.Status != "" {
		letter.Status = custom.Status
	}
	if custom.Content != nil {
		letter.Content = *custom.Content
		letter.GeneratedBy = api.GeneratedByManual
	}
	if custom.QualityScore != nil {
		score := *custom.QualityScore
		letter.QualityScore = &score
	}
	if custom.AIOptimized != nil {
		letter.AIOptimized = *custom.AIOptimized
	}
	letter.UpdatedAt = time.Now().UTC()

	if err := h.letters.UpdateCoverLetter(ctx, letter); err != nil {
		h.storageError(w, r, err, "cover letter")
		return
	}

	h.sendJSON(w, letter, http.StatusOK)
}

// Delete обрабатывает DELETE /api/cover-letters/{id}
func (h *CoverLetterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.letters.DeleteCoverLetter(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.storageError(w, r, err, "cover letter")
		return
	}

	h.sendMessage(w, "cover letter deleted")
}

// Optimize обрабатывает POST /api/cover-letters/{id}/optimize.
// Без jobRequirementId в запросе используется вакансия письма.
func (h *CoverLetterHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var req api.OptimizeRequest
	if !h.decode(w, r, &req) || !h.validate(w, &req) {
		return
	}

	letter, err := h.letters.GetCoverLetter(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err, "cover letter")
		return
	}

	jobID := req.JobRequirementID
	if jobID == "" {
		jobID = letter.JobRequirementID
	}
	job, ok := h.loadJob(w, r, h.jobs, userID, jobID)
	if !ok {
		return
	}

	input := scoring.ForCoverLetter(letter, req, job)
	result := scoring.Evaluate(input)

	score := result.NewScore
	letter.QualityScore = &score
	letter.AIOptimized = true
	if job != nil {
		match := scoring.MatchScore(input)
		letter.MatchScore = &match
	}
	letter.UpdatedAt = time.Now().UTC()

	if err := h.letters.UpdateCoverLetter(ctx, letter); err != nil {
		h.storageError(w, r, err, "cover letter")
		return
	}

	h.logger.InfoContext(ctx, "cover letter optimized",
		slog.String("cover_letter_id", letter.ID),
		slog.Float64("original_score", result.OriginalScore),
		slog.Float64("new_score", result.NewScore))

	h.sendJSON(w, result, http.StatusOK)
}

// Export обрабатывает GET /api/cover-letters/{id}/export?format=
func (h *CoverLetterHandler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	format, ok := h.exportFormat(w, r)
	if !ok {
		return
	}

	letter, err := h.letters.GetCoverLetter(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.storageError(w, r, err, "cover letter")
		return
	}

	file, err := exportDocument(format, letter.Title, letter, coverLetterSections(letter))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to export cover letter", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendFile(w, r, letter.Title, file)
}

// Templates обрабатывает GET /api/cover-letters/templates?category=
func (h *CoverLetterHandler) Templates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.ListTemplates(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		h.storageError(w, r, err, "template")
		return
	}

	h.sendJSON(w, templates, http.StatusOK)
}
