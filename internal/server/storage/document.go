package storage

import (
	"context"

	"github.com/iudanet/cvagent/pkg/api"
)

// Все методы чтения/изменения документов принимают userID владельца.
// Чужой документ неотличим от отсутствующего: ErrNotFound.

// ResumeStorage defines interface for resume persistence
type ResumeStorage interface {
	CreateResume(ctx context.Context, resume *api.Resume) error
	GetResume(ctx context.Context, userID, id string) (*api.Resume, error)
	ListResumes(ctx context.Context, userID string) ([]*api.Resume, error)
	// UpdateResume replaces stored fields, CreatedAt and UserID are preserved
	UpdateResume(ctx context.Context, resume *api.Resume) error
	DeleteResume(ctx context.Context, userID, id string) error
}

// CoverLetterFilter параметры выборки писем (query string GET /cover-letters)
type CoverLetterFilter struct {
	Status      string
	CompanyName string
	ResumeID    string
}

// CoverLetterStorage defines interface for cover letter persistence
type CoverLetterStorage interface {
	CreateCoverLetter(ctx context.Context, letter *api.CoverLetter) error
	GetCoverLetter(ctx context.Context, userID, id string) (*api.CoverLetter, error)
	ListCoverLetters(ctx context.Context, userID string, filter CoverLetterFilter) ([]*api.CoverLetter, error)
	UpdateCoverLetter(ctx context.Context, letter *api.CoverLetter) error
	DeleteCoverLetter(ctx context.Context, userID, id string) error
}

// JobRequirementStorage defines interface for job requirement persistence
type JobRequirementStorage interface {
	CreateJobRequirement(ctx context.Context, job *api.JobRequirement) error
	GetJobRequirement(ctx context.Context, userID, id string) (*api.JobRequirement, error)
	ListJobRequirements(ctx context.Context, userID string) ([]*api.JobRequirement, error)
	UpdateJobRequirement(ctx context.Context, job *api.JobRequirement) error
	DeleteJobRequirement(ctx context.Context, userID, id string) error
}

// TemplateStorage defines interface for read-only cover letter templates
type TemplateStorage interface {
	// ListTemplates returns templates, filtered by category when it is not empty
	ListTemplates(ctx context.Context, category string) ([]*api.CoverLetterTemplate, error)
	GetTemplate(ctx context.Context, id string) (*api.CoverLetterTemplate, error)
}

// ProjectFilter параметры выборки проектов (query string GET /projects)
type ProjectFilter struct {
	ResumeID string
	Status   string
	Tag      string
	// Query подстрока в названии, описании или стеке, без учета регистра
	Query string
}

// ProjectStorage defines interface for project persistence
type ProjectStorage interface {
	CreateProject(ctx context.Context, project *api.Project) error
	GetProject(ctx context.Context, userID, id string) (*api.Project, error)
	ListProjects(ctx context.Context, userID string, filter ProjectFilter) ([]*api.Project, error)
	UpdateProject(ctx context.Context, project *api.Project) error
	DeleteProject(ctx context.Context, userID, id string) error
	// ListProjectTags returns distinct tags of the user's projects, sorted
	ListProjectTags(ctx context.Context, userID string) ([]string, error)
}
