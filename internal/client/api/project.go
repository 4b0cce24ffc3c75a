package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

// ProjectAPI методы /projects
type ProjectAPI struct {
	sender Sender
}

// NewProjectAPI создает модуль проектов поверх Gateway
func NewProjectAPI(sender Sender) *ProjectAPI {
	return &ProjectAPI{sender: sender}
}

// List возвращает проекты; query (status, tag, q) передается как есть
func (a *ProjectAPI) List(ctx context.Context, query url.Values) ([]pkgapi.Project, error) {
	var projects []pkgapi.Project
	if err := a.sender.Send(ctx, Request{Method: http.MethodGet, Path: "/projects", Query: query}, &projects); err != nil {
		return nil, fmt.Errorf("list projects failed: %w", err)
	}
	return projects, nil
}

// ListByResume возвращает проекты одного резюме
func (a *ProjectAPI) ListByResume(ctx context.Context, resumeID string) ([]pkgapi.Project, error) {
	var projects []pkgapi.Project
	req := Request{Method: http.MethodGet, Path: "/projects/resume/" + url.PathEscape(resumeID)}
	if err := a.sender.Send(ctx, req, &projects); err != nil {
		return nil, fmt.Errorf("list resume projects failed: %w", err)
	}
	return projects, nil
}

// Tags возвращает все теги проектов пользователя
func (a *ProjectAPI) Tags(ctx context.Context) ([]string, error) {
	var tags []string
	if err := a.sender.Send(ctx, Request{Method: http.MethodGet, Path: "/projects/tags"}, &tags); err != nil {
		return nil, fmt.Errorf("list project tags failed: %w", err)
	}
	return tags, nil
}

// Get возвращает проект по id
func (a *ProjectAPI) Get(ctx context.Context, id string) (*pkgapi.Project, error) {
	var project pkgapi.Project
	if err := a.sender.Send(ctx, Request{Method: http.MethodGet, Path: projectPath(id)}, &project); err != nil {
		return nil, fmt.Errorf("get project failed: %w", err)
	}
	return &project, nil
}

// Create создает проект
func (a *ProjectAPI) Create(ctx context.Context, project *pkgapi.Project) (*pkgapi.Project, error) {
	var created pkgapi.Project
	if err := a.sender.Send(ctx, Request{Method: http.MethodPost, Path: "/projects", Body: project}, &created); err != nil {
		return nil, fmt.Errorf("create project failed: %w", err)
	}
	return &created, nil
}

// Update заменяет проект
func (a *ProjectAPI) Update(ctx context.Context, id string, project *pkgapi.Project) (*pkgapi.Project, error) {
	var updated pkgapi.Project
	if err := a.sender.Send(ctx, Request{Method: http.MethodPut, Path: projectPath(id), Body: project}, &updated); err != nil {
		return nil, fmt.Errorf("update project failed: %w", err)
	}
	return &updated, nil
}

// UpdateStatus меняет только статус проекта
func (a *ProjectAPI) UpdateStatus(ctx context.Context, id, status string) (*pkgapi.Project, error) {
	if err := pkgapi.ValidateProjectStatus(status); err != nil {
		return nil, err
	}

	var updated pkgapi.Project
	req := Request{Method: http.MethodPut, Path: projectPath(id) + "/status", Query: url.Values{"status": {status}}}
	if err := a.sender.Send(ctx, req, &updated); err != nil {
		return nil, fmt.Errorf("update project status failed: %w", err)
	}
	return &updated, nil
}

// AddTag добавляет тег проекту
func (a *ProjectAPI) AddTag(ctx context.Context, id, tag string) (*pkgapi.Project, error) {
	tag, err := pkgapi.NormalizeTag(tag)
	if err != nil {
		return nil, err
	}

	var updated pkgapi.Project
	req := Request{Method: http.MethodPost, Path: projectPath(id) + "/tags", Query: url.Values{"tag": {tag}}}
	if err := a.sender.Send(ctx, req, &updated); err != nil {
		return nil, fmt.Errorf("add project tag failed: %w", err)
	}
	return &updated, nil
}

// RemoveTag убирает тег проекта
func (a *ProjectAPI) RemoveTag(ctx context.Context, id, tag string) (*pkgapi.Project, error) {
	var updated pkgapi.Project
	req := Request{Method: http.MethodDelete, Path: projectPath(id) + "/tags/" + url.PathEscape(tag)}
	if err := a.sender.Send(ctx, req, &updated); err != nil {
		return nil, fmt.Errorf("remove project tag failed: %w", err)
	}
	return &updated, nil
}

// Delete удаляет проект
func (a *ProjectAPI) Delete(ctx context.Context, id string) error {
	if err := a.sender.Send(ctx, Request{Method: http.MethodDelete, Path: projectPath(id)}, nil); err != nil {
		return fmt.Errorf("delete project failed: %w", err)
	}
	return nil
}

func projectPath(id string) string {
	return "/projects/" + url.PathEscape(id)
}
