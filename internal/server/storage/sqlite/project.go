package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/cvagent/internal/server/storage"
	"github.com/iudanet/cvagent/pkg/api"
)

const projectColumns = `id, user_id, resume_id, name, description, details, status, version, priority, is_public,
	is_ongoing, achievements, tags, start_date, end_date, created_at, updated_at`

// projectDetails текстовые поля проекта, хранятся одной JSON колонкой
type projectDetails struct {
	Overview         string `json:"overview,omitempty"`
	TechnologyStack  string `json:"technologyStack,omitempty"`
	Responsibilities string `json:"responsibilities,omitempty"`
	MarkdownContent  string `json:"markdownContent,omitempty"`
	ProjectURL       string `json:"projectUrl,omitempty"`
	RepositoryURL    string `json:"repositoryUrl,omitempty"`
	DemoURL          string `json:"demoUrl,omitempty"`
	TeamSize         string `json:"teamSize,omitempty"`
	TeamRole         string `json:"teamRole,omitempty"`
}

// CreateProject сохраняет новый проект
func (s *Storage) CreateProject(ctx context.Context, project *api.Project) error {
	details, achievements, tags, err := projectJSON(project)
	if err != nil {
		return err
	}

	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		project.ID,
		project.UserID,
		project.ResumeID,
		project.Name,
		project.Description,
		details,
		project.Status,
		project.Version,
		project.Priority,
		project.IsPublic,
		project.IsOngoing,
		achievements,
		tags,
		nullTime(project.StartDate),
		nullTime(project.EndDate),
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	return nil
}

// GetProject возвращает проект владельца
func (s *Storage) GetProject(ctx context.Context, userID, id string) (*api.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ? AND user_id = ?`

	project, err := scanProject(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// ListProjects возвращает проекты пользователя по фильтру
func (s *Storage) ListProjects(ctx context.Context, userID string, filter storage.ProjectFilter) ([]*api.Project, error) {
	conditions := []string{"user_id = ?"}
	args := []any{userID}

	if filter.ResumeID != "" {
		conditions = append(conditions, "resume_id = ?")
		args = append(args, filter.ResumeID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Tag != "" {
		conditions = append(conditions, "EXISTS (SELECT 1 FROM json_each(projects.tags) WHERE json_each.value = ?)")
		args = append(args, filter.Tag)
	}
	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		conditions = append(conditions,
			"(lower(name) LIKE ? OR lower(description) LIKE ? OR lower(json_extract(details, '$.technologyStack')) LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}

	query := `SELECT ` + projectColumns + ` FROM projects WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := make([]*api.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return projects, nil
}

// UpdateProject обновляет проект владельца
func (s *Storage) UpdateProject(ctx context.Context, project *api.Project) error {
	details, achievements, tags, err := projectJSON(project)
	if err != nil {
		return err
	}

	query := `
		UPDATE projects
		SET resume_id = ?, name = ?, description = ?, details = ?, status = ?, version = ?, priority = ?,
			is_public = ?, is_ongoing = ?, achievements = ?, tags = ?, start_date = ?, end_date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		project.ResumeID,
		project.Name,
		project.Description,
		details,
		project.Status,
		project.Version,
		project.Priority,
		project.IsPublic,
		project.IsOngoing,
		achievements,
		tags,
		nullTime(project.StartDate),
		nullTime(project.EndDate),
		project.UpdatedAt,
		project.ID,
		project.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	return checkAffected(result, storage.ErrNotFound)
}

// DeleteProject удаляет проект владельца
func (s *Storage) DeleteProject(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return checkAffected(result, storage.ErrNotFound)
}

// ListProjectTags возвращает уникальные теги проектов пользователя
func (s *Storage) ListProjectTags(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT DISTINCT json_each.value
		FROM projects, json_each(projects.tags)
		WHERE projects.user_id = ?
		ORDER BY json_each.value
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query project tags: %w", err)
	}
	defer rows.Close()

	tags := make([]string, 0)
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan project tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return tags, nil
}

func projectJSON(p *api.Project) (details, achievements, tags string, err error) {
	details, err = toJSON(projectDetails{
		Overview:         p.Overview,
		TechnologyStack:  p.TechnologyStack,
		Responsibilities: p.Responsibilities,
		MarkdownContent:  p.MarkdownContent,
		ProjectURL:       p.ProjectURL,
		RepositoryURL:    p.RepositoryURL,
		DemoURL:          p.DemoURL,
		TeamSize:         p.TeamSize,
		TeamRole:         p.TeamRole,
	})
	if err != nil {
		return "", "", "", err
	}
	if achievements, err = toJSON(nonNil(p.Achievements)); err != nil {
		return "", "", "", err
	}
	if tags, err = toJSON(nonNil(p.Tags)); err != nil {
		return "", "", "", err
	}
	return details, achievements, tags, nil
}

// nullTime переводит *time.Time в значение для nullable TIMESTAMP колонки
func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func timePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func scanProject(row scanner) (*api.Project, error) {
	project := &api.Project{}
	var details, achievements, tags string
	var startDate, endDate sql.NullTime

	err := row.Scan(
		&project.ID,
		&project.UserID,
		&project.ResumeID,
		&project.Name,
		&project.Description,
		&details,
		&project.Status,
		&project.Version,
		&project.Priority,
		&project.IsPublic,
		&project.IsOngoing,
		&achievements,
		&tags,
		&startDate,
		&endDate,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	var d projectDetails
	if err := fromJSON(details, &d); err != nil {
		return nil, err
	}
	project.Overview = d.Overview
	project.TechnologyStack = d.TechnologyStack
	project.Responsibilities = d.Responsibilities
	project.MarkdownContent = d.MarkdownContent
	project.ProjectURL = d.ProjectURL
	project.RepositoryURL = d.RepositoryURL
	project.DemoURL = d.DemoURL
	project.TeamSize = d.TeamSize
	project.TeamRole = d.TeamRole

	if err := fromJSON(achievements, &project.Achievements); err != nil {
		return nil, err
	}
	if err := fromJSON(tags, &project.Tags); err != nil {
		return nil, err
	}
	project.StartDate = timePtr(startDate)
	project.EndDate = timePtr(endDate)

	return project, nil
}
