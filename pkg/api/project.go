package api

import (
	"strings"
	"time"
)

// Статусы проекта
const (
	ProjectPlanning    = "planning"
	ProjectDevelopment = "development"
	ProjectTesting     = "testing"
	ProjectCompleted   = "completed"
	ProjectOnHold      = "on-hold"
)

// Project проект из портфолио, привязанный к резюме
type Project struct {
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	ResumeID         string     `json:"resumeId"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Overview         string     `json:"overview,omitempty"`
	TechnologyStack  string     `json:"technologyStack,omitempty"`
	Responsibilities string     `json:"responsibilities,omitempty"`
	MarkdownContent  string     `json:"markdownContent,omitempty"`
	ProjectURL       string     `json:"projectUrl,omitempty"`
	RepositoryURL    string     `json:"repositoryUrl,omitempty"`
	DemoURL          string     `json:"demoUrl,omitempty"`
	TeamSize         string     `json:"teamSize,omitempty"`
	TeamRole         string     `json:"teamRole,omitempty"`
	Status           string     `json:"status"`
	Version          string     `json:"version,omitempty"`
	Achievements     []string   `json:"achievements"`
	Tags             []string   `json:"tags"`
	Priority         int        `json:"priority,omitempty"`
	IsPublic         bool       `json:"isPublic"`
	IsOngoing        bool       `json:"isOngoing"`
}

// Validate проверяет обязательные поля и диапазоны проекта.
// Пустой статус допустим, сервер подставит planning.
func (p *Project) Validate() error {
	if err := required("name", p.Name); err != nil {
		return err
	}
	if err := required("resumeId", p.ResumeID); err != nil {
		return err
	}
	if p.Status != "" {
		if err := ValidateProjectStatus(p.Status); err != nil {
			return err
		}
	}
	if p.Priority < 0 || p.Priority > 5 {
		return &ValidationError{Field: "priority", Reason: "must be within [1,5]"}
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return &ValidationError{Field: "endDate", Reason: "must not be before startDate"}
	}
	return nil
}

// ValidateProjectStatus проверяет значение статуса проекта
func ValidateProjectStatus(status string) error {
	switch status {
	case ProjectPlanning, ProjectDevelopment, ProjectTesting, ProjectCompleted, ProjectOnHold:
		return nil
	}
	return &ValidationError{Field: "status", Reason: "must be one of planning, development, testing, completed, on-hold"}
}

// AddTag добавляет тег, если его еще нет. Возвращает false для дубликата.
func (p *Project) AddTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return false
		}
	}
	p.Tags = append(p.Tags, tag)
	return true
}

// RemoveTag убирает тег. Возвращает false, если тега не было.
func (p *Project) RemoveTag(tag string) bool {
	for i, t := range p.Tags {
		if t == tag {
			p.Tags = append(p.Tags[:i], p.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// NormalizeTag обрезает пробелы; пустой тег недопустим
func NormalizeTag(tag string) (string, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", &ValidationError{Field: "tag", Reason: "is required"}
	}
	return tag, nil
}
