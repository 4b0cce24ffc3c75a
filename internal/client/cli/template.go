package cli

import (
	"fmt"
	"strings"
	"text/template"
)

const userTemplate = `
=== Current User ===

Username: {{.Username}}
ID:       {{.ID}}
Email:    {{.Email}}
Role:     {{.Role}}
{{- if not .CreatedAt.IsZero }}
Since:    {{.CreatedAt.Format "2006-01-02"}}
{{- end}}
`

const resumeTemplate = `
=== Resume Details ===

Title:    {{.Title}}
ID:       {{.ID}}
Quality:  {{percent .QualityScore}}
{{- if .MatchScore }}
Match:    {{percent (deref .MatchScore)}}
{{- end}}
AI optimized: {{yesno .AIOptimized}}
{{- with .Content.PersonalInfo }}

Name:     {{.Name}}
Email:    {{.Email}}
{{- if .Phone }}
Phone:    {{.Phone}}
{{- end}}
{{- if .Location }}
Location: {{.Location}}
{{- end}}
{{- end}}
{{- if .Content.Summary }}

Summary:
---
{{.Content.Summary}}
---
{{- end}}
{{- if .Skills.TechnicalSkills }}
Technical skills: {{join .Skills.TechnicalSkills}}
{{- end}}
{{- if .Skills.SoftSkills }}
Soft skills:      {{join .Skills.SoftSkills}}
{{- end}}
`

const coverLetterTemplate = `
=== Cover Letter Details ===

Title:    {{.Title}}
ID:       {{.ID}}
Company:  {{.CompanyName}}
Position: {{.Position}}
Status:   {{.Status}}
{{- if .QualityScore }}
Quality:  {{percent (deref .QualityScore)}}
{{- end}}
AI optimized: {{yesno .AIOptimized}}

Content:
---
{{.Text}}
---
`

const jobTemplate = `
=== Job Requirement ===

Title:    {{.Title}}
ID:       {{.ID}}
Company:  {{.Company}}
{{- if .Location }}
Location: {{.Location}}
{{- end}}
{{- if .ExperienceLevel }}
Level:    {{.ExperienceLevel}}
{{- end}}
{{- if .Skills }}
Skills:   {{join .Skills}}
{{- end}}
{{- if .Requirements }}

Requirements:
{{- range .Requirements }}
  - {{.}}
{{- end}}
{{- end}}
`

const projectTemplate = `
=== Project ===

Name:     {{.Name}}
ID:       {{.ID}}
Resume:   {{.ResumeID}}
Status:   {{.Status}}
{{- if .Priority }}
Priority: {{.Priority}}
{{- end}}
{{- if .TechnologyStack }}
Stack:    {{.TechnologyStack}}
{{- end}}
{{- if .TeamRole }}
Role:     {{.TeamRole}}
{{- end}}
{{- if .RepositoryURL }}
Repo:     {{.RepositoryURL}}
{{- end}}
{{- if .Tags }}
Tags:     {{join .Tags}}
{{- end}}
{{- if .Description }}

{{.Description}}
{{- end}}
{{- if .Achievements }}

Achievements:
{{- range .Achievements }}
  - {{.}}
{{- end}}
{{- end}}
`

const resultTemplate = `
=== Optimization Result ===

Score: {{percent .OriginalScore}} -> {{percent .NewScore}}

Improvements:
{{- range .Improvements }}
  ✓ {{.}}
{{- end}}

Suggestions:
{{- range .Suggestions }}
  • {{.}}
{{- end}}
`

var templateFuncs = template.FuncMap{
	"percent": func(v float64) string {
		return fmt.Sprintf("%.0f%%", v*100)
	},
	"deref": func(v *float64) float64 {
		if v == nil {
			return 0
		}
		return *v
	},
	"yesno": func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	},
	"join": func(items []string) string {
		return strings.Join(items, ", ")
	},
}

// render выводит данные по шаблону
func (c *Cli) render(tmpl string, data any) error {
	t, err := template.New("out").Funcs(templateFuncs).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	if err := t.Execute(c.io, data); err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}
	return nil
}

// progressBar рисует полосу прогресса из 20 делений
func progressBar(progress int) string {
	filled := progress / 5
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", 20-filled) + "]"
}
