package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/cvagent/pkg/api"
)

// exportFile результат экспорта документа
type exportFile struct {
	contentType string
	extension   string
	data        []byte
}

// section заголовок и текст раздела документа
type section struct {
	title string
	body  string
}

func exportDocument(format, title string, doc any, sections []section) (*exportFile, error) {
	switch format {
	case api.ExportJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document: %w", err)
		}
		return &exportFile{contentType: "application/json", extension: "json", data: append(data, '\n')}, nil

	case api.ExportMarkdown:
		var b strings.Builder
		fmt.Fprintf(&b, "# %s\n", title)
		for _, s := range sections {
			if s.body == "" {
				continue
			}
			if s.title != "" {
				fmt.Fprintf(&b, "\n## %s\n", s.title)
			}
			fmt.Fprintf(&b, "\n%s\n", s.body)
		}
		return &exportFile{contentType: "text/markdown; charset=utf-8", extension: "md", data: []byte(b.String())}, nil

	case api.ExportText:
		var b strings.Builder
		fmt.Fprintf(&b, "%s\n%s\n", title, strings.Repeat("=", len([]rune(title))))
		for _, s := range sections {
			if s.body == "" {
				continue
			}
			if s.title != "" {
				fmt.Fprintf(&b, "\n%s\n", strings.ToUpper(s.title))
			}
			fmt.Fprintf(&b, "%s\n", s.body)
		}
		return &exportFile{contentType: "text/plain; charset=utf-8", extension: "txt", data: []byte(b.String())}, nil
	}

	return nil, fmt.Errorf("unsupported export format %q", format)
}

func resumeSections(r *api.Resume) []section {
	c := r.Content
	p := c.PersonalInfo
	contacts := strings.Join(nonEmpty(p.Name, p.Email, p.Phone, p.Location, p.LinkedIn, p.GitHub), " | ")

	skills := c.Skills
	if all := append(append([]string{}, r.Skills.TechnicalSkills...), r.Skills.SoftSkills...); len(all) > 0 {
		skills = strings.Join(nonEmpty(skills, strings.Join(all, ", ")), "\n")
	}

	return []section{
		{body: contacts},
		{title: "Summary", body: c.Summary},
		{title: "Experience", body: c.Experience},
		{title: "Education", body: c.Education},
		{title: "Skills", body: skills},
		{title: "Projects", body: c.Projects},
	}
}

func coverLetterSections(l *api.CoverLetter) []section {
	c := l.Content
	return []section{
		{body: c.Salutation},
		{body: c.OpeningParagraph},
		{body: c.BodyParagraphs},
		{body: c.ClosingParagraph},
		{body: c.Signature},
		{body: c.ContactInfo},
		{body: c.Postscript},
	}
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// exportFormat читает ?format=, по умолчанию markdown; неизвестный формат -> 400
func (b base) exportFormat(w http.ResponseWriter, r *http.Request) (string, bool) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = api.ExportMarkdown
	}
	if !api.ValidExportFormat(format) {
		b.sendError(w, "unsupported format, use markdown, txt or json", http.StatusBadRequest)
		return "", false
	}
	return format, true
}

// sendFile отдает экспорт как вложение
func (b base) sendFile(w http.ResponseWriter, r *http.Request, name string, file *exportFile) {
	w.Header().Set("Content-Type", file.contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName(name)+"."+file.extension))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.data); err != nil {
		b.logger.WarnContext(r.Context(), "failed to write export", slog.Any("error", err))
	}
}

// fileName оставляет в имени файла только безопасные символы
func fileName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		}
		return -1
	}, title)
	if name == "" {
		return "document"
	}
	return name
}
