package handlers

import (
	"fmt"
	"strings"

	"github.com/iudanet/cvagent/pkg/api"
)

// composeLetter заполняет шаблон письма. resume и job заданы только для
// персонализированного письма.
func composeLetter(tmpl *api.CoverLetterTemplate, req *api.CoverLetterRequest, resume *api.Resume, job *api.JobRequirement) api.CoverLetterContent {
	var name, contact, opening string
	body := fmt.Sprintf("I would welcome the opportunity to bring my experience to %s.", req.CompanyName)

	if resume != nil {
		p := resume.Content.PersonalInfo
		name = p.Name
		contact = strings.Join(nonEmpty(p.Email, p.Phone), " | ")
		opening = firstSentence(resume.Content.Summary)
		if exp := firstSentence(resume.Content.Experience); exp != "" {
			body = exp
		}
	}
	if resume != nil && job != nil {
		if matched := matchedSkills(resume, job); len(matched) > 0 {
			body += fmt.Sprintf(" My background in %s lines up with what the team needs.", strings.Join(matched, ", "))
		}
	}

	text := strings.NewReplacer(
		"{{position}}", req.Position,
		"{{company}}", req.CompanyName,
		"{{name}}", name,
		"{{opening}}", opening,
		"{{body}}", body,
	).Replace(tmpl.Content)

	content := splitParagraphs(text)
	content.ContactInfo = contact
	return content
}

// splitParagraphs раскладывает текст письма по разделам:
// первый абзац приветствие, последний подпись, второй и предпоследний
// вступление и заключение, остальное тело письма.
func splitParagraphs(text string) api.CoverLetterContent {
	var paragraphs []string
	for _, p := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}

	var c api.CoverLetterContent
	switch n := len(paragraphs); {
	case n == 0:
	case n == 1:
		c.BodyParagraphs = paragraphs[0]
	case n == 2:
		c.Salutation, c.Signature = paragraphs[0], paragraphs[1]
	case n == 3:
		c.Salutation, c.BodyParagraphs, c.Signature = paragraphs[0], paragraphs[1], paragraphs[2]
	default:
		c.Salutation = paragraphs[0]
		c.OpeningParagraph = paragraphs[1]
		c.BodyParagraphs = strings.Join(paragraphs[2:n-2], "\n\n")
		c.ClosingParagraph = paragraphs[n-2]
		c.Signature = paragraphs[n-1]
	}
	return c
}

// matchedSkills навыки резюме, которые требует вакансия, в порядке вакансии
func matchedSkills(resume *api.Resume, job *api.JobRequirement) []string {
	have := make(map[string]bool)
	for _, s := range append(append([]string{}, resume.Skills.TechnicalSkills...), resume.Skills.SoftSkills...) {
		have[strings.ToLower(strings.TrimSpace(s))] = true
	}

	var matched []string
	for _, s := range job.Skills {
		if have[strings.ToLower(strings.TrimSpace(s))] {
			matched = append(matched, s)
		}
	}
	return matched
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexAny(text, ".!?\n"); i >= 0 {
		end := i
		if text[i] != '\n' {
			end++
		}
		return strings.TrimSpace(text[:end])
	}
	return text
}
