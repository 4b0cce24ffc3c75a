package api

import "time"

// Способы создания сопроводительного письма
const (
	GeneratedByAI       = "ai_generated"
	GeneratedByManual   = "manual_edited"
	GeneratedByTemplate = "template_based"
)

// Статусы сопроводительного письма
const (
	CoverLetterDraft    = "draft"
	CoverLetterReady    = "ready"
	CoverLetterSent     = "sent"
	CoverLetterArchived = "archived"
)

// CoverLetterContent разделы письма
type CoverLetterContent struct {
	Salutation       string `json:"salutation"`
	OpeningParagraph string `json:"openingParagraph"`
	BodyParagraphs   string `json:"bodyParagraphs"`
	ClosingParagraph string `json:"closingParagraph"`
	Signature        string `json:"signature"`
	ContactInfo      string `json:"contactInfo,omitempty"`
	Postscript       string `json:"postscript,omitempty"`
}

// CoverLetter представляет сопроводительное письмо
type CoverLetter struct {
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	QualityScore     *float64           `json:"qualityScore,omitempty"`
	MatchScore       *float64           `json:"matchScore,omitempty"`
	ID               string             `json:"id"`
	UserID           string             `json:"userId"`
	ResumeID         string             `json:"resumeId,omitempty"`
	JobRequirementID string             `json:"jobRequirementId,omitempty"`
	TemplateID       string             `json:"templateId,omitempty"`
	Title            string             `json:"title"`
	CompanyName      string             `json:"companyName"`
	Position         string             `json:"position"`
	GeneratedBy      string             `json:"generatedBy"`
	Status           string             `json:"status"`
	Content          CoverLetterContent `json:"content"`
	AIOptimized      bool               `json:"aiOptimized"`
}

// Text склеивает текст письма
func (c *CoverLetter) Text() string {
	ct := c.Content
	return joinNonEmpty(ct.Salutation, ct.OpeningParagraph, ct.BodyParagraphs, ct.ClosingParagraph, ct.Signature, ct.Postscript)
}

// CoverLetterRequest запрос на создание письма.
// Для /cover-letters/basic достаточно title/companyName/position,
// для /cover-letters/personalized дополнительно нужны resumeId и jobRequirementId.
type CoverLetterRequest struct {
	Content          *CoverLetterContent `json:"content,omitempty"`
	Title            string              `json:"title"`
	CompanyName      string              `json:"companyName"`
	Position         string              `json:"position"`
	ResumeID         string              `json:"resumeId,omitempty"`
	JobRequirementID string              `json:"jobRequirementId,omitempty"`
	TemplateID       string              `json:"templateId,omitempty"`
}

// Validate проверяет поля базового письма
func (r *CoverLetterRequest) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"title", r.Title},
		{"companyName", r.CompanyName},
		{"position", r.Position},
	} {
		if err := required(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePersonalized проверяет поля персонализированного письма
func (r *CoverLetterRequest) ValidatePersonalized() error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := required("resumeId", r.ResumeID); err != nil {
		return err
	}
	return required("jobRequirementId", r.JobRequirementID)
}

// CoverLetterCustomization частичное обновление письма (PUT /cover-letters/{id}/customize).
// Пустые поля не меняются.
type CoverLetterCustomization struct {
	Content      *CoverLetterContent `json:"content,omitempty"`
	QualityScore *float64            `json:"qualityScore,omitempty"`
	AIOptimized  *bool               `json:"aiOptimized,omitempty"`
	Title        string              `json:"title,omitempty"`
	Status       string              `json:"status,omitempty"`
}

// Validate проверяет статус, если он передан
func (c *CoverLetterCustomization) Validate() error {
	switch c.Status {
	case "", CoverLetterDraft, CoverLetterReady, CoverLetterSent, CoverLetterArchived:
	default:
		return &ValidationError{Field: "status", Reason: "must be one of draft, ready, sent, archived"}
	}
	if c.QualityScore != nil {
		return validScore("qualityScore", *c.QualityScore)
	}
	return nil
}

// CoverLetterTemplate шаблон сопроводительного письма
type CoverLetterTemplate struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Content   string `json:"content"`
	IsDefault bool   `json:"isDefault"`
}
