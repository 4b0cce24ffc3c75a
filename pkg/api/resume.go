package api

import "time"

// PersonalInfo контактные данные кандидата
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// ResumeContent текстовые разделы резюме
type ResumeContent struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Summary      string       `json:"summary"`
	Experience   string       `json:"experience"`
	Education    string       `json:"education"`
	Skills       string       `json:"skills"`
	Projects     string       `json:"projects"`
}

// ResumeSkills структурированные навыки
type ResumeSkills struct {
	TechnicalSkills []string `json:"technicalSkills"`
	SoftSkills      []string `json:"softSkills"`
}

// Resume представляет резюме пользователя.
// QualityScore и MatchScore лежат в диапазоне [0,1].
type Resume struct {
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	MatchScore   *float64      `json:"matchScore,omitempty"`
	ID           string        `json:"id"`
	UserID       string        `json:"userId"`
	Title        string        `json:"title"`
	Content      ResumeContent `json:"content"`
	Skills       ResumeSkills  `json:"skills"`
	QualityScore float64       `json:"qualityScore"`
	AIOptimized  bool          `json:"aiOptimized"`
}

// Validate проверяет обязательные поля перед отправкой на сервер
func (r *Resume) Validate() error {
	if err := required("title", r.Title); err != nil {
		return err
	}
	return validScore("qualityScore", r.QualityScore)
}

// Text склеивает все текстовые разделы резюме (для подсчета совпадений ключевых слов)
func (r *Resume) Text() string {
	c := r.Content
	return joinNonEmpty(r.Title, c.Summary, c.Experience, c.Education, c.Skills, c.Projects)
}
