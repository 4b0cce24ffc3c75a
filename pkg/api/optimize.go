package api

import (
	"math"
	"strings"
)

// OptimizationType тип оптимизации документа
type OptimizationType string

// Допустимые типы оптимизации
const (
	OptimizeComprehensive OptimizationType = "comprehensive"
	OptimizeContent       OptimizationType = "content"
	OptimizeStructure     OptimizationType = "structure"
	OptimizeKeywords      OptimizationType = "keywords"
)

// OptimizationTypes перечисляет все допустимые значения в порядке отображения
var OptimizationTypes = []OptimizationType{
	OptimizeComprehensive,
	OptimizeContent,
	OptimizeStructure,
	OptimizeKeywords,
}

// Valid проверяет, что тип входит в перечисление
func (t OptimizationType) Valid() bool {
	for _, known := range OptimizationTypes {
		if t == known {
			return true
		}
	}
	return false
}

// OptimizeRequest параметры оптимизации (тело POST /resumes/{id}/optimize)
type OptimizeRequest struct {
	OptimizationType       OptimizationType `json:"optimizationType"`
	TargetRole             string           `json:"targetRole,omitempty"`
	TargetCompany          string           `json:"targetCompany,omitempty"`
	AdditionalRequirements string           `json:"additionalRequirements,omitempty"`
	JobRequirementID       string           `json:"jobRequirementId,omitempty"`
}

// Validate проверяет тип оптимизации
func (r *OptimizeRequest) Validate() error {
	if r.OptimizationType == "" {
		return &ValidationError{Field: "optimizationType", Reason: "is required"}
	}
	if !r.OptimizationType.Valid() {
		return &ValidationError{
			Field:  "optimizationType",
			Reason: "must be one of comprehensive, content, structure, keywords",
		}
	}
	return nil
}

// OptimizationResult сравнение "до/после".
// Improvements и Suggestions упорядочены в порядке отображения.
type OptimizationResult struct {
	Improvements  []string `json:"improvements"`
	Suggestions   []string `json:"suggestions"`
	OriginalScore float64  `json:"originalScore"`
	NewScore      float64  `json:"newScore"`
}

// Экспорт документов
const (
	ExportMarkdown = "markdown"
	ExportText     = "txt"
	ExportJSON     = "json"
)

// ValidExportFormat проверяет формат экспорта
func ValidExportFormat(format string) bool {
	switch format {
	case ExportMarkdown, ExportText, ExportJSON:
		return true
	}
	return false
}

func validScore(field string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return &ValidationError{Field: field, Reason: "must be within [0,1]"}
	}
	return nil
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
