// Package scoring implements the deterministic optimization stub shared by the
// server optimize endpoints and the client-side local evaluator.
package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/iudanet/cvagent/pkg/api"
)

// Веса итоговой оценки совпадения с вакансией
const (
	weightKeywords   = 0.3
	weightSkills     = 0.3
	weightExperience = 0.2
	weightEducation  = 0.1
	weightFormat     = 0.1

	// experience, education и format пока не анализируются и берутся фиксированными
	experienceScore = 0.7
	educationScore  = 0.8
	formatScore     = 0.9

	matchBonus = 0.05
)

// typeGain доля "оставшегося до 1" прироста для каждого типа оптимизации
var typeGain = map[api.OptimizationType]float64{
	api.OptimizeComprehensive: 0.40,
	api.OptimizeContent:       0.25,
	api.OptimizeStructure:     0.15,
	api.OptimizeKeywords:      0.20,
}

// Input входные данные для оценки
type Input struct {
	Type           api.OptimizationType
	Text           string // весь текст документа
	TargetRole     string
	TargetCompany  string
	Skills         []string // навыки из документа
	Keywords       []string // ключевые слова вакансии
	RequiredSkills []string // навыки, которые требует вакансия
	OriginalScore  float64
}

// MatchScore считает взвешенное совпадение документа с вакансией, не больше 1
func MatchScore(in Input) float64 {
	score := keywordScore(in)*weightKeywords +
		skillScore(in)*weightSkills +
		experienceScore*weightExperience +
		educationScore*weightEducation +
		formatScore*weightFormat
	return math.Min(score, 1.0)
}

// Evaluate возвращает результат оптимизации.
// NewScore никогда не меньше OriginalScore, списки никогда не пустые.
func Evaluate(in Input) api.OptimizationResult {
	original := clamp(in.OriginalScore)
	gain := typeGain[in.Type]
	if gain == 0 {
		gain = typeGain[api.OptimizeComprehensive]
	}

	next := original + (1-original)*gain + MatchScore(in)*matchBonus
	next = math.Max(original, round(clamp(next)))

	return api.OptimizationResult{
		OriginalScore: original,
		NewScore:      next,
		Improvements:  improvements(in),
		Suggestions:   suggestions(in),
	}
}

// MissingKeywords возвращает ключевые слова, которых нет в тексте, в исходном порядке
func MissingKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	var missing []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if !strings.Contains(lower, strings.ToLower(kw)) {
			missing = append(missing, kw)
		}
	}
	return missing
}

func keywordScore(in Input) float64 {
	total := 0
	for _, kw := range in.Keywords {
		if strings.TrimSpace(kw) != "" {
			total++
		}
	}
	if total == 0 {
		return 0
	}
	matched := total - len(MissingKeywords(in.Text, in.Keywords))
	return float64(matched) / float64(total)
}

func skillScore(in Input) float64 {
	if len(in.RequiredSkills) == 0 {
		return 0
	}
	have := make(map[string]struct{}, len(in.Skills))
	for _, s := range in.Skills {
		have[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	matched := 0
	for _, s := range in.RequiredSkills {
		if _, ok := have[strings.ToLower(strings.TrimSpace(s))]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(in.RequiredSkills))
}

func improvements(in Input) []string {
	switch in.Type {
	case api.OptimizeContent:
		return []string{
			"Added concrete project outcome data",
			"Reworded work experience around measurable results",
			"Sharpened the personal summary",
		}
	case api.OptimizeStructure:
		return []string{
			"Reordered sections to lead with the strongest experience",
			"Unified heading and date formatting",
			"Split long paragraphs into scannable bullet points",
		}
	case api.OptimizeKeywords:
		out := []string{"Aligned skill descriptions with the job requirement wording"}
		if missing := MissingKeywords(in.Text, in.Keywords); len(missing) > 0 {
			out = append(out, fmt.Sprintf("Worked in missing keywords: %s", strings.Join(missing, ", ")))
		} else {
			out = append(out, "Confirmed coverage of every target keyword")
		}
		return out
	default:
		return []string{
			"Added concrete project outcome data",
			"Made skill descriptions more precise",
			"Improved the wording of work experience",
			"Focused the personal summary on the target role",
		}
	}
}

func suggestions(in Input) []string {
	out := make([]string, 0, 5)
	if in.TargetRole != "" {
		out = append(out, fmt.Sprintf("Tailor the summary to the %s role", in.TargetRole))
	}
	if in.TargetCompany != "" {
		out = append(out, fmt.Sprintf("Explain why you want to join %s", in.TargetCompany))
	}
	if missing := missingSkills(in); len(missing) > 0 {
		out = append(out, fmt.Sprintf("Show evidence of: %s", strings.Join(missing, ", ")))
	}
	return append(out,
		"Add more quantified metrics",
		"Mention the most recent technology stack you worked with",
		"Highlight team collaboration experience",
	)
}

func missingSkills(in Input) []string {
	return MissingKeywords(strings.Join(in.Skills, "\n")+"\n"+in.Text, in.RequiredSkills)
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}
