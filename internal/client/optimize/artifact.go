package optimize

import pkgapi "github.com/iudanet/cvagent/pkg/api"

// Kind тип оптимизируемого документа
type Kind string

// Поддерживаемые документы
const (
	KindResume      Kind = "resume"
	KindCoverLetter Kind = "cover_letter"
)

// Artifact документ, к которому привязан контроллер.
// Ровно одно из полей Resume и CoverLetter заполнено.
type Artifact struct {
	Resume       *pkgapi.Resume
	CoverLetter  *pkgapi.CoverLetter
	ID           string
	Title        string
	Kind         Kind
	QualityScore float64
	AIOptimized  bool
}

// FromResume оборачивает резюме
func FromResume(r *pkgapi.Resume) Artifact {
	return Artifact{
		Resume:       r,
		ID:           r.ID,
		Title:        r.Title,
		Kind:         KindResume,
		QualityScore: r.QualityScore,
		AIOptimized:  r.AIOptimized,
	}
}

// FromCoverLetter оборачивает сопроводительное письмо
func FromCoverLetter(c *pkgapi.CoverLetter) Artifact {
	a := Artifact{
		CoverLetter: c,
		ID:          c.ID,
		Title:       c.Title,
		Kind:        KindCoverLetter,
		AIOptimized: c.AIOptimized,
	}
	if c.QualityScore != nil {
		a.QualityScore = *c.QualityScore
	}
	return a
}

// optimized возвращает копию с новой оценкой; исходные документы не меняются
func (a Artifact) optimized(newScore float64) Artifact {
	a.QualityScore = newScore
	a.AIOptimized = true

	if a.Resume != nil {
		r := *a.Resume
		r.QualityScore = newScore
		r.AIOptimized = true
		a.Resume = &r
	}
	if a.CoverLetter != nil {
		c := *a.CoverLetter
		score := newScore
		c.QualityScore = &score
		c.AIOptimized = true
		a.CoverLetter = &c
	}
	return a
}
