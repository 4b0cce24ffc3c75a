package scoring

import (
	"strings"

	"github.com/iudanet/cvagent/pkg/api"
)

// ForResume собирает Input для резюме; job может быть nil
func ForResume(r *api.Resume, req api.OptimizeRequest, job *api.JobRequirement) Input {
	in := base(req, job)
	in.OriginalScore = r.QualityScore
	in.Text = r.Text()
	in.Skills = append(append([]string{}, r.Skills.TechnicalSkills...), r.Skills.SoftSkills...)
	return in
}

// ForCoverLetter собирает Input для сопроводительного письма; job может быть nil
func ForCoverLetter(c *api.CoverLetter, req api.OptimizeRequest, job *api.JobRequirement) Input {
	in := base(req, job)
	if c.QualityScore != nil {
		in.OriginalScore = *c.QualityScore
	}
	in.Text = c.Text()
	if in.TargetCompany == "" {
		in.TargetCompany = c.CompanyName
	}
	if in.TargetRole == "" {
		in.TargetRole = c.Position
	}
	return in
}

func base(req api.OptimizeRequest, job *api.JobRequirement) Input {
	in := Input{
		Type:          req.OptimizationType,
		TargetRole:    req.TargetRole,
		TargetCompany: req.TargetCompany,
		Keywords:      splitList(req.AdditionalRequirements),
	}
	if job != nil {
		in.Keywords = append(in.Keywords, job.Skills...)
		in.RequiredSkills = job.Skills
		if in.TargetRole == "" {
			in.TargetRole = job.Title
		}
		if in.TargetCompany == "" {
			in.TargetCompany = job.Company
		}
	}
	return in
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
