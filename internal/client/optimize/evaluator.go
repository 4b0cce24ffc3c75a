package optimize

import (
	"context"
	"fmt"

	"github.com/iudanet/cvagent/internal/scoring"
	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

//go:generate moq -out evaluator_mock.go . Evaluator

// Evaluator считает результат оптимизации, когда прогресс достиг 100
type Evaluator interface {
	Evaluate(ctx context.Context, artifact Artifact, params Params) (*pkgapi.OptimizationResult, error)
}

// JobSource загружает вакансию по id, реализуется api.JobRequirementAPI
type JobSource interface {
	Get(ctx context.Context, id string) (*pkgapi.JobRequirement, error)
}

// LocalEvaluator считает результат на клиенте без обращения к серверу
type LocalEvaluator struct {
	// Jobs опционален; без него JobRequirementID игнорируется
	Jobs JobSource
}

// Evaluate реализует Evaluator
func (e LocalEvaluator) Evaluate(ctx context.Context, artifact Artifact, params Params) (*pkgapi.OptimizationResult, error) {
	var job *pkgapi.JobRequirement
	if params.JobRequirementID != "" && e.Jobs != nil {
		var err error
		job, err = e.Jobs.Get(ctx, params.JobRequirementID)
		if err != nil {
			return nil, fmt.Errorf("failed to load job requirement: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var in scoring.Input
	switch {
	case artifact.Resume != nil:
		in = scoring.ForResume(artifact.Resume, params, job)
	case artifact.CoverLetter != nil:
		in = scoring.ForCoverLetter(artifact.CoverLetter, params, job)
	default:
		return nil, fmt.Errorf("artifact %q has no document", artifact.ID)
	}

	result := scoring.Evaluate(in)
	return &result, nil
}

// Optimizer серверная оптимизация документа,
// реализуется api.ResumeAPI и api.CoverLetterAPI
type Optimizer interface {
	Optimize(ctx context.Context, id string, params pkgapi.OptimizeRequest) (*pkgapi.OptimizationResult, error)
}

// RemoteEvaluator делегирует оценку серверу
type RemoteEvaluator struct {
	Resumes      Optimizer
	CoverLetters Optimizer
}

// Evaluate реализует Evaluator
func (e RemoteEvaluator) Evaluate(ctx context.Context, artifact Artifact, params Params) (*pkgapi.OptimizationResult, error) {
	var optimizer Optimizer
	switch artifact.Kind {
	case KindResume:
		optimizer = e.Resumes
	case KindCoverLetter:
		optimizer = e.CoverLetters
	}
	if optimizer == nil {
		return nil, fmt.Errorf("no remote optimizer for %s", artifact.Kind)
	}

	result, err := optimizer.Optimize(ctx, artifact.ID, params)
	if err != nil {
		return nil, err
	}
	return result, nil
}
