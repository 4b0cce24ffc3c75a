package optimize

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

type fakeJobs struct {
	job *pkgapi.JobRequirement
	err error
	ids []string
}

func (f *fakeJobs) Get(ctx context.Context, id string) (*pkgapi.JobRequirement, error) {
	f.ids = append(f.ids, id)
	return f.job, f.err
}

type fakeOptimizer struct {
	result *pkgapi.OptimizationResult
	ids    []string
}

func (f *fakeOptimizer) Optimize(ctx context.Context, id string, params pkgapi.OptimizeRequest) (*pkgapi.OptimizationResult, error) {
	f.ids = append(f.ids, id)
	return f.result, nil
}

func TestFromCoverLetter(t *testing.T) {
	score := 0.6
	letter := &pkgapi.CoverLetter{ID: "c-1", Title: "Acme", QualityScore: &score}

	a := FromCoverLetter(letter)
	assert.Equal(t, KindCoverLetter, a.Kind)
	assert.InDelta(t, 0.6, a.QualityScore, 1e-9)

	a = FromCoverLetter(&pkgapi.CoverLetter{ID: "c-2"})
	assert.Zero(t, a.QualityScore)

	optimized := FromCoverLetter(letter).optimized(0.8)
	require.NotNil(t, optimized.CoverLetter.QualityScore)
	assert.InDelta(t, 0.8, *optimized.CoverLetter.QualityScore, 1e-9)
	assert.True(t, optimized.CoverLetter.AIOptimized)
	assert.InDelta(t, 0.6, score, 1e-9)
	assert.False(t, letter.AIOptimized)
}

func TestLocalEvaluator_Resume(t *testing.T) {
	jobs := &fakeJobs{job: &pkgapi.JobRequirement{
		ID:      "j-1",
		Title:   "Platform Engineer",
		Company: "Acme",
		Skills:  []string{"Go", "Terraform"},
	}}
	params := Params{OptimizationType: pkgapi.OptimizeKeywords, JobRequirementID: "j-1"}

	result, err := LocalEvaluator{Jobs: jobs}.Evaluate(context.Background(), FromResume(testResume()), params)
	require.NoError(t, err)

	assert.Equal(t, []string{"j-1"}, jobs.ids)
	assert.InDelta(t, 0.45, result.OriginalScore, 1e-9)
	assert.GreaterOrEqual(t, result.NewScore, result.OriginalScore)
	assert.LessOrEqual(t, result.NewScore, 1.0)
	assert.NotEmpty(t, result.Improvements)
	assert.NotEmpty(t, result.Suggestions)
}

func TestLocalEvaluator_CoverLetter(t *testing.T) {
	letter := &pkgapi.CoverLetter{
		ID:          "c-1",
		CompanyName: "Acme",
		Position:    "Go Developer",
		Content:     pkgapi.CoverLetterContent{OpeningParagraph: "I build Go services"},
	}

	result, err := LocalEvaluator{}.Evaluate(context.Background(), FromCoverLetter(letter), Params{OptimizationType: pkgapi.OptimizeContent})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Improvements)
	assert.NotEmpty(t, result.Suggestions)
}

func TestLocalEvaluator_Errors(t *testing.T) {
	jobs := &fakeJobs{err: errors.New("not found")}
	params := Params{OptimizationType: pkgapi.OptimizeKeywords, JobRequirementID: "missing"}

	_, err := LocalEvaluator{Jobs: jobs}.Evaluate(context.Background(), FromResume(testResume()), params)
	assert.ErrorContains(t, err, "failed to load job requirement")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = LocalEvaluator{}.Evaluate(ctx, FromResume(testResume()), Params{OptimizationType: pkgapi.OptimizeContent})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = LocalEvaluator{}.Evaluate(context.Background(), Artifact{ID: "x"}, Params{OptimizationType: pkgapi.OptimizeContent})
	assert.Error(t, err)
}

func TestRemoteEvaluator_RoutesByKind(t *testing.T) {
	resumes := &fakeOptimizer{result: sampleResult()}
	letters := &fakeOptimizer{result: sampleResult()}
	evaluator := RemoteEvaluator{Resumes: resumes, CoverLetters: letters}
	params := Params{OptimizationType: pkgapi.OptimizeComprehensive}

	_, err := evaluator.Evaluate(context.Background(), FromResume(testResume()), params)
	require.NoError(t, err)
	_, err = evaluator.Evaluate(context.Background(), FromCoverLetter(&pkgapi.CoverLetter{ID: "c-1"}), params)
	require.NoError(t, err)

	assert.Equal(t, []string{"r-1"}, resumes.ids)
	assert.Equal(t, []string{"c-1"}, letters.ids)

	_, err = RemoteEvaluator{}.Evaluate(context.Background(), FromResume(testResume()), params)
	assert.Error(t, err)
}
