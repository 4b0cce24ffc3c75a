package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cvagent/pkg/api"
)

func basicRequest() api.CoverLetterRequest {
	return api.CoverLetterRequest{
		Title:       "Acme application",
		CompanyName: "Acme",
		Position:    "Go Developer",
	}
}

func (e *testEnv) createLetter(t *testing.T, token, path string, req api.CoverLetterRequest) *api.CoverLetter {
	t.Helper()

	w := e.do(t, http.MethodPost, path, token, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeEnvelope[*api.CoverLetter](t, w).Data
}

func TestCoverLetterHandler_CreateBasic(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.createUser(t, "alice")

	letter := env.createLetter(t, token, "/api/cover-letters/basic", basicRequest())

	assert.Equal(t, alice.ID, letter.UserID)
	assert.Equal(t, api.CoverLetterDraft, letter.Status)
	assert.Equal(t, api.GeneratedByTemplate, letter.GeneratedBy)
	assert.Equal(t, "professional", letter.TemplateID, "default template is used")
	assert.Equal(t, "Dear Hiring Manager,", letter.Content.Salutation)
	assert.Contains(t, letter.Content.OpeningParagraph, "Go Developer position at Acme")
	assert.Contains(t, letter.Content.BodyParagraphs, "Acme")
	assert.Equal(t, "Thank you for your consideration.", letter.Content.ClosingParagraph)
	assert.Nil(t, letter.MatchScore)
}

func TestCoverLetterHandler_CreateBasicWithTemplate(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")

	req := basicRequest()
	req.TemplateID = "technical"
	letter := env.createLetter(t, token, "/api/cover-letters/basic", req)

	assert.Equal(t, "technical", letter.TemplateID)
	assert.Equal(t, "Hello Acme team,", letter.Content.Salutation)

	req.TemplateID = "missing"
	w := env.do(t, http.MethodPost, "/api/cover-letters/basic", token, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "template not found", decodeEnvelope[any](t, w).Message)
}

func TestCoverLetterHandler_CreateBasicWithContent(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")

	req := basicRequest()
	req.Content = &api.CoverLetterContent{Salutation: "Hi,", BodyParagraphs: "Hand written."}
	letter := env.createLetter(t, token, "/api/cover-letters/basic", req)

	assert.Equal(t, api.GeneratedByManual, letter.GeneratedBy)
	assert.Empty(t, letter.TemplateID)
	assert.Equal(t, "Hand written.", letter.Content.BodyParagraphs)
}

func TestCoverLetterHandler_CreateBasicValidation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")

	req := basicRequest()
	req.Position = ""
	w := env.do(t, http.MethodPost, "/api/cover-letters/basic", token, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeEnvelope[any](t, w).Message, "position")
}

func TestCoverLetterHandler_CreatePersonalized(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")

	resume := env.createResume(t, token, sampleResume())
	job := env.createJob(t, token, sampleJob())

	req := basicRequest()
	req.ResumeID = resume.ID
	req.JobRequirementID = job.ID
	letter := env.createLetter(t, token, "/api/cover-letters/personalized", req)

	assert.Equal(t, api.GeneratedByAI, letter.GeneratedBy)
	assert.Equal(t, resume.ID, letter.ResumeID)
	assert.Equal(t, job.ID, letter.JobRequirementID)
	assert.Contains(t, letter.Content.OpeningParagraph, "Backend engineer with eight years of Go.")
	assert.Contains(t, letter.Content.BodyParagraphs, "Go, Kubernetes")
	assert.Contains(t, letter.Content.Signature, "Ada Lovelace")
	assert.Equal(t, "ada@example.com | +1 555 0100", letter.Content.ContactInfo)
	require.NotNil(t, letter.MatchScore)

	t.Run("requires resume and job", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/cover-letters/personalized", token, basicRequest())
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeEnvelope[any](t, w).Message, "resumeId")
	})

	t.Run("resume of another user", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/cover-letters/personalized", bobToken, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "resume not found", decodeEnvelope[any](t, w).Message)
	})
}

func TestCoverLetterHandler_ListFilters(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")

	acme := env.createLetter(t, token, "/api/cover-letters/basic", basicRequest())

	other := basicRequest()
	other.CompanyName = "Globex"
	globex := env.createLetter(t, token, "/api/cover-letters/basic", other)

	ready := api.CoverLetterReady
	w := env.do(t, http.MethodPut, "/api/cover-letters/"+globex.ID+"/customize", token, api.CoverLetterCustomization{Status: ready})
	require.Equal(t, http.StatusOK, w.Code)

	list := func(token, query string) []*api.CoverLetter {
		w := env.do(t, http.MethodGet, "/api/cover-letters"+query, token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		return decodeEnvelope[[]*api.CoverLetter](t, w).Data
	}

	assert.Len(t, list(token, ""), 2)

	byCompany := list(token, "?companyName=Acme")
	require.Len(t, byCompany, 1)
	assert.Equal(t, acme.ID, byCompany[0].ID)

	byStatus := list(token, "?status=ready")
	require.Len(t, byStatus, 1)
	assert.Equal(t, globex.ID, byStatus[0].ID)

	assert.Empty(t, list(bobToken, ""))
}

func TestCoverLetterHandler_Customize(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.createUser(t, "alice")
	letter := env.createLetter(t, token, "/api/cover-letters/basic", basicRequest())

	score := 0.8
	optimized := true
	w := env.do(t, http.MethodPut, "/api/cover-letters/"+letter.ID+"/customize", token, api.CoverLetterCustomization{
		Content:      &api.CoverLetterContent{Salutation: "Hello,", BodyParagraphs: "Rewritten."},
		QualityScore: &score,
		AIOptimized:  &optimized,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decodeEnvelope[*api.CoverLetter](t, w).Data
	assert.Equal(t, "Rewritten.", got.Content.BodyParagraphs)
	assert.Equal(t, api.GeneratedByManual, got.GeneratedBy)
	assert.Equal(t, letter.Title, got.Title, "empty title is left unchanged")
	assert.Equal(t, api.CoverLetterDraft, got.Status)

	stored, err := env.store.GetCoverLetter(context.Background(), alice.ID, letter.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.QualityScore)
	assert.Equal(t, 0.8, *stored.QualityScore)
	assert.True(t, stored.AIOptimized)

	t.Run("invalid status", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/cover-letters/"+letter.ID+"/customize", token, api.CoverLetterCustomization{Status: "lost"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCoverLetterHandler_OptimizeUsesLetterJob(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.createUser(t, "alice")

	resume := env.createResume(t, token, sampleResume())
	job := env.createJob(t, token, sampleJob())

	req := basicRequest()
	req.ResumeID = resume.ID
	req.JobRequirementID = job.ID
	letter := env.createLetter(t, token, "/api/cover-letters/personalized", req)

	w := env.do(t, http.MethodPost, "/api/cover-letters/"+letter.ID+"/optimize", token, api.OptimizeRequest{
		OptimizationType: api.OptimizeKeywords,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	result := decodeEnvelope[api.OptimizationResult](t, w).Data
	assert.Equal(t, 0.0, result.OriginalScore)
	assert.GreaterOrEqual(t, result.NewScore, result.OriginalScore)
	assert.NotEmpty(t, result.Improvements)
	// вакансия письма дает подсказку про компанию
	assert.Contains(t, result.Suggestions, "Explain why you want to join Acme")

	stored, err := env.store.GetCoverLetter(context.Background(), alice.ID, letter.ID)
	require.NoError(t, err)
	assert.True(t, stored.AIOptimized)
	require.NotNil(t, stored.QualityScore)
	assert.Equal(t, result.NewScore, *stored.QualityScore)
	assert.NotNil(t, stored.MatchScore)
}

func TestCoverLetterHandler_DeleteAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")

	letter := env.createLetter(t, token, "/api/cover-letters/basic", basicRequest())
	path := "/api/cover-letters/" + letter.ID

	for _, tt := range []struct {
		body   any
		method string
		path   string
	}{
		{method: http.MethodGet, path: path},
		{method: http.MethodDelete, path: path},
		{method: http.MethodPut, path: path + "/customize", body: api.CoverLetterCustomization{Title: "stolen"}},
		{method: http.MethodPost, path: path + "/optimize", body: api.OptimizeRequest{OptimizationType: api.OptimizeContent}},
		{method: http.MethodGet, path: path + "/export"},
	} {
		w := env.do(t, tt.method, tt.path, bobToken, tt.body)
		assert.Equal(t, http.StatusNotFound, w.Code, tt.method+" "+tt.path)
	}

	w := env.do(t, http.MethodDelete, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cover letter deleted", decodeEnvelope[any](t, w).Message)

	w = env.do(t, http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCoverLetterHandler_Templates(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")

	w := env.do(t, http.MethodGet, "/api/cover-letters/templates", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decodeEnvelope[[]*api.CoverLetterTemplate](t, w).Data
	require.Len(t, all, 3)
	assert.True(t, all[0].IsDefault)

	w = env.do(t, http.MethodGet, "/api/cover-letters/templates?category=engineering", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	engineering := decodeEnvelope[[]*api.CoverLetterTemplate](t, w).Data
	require.Len(t, engineering, 1)
	assert.Equal(t, "technical", engineering[0].ID)
}
