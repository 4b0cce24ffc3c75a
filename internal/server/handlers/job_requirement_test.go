package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cvagent/pkg/api"
)

func TestJobRequirementHandler_CRUD(t *testing.T) {
	env := newTestEnv(t)
	alice, token := env.createUser(t, "alice")

	job := env.createJob(t, token, sampleJob())
	require.NotEmpty(t, job.ID)
	assert.Equal(t, alice.ID, job.UserID)

	w := env.do(t, http.MethodGet, "/api/job-requirements/"+job.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeEnvelope[*api.JobRequirement](t, w).Data
	assert.Equal(t, []string{"Go", "Kubernetes", "Kafka"}, got.Skills)
	assert.Equal(t, []string{"5+ years of Go"}, got.Requirements)

	update := sampleJob()
	update.Skills = nil
	update.SalaryRange = "100k-120k"
	w = env.do(t, http.MethodPut, "/api/job-requirements/"+job.ID, token, update)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/job-requirements", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeEnvelope[[]*api.JobRequirement](t, w).Data
	require.Len(t, list, 1)
	assert.Equal(t, "100k-120k", list[0].SalaryRange)
	assert.Empty(t, list[0].Skills)

	w = env.do(t, http.MethodDelete, "/api/job-requirements/"+job.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "job requirement deleted", decodeEnvelope[any](t, w).Message)

	w = env.do(t, http.MethodDelete, "/api/job-requirements/"+job.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJobRequirementHandler_Validation(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.createUser(t, "alice")

	job := sampleJob()
	job.Company = ""
	w := env.do(t, http.MethodPost, "/api/job-requirements", token, job)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeEnvelope[any](t, w).Message, "company")
}

func TestJobRequirementHandler_Ownership(t *testing.T) {
	env := newTestEnv(t)
	alice, aliceToken := env.createUser(t, "alice")
	_, bobToken := env.createUser(t, "bob")

	job := env.createJob(t, aliceToken, sampleJob())

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		var body any
		if method == http.MethodPut {
			body = sampleJob()
		}
		w := env.do(t, method, "/api/job-requirements/"+job.ID, bobToken, body)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
	}

	w := env.do(t, http.MethodGet, "/api/job-requirements?userId="+alice.ID, bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeEnvelope[[]*api.JobRequirement](t, w).Data)
}
