package cli

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

func TestProjectCommands(t *testing.T) {
	project := pkgapi.Project{
		ID:              "p-1",
		ResumeID:        "r-1",
		Name:            "Payments gateway",
		Status:          pkgapi.ProjectDevelopment,
		TechnologyStack: "Go, Kafka",
		Tags:            []string{"backend"},
		Achievements:    []string{"p99 under 50ms"},
	}

	var created pkgapi.Project
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/projects":
			assert.Equal(t, "backend", r.URL.Query().Get("tag"))
			assert.False(t, r.URL.Query().Has("status"), "empty filters are not sent")
			writeEnvelope(w, http.StatusOK, pkgapi.OK([]pkgapi.Project{project}))
		case r.Method == http.MethodGet && r.URL.Path == "/api/projects/resume/r-1":
			writeEnvelope(w, http.StatusOK, pkgapi.OK([]pkgapi.Project{}))
		case r.Method == http.MethodGet && r.URL.Path == "/api/projects/p-1":
			writeEnvelope(w, http.StatusOK, pkgapi.OK(project))
		case r.Method == http.MethodPost && r.URL.Path == "/api/projects":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			created.ID = "p-2"
			writeEnvelope(w, http.StatusCreated, pkgapi.OK(created))
		case r.Method == http.MethodPut && r.URL.Path == "/api/projects/p-1/status":
			updated := project
			updated.Status = r.URL.Query().Get("status")
			writeEnvelope(w, http.StatusOK, pkgapi.OK(updated))
		case r.Method == http.MethodPost && r.URL.Path == "/api/projects/p-1/tags":
			updated := project
			updated.Tags = append([]string{"backend"}, r.URL.Query().Get("tag"))
			writeEnvelope(w, http.StatusOK, pkgapi.OK(updated))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/projects/p-1/tags/backend":
			updated := project
			updated.Tags = nil
			writeEnvelope(w, http.StatusOK, pkgapi.OK(updated))
		case r.Method == http.MethodGet && r.URL.Path == "/api/projects/tags":
			writeEnvelope(w, http.StatusOK, pkgapi.OK([]string{"backend", "go"}))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/projects/p-1":
			writeEnvelope(w, http.StatusOK, pkgapi.Envelope[any]{Success: true, Message: "project deleted"})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.String())
			w.WriteHeader(http.StatusNotFound)
		}
	}, "")
	env.login(t)

	require.NoError(t, env.run(t, "project", "list", "--tag", "backend"))
	assert.Contains(t, env.out.String(), "1. Payments gateway [development]")
	assert.Contains(t, env.out.String(), "Tags: backend")

	require.NoError(t, env.run(t, "project", "list", "--resume", "r-1"))
	assert.Contains(t, env.out.String(), "No projects found.")

	require.NoError(t, env.run(t, "project", "get", "p-1"))
	assert.Contains(t, env.out.String(), "Stack:    Go, Kafka")
	assert.Contains(t, env.out.String(), "  - p99 under 50ms")

	path := filepath.Join(t.TempDir(), "project.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"CLI","resumeId":"r-1","tags":["tooling"]}`), 0o600))
	require.NoError(t, env.run(t, "project", "create", "-f", path))
	assert.Equal(t, "CLI", created.Name)
	assert.Contains(t, env.out.String(), "ID: p-2")

	require.NoError(t, env.run(t, "project", "status", "p-1", "testing"))
	assert.Contains(t, env.out.String(), "Project Payments gateway is now testing.")

	require.NoError(t, env.run(t, "project", "tag", "p-1", "kafka"))
	assert.Contains(t, env.out.String(), "Tags: backend, kafka")

	require.NoError(t, env.run(t, "project", "tag", "p-1", "backend", "--remove"))

	require.NoError(t, env.run(t, "project", "tags"))
	assert.Contains(t, env.out.String(), "#go")

	require.NoError(t, env.run(t, "project", "delete", "p-1"))
	assert.Contains(t, env.out.String(), "Project p-1 deleted.")
}

func TestProjectStatusCommand_InvalidStatus(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	}, "")
	env.login(t)

	err := env.run(t, "project", "status", "p-1", "shipped")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
}
