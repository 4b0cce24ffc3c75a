package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cvagent/internal/models"
	"github.com/iudanet/cvagent/internal/server/jwt"
	"github.com/iudanet/cvagent/internal/server/storage/sqlite"
	"github.com/iudanet/cvagent/pkg/api"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv роутер с настоящими handlers поверх in-memory SQLite
type testEnv struct {
	store  *sqlite.Storage
	tokens *jwt.Service
	router http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	env := &testEnv{
		store:  store,
		tokens: jwt.NewService("handlers-test-secret", time.Hour),
	}

	logger := setupTestLogger()
	auth := NewAuthHandler(logger, store, store, env.tokens)
	// минимальная стоимость bcrypt ускоряет тесты
	auth.bcryptCost = 4
	resumes := NewResumeHandler(logger, store, store)
	letters := NewCoverLetterHandler(logger, store, store, store, store)
	jobs := NewJobRequirementHandler(logger, store)
	projects := NewProjectHandler(logger, store, store)

	r := chi.NewRouter()
	r.Post("/api/auth/register", auth.Register)
	r.Post("/api/auth/login", auth.Login)
	r.Group(func(r chi.Router) {
		r.Use(env.authenticate)

		r.Post("/api/auth/logout", auth.Logout)
		r.Get("/api/auth/me", auth.Me)

		r.Get("/api/resumes", resumes.List)
		r.Post("/api/resumes", resumes.Create)
		r.Get("/api/resumes/{id}", resumes.Get)
		r.Put("/api/resumes/{id}", resumes.Update)
		r.Delete("/api/resumes/{id}", resumes.Delete)
		r.Post("/api/resumes/{id}/optimize", resumes.Optimize)
		r.Get("/api/resumes/{id}/export", resumes.Export)

		r.Get("/api/cover-letters", letters.List)
		r.Get("/api/cover-letters/templates", letters.Templates)
		r.Post("/api/cover-letters/basic", letters.CreateBasic)
		r.Post("/api/cover-letters/personalized", letters.CreatePersonalized)
		r.Get("/api/cover-letters/{id}", letters.Get)
		r.Delete("/api/cover-letters/{id}", letters.Delete)
		r.Put("/api/cover-letters/{id}/customize", letters.Customize)
		r.Post("/api/cover-letters/{id}/optimize", letters.Optimize)
		r.Get("/api/cover-letters/{id}/export", letters.Export)

		r.Get("/api/job-requirements", jobs.List)
		r.Post("/api/job-requirements", jobs.Create)
		r.Get("/api/job-requirements/{id}", jobs.Get)
		r.Put("/api/job-requirements/{id}", jobs.Update)
		r.Delete("/api/job-requirements/{id}", jobs.Delete)

		r.Get("/api/projects", projects.List)
		r.Post("/api/projects", projects.Create)
		r.Get("/api/projects/tags", projects.Tags)
		r.Get("/api/projects/resume/{resumeId}", projects.ListByResume)
		r.Get("/api/projects/{id}", projects.Get)
		r.Put("/api/projects/{id}", projects.Update)
		r.Delete("/api/projects/{id}", projects.Delete)
		r.Put("/api/projects/{id}/status", projects.UpdateStatus)
		r.Post("/api/projects/{id}/tags", projects.AddTag)
		r.Delete("/api/projects/{id}/tags/{tag}", projects.RemoveTag)
	})
	env.router = r

	return env
}

// authenticate упрощенный аналог middleware.AuthMiddleware без denylist
func (e *testEnv) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := e.tokens.Validate(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// createUser сохраняет пользователя напрямую в хранилище и возвращает его токен
func (e *testEnv) createUser(t *testing.T, username string) (*models.User, string) {
	t.Helper()

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "unused",
		Role:         api.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, e.store.CreateUser(context.Background(), user))

	token, _, err := e.tokens.Generate(user.ID, user.Username, user.Role)
	require.NoError(t, err)
	return user, token
}

// do выполняет запрос; body сериализуется в JSON, строка отправляется как есть
func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// decodeEnvelope разбирает конверт ответа
func decodeEnvelope[T any](t *testing.T, w *httptest.ResponseRecorder) api.Envelope[T] {
	t.Helper()

	var env api.Envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return env
}

// createResume создает резюме через API
func (e *testEnv) createResume(t *testing.T, token string, resume api.Resume) *api.Resume {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/resumes", token, resume)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := decodeEnvelope[*api.Resume](t, w)
	return env.Data
}

// createJob создает вакансию через API
func (e *testEnv) createJob(t *testing.T, token string, job api.JobRequirement) *api.JobRequirement {
	t.Helper()

	w := e.do(t, http.MethodPost, "/api/job-requirements", token, job)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	env := decodeEnvelope[*api.JobRequirement](t, w)
	return env.Data
}

func sampleResume() api.Resume {
	return api.Resume{
		Title: "Backend Engineer",
		Content: api.ResumeContent{
			PersonalInfo: api.PersonalInfo{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+1 555 0100"},
			Summary:      "Backend engineer with eight years of Go. Loves distributed systems.",
			Experience:   "Built payment services in Go and PostgreSQL. Led a team of four.",
			Education:    "BSc Computer Science",
		},
		Skills: api.ResumeSkills{
			TechnicalSkills: []string{"Go", "PostgreSQL", "Kubernetes"},
			SoftSkills:      []string{"Mentoring"},
		},
		QualityScore: 0.5,
	}
}

func sampleJob() api.JobRequirement {
	return api.JobRequirement{
		Title:        "Senior Go Developer",
		Company:      "Acme",
		Description:  "Build distributed systems in Go",
		Location:     "Remote",
		JobType:      "full-time",
		Requirements: []string{"5+ years of Go"},
		Skills:       []string{"Go", "Kubernetes", "Kafka"},
	}
}
