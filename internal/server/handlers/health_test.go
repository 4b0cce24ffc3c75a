package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cvagent/pkg/api"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler_Health(t *testing.T) {
	handler := NewHealthHandler(setupTestLogger(), pingerFunc(func(context.Context) error { return nil }), "1.2.3")

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var env api.Envelope[HealthResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "ok", env.Data.Status)
	assert.Equal(t, "1.2.3", env.Data.Version)
}

func TestHealthHandler_WithoutDatabase(t *testing.T) {
	handler := NewHealthHandler(setupTestLogger(), nil, "dev")

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	handler := NewHealthHandler(setupTestLogger(), pingerFunc(func(context.Context) error {
		return errors.New("database is locked")
	}), "dev")

	w := httptest.NewRecorder()
	handler.Health(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var env api.Envelope[HealthResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "unavailable", env.Data.Status)
	assert.Equal(t, "database unavailable", env.Error)
}
