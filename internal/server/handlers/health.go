package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/iudanet/cvagent/pkg/api"
)

// Pinger проверка доступности хранилища
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler обрабатывает health check запросы
type HealthHandler struct {
	base
	db      Pinger
	version string
}

// NewHealthHandler создает новый handler для health check
func NewHealthHandler(logger *slog.Logger, db Pinger, version string) *HealthHandler {
	return &HealthHandler{
		base:    base{logger: logger},
		db:      db,
		version: version,
	}
}

// HealthResponse представляет ответ health check
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Health обрабатывает GET /api/health
// Health check endpoint для мониторинга
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			h.logger.ErrorContext(r.Context(), "database is unavailable", slog.Any("error", err))
			h.write(w, api.Envelope[HealthResponse]{
				Data:  HealthResponse{Status: "unavailable", Version: h.version},
				Error: "database unavailable",
			}, http.StatusServiceUnavailable)
			return
		}
	}

	h.sendJSON(w, HealthResponse{Status: "ok", Version: h.version}, http.StatusOK)
}
