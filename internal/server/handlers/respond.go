// Package handlers содержит HTTP обработчики REST API cvagent.
// Все JSON ответы обернуты в api.Envelope.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/iudanet/cvagent/internal/server/storage"
	"github.com/iudanet/cvagent/pkg/api"
)

// maxBodySize ограничение на размер тела запроса
const maxBodySize = 1 << 20

// base общие методы ответа, встраивается в каждый handler
type base struct {
	logger *slog.Logger
}

// sendJSON отправляет успешный конверт с данными
func (b base) sendJSON(w http.ResponseWriter, data any, statusCode int) {
	b.write(w, api.OK(data), statusCode)
}

// sendMessage отправляет успешный конверт без данных
func (b base) sendMessage(w http.ResponseWriter, message string) {
	b.write(w, api.Envelope[any]{Success: true, Message: message}, http.StatusOK)
}

// sendError отправляет конверт с ошибкой
func (b base) sendError(w http.ResponseWriter, message string, statusCode int) {
	b.write(w, api.Fail(http.StatusText(statusCode), message), statusCode)
}

func (b base) write(w http.ResponseWriter, body any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		b.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// decode разбирает тело запроса, при ошибке сам отвечает 400
func (b base) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v); err != nil {
		b.logger.WarnContext(r.Context(), "failed to decode request body", slog.Any("error", err))
		b.sendError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// validate вызывает Validate, ошибка валидации превращается в 400
func (b base) validate(w http.ResponseWriter, v interface{ Validate() error }) bool {
	if err := v.Validate(); err != nil {
		b.sendError(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// userID возвращает владельца запроса; без него отвечает 401
func (b base) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		b.sendError(w, "authentication required", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// storageError отвечает по ошибке хранилища: ErrNotFound -> 404, иначе 500
func (b base) storageError(w http.ResponseWriter, r *http.Request, err error, what string) {
	if errors.Is(err, storage.ErrNotFound) {
		b.sendError(w, what+" not found", http.StatusNotFound)
		return
	}
	b.logger.ErrorContext(r.Context(), "storage error", slog.String("entity", what), slog.Any("error", err))
	b.sendError(w, "internal server error", http.StatusInternalServerError)
}
