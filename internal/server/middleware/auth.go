// Package middleware содержит HTTP middleware сервера cvagent.
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/iudanet/cvagent/internal/server/handlers"
	"github.com/iudanet/cvagent/internal/server/jwt"
	"github.com/iudanet/cvagent/internal/server/storage"
	"github.com/iudanet/cvagent/pkg/api"
)

// AuthMiddleware создает middleware для проверки bearer токена.
// Отозванный (logout) токен отклоняется так же, как истекший.
func AuthMiddleware(logger *slog.Logger, tokens *jwt.Service, denylist storage.TokenStorage) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			// Извлекаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WarnContext(ctx, "Missing Authorization header")
				writeError(w, logger, "missing token", http.StatusUnauthorized)
				return
			}

			// Ожидаем формат: "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				logger.WarnContext(ctx, "Invalid Authorization header format")
				writeError(w, logger, "invalid token format", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.Validate(parts[1])
			if err != nil {
				logger.WarnContext(ctx, "Invalid access token", "error", err)
				writeError(w, logger, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			revoked, err := denylist.IsRevoked(ctx, claims.ID)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to check token denylist", "error", err)
				writeError(w, logger, "internal server error", http.StatusInternalServerError)
				return
			}
			if revoked {
				logger.WarnContext(ctx, "Revoked access token", "user_id", claims.UserID)
				writeError(w, logger, "token has been revoked", http.StatusUnauthorized)
				return
			}

			logger.DebugContext(ctx, "User authenticated", "user_id", claims.UserID, "username", claims.Username)

			next.ServeHTTP(w, r.WithContext(handlers.WithClaims(ctx, claims)))
		})
	}
}

// writeError отвечает конвертом api с ошибкой
func writeError(w http.ResponseWriter, logger *slog.Logger, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(api.Fail(http.StatusText(statusCode), message)); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}
