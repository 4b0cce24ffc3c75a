package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/cvagent/internal/models"
	"github.com/iudanet/cvagent/internal/server/jwt"
	"github.com/iudanet/cvagent/internal/server/storage"
	"github.com/iudanet/cvagent/internal/validation"
	"github.com/iudanet/cvagent/pkg/api"
)

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	base
	userStorage  storage.UserStorage
	tokenStorage storage.TokenStorage
	tokens       *jwt.Service
	bcryptCost   int
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, tokenStorage storage.TokenStorage, tokens *jwt.Service) *AuthHandler {
	return &AuthHandler{
		base:         base{logger: logger},
		userStorage:  userStorage,
		tokenStorage: tokenStorage,
		tokens:       tokens,
		bcryptCost:   bcrypt.DefaultCost,
	}
}

// Register обрабатывает POST /api/auth/register
// Регистрация нового пользователя, в ответе сразу выдается токен
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	// 1. Валидация полей
	for _, check := range []func() error{
		func() error { return validation.ValidateUsername(req.Username) },
		func() error { return validation.ValidateEmail(req.Email) },
		func() error { return validation.ValidatePassword(req.Password) },
	} {
		if err := check(); err != nil {
			h.logger.WarnContext(ctx, "invalid registration", slog.String("username", req.Username), slog.Any("error", err))
			h.sendError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	// 2. Хешируем пароль
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.bcryptCost)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         api.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	// 3. Сохраняем в БД
	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists", slog.String("username", req.Username))
			h.sendError(w, "username or email already taken", http.StatusConflict)
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID))

	h.issueToken(w, r, user, http.StatusCreated)
}

// Login обрабатывает POST /api/auth/login
// Аутентификация пользователя по паролю
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := validation.ValidateCredentials(req.Username, req.Password); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found", slog.String("username", req.Username))
			h.sendError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("username", req.Username))
		h.sendError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	// Обновляем last_login
	if err := h.userStorage.UpdateLastLogin(ctx, user.ID, time.Now().UTC()); err != nil {
		// Не критичная ошибка, логируем но не прерываем
		h.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "user logged in successfully",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID))

	h.issueToken(w, r, user, http.StatusOK)
}

// Logout обрабатывает POST /api/auth/logout
// Отзывает текущий access token (jti попадает в denylist)
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := GetClaims(ctx)
	if !ok {
		h.sendError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	revoked := &models.RevokedToken{
		JTI:       claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Time,
		RevokedAt: time.Now().UTC(),
	}

	if err := h.tokenStorage.RevokeToken(ctx, revoked); err != nil {
		h.logger.ErrorContext(ctx, "failed to revoke token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "user logged out successfully", slog.String("user_id", claims.UserID))
	h.sendMessage(w, "logged out")
}

// Me обрабатывает GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// токен пережил пользователя
			h.sendError(w, "user not found", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, user.Profile(), http.StatusOK)
}

func (h *AuthHandler) issueToken(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	token, _, err := h.tokens.Generate(user.ID, user.Username, user.Role)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to generate access token", slog.Any("error", err))
		h.sendError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.sendJSON(w, api.AuthResponse{Token: token, User: user.Profile()}, status)
}
