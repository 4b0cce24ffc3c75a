package api

import (
	"context"
	"fmt"
	"net/http"

	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

// AuthAPI методы /auth
type AuthAPI struct {
	sender Sender
}

// NewAuthAPI создает модуль авторизации поверх Gateway
func NewAuthAPI(sender Sender) *AuthAPI {
	return &AuthAPI{sender: sender}
}

// Login выполняет аутентификацию пользователя
func (a *AuthAPI) Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.AuthResponse, error) {
	var resp pkgapi.AuthResponse
	if err := a.sender.Send(ctx, Request{Method: http.MethodPost, Path: "/auth/login", Body: req}, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Register регистрирует нового пользователя
func (a *AuthAPI) Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.AuthResponse, error) {
	var resp pkgapi.AuthResponse
	if err := a.sender.Send(ctx, Request{Method: http.MethodPost, Path: "/auth/register", Body: req}, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Logout уведомляет сервер о выходе
func (a *AuthAPI) Logout(ctx context.Context) error {
	if err := a.sender.Send(ctx, Request{Method: http.MethodPost, Path: "/auth/logout"}, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Me возвращает профиль текущего пользователя
func (a *AuthAPI) Me(ctx context.Context) (*pkgapi.User, error) {
	var user pkgapi.User
	if err := a.sender.Send(ctx, Request{Method: http.MethodGet, Path: "/auth/me"}, &user); err != nil {
		return nil, fmt.Errorf("current user request failed: %w", err)
	}
	return &user, nil
}
