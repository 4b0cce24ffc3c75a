package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/cvagent/internal/client/api"
	"github.com/iudanet/cvagent/internal/client/nav"
	"github.com/iudanet/cvagent/internal/validation"
	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

//go:generate moq -out client_mock.go . Client

// Client сетевые вызовы /auth, реализуется api.AuthAPI
type Client interface {
	Login(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.AuthResponse, error)
	Register(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.AuthResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*pkgapi.User, error)
}

// Service предоставляет функции авторизации
type Service struct {
	client    Client
	store     *SessionStore
	navigator nav.Navigator
	logger    *slog.Logger
}

// NewService создает новый сервис авторизации
func NewService(client Client, store *SessionStore, navigator nav.Navigator, logger *slog.Logger) *Service {
	return &Service{
		client:    client,
		store:     store,
		navigator: navigator,
		logger:    logger,
	}
}

// Login выполняет аутентификацию пользователя.
// При успехе сохраняет сессию и переводит приложение на dashboard.
func (s *Service) Login(ctx context.Context, username, password string) (*pkgapi.User, error) {
	// Валидация входных данных
	if err := validation.ValidateCredentials(username, password); err != nil {
		return nil, err
	}

	resp, err := s.client.Login(ctx, pkgapi.LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if err := s.startSession(ctx, resp); err != nil {
		return nil, err
	}

	s.logger.Info("logged in", "username", resp.User.Username)
	return &resp.User, nil
}

// Register регистрирует нового пользователя и сразу открывает сессию
func (s *Service) Register(ctx context.Context, username, email, password string) (*pkgapi.User, error) {
	// Валидация входных данных
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	resp, err := s.client.Register(ctx, pkgapi.RegisterRequest{Username: username, Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	if err := s.startSession(ctx, resp); err != nil {
		return nil, err
	}

	s.logger.Info("registered", "username", resp.User.Username)
	return &resp.User, nil
}

// Logout выполняет выход из системы.
// Сервер уведомляется по возможности, локальная сессия удаляется всегда.
func (s *Service) Logout(ctx context.Context) error {
	// 1. Уведомляем сервер, ошибка не мешает выходу
	err := s.client.Logout(ctx)
	if err != nil {
		s.logger.Warn("server logout failed, clearing local session anyway", "error", err)
	}

	// 2. Удаляем локальную сессию
	clearErr := s.store.Clear(context.WithoutCancel(ctx))

	// 3. Переходим на логин. На 401 Gateway уже сделал это сам.
	if !errors.Is(err, api.ErrUnauthorized) {
		s.navigator.Navigate(nav.Login)
	}

	return clearErr
}

// Me возвращает профиль текущего пользователя с сервера
func (s *Service) Me(ctx context.Context) (*pkgapi.User, error) {
	user, err := s.client.Me(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return user, nil
}

// Current возвращает пользователя из локальной сессии без обращения к серверу
func (s *Service) Current(ctx context.Context) (*pkgapi.User, error) {
	session, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &session.User, nil
}

func (s *Service) startSession(ctx context.Context, resp *pkgapi.AuthResponse) error {
	if err := s.store.Set(ctx, resp.Token, resp.User); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	s.navigator.Navigate(nav.Dashboard)
	return nil
}
