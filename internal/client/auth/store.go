package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iudanet/cvagent/internal/client/api"
	"github.com/iudanet/cvagent/internal/client/storage"
	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

// SessionStore хранит токен и профиль пользователя как единое целое.
// Запись и удаление всегда затрагивают обе части сессии.
type SessionStore struct {
	storage storage.SessionStorage
	mu      sync.RWMutex
}

// Compile-time check that SessionStore implements api.SessionProvider
var _ api.SessionProvider = (*SessionStore)(nil)

// NewSessionStore создает хранилище сессии поверх storage
func NewSessionStore(storage storage.SessionStorage) *SessionStore {
	return &SessionStore{
		storage: storage,
	}
}

// Get возвращает текущую сессию или storage.ErrSessionNotFound
func (s *SessionStore) Get(ctx context.Context) (*storage.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.storage.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	// Неполная сессия равносильна ее отсутствию
	if !session.Complete() {
		return nil, storage.ErrSessionNotFound
	}
	return session, nil
}

// Set сохраняет токен вместе с пользователем
func (s *SessionStore) Set(ctx context.Context, token string, user pkgapi.User) error {
	session := &storage.Session{Token: token, User: user}
	if !session.Complete() {
		return storage.ErrIncompleteSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Clear удаляет токен и пользователя
func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.DeleteSession(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// IsAuthenticated проверяет наличие сохраненной сессии
func (s *SessionStore) IsAuthenticated(ctx context.Context) (bool, error) {
	_, err := s.Get(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, storage.ErrSessionNotFound):
		return false, nil
	default:
		return false, err
	}
}
