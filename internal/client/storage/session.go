package storage

import (
	"context"

	"github.com/iudanet/cvagent/pkg/api"
)

//go:generate moq -out session_mock.go . SessionStorage

// SessionStorage defines interface for storing the client session.
// Token and user are always written and removed together.
type SessionStorage interface {
	// SaveSession stores token and user as one record
	SaveSession(ctx context.Context, session *Session) error

	// GetSession retrieves the stored session
	// Returns ErrSessionNotFound if nothing is stored
	GetSession(ctx context.Context) (*Session, error)

	// DeleteSession removes the stored session. Deleting a missing session is not an error.
	DeleteSession(ctx context.Context) error
}

// Session представляет авторизованную сессию пользователя на клиенте
type Session struct {
	Token string   `json:"token"`
	User  api.User `json:"user"`
}

// Complete проверяет, что в сессии есть и токен, и пользователь
func (s *Session) Complete() bool {
	return s != nil && s.Token != "" && s.User.ID != ""
}
