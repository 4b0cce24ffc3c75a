package models

import (
	"time"

	"github.com/iudanet/cvagent/pkg/api"
)

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time  `json:"created_at"`    // время создания
	LastLogin    *time.Time `json:"last_login"`    // время последнего входа
	ID           string     `json:"id"`            // UUID пользователя
	Username     string     `json:"username"`      // уникальный username
	Email        string     `json:"email"`         // уникальный email
	PasswordHash string     `json:"password_hash"` // bcrypt хеш пароля
	Role         string     `json:"role"`          // user | admin
}

// Profile возвращает публичный профиль без хеша пароля
func (u *User) Profile() api.User {
	return api.User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// RevokedToken запись denylist для отозванного access token
type RevokedToken struct {
	ExpiresAt time.Time `json:"expires_at"` // после этого момента запись можно удалить
	RevokedAt time.Time `json:"revoked_at"`
	JTI       string    `json:"jti"` // ID токена (claim jti)
	UserID    string    `json:"user_id"`
}
