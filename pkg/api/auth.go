package api

import "time"

// Роли пользователей
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User представляет профиль пользователя, который видит клиент
type User struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"` // user | admin
}

// AuthResponse представляет ответ login/register: токен и профиль
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
