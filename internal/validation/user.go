package validation

import (
	"fmt"
	"net/mail"
	"regexp"
)

// UsernamePattern определяет допустимый формат username
// Латинские буквы, цифры, нижнее подчеркивание, точка и дефис
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

const (
	// MinUsernameLen минимальная длина username
	MinUsernameLen = 3
	// MaxUsernameLen максимальная длина username
	MaxUsernameLen = 50
	// MinPasswordLen минимальная длина пароля при регистрации
	MinPasswordLen = 6
)

// ValidateUsername проверяет, что username соответствует требованиям
// Длина: 3-50 символов
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, '.', '-' and '_'")
	}

	return nil
}

// ValidateEmail проверяет формат email (только адрес, без display name)
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email %q is not a valid address", email)
	}

	return nil
}

// ValidatePassword проверяет требования к паролю при регистрации
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	return nil
}

// ValidateCredentials проверяет данные формы логина: оба поля обязательны
func ValidateCredentials(username, password string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	return nil
}
