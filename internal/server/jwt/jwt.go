// Package jwt выпускает и проверяет access token сервера (HS256).
package jwt

import (
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer значение claim iss
const Issuer = "cvagent"

// ErrInvalidToken возвращается для любого непринятого токена
var ErrInvalidToken = errors.New("invalid token")

// Claims represents JWT claims. ID (jti) уникален для каждого токена,
// по нему logout отзывает токен.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	gojwt.RegisteredClaims
}

// Service provides JWT token generation and validation
type Service struct {
	now    func() time.Time
	secret []byte
	ttl    time.Duration
}

// NewService creates a new JWT service
// secret should be a cryptographically secure random string
func NewService(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL время жизни выпускаемых токенов
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Generate создает новый подписанный access token
func (s *Service) Generate(userID, username, role string) (string, *Claims, error) {
	now := s.now()

	claims := &Claims{
		UserID:   userID,
		Username: username,
		Role:     role,
		RegisteredClaims: gojwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			Issuer:    Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			NotBefore: gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return token, claims, nil
}

// Validate проверяет подпись, срок действия и issuer токена
func (s *Service) Validate(token string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := gojwt.ParseWithClaims(token, claims, func(t *gojwt.Token) (any, error) {
		// Проверяем что используется правильный алгоритм подписи
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		gojwt.WithIssuer(Issuer),
		gojwt.WithTimeFunc(s.now),
		gojwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !parsed.Valid || claims.ID == "" || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
