package storage

import (
	"context"

	"github.com/iudanet/cvagent/internal/models"
)

// TokenStorage defines interface for the access token denylist
type TokenStorage interface {
	// RevokeToken adds token jti to the denylist
	// Revoking the same jti twice is not an error
	RevokeToken(ctx context.Context, token *models.RevokedToken) error

	// IsRevoked reports whether jti is in the denylist
	IsRevoked(ctx context.Context, jti string) (bool, error)

	// DeleteExpiredTokens removes denylist entries whose tokens have expired
	// Returns number of deleted entries
	DeleteExpiredTokens(ctx context.Context) (int, error)
}
