package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/cvagent/internal/models"
)

// RevokeToken adds token jti to the denylist
func (s *Storage) RevokeToken(ctx context.Context, token *models.RevokedToken) error {
	query := `
		INSERT OR IGNORE INTO revoked_tokens (jti, user_id, expires_at, revoked_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		token.JTI,
		token.UserID,
		token.ExpiresAt.UTC(),
		token.RevokedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

// IsRevoked reports whether jti is in the denylist
func (s *Storage) IsRevoked(ctx context.Context, jti string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = ?)`

	var revoked bool
	if err := s.db.QueryRowContext(ctx, query, jti).Scan(&revoked); err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}

	return revoked, nil
}

// DeleteExpiredTokens removes denylist entries whose tokens have expired.
// Время хранится в UTC, иначе строковое сравнение в SQLite некорректно.
func (s *Storage) DeleteExpiredTokens(ctx context.Context) (int, error) {
	query := `DELETE FROM revoked_tokens WHERE expires_at < ?`

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}
