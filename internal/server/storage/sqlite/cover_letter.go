package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/cvagent/internal/server/storage"
	"github.com/iudanet/cvagent/pkg/api"
)

const coverLetterColumns = `id, user_id, resume_id, job_requirement_id, template_id, title, company_name, position,
	generated_by, status, content, quality_score, match_score, ai_optimized, created_at, updated_at`

// CreateCoverLetter сохраняет новое письмо
func (s *Storage) CreateCoverLetter(ctx context.Context, letter *api.CoverLetter) error {
	content, err := toJSON(letter.Content)
	if err != nil {
		return err
	}

	query := `INSERT INTO cover_letters (` + coverLetterColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		letter.ID,
		letter.UserID,
		letter.ResumeID,
		letter.JobRequirementID,
		letter.TemplateID,
		letter.Title,
		letter.CompanyName,
		letter.Position,
		letter.GeneratedBy,
		letter.Status,
		content,
		nullFloat(letter.QualityScore),
		nullFloat(letter.MatchScore),
		letter.AIOptimized,
		letter.CreatedAt,
		letter.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cover letter: %w", err)
	}

	return nil
}

// GetCoverLetter возвращает письмо владельца
func (s *Storage) GetCoverLetter(ctx context.Context, userID, id string) (*api.CoverLetter, error) {
	query := `SELECT ` + coverLetterColumns + ` FROM cover_letters WHERE id = ? AND user_id = ?`

	letter, err := scanCoverLetter(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get cover letter: %w", err)
	}

	return letter, nil
}

// ListCoverLetters возвращает письма пользователя с учетом фильтра
func (s *Storage) ListCoverLetters(ctx context.Context, userID string, filter storage.CoverLetterFilter) ([]*api.CoverLetter, error) {
	conditions := []string{"user_id = ?"}
	args := []any{userID}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.CompanyName != "" {
		conditions = append(conditions, "company_name = ?")
		args = append(args, filter.CompanyName)
	}
	if filter.ResumeID != "" {
		conditions = append(conditions, "resume_id = ?")
		args = append(args, filter.ResumeID)
	}

	query := `SELECT ` + coverLetterColumns + ` FROM cover_letters WHERE ` +
		strings.Join(conditions, " AND ") + ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cover letters: %w", err)
	}
	defer rows.Close()

	letters := make([]*api.CoverLetter, 0)
	for rows.Next() {
		letter, err := scanCoverLetter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cover letter: %w", err)
		}
		letters = append(letters, letter)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return letters, nil
}

// UpdateCoverLetter обновляет изменяемые поля письма владельца
func (s *Storage) UpdateCoverLetter(ctx context.Context, letter *api.CoverLetter) error {
	content, err := toJSON(letter.Content)
	if err != nil {
		return err
	}

	query := `
		UPDATE cover_letters
		SET title = ?, status = ?, generated_by = ?, content = ?, quality_score = ?, match_score = ?,
			ai_optimized = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		letter.Title,
		letter.Status,
		letter.GeneratedBy,
		content,
		nullFloat(letter.QualityScore),
		nullFloat(letter.MatchScore),
		letter.AIOptimized,
		letter.UpdatedAt,
		letter.ID,
		letter.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update cover letter: %w", err)
	}

	return checkAffected(result, storage.ErrNotFound)
}

// DeleteCoverLetter удаляет письмо владельца
func (s *Storage) DeleteCoverLetter(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM cover_letters WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cover letter: %w", err)
	}

	return checkAffected(result, storage.ErrNotFound)
}

func scanCoverLetter(row scanner) (*api.CoverLetter, error) {
	letter := &api.CoverLetter{}
	var content string
	var qualityScore, matchScore sql.NullFloat64

	err := row.Scan(
		&letter.ID,
		&letter.UserID,
		&letter.ResumeID,
		&letter.JobRequirementID,
		&letter.TemplateID,
		&letter.Title,
		&letter.CompanyName,
		&letter.Position,
		&letter.GeneratedBy,
		&letter.Status,
		&content,
		&qualityScore,
		&matchScore,
		&letter.AIOptimized,
		&letter.CreatedAt,
		&letter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := fromJSON(content, &letter.Content); err != nil {
		return nil, err
	}
	letter.QualityScore = floatPtr(qualityScore)
	letter.MatchScore = floatPtr(matchScore)

	return letter, nil
}
