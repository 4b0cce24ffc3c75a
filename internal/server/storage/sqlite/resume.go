package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/cvagent/internal/server/storage"
	"github.com/iudanet/cvagent/pkg/api"
)

const resumeColumns = `id, user_id, title, content, skills, quality_score, match_score, ai_optimized, created_at, updated_at`

// CreateResume сохраняет новое резюме
func (s *Storage) CreateResume(ctx context.Context, resume *api.Resume) error {
	content, err := toJSON(resume.Content)
	if err != nil {
		return err
	}
	skills, err := toJSON(resume.Skills)
	if err != nil {
		return err
	}

	query := `INSERT INTO resumes (` + resumeColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		resume.ID,
		resume.UserID,
		resume.Title,
		content,
		skills,
		resume.QualityScore,
		nullFloat(resume.MatchScore),
		resume.AIOptimized,
		resume.CreatedAt,
		resume.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert resume: %w", err)
	}

	return nil
}

// GetResume возвращает резюме владельца
func (s *Storage) GetResume(ctx context.Context, userID, id string) (*api.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE id = ? AND user_id = ?`

	resume, err := scanResume(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get resume: %w", err)
	}

	return resume, nil
}

// ListResumes возвращает резюме пользователя, новые первыми
func (s *Storage) ListResumes(ctx context.Context, userID string) ([]*api.Resume, error) {
	query := `SELECT ` + resumeColumns + ` FROM resumes WHERE user_id = ? ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query resumes: %w", err)
	}
	defer rows.Close()

	resumes := make([]*api.Resume, 0)
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resume: %w", err)
		}
		resumes = append(resumes, resume)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return resumes, nil
}

// UpdateResume обновляет резюме владельца
func (s *Storage) UpdateResume(ctx context.Context, resume *api.Resume) error {
	content, err := toJSON(resume.Content)
	if err != nil {
		return err
	}
	skills, err := toJSON(resume.Skills)
	if err != nil {
		return err
	}

	query := `
		UPDATE resumes
		SET title = ?, content = ?, skills = ?, quality_score = ?, match_score = ?, ai_optimized = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		resume.Title,
		content,
		skills,
		resume.QualityScore,
		nullFloat(resume.MatchScore),
		resume.AIOptimized,
		resume.UpdatedAt,
		resume.ID,
		resume.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update resume: %w", err)
	}

	return checkAffected(result, storage.ErrNotFound)
}

// DeleteResume удаляет резюме владельца
func (s *Storage) DeleteResume(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM resumes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete resume: %w", err)
	}

	return checkAffected(result, storage.ErrNotFound)
}

func scanResume(row scanner) (*api.Resume, error) {
	resume := &api.Resume{}
	var content, skills string
	var matchScore sql.NullFloat64

	err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&resume.Title,
		&content,
		&skills,
		&resume.QualityScore,
		&matchScore,
		&resume.AIOptimized,
		&resume.CreatedAt,
		&resume.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := fromJSON(content, &resume.Content); err != nil {
		return nil, err
	}
	if err := fromJSON(skills, &resume.Skills); err != nil {
		return nil, err
	}
	resume.MatchScore = floatPtr(matchScore)

	return resume, nil
}
