package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/cvagent/internal/server/storage"
	"github.com/iudanet/cvagent/pkg/api"
)

// ListTemplates возвращает шаблоны писем, шаблон по умолчанию первым
func (s *Storage) ListTemplates(ctx context.Context, category string) ([]*api.CoverLetterTemplate, error) {
	query := `SELECT id, name, category, content, is_default FROM cover_letter_templates`
	var args []any
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, category)
	}
	query += ` ORDER BY is_default DESC, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	templates := make([]*api.CoverLetterTemplate, 0)
	for rows.Next() {
		tmpl := &api.CoverLetterTemplate{}
		if err := rows.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Category, &tmpl.Content, &tmpl.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, tmpl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return templates, nil
}

// GetTemplate возвращает шаблон по ID
func (s *Storage) GetTemplate(ctx context.Context, id string) (*api.CoverLetterTemplate, error) {
	query := `SELECT id, name, category, content, is_default FROM cover_letter_templates WHERE id = ?`

	tmpl := &api.CoverLetterTemplate{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&tmpl.ID, &tmpl.Name, &tmpl.Category, &tmpl.Content, &tmpl.IsDefault)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	return tmpl, nil
}
