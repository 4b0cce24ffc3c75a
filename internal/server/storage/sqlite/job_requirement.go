package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/cvagent/internal/server/storage"
	"github.com/iudanet/cvagent/pkg/api"
)

const jobColumns = `id, user_id, title, company, description, experience_level, salary_range, location, job_type,
	requirements, skills, created_at, updated_at`

// CreateJobRequirement сохраняет новую вакансию
func (s *Storage) CreateJobRequirement(ctx context.Context, job *api.JobRequirement) error {
	requirements, skills, err := jobLists(job)
	if err != nil {
		return err
	}

	query := `INSERT INTO job_requirements (` + jobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		job.ID,
		job.UserID,
		job.Title,
		job.Company,
		job.Description,
		job.ExperienceLevel,
		job.SalaryRange,
		job.Location,
		job.JobType,
		requirements,
		skills,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert job requirement: %w", err)
	}

	return nil
}

// GetJobRequirement возвращает вакансию владельца
func (s *Storage) GetJobRequirement(ctx context.Context, userID, id string) (*api.JobRequirement, error) {
	query := `SELECT ` + jobColumns + ` FROM job_requirements WHERE id = ? AND user_id = ?`

	job, err := scanJobRequirement(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job requirement: %w", err)
	}

	return job, nil
}

// ListJobRequirements возвращает вакансии пользователя
func (s *Storage) ListJobRequirements(ctx context.Context, userID string) ([]*api.JobRequirement, error) {
	query := `SELECT ` + jobColumns + ` FROM job_requirements WHERE user_id = ? ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query job requirements: %w", err)
	}
	defer rows.Close()

	jobs := make([]*api.JobRequirement, 0)
	for rows.Next() {
		job, err := scanJobRequirement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job requirement: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return jobs, nil
}

// UpdateJobRequirement обновляет вакансию владельца
func (s *Storage) UpdateJobRequirement(ctx context.Context, job *api.JobRequirement) error {
	requirements, skills, err := jobLists(job)
	if err != nil {
		return err
	}

	query := `
		UPDATE job_requirements
		SET title = ?, company = ?, description = ?, experience_level = ?, salary_range = ?, location = ?,
			job_type = ?, requirements = ?, skills = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		job.Title,
		job.Company,
		job.Description,
		job.ExperienceLevel,
		job.SalaryRange,
		job.Location,
		job.JobType,
		requirements,
		skills,
		job.UpdatedAt,
		job.ID,
		job.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job requirement: %w", err)
	}

	return checkAffected(result, storage.ErrNotFound)
}

// DeleteJobRequirement удаляет вакансию владельца
func (s *Storage) DeleteJobRequirement(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM job_requirements WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete job requirement: %w", err)
	}

	return checkAffected(result, storage.ErrNotFound)
}

func jobLists(job *api.JobRequirement) (string, string, error) {
	requirements, err := toJSON(nonNil(job.Requirements))
	if err != nil {
		return "", "", err
	}
	skills, err := toJSON(nonNil(job.Skills))
	if err != nil {
		return "", "", err
	}
	return requirements, skills, nil
}

// nonNil сохраняет пустой список как [] вместо null
func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func scanJobRequirement(row scanner) (*api.JobRequirement, error) {
	job := &api.JobRequirement{}
	var requirements, skills string

	err := row.Scan(
		&job.ID,
		&job.UserID,
		&job.Title,
		&job.Company,
		&job.Description,
		&job.ExperienceLevel,
		&job.SalaryRange,
		&job.Location,
		&job.JobType,
		&requirements,
		&skills,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := fromJSON(requirements, &job.Requirements); err != nil {
		return nil, err
	}
	if err := fromJSON(skills, &job.Skills); err != nil {
		return nil, err
	}

	return job, nil
}
