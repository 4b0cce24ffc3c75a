package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

// JobRequirementAPI методы /job-requirements
type JobRequirementAPI struct {
	sender Sender
}

// NewJobRequirementAPI создает модуль вакансий поверх Gateway
func NewJobRequirementAPI(sender Sender) *JobRequirementAPI {
	return &JobRequirementAPI{sender: sender}
}

// List возвращает вакансии; userID опционален
func (a *JobRequirementAPI) List(ctx context.Context, userID string) ([]pkgapi.JobRequirement, error) {
	var jobs []pkgapi.JobRequirement
	req := Request{Method: http.MethodGet, Path: "/job-requirements", Query: userQuery(userID)}
	if err := a.sender.Send(ctx, req, &jobs); err != nil {
		return nil, fmt.Errorf("list job requirements failed: %w", err)
	}
	return jobs, nil
}

// Get возвращает вакансию по id
func (a *JobRequirementAPI) Get(ctx context.Context, id string) (*pkgapi.JobRequirement, error) {
	var job pkgapi.JobRequirement
	if err := a.sender.Send(ctx, Request{Method: http.MethodGet, Path: jobPath(id)}, &job); err != nil {
		return nil, fmt.Errorf("get job requirement failed: %w", err)
	}
	return &job, nil
}

// Create создает вакансию
func (a *JobRequirementAPI) Create(ctx context.Context, job *pkgapi.JobRequirement) (*pkgapi.JobRequirement, error) {
	var created pkgapi.JobRequirement
	if err := a.sender.Send(ctx, Request{Method: http.MethodPost, Path: "/job-requirements", Body: job}, &created); err != nil {
		return nil, fmt.Errorf("create job requirement failed: %w", err)
	}
	return &created, nil
}

// Update заменяет вакансию
func (a *JobRequirementAPI) Update(ctx context.Context, id string, job *pkgapi.JobRequirement) (*pkgapi.JobRequirement, error) {
	var updated pkgapi.JobRequirement
	if err := a.sender.Send(ctx, Request{Method: http.MethodPut, Path: jobPath(id), Body: job}, &updated); err != nil {
		return nil, fmt.Errorf("update job requirement failed: %w", err)
	}
	return &updated, nil
}

// Delete удаляет вакансию
func (a *JobRequirementAPI) Delete(ctx context.Context, id string) error {
	if err := a.sender.Send(ctx, Request{Method: http.MethodDelete, Path: jobPath(id)}, nil); err != nil {
		return fmt.Errorf("delete job requirement failed: %w", err)
	}
	return nil
}

func jobPath(id string) string {
	return "/job-requirements/" + url.PathEscape(id)
}
