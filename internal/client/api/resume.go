package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

// ResumeAPI методы /resumes
type ResumeAPI struct {
	sender Sender
}

// NewResumeAPI создает модуль резюме поверх Gateway
func NewResumeAPI(sender Sender) *ResumeAPI {
	return &ResumeAPI{sender: sender}
}

// List возвращает резюме; userID опционален
func (a *ResumeAPI) List(ctx context.Context, userID string) ([]pkgapi.Resume, error) {
	var resumes []pkgapi.Resume
	req := Request{Method: http.MethodGet, Path: "/resumes", Query: userQuery(userID)}
	if err := a.sender.Send(ctx, req, &resumes); err != nil {
		return nil, fmt.Errorf("list resumes failed: %w", err)
	}
	return resumes, nil
}

// Get возвращает резюме по id
func (a *ResumeAPI) Get(ctx context.Context, id string) (*pkgapi.Resume, error) {
	var resume pkgapi.Resume
	if err := a.sender.Send(ctx, Request{Method: http.MethodGet, Path: resumePath(id)}, &resume); err != nil {
		return nil, fmt.Errorf("get resume failed: %w", err)
	}
	return &resume, nil
}

// Create создает резюме
func (a *ResumeAPI) Create(ctx context.Context, resume *pkgapi.Resume) (*pkgapi.Resume, error) {
	var created pkgapi.Resume
	if err := a.sender.Send(ctx, Request{Method: http.MethodPost, Path: "/resumes", Body: resume}, &created); err != nil {
		return nil, fmt.Errorf("create resume failed: %w", err)
	}
	return &created, nil
}

// Update заменяет резюме
func (a *ResumeAPI) Update(ctx context.Context, id string, resume *pkgapi.Resume) (*pkgapi.Resume, error) {
	var updated pkgapi.Resume
	if err := a.sender.Send(ctx, Request{Method: http.MethodPut, Path: resumePath(id), Body: resume}, &updated); err != nil {
		return nil, fmt.Errorf("update resume failed: %w", err)
	}
	return &updated, nil
}

// Delete удаляет резюме
func (a *ResumeAPI) Delete(ctx context.Context, id string) error {
	if err := a.sender.Send(ctx, Request{Method: http.MethodDelete, Path: resumePath(id)}, nil); err != nil {
		return fmt.Errorf("delete resume failed: %w", err)
	}
	return nil
}

// Optimize запускает серверную оптимизацию резюме
func (a *ResumeAPI) Optimize(ctx context.Context, id string, params pkgapi.OptimizeRequest) (*pkgapi.OptimizationResult, error) {
	var result pkgapi.OptimizationResult
	req := Request{Method: http.MethodPost, Path: resumePath(id) + "/optimize", Body: &params}
	if err := a.sender.Send(ctx, req, &result); err != nil {
		return nil, fmt.Errorf("optimize resume failed: %w", err)
	}
	return &result, nil
}

// Export скачивает резюме в указанном формате
func (a *ResumeAPI) Export(ctx context.Context, id, format string) ([]byte, error) {
	var data []byte
	req := Request{
		Method: http.MethodGet,
		Path:   resumePath(id) + "/export",
		Query:  url.Values{"format": []string{format}},
		Kind:   KindBinary,
	}
	if err := a.sender.Send(ctx, req, &data); err != nil {
		return nil, fmt.Errorf("export resume failed: %w", err)
	}
	return data, nil
}

func resumePath(id string) string {
	return "/resumes/" + url.PathEscape(id)
}

func userQuery(userID string) url.Values {
	if userID == "" {
		return nil
	}
	return url.Values{"userId": []string{userID}}
}
