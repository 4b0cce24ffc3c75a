package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

// CoverLetterAPI методы /cover-letters
type CoverLetterAPI struct {
	sender Sender
}

// NewCoverLetterAPI создает модуль сопроводительных писем поверх Gateway
func NewCoverLetterAPI(sender Sender) *CoverLetterAPI {
	return &CoverLetterAPI{sender: sender}
}

// List возвращает письма; query передается как есть
func (a *CoverLetterAPI) List(ctx context.Context, query url.Values) ([]pkgapi.CoverLetter, error) {
	var letters []pkgapi.CoverLetter
	if err := a.sender.Send(ctx, Request{Method: http.MethodGet, Path: "/cover-letters", Query: query}, &letters); err != nil {
		return nil, fmt.Errorf("list cover letters failed: %w", err)
	}
	return letters, nil
}

// Get возвращает письмо по id
func (a *CoverLetterAPI) Get(ctx context.Context, id string) (*pkgapi.CoverLetter, error) {
	var letter pkgapi.CoverLetter
	if err := a.sender.Send(ctx, Request{Method: http.MethodGet, Path: coverLetterPath(id)}, &letter); err != nil {
		return nil, fmt.Errorf("get cover letter failed: %w", err)
	}
	return &letter, nil
}

// CreateBasic создает письмо без привязки к резюме и вакансии
func (a *CoverLetterAPI) CreateBasic(ctx context.Context, req *pkgapi.CoverLetterRequest) (*pkgapi.CoverLetter, error) {
	var letter pkgapi.CoverLetter
	if err := a.sender.Send(ctx, Request{Method: http.MethodPost, Path: "/cover-letters/basic", Body: req}, &letter); err != nil {
		return nil, fmt.Errorf("create cover letter failed: %w", err)
	}
	return &letter, nil
}

// CreatePersonalized создает письмо под конкретное резюме и вакансию
func (a *CoverLetterAPI) CreatePersonalized(ctx context.Context, req *pkgapi.CoverLetterRequest) (*pkgapi.CoverLetter, error) {
	var letter pkgapi.CoverLetter
	body := personalizedRequest{req}
	if err := a.sender.Send(ctx, Request{Method: http.MethodPost, Path: "/cover-letters/personalized", Body: body}, &letter); err != nil {
		return nil, fmt.Errorf("create personalized cover letter failed: %w", err)
	}
	return &letter, nil
}

// Optimize запускает серверную оптимизацию письма
func (a *CoverLetterAPI) Optimize(ctx context.Context, id string, params pkgapi.OptimizeRequest) (*pkgapi.OptimizationResult, error) {
	var result pkgapi.OptimizationResult
	req := Request{Method: http.MethodPost, Path: coverLetterPath(id) + "/optimize", Body: &params}
	if err := a.sender.Send(ctx, req, &result); err != nil {
		return nil, fmt.Errorf("optimize cover letter failed: %w", err)
	}
	return &result, nil
}

// Customize частично обновляет письмо
func (a *CoverLetterAPI) Customize(ctx context.Context, id string, c *pkgapi.CoverLetterCustomization) (*pkgapi.CoverLetter, error) {
	var letter pkgapi.CoverLetter
	req := Request{Method: http.MethodPut, Path: coverLetterPath(id) + "/customize", Body: c}
	if err := a.sender.Send(ctx, req, &letter); err != nil {
		return nil, fmt.Errorf("customize cover letter failed: %w", err)
	}
	return &letter, nil
}

// Delete удаляет письмо
func (a *CoverLetterAPI) Delete(ctx context.Context, id string) error {
	if err := a.sender.Send(ctx, Request{Method: http.MethodDelete, Path: coverLetterPath(id)}, nil); err != nil {
		return fmt.Errorf("delete cover letter failed: %w", err)
	}
	return nil
}

// Export скачивает письмо в указанном формате
func (a *CoverLetterAPI) Export(ctx context.Context, id, format string) ([]byte, error) {
	var data []byte
	req := Request{
		Method: http.MethodGet,
		Path:   coverLetterPath(id) + "/export",
		Query:  url.Values{"format": []string{format}},
		Kind:   KindBinary,
	}
	if err := a.sender.Send(ctx, req, &data); err != nil {
		return nil, fmt.Errorf("export cover letter failed: %w", err)
	}
	return data, nil
}

// Templates возвращает шаблоны писем; query передается как есть
func (a *CoverLetterAPI) Templates(ctx context.Context, query url.Values) ([]pkgapi.CoverLetterTemplate, error) {
	var templates []pkgapi.CoverLetterTemplate
	req := Request{Method: http.MethodGet, Path: "/cover-letters/templates", Query: query}
	if err := a.sender.Send(ctx, req, &templates); err != nil {
		return nil, fmt.Errorf("list templates failed: %w", err)
	}
	return templates, nil
}

// personalizedRequest подменяет валидацию: для персонализированного письма нужны ссылки
type personalizedRequest struct {
	*pkgapi.CoverLetterRequest
}

func (p personalizedRequest) Validate() error {
	return p.ValidatePersonalized()
}

func coverLetterPath(id string) string {
	return "/cover-letters/" + url.PathEscape(id)
}
