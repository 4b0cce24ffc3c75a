package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/cvagent/internal/client/nav"
	"github.com/iudanet/cvagent/internal/client/storage"
	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

// DefaultTimeout ограничивает каждый запрос через Gateway
const DefaultTimeout = 10 * time.Second

// ResponseKind определяет, как декодировать успешный ответ
type ResponseKind int

const (
	// KindJSON ответ в JSON конверте, data декодируется в out
	KindJSON ResponseKind = iota
	// KindBinary сырые байты без конверта, out должен быть *[]byte
	KindBinary
)

// Request описывает один вызов REST API
type Request struct {
	Body   any
	Query  url.Values
	Method string
	Path   string
	Kind   ResponseKind
}

// Sender единственная точка выхода в сеть для доменных модулей
type Sender interface {
	Send(ctx context.Context, req Request, out any) error
}

//go:generate moq -out sessionprovider_mock.go . SessionProvider

// SessionProvider is the gateway's view of the session store
type SessionProvider interface {
	// Get returns the current session or storage.ErrSessionNotFound
	Get(ctx context.Context) (*storage.Session, error)

	// Clear removes token and user together
	Clear(ctx context.Context) error
}

type validator interface {
	Validate() error
}

// Gateway HTTP клиент с авторизацией по сессии.
// Перед запросом подставляет Bearer токен, на 401 очищает сессию
// и переводит приложение на страницу логина.
type Gateway struct {
	httpClient *http.Client
	session    SessionProvider
	navigator  nav.Navigator
	logger     *slog.Logger
	baseURL    string
	timeout    time.Duration
}

var _ Sender = (*Gateway)(nil)

// Option настраивает Gateway
type Option func(*Gateway)

// WithHTTPClient подменяет http.Client.
// Gateway работает с копией, переданный клиент не меняется.
func WithHTTPClient(c *http.Client) Option {
	return func(g *Gateway) {
		cp := *c
		g.httpClient = &cp
	}
}

// WithTimeout меняет таймаут запроса независимо от порядка опций
func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		g.timeout = d
	}
}

// NewGateway создает Gateway.
// baseURL включает базовый путь API, например http://localhost:8080/api
func NewGateway(baseURL string, session SessionProvider, navigator nav.Navigator, logger *slog.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    session,
		navigator:  navigator,
		logger:     logger,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(g)
	}
	// WithTimeout важнее таймаута клиента, клиент без таймаута получает DefaultTimeout
	switch {
	case g.timeout > 0:
		g.httpClient.Timeout = g.timeout
	case g.httpClient.Timeout == 0:
		g.httpClient.Timeout = DefaultTimeout
	}
	return g
}

// Send выполняет запрос ровно один раз.
// Для KindJSON поле data конверта декодируется в out (out может быть nil),
// для KindBinary out должен быть *[]byte.
// Ошибки сервера и транспорта возвращаются как *HTTPError.
func (g *Gateway) Send(ctx context.Context, req Request, out any) error {
	if req.Kind == KindBinary {
		if _, ok := out.(*[]byte); !ok {
			return fmt.Errorf("binary response requires *[]byte, got %T", out)
		}
	}

	// Валидируем тело до отправки
	if v, ok := req.Body.(validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}

	httpReq, err := g.newRequest(ctx, req)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		g.logger.Warn("request failed", "method", req.Method, "path", req.Path, "error", err)
		return transportError(err, g.httpClient.Timeout)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &HTTPError{Status: resp.StatusCode, Message: "failed to read response body", Err: err}
	}

	g.logger.Debug("request completed",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := &HTTPError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, respBody)}
		if resp.StatusCode == http.StatusUnauthorized {
			g.expireSession(ctx)
		}
		return httpErr
	}

	if req.Kind == KindBinary {
		*out.(*[]byte) = respBody
		return nil
	}

	return decodeEnvelope(resp.StatusCode, respBody, out)
}

func (g *Gateway) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := g.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		jsonData, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.Kind == KindJSON {
		httpReq.Header.Set("Accept", "application/json")
	}

	// Подставляем токен, если сессия есть
	session, err := g.session.Get(ctx)
	switch {
	case err == nil && session.Token != "":
		httpReq.Header.Set("Authorization", "Bearer "+session.Token)
	case err != nil && !errors.Is(err, storage.ErrSessionNotFound):
		// Без сессии запрос уходит неавторизованным
		g.logger.Warn("failed to read session, sending unauthenticated request", "error", err)
	}

	return httpReq, nil
}

// expireSession очищает сессию и переводит приложение на логин
func (g *Gateway) expireSession(ctx context.Context) {
	if err := g.session.Clear(context.WithoutCancel(ctx)); err != nil {
		g.logger.Error("failed to clear expired session", "error", err)
	}
	g.logger.Info("session expired, redirecting to login")
	g.navigator.Navigate(nav.Login)
}

func decodeEnvelope(status int, body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	var env pkgapi.RawEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !env.Success {
		return &HTTPError{Status: status, Message: env.Reason()}
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}

	return nil
}

func errorMessage(status int, body []byte) string {
	var env pkgapi.RawEnvelope
	if err := json.Unmarshal(body, &env); err == nil && (env.Message != "" || env.Error != "") {
		return env.Reason()
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}

func transportError(err error, timeout time.Duration) *HTTPError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &HTTPError{
			Message: fmt.Sprintf("request timed out after %s", timeout),
			Err:     err,
			timeout: true,
		}
	}
	return &HTTPError{Message: err.Error(), Err: err}
}
