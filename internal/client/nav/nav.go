// Package nav models the navigation boundaries of the hosting application.
// The gateway and the auth flow force navigations; the CLI subscribes to them.
package nav

import (
	"log/slog"
	"sync"
)

// Boundary именованная точка навигации приложения
type Boundary string

// Известные границы навигации
const (
	Login     Boundary = "/login"
	Dashboard Boundary = "/dashboard"
)

// Navigator выполняет принудительный переход на границу приложения
type Navigator interface {
	Navigate(to Boundary)
}

// Router хранит текущее положение и уведомляет подписчиков о переходах
type Router struct {
	logger    *slog.Logger
	current   Boundary
	listeners []func(Boundary)
	mu        sync.Mutex
}

var _ Navigator = (*Router)(nil)

// NewRouter создает роутер, стартующий с границы start
func NewRouter(logger *slog.Logger, start Boundary) *Router {
	return &Router{
		logger:  logger,
		current: start,
	}
}

// Navigate выполняет переход. Подписчики вызываются синхронно, вне блокировки.
func (r *Router) Navigate(to Boundary) {
	r.mu.Lock()
	from := r.current
	r.current = to
	listeners := append([]func(Boundary){}, r.listeners...)
	r.mu.Unlock()

	r.logger.Debug("navigate", "from", string(from), "to", string(to))

	for _, fn := range listeners {
		fn(to)
	}
}

// Current возвращает текущую границу
func (r *Router) Current() Boundary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// OnNavigate регистрирует подписчика на переходы
func (r *Router) OnNavigate(fn func(Boundary)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}
