package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter реализует ограничение частоты запросов per-key (обычно IP)
// Каждому ключу соответствует свой token bucket из x/time/rate
type RateLimiter struct {
	visitors map[string]*visitor
	logger   *slog.Logger
	cleanupC chan struct{}
	stopOnce sync.Once
	limit    rate.Limit
	burst    int
	window   time.Duration
	mu       sync.Mutex
}

// visitor limiter конкретного ключа и время последнего обращения
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter создает новый rate limiter
// requests - максимальное количество запросов в окне window (и размер всплеска)
// window - временное окно (например, 1 минута), за которое bucket полностью пополняется
func NewRateLimiter(requests int, window time.Duration, logger *slog.Logger) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    requests,
		window:   window,
		logger:   logger,
		cleanupC: make(chan struct{}),
	}

	// Запускаем периодическую очистку неактивных ключей
	go rl.cleanup()

	return rl
}

// cleanup периодически удаляет неактивные ключи для экономии памяти
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupOldVisitors(time.Now())
		case <-rl.cleanupC:
			return
		}
	}
}

// cleanupOldVisitors удаляет ключи, которые не использовались дольше 2*window
func (rl *RateLimiter) cleanupOldVisitors(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.window*2 {
			delete(rl.visitors, key)
		}
	}
}

// Stop останавливает cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.cleanupC) })
}

// Allow проверяет, разрешен ли запрос для данного ключа
func (rl *RateLimiter) Allow(key string) bool {
	return rl.allowAt(key, time.Now())
}

func (rl *RateLimiter) allowAt(key string, now time.Time) bool {
	rl.mu.Lock()
	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	rl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

// Middleware возвращает http middleware, отвечающий 429 при превышении лимита
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := getClientIP(r)

		if !rl.Allow(key) {
			rl.logger.WarnContext(r.Context(), "Rate limit exceeded",
				"ip", key,
				"method", r.Method,
				"path", r.URL.Path,
			)

			w.Header().Set("Retry-After", retryAfter(rl.limit))
			writeError(w, rl.logger, "rate limit exceeded, please try again later", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// PathRateLimit отдельный лимит для конкретного пути
type PathRateLimit struct {
	Path     string
	Requests int
	Window   time.Duration
}

// PathLimiters набор limiters по путям с limiter по умолчанию
type PathLimiters struct {
	byPath   map[string]*RateLimiter
	fallback *RateLimiter
}

// NewPathLimiters создает limiters для путей; defaultRequests <= 0 отключает лимит по умолчанию
func NewPathLimiters(limits []PathRateLimit, defaultRequests int, defaultWindow time.Duration, logger *slog.Logger) *PathLimiters {
	pl := &PathLimiters{byPath: make(map[string]*RateLimiter, len(limits))}
	for _, limit := range limits {
		pl.byPath[limit.Path] = NewRateLimiter(limit.Requests, limit.Window, logger)
	}
	if defaultRequests > 0 {
		pl.fallback = NewRateLimiter(defaultRequests, defaultWindow, logger)
	}
	return pl
}

// Middleware выбирает limiter по r.URL.Path
func (pl *PathLimiters) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limiter, exists := pl.byPath[r.URL.Path]
		if !exists {
			limiter = pl.fallback
		}
		if limiter == nil {
			next.ServeHTTP(w, r)
			return
		}
		limiter.Middleware(next).ServeHTTP(w, r)
	})
}

// Stop останавливает все limiters
func (pl *PathLimiters) Stop() {
	for _, l := range pl.byPath {
		l.Stop()
	}
	if pl.fallback != nil {
		pl.fallback.Stop()
	}
}

func retryAfter(limit rate.Limit) string {
	seconds := 1
	if limit > 0 && limit < 1 {
		seconds = int(1/float64(limit) + 0.5)
	}
	return strconv.Itoa(seconds)
}

// getClientIP извлекает IP адрес клиента из запроса
// Проверяет заголовки X-Forwarded-For и X-Real-IP для прокси
func getClientIP(r *http.Request) string {
	// Проверяем X-Forwarded-For (для прокси/load balancers)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Берем первый IP из списка (реальный клиент)
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// RemoteAddr без порта: все соединения одного клиента делят bucket
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
