// Package server собирает HTTP сервер cvagent: роутер, middleware и фоновые задачи.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/iudanet/cvagent/internal/config"
	"github.com/iudanet/cvagent/internal/server/handlers"
	"github.com/iudanet/cvagent/internal/server/jwt"
	"github.com/iudanet/cvagent/internal/server/middleware"
	"github.com/iudanet/cvagent/internal/server/storage/sqlite"
	"github.com/iudanet/cvagent/pkg/api"
)

// Server HTTP сервер поверх SQLite хранилища
type Server struct {
	logger  *slog.Logger
	store   *sqlite.Storage
	tokens  *jwt.Service
	limits  *middleware.PathLimiters
	handler http.Handler
	cfg     config.ServerConfig
}

// New создает сервер и собирает роутер
func New(cfg config.ServerConfig, store *sqlite.Storage, logger *slog.Logger, version string) *Server {
	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: logger,
		tokens: jwt.NewService(cfg.JWTSecret, cfg.TokenTTL),
		limits: middleware.NewPathLimiters([]middleware.PathRateLimit{
			{Path: "/api/auth/login", Requests: cfg.AuthRateLimit, Window: cfg.RateWindow},
			{Path: "/api/auth/register", Requests: cfg.AuthRateLimit, Window: cfg.RateWindow},
		}, cfg.RateLimit, cfg.RateWindow, logger),
	}
	s.handler = s.routes(version)
	return s
}

// Handler возвращает корневой http.Handler (используется в тестах)
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes(version string) http.Handler {
	authHandler := handlers.NewAuthHandler(s.logger, s.store, s.store, s.tokens)
	resumeHandler := handlers.NewResumeHandler(s.logger, s.store, s.store)
	letterHandler := handlers.NewCoverLetterHandler(s.logger, s.store, s.store, s.store, s.store)
	jobHandler := handlers.NewJobRequirementHandler(s.logger, s.store)
	projectHandler := handlers.NewProjectHandler(s.logger, s.store, s.store)
	healthHandler := handlers.NewHealthHandler(s.logger, s.store, version)

	r := chi.NewRouter()

	// 1. request id, 2. recovery, 3. logging, 4. rate limit
	r.Use(chimw.RequestID)
	r.Use(middleware.RecoveryMiddleware(s.logger))
	r.Use(middleware.LoggingWithSkip(s.logger, []string{"/api/health"}))
	r.Use(s.limits.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, "route not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	r.Route("/api", func(r chi.Router) {
		// Публичные endpoints
		r.Get("/health", healthHandler.Health)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/register", authHandler.Register)

		// Защищенные endpoints: bearer токен
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(s.logger, s.tokens, s.store))

			r.Post("/auth/logout", authHandler.Logout)
			r.Get("/auth/me", authHandler.Me)

			r.Route("/resumes", func(r chi.Router) {
				r.Get("/", resumeHandler.List)
				r.Post("/", resumeHandler.Create)
				r.Get("/{id}", resumeHandler.Get)
				r.Put("/{id}", resumeHandler.Update)
				r.Delete("/{id}", resumeHandler.Delete)
				r.Post("/{id}/optimize", resumeHandler.Optimize)
				r.Get("/{id}/export", resumeHandler.Export)
			})

			r.Route("/cover-letters", func(r chi.Router) {
				r.Get("/", letterHandler.List)
				r.Get("/templates", letterHandler.Templates)
				r.Post("/basic", letterHandler.CreateBasic)
				r.Post("/personalized", letterHandler.CreatePersonalized)
				r.Get("/{id}", letterHandler.Get)
				r.Delete("/{id}", letterHandler.Delete)
				r.Put("/{id}/customize", letterHandler.Customize)
				r.Post("/{id}/optimize", letterHandler.Optimize)
				r.Get("/{id}/export", letterHandler.Export)
			})

			r.Route("/job-requirements", func(r chi.Router) {
				r.Get("/", jobHandler.List)
				r.Post("/", jobHandler.Create)
				r.Get("/{id}", jobHandler.Get)
				r.Put("/{id}", jobHandler.Update)
				r.Delete("/{id}", jobHandler.Delete)
			})

			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)
				r.Get("/tags", projectHandler.Tags)
				r.Get("/resume/{resumeId}", projectHandler.ListByResume)
				r.Get("/{id}", projectHandler.Get)
				r.Put("/{id}", projectHandler.Update)
				r.Delete("/{id}", projectHandler.Delete)
				r.Put("/{id}/status", projectHandler.UpdateStatus)
				r.Post("/{id}/tags", projectHandler.AddTag)
				r.Delete("/{id}/tags/{tag}", projectHandler.RemoveTag)
			})
		})
	})

	return r
}

// Run слушает cfg.Addr до отмены ctx, затем выполняет graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает запросы на ln до отмены ctx
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go s.janitor(janitorCtx)

	errC := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", slog.String("addr", ln.Addr().String()))
		errC <- srv.Serve(ln)
	}()

	select {
	case err := <-errC:
		s.limits.Stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server", slog.Duration("timeout", s.cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.limits.Stop()
	if err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// janitor периодически удаляет истекшие записи denylist
func (s *Server) janitor(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purgeExpiredTokens(ctx)
		}
	}
}

func (s *Server) purgeExpiredTokens(ctx context.Context) {
	n, err := s.store.DeleteExpiredTokens(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to purge revoked tokens", slog.Any("error", err))
		return
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "purged expired revoked tokens", slog.Int("count", n))
	}
}

func writeStatus(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(api.Fail(http.StatusText(status), message))
}
