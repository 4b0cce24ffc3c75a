// Package cli реализует консольный клиент cvagent поверх cobra.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/iudanet/cvagent/internal/client/api"
	"github.com/iudanet/cvagent/internal/client/auth"
	"github.com/iudanet/cvagent/internal/client/iocli"
	"github.com/iudanet/cvagent/internal/client/nav"
	"github.com/iudanet/cvagent/internal/client/optimize"
	"github.com/iudanet/cvagent/internal/client/storage"
	"github.com/iudanet/cvagent/internal/client/storage/boltdb"
)

// Passwords источники пароля для login/register
type Passwords struct {
	FromEnv  string
	FromFile string
	FromArgs string
}

// Cli связывает команды с сервисами клиента
type Cli struct {
	io           iocli.IO
	logger       *slog.Logger
	router       *nav.Router
	session      *auth.SessionStore
	authService  *auth.Service
	resumes      *api.ResumeAPI
	coverLetters *api.CoverLetterAPI
	jobs         *api.JobRequirementAPI
	projects     *api.ProjectAPI
	optimizeOpts []optimize.Option
}

// New создает Cli. sender обычно *api.Gateway, созданный с тем же store и router.
func New(io iocli.IO, logger *slog.Logger, store *auth.SessionStore, router *nav.Router, sender api.Sender, opts ...optimize.Option) *Cli {
	c := &Cli{
		io:           io,
		logger:       logger,
		router:       router,
		session:      store,
		authService:  auth.NewService(api.NewAuthAPI(sender), store, router, logger),
		resumes:      api.NewResumeAPI(sender),
		coverLetters: api.NewCoverLetterAPI(sender),
		jobs:         api.NewJobRequirementAPI(sender),
		projects:     api.NewProjectAPI(sender),
		optimizeOpts: opts,
	}

	// Принудительный переход на логин (истекшая сессия, logout)
	router.OnNavigate(func(to nav.Boundary) {
		if to == nav.Login {
			c.io.Println("You are signed out. Run 'cvagent login' to continue.")
		}
	})

	return c
}

// Bootstrap открывает локальное хранилище и собирает Cli по конфигурации.
// Возвращает функцию закрытия хранилища.
func Bootstrap(ctx context.Context, cfg Config, io iocli.IO) (*Cli, func() error, error) {
	logger := NewLogger(cfg.LogLevel)

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := auth.NewSessionStore(boltStorage)

	start := nav.Login
	if ok, err := store.IsAuthenticated(ctx); err == nil && ok {
		start = nav.Dashboard
	}
	router := nav.NewRouter(logger, start)

	gateway := api.NewGateway(cfg.ServerURL, store, router, logger)
	return New(io, logger, store, router, gateway), boltStorage.Close, nil
}

// NewLogger создает текстовый логгер в stderr
func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// getPassword retrieves password from various sources with priority:
// 1. Environment variable CVAGENT_PASSWORD
// 2. File specified in --password-file
// 3. Command-line parameter --password
// 4. Interactive prompt (fallback)
func (c *Cli) getPassword(passwords Passwords, prompt string) (string, error) {
	// Priority 1: Environment variable
	if passwords.FromEnv != "" {
		return passwords.FromEnv, nil
	}

	// Priority 2: File
	if passwords.FromFile != "" {
		content, err := os.ReadFile(passwords.FromFile)
		if err != nil {
			return "", fmt.Errorf("failed to read password file: %w", err)
		}
		// Убираем trailing newline/whitespace
		password := strings.TrimSpace(string(content))
		if password == "" {
			return "", fmt.Errorf("password file is empty")
		}
		return password, nil
	}

	// Priority 3: CLI parameter
	if passwords.FromArgs != "" {
		return passwords.FromArgs, nil
	}

	// Priority 4: Interactive prompt (fallback)
	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password from stdin: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	return password, nil
}

// requireSession проверяет наличие локальной сессии до обращения к API
func (c *Cli) requireSession(ctx context.Context) (*storage.Session, error) {
	session, err := c.session.Get(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, fmt.Errorf("not authenticated. Please run 'cvagent login' first")
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}
