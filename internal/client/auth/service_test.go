package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cvagent/internal/client/api"
	"github.com/iudanet/cvagent/internal/client/nav"
	"github.com/iudanet/cvagent/internal/client/storage"
	"github.com/iudanet/cvagent/internal/client/storage/boltdb"
	pkgapi "github.com/iudanet/cvagent/pkg/api"
)

// newClientMock возвращает мок Client с успешным логином и регистрацией
func newClientMock() *ClientMock {
	return &ClientMock{
		LoginFunc: func(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.AuthResponse, error) {
			return &pkgapi.AuthResponse{Token: "abc123", User: testUser()}, nil
		},
		RegisterFunc: func(ctx context.Context, req pkgapi.RegisterRequest) (*pkgapi.AuthResponse, error) {
			return &pkgapi.AuthResponse{Token: "tok", User: testUser()}, nil
		},
		LogoutFunc: func(ctx context.Context) error {
			return nil
		},
		MeFunc: func(ctx context.Context) (*pkgapi.User, error) {
			me := testUser()
			return &me, nil
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(client Client) (*Service, *storage.SessionStorageMock, *nav.Router) {
	mockStorage := newMemoryStorage(nil)
	router := nav.NewRouter(discardLogger(), nav.Login)
	return NewService(client, NewSessionStore(mockStorage), router, discardLogger()), mockStorage, router
}

// countCalls суммирует вызовы всех методов ClientMock
func countCalls(client *ClientMock) int {
	return len(client.LoginCalls()) + len(client.RegisterCalls()) + len(client.LogoutCalls()) + len(client.MeCalls())
}

func TestService_Login(t *testing.T) {
	client := newClientMock()
	service, mockStorage, router := newTestService(client)

	user, err := service.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	require.Len(t, client.LoginCalls(), 1)
	assert.Equal(t, pkgapi.LoginRequest{Username: "alice", Password: "secret"}, client.LoginCalls()[0].Req)
	require.Len(t, mockStorage.SaveSessionCalls(), 1)
	assert.Equal(t, "abc123", mockStorage.SaveSessionCalls()[0].Session.Token)
	assert.Equal(t, "u-1", mockStorage.SaveSessionCalls()[0].Session.User.ID)
	assert.Equal(t, nav.Dashboard, router.Current())
}

func TestService_LoginValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "empty username", username: "", password: "secret"},
		{name: "empty password", username: "alice", password: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClientMock()
			service, mockStorage, router := newTestService(client)

			_, err := service.Login(context.Background(), tt.username, tt.password)
			assert.Error(t, err)
			assert.Equal(t, 0, countCalls(client))
			assert.Empty(t, mockStorage.SaveSessionCalls())
			assert.Equal(t, nav.Login, router.Current())
		})
	}
}

func TestService_LoginFailureKeepsState(t *testing.T) {
	client := newClientMock()
	client.LoginFunc = func(ctx context.Context, req pkgapi.LoginRequest) (*pkgapi.AuthResponse, error) {
		return nil, &api.HTTPError{Status: http.StatusUnauthorized, Message: "invalid credentials"}
	}
	service, mockStorage, router := newTestService(client)

	_, err := service.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
	assert.Contains(t, err.Error(), "login failed")
	assert.Empty(t, mockStorage.SaveSessionCalls())
	assert.Equal(t, nav.Login, router.Current())
}

func TestService_LoginStorageFailure(t *testing.T) {
	service, mockStorage, router := newTestService(newClientMock())
	mockStorage.SaveSessionFunc = func(ctx context.Context, session *storage.Session) error {
		return errors.New("disk full")
	}

	_, err := service.Login(context.Background(), "alice", "secret")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store session")
	assert.Equal(t, nav.Login, router.Current())
}

func TestService_Register(t *testing.T) {
	client := newClientMock()
	service, mockStorage, router := newTestService(client)

	user, err := service.Register(context.Background(), "alice", "alice@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	require.Len(t, client.RegisterCalls(), 1)
	assert.Equal(t, "alice@example.com", client.RegisterCalls()[0].Req.Email)
	require.Len(t, mockStorage.SaveSessionCalls(), 1)
	assert.Equal(t, "tok", mockStorage.SaveSessionCalls()[0].Session.Token)
	assert.Equal(t, nav.Dashboard, router.Current())
}

func TestService_RegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
		wantErr  string
	}{
		{name: "short username", username: "al", email: "alice@example.com", password: "secret", wantErr: "invalid username"},
		{name: "bad email", username: "alice", email: "not-an-email", password: "secret", wantErr: "invalid email"},
		{name: "short password", username: "alice", email: "alice@example.com", password: "123", wantErr: "invalid password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClientMock()
			service, _, _ := newTestService(client)

			_, err := service.Register(context.Background(), tt.username, tt.email, tt.password)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Equal(t, 0, countCalls(client))
		})
	}
}

func TestService_Logout(t *testing.T) {
	tests := []struct {
		logoutErr error
		name      string
	}{
		{name: "server accepts logout"},
		{name: "server unreachable", logoutErr: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClientMock()
			client.LogoutFunc = func(ctx context.Context) error {
				return tt.logoutErr
			}
			service, mockStorage, router := newTestService(client)
			_, err := service.Login(context.Background(), "alice", "secret")
			require.NoError(t, err)

			var logins int
			router.OnNavigate(func(b nav.Boundary) {
				if b == nav.Login {
					logins++
				}
			})

			require.NoError(t, service.Logout(context.Background()))

			_, err = mockStorage.GetSession(context.Background())
			assert.ErrorIs(t, err, storage.ErrSessionNotFound)
			assert.Len(t, mockStorage.DeleteSessionCalls(), 1)
			assert.Len(t, client.LogoutCalls(), 1)
			assert.Equal(t, nav.Login, router.Current())
			assert.Equal(t, 1, logins)
		})
	}
}

func TestService_MeAndCurrent(t *testing.T) {
	client := newClientMock()
	service, _, _ := newTestService(client)

	_, err := service.Current(context.Background())
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	_, err = service.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)

	current, err := service.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", current.Username)

	remote, err := service.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-1", remote.ID)

	client.MeFunc = func(ctx context.Context) (*pkgapi.User, error) {
		return nil, errors.New("boom")
	}
	_, err = service.Me(context.Background())
	assert.Error(t, err)
}

// Полный путь: Gateway + BoltDB + роутер
func TestLoginThenExpiredSession(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			_ = json.NewEncoder(w).Encode(pkgapi.OK(pkgapi.AuthResponse{Token: "abc123", User: testUser()}))
		default:
			assert.Equal(t, "Bearer abc123", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(pkgapi.Fail("unauthorized", "token expired"))
		}
	}))
	defer server.Close()

	db, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	store := NewSessionStore(db)
	router := nav.NewRouter(discardLogger(), nav.Login)
	var visited []nav.Boundary
	router.OnNavigate(func(b nav.Boundary) {
		visited = append(visited, b)
	})

	gateway := api.NewGateway(server.URL+"/api", store, router, discardLogger())
	service := NewService(api.NewAuthAPI(gateway), store, router, discardLogger())

	// 1. Логин сохраняет токен и переводит на dashboard
	_, err = service.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	session, err := db.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc123", session.Token)
	assert.Equal(t, nav.Dashboard, router.Current())

	// 2. Любой запрос с истекшим токеном очищает сессию и возвращает на логин
	_, err = api.NewResumeAPI(gateway).List(ctx, "")
	require.ErrorIs(t, err, api.ErrUnauthorized)

	_, err = db.GetSession(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	assert.Equal(t, []nav.Boundary{nav.Dashboard, nav.Login}, visited)
}

// Выход с истекшим токеном: сервер отвечает 401 на logout,
// Gateway сам очищает сессию и переводит на логин, Service не дублирует переход
func TestService_LogoutWithExpiredToken(t *testing.T) {
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(pkgapi.Fail("unauthorized", "token expired"))
	}))
	defer server.Close()

	mockStorage := newMemoryStorage(&storage.Session{Token: "stale", User: testUser()})
	store := NewSessionStore(mockStorage)
	router := nav.NewRouter(discardLogger(), nav.Dashboard)

	var logins int
	router.OnNavigate(func(b nav.Boundary) {
		if b == nav.Login {
			logins++
		}
	})

	gateway := api.NewGateway(server.URL+"/api", store, router, discardLogger())
	service := NewService(api.NewAuthAPI(gateway), store, router, discardLogger())

	require.NoError(t, service.Logout(ctx))

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	assert.Equal(t, nav.Login, router.Current())
	assert.Equal(t, 1, logins)
}
