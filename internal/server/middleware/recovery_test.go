package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/cvagent/pkg/api"
)

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		handler        http.HandlerFunc
		name           string
		expectedStatus int
		expectPanic    bool
	}{
		{
			name: "Normal handler without panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte("success"))
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "Handler with panic (string)",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("something went wrong")
			},
			expectPanic:    true,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name: "Handler with panic (error)",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic(io.ErrUnexpectedEOF)
			},
			expectPanic:    true,
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name: "Handler with nil map write",
			handler: func(w http.ResponseWriter, r *http.Request) {
				var m map[string]int
				m["boom"] = 1
			},
			expectPanic:    true,
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RecoveryMiddleware(logger)(tt.handler)

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code, "status code mismatch")

			if !tt.expectPanic {
				assert.Equal(t, "success", w.Body.String())
				return
			}

			// детали паники клиенту не отдаются
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var env api.Envelope[any]
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
			assert.False(t, env.Success)
			assert.Equal(t, "internal server error", env.Message)
		})
	}
}

func TestRecoveryMiddleware_AbortHandlerRepanics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	})
}

func TestRecoveryMiddleware_LogsStackTrace(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	handler := chimw.RequestID(RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("test panic for logging")
	})))

	req := httptest.NewRequest(http.MethodPost, "/api/test", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	logOutput := logBuf.String()
	assert.Contains(t, logOutput, "Panic recovered")
	assert.Contains(t, logOutput, "test panic for logging")
	assert.Contains(t, logOutput, "POST")
	assert.Contains(t, logOutput, "/api/test")
	assert.Contains(t, logOutput, "request_id=")
	// Stack trace присутствует в логе
	assert.Contains(t, logOutput, "goroutine")
}

func TestRecoveryMiddleware_ChainWithOtherMiddleware(t *testing.T) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	// Recovery снаружи, logging внутри: паника не теряет запись лога о запросе
	handler := RecoveryMiddleware(logger)(LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("inner panic")
	})))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/resumes", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, logBuf.String(), "Panic recovered")
}
