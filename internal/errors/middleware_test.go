package errors

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/shared/testutil"
)

func TestErrorMiddleware_Handler(t *testing.T) {
	tests := []struct {
		name        string
		handler     http.HandlerFunc
		contentType string
		body        string
		wantStatus  int
		wantLevel   slog.Level
		wantMsg     string
		wantBody    bool
	}{
		{
			name: "success",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			wantStatus: http.StatusOK,
			wantLevel:  slog.LevelInfo,
		},
		{
			name: "client error logs sanitized json body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
			},
			contentType: "application/json",
			body:        `{"direction":"sideways","token":"abc"}`,
			wantStatus:  http.StatusBadRequest,
			wantLevel:   slog.LevelWarn,
			wantBody:    true,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
			wantLevel:  slog.LevelError,
		},
		{
			name: "panic",
			handler: func(w http.ResponseWriter, r *http.Request) {
				panic("boom")
			},
			wantStatus: http.StatusInternalServerError,
			wantLevel:  slog.LevelError,
			wantMsg:    "panic recovered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			mw := NewErrorMiddleware(NewErrorHandler(logger, false), logger)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/check", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()

			mw.Handler(tt.handler).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			msg := tt.wantMsg
			if msg == "" {
				msg = "http request"
			}
			testutil.AssertLogContains(t, logs, tt.wantLevel, msg)
			if tt.wantBody {
				testutil.AssertLogAttr(t, logs, "request_body", `{"direction":"sideways","token":"[REDACTED]"}`)
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := NewErrorHandler(nil, false)
	w := httptest.NewRecorder()

	RecoveryMiddleware(handler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestSanitizeRequestBody(t *testing.T) {
	assert.Equal(t, "not json", sanitizeRequestBody("not json"))
	assert.Equal(t, `{"password":"[REDACTED]"}`, sanitizeRequestBody(`{"password":"hunter2"}`))
}
