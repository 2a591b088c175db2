package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/infrastructure"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/shared/testutil"
)

func TestOTelMiddleware(t *testing.T) {
	meter, reader := testutil.NewTestMeter(t)
	metrics, err := infrastructure.CreateBusinessMetrics(meter)
	require.NoError(t, err)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	logger, _ := testutil.NewTestLogger(t)

	mw, err := NewOTelMiddleware(&infrastructure.OTelProviders{
		Tracer: tp.Tracer("test"),
		Meter:  meter,
		Logger: logger,
	}, metrics)
	require.NoError(t, err)

	var traceID string
	r := chi.NewRouter()
	r.Use(mw.Handler)
	r.Get("/api/v1/results/{id}", func(w http.ResponseWriter, r *http.Request) {
		traceID = infrastructure.GetTraceID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/results/abc", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /api/v1/results/{id}", spans[0].Name())
	assert.Equal(t, spans[0].SpanContext().TraceID().String(), traceID)

	assert.Equal(t, int64(1), testutil.MetricSum(t, reader, "http_requests_total",
		attribute.String("route", "/api/v1/results/{id}"),
		attribute.Int("status_code", http.StatusNotFound)))
	assert.Zero(t, testutil.MetricSum(t, reader, "http_active_requests"))
}

func TestNewOTelMiddleware(t *testing.T) {
	_, err := NewOTelMiddleware(nil, nil)
	assert.Error(t, err)

	mw, err := NewOTelMiddleware(&infrastructure.OTelProviders{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, mw.businessMetrics)
	assert.NotNil(t, mw.tracer)
}

func TestGetRealIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1:1234", GetRealIP(req))

	req.Header.Set("X-Real-IP", "192.168.1.5")
	assert.Equal(t, "192.168.1.5", GetRealIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	assert.Equal(t, "203.0.113.7", GetRealIP(req))
}
