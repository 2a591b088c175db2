package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/shared/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics(t *testing.T) (*BusinessMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	meter, reader := testutil.NewTestMeter(t)
	metrics, err := CreateBusinessMetrics(meter)
	require.NoError(t, err)
	return metrics, reader
}

// TestOTelInitialization tests OpenTelemetry initialization
func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider, "default config does not export traces")
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

// TestOTelConfiguration tests different configuration options
func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name        string
		config      *OTelConfig
		wantErr     bool
		wantTracing bool
		wantMetrics bool
	}{
		{
			name: "stdout_tracing",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "development",
				TraceExporter:  "stdout",
				MetricExporter: "prometheus",
				EnableMetrics:  true,
				EnableTracing:  true,
				SampleRatio:    1.0,
			},
			wantTracing: true,
			wantMetrics: true,
		},
		{
			name: "all_disabled",
			config: &OTelConfig{
				ServiceName:    "test-service",
				ServiceVersion: "v1.0.0",
				Environment:    "test",
				TraceExporter:  "none",
				MetricExporter: "none",
				EnableMetrics:  true,
				EnableTracing:  true,
			},
		},
		{
			name: "unknown_trace_exporter",
			config: &OTelConfig{
				ServiceName:   "test-service",
				TraceExporter: "zipkin",
				EnableTracing: true,
			},
			wantErr: true,
		},
		{
			name: "unknown_metric_exporter",
			config: &OTelConfig{
				ServiceName:    "test-service",
				MetricExporter: "statsd",
				EnableMetrics:  true,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.config, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer providers.Shutdown(context.Background())

			assert.Equal(t, tt.wantTracing, providers.TracerProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.MeterProvider != nil)
			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)

			_, err = CreateBusinessMetrics(providers.Meter)
			assert.NoError(t, err)
		})
	}
}

// TestTraceCorrelation tests trace ID correlation
func TestTraceCorrelation(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "test-operation")
	defer span.End()

	traceID := TraceIDFromContext(ctx)
	assert.NotEmpty(t, traceID)
	assert.Equal(t, span.SpanContext().TraceID().String(), traceID)
	assert.Empty(t, TraceIDFromContext(context.Background()))

	AddSpanEvent(ctx, "test.event", attribute.String("key", "value"))
	RecordError(ctx, errors.New("boom"))
	assert.True(t, span.IsRecording())
}

// TestPrometheusEndpoint tests the Prometheus metrics endpoint
func TestPrometheusEndpoint(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.ChecksTotal.Add(context.Background(), 1)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")
	assert.Contains(t, string(body), "compliance_checks_total")
}

func TestCreateBusinessMetricsWithoutMeter(t *testing.T) {
	metrics, err := CreateBusinessMetrics(nil)
	require.NoError(t, err)
	require.NotNil(t, metrics)

	// no-op instruments must accept measurements
	metrics.RowsClassified.Add(context.Background(), 3)
}

func TestRecordCheckMetrics(t *testing.T) {
	metrics, reader := testMetrics(t)
	ctx := context.Background()

	RecordCheckMetrics(ctx, metrics, "greater_than", 2, 2048, 150*time.Millisecond, "")
	RecordCheckMetrics(ctx, metrics, "less_than", 0, 512, 10*time.Millisecond, "sheet_not_found")

	assert.Equal(t, int64(2), testutil.MetricSum(t, reader, "compliance_checks_total"))
	assert.Equal(t, int64(1), testutil.MetricSum(t, reader, "compliance_checks_total", attribute.String("status", "failure")))
	assert.Equal(t, int64(1), testutil.MetricSum(t, reader, "compliance_check_failures_total", attribute.String("error.type", "sheet_not_found")))
	assert.Equal(t, int64(2), testutil.MetricSum(t, reader, "compliance_sheets_processed_total"))
	assert.Equal(t, int64(2560), testutil.MetricSum(t, reader, "compliance_upload_bytes_total"))

	// nil metrics are ignored
	RecordCheckMetrics(ctx, nil, "greater_than", 1, 1, time.Second, "")
}

func TestRecordRowStatuses(t *testing.T) {
	metrics, reader := testMetrics(t)

	RecordRowStatuses(context.Background(), metrics, map[string]int{
		"Met":            3,
		"Not Met":        2,
		"Not Applicable": 0,
	})

	assert.Equal(t, int64(3), testutil.MetricSum(t, reader, "compliance_rows_classified_total", attribute.String("status", "Met")))
	assert.Equal(t, int64(2), testutil.MetricSum(t, reader, "compliance_rows_classified_total", attribute.String("status", "Not Met")))
	assert.Equal(t, int64(5), testutil.MetricSum(t, reader, "compliance_rows_classified_total"))
}

func TestRecordSystemError(t *testing.T) {
	metrics, reader := testMetrics(t)

	RecordSystemError(context.Background(), metrics, "panic", "http")
	assert.Equal(t, int64(1), testutil.MetricSum(t, reader, "system_errors_total", attribute.String("component", "http")))
}
