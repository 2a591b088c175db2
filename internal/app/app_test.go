package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/config"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/shared/testutil"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Security.RateLimit.Enabled = false
	cfg.Observability.Environment = "test"

	logger, _ := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func checkRequest(t *testing.T, workbook []byte, filename, request string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(workbook)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("request", request))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/compliance/check", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestNew(t *testing.T) {
	app := newTestApp(t)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.Store)
	require.NotNil(t, app.Services)
	assert.NotNil(t, app.Services.Compliance)
	assert.NotNil(t, app.Services.Health)
	assert.Equal(t, ":0", app.Server.Addr)
	assert.Equal(t, app.Config.Server.MaxHeaderBytes, app.Server.MaxHeaderBytes)
}

func TestRoutes(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
		contentType    string
	}{
		{name: "form", method: http.MethodGet, path: "/", expectedStatus: http.StatusOK, contentType: "text/html"},
		{name: "health", method: http.MethodGet, path: "/api/health", expectedStatus: http.StatusOK, contentType: "application/json"},
		{name: "liveness", method: http.MethodGet, path: "/api/health/live", expectedStatus: http.StatusOK, contentType: "application/json"},
		{name: "readiness", method: http.MethodGet, path: "/api/health/ready", expectedStatus: http.StatusOK, contentType: "application/json"},
		{name: "version", method: http.MethodGet, path: "/api/version", expectedStatus: http.StatusOK, contentType: "application/json"},
		{name: "metrics", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK, contentType: "text/plain"},
		{name: "unknown route", method: http.MethodGet, path: "/api/nope", expectedStatus: http.StatusNotFound, contentType: "json"},
		{name: "unknown download", method: http.MethodGet, path: "/api/compliance/downloads/missing", expectedStatus: http.StatusNotFound, contentType: "json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()

			app.Router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.contentType)
		})
	}
}

func TestCheckAndDownload(t *testing.T) {
	app := newTestApp(t)
	workbook := testutil.BuildWorkbook(t, testutil.CasesSheet("Cases"), testutil.CasesSheet("Archive"))

	req := checkRequest(t, workbook, "cases.xlsx",
		`{"direction":"greater_than","threshold":42,"sheets":[{"sheet":"Archive","column":"Days","blank_policy":"Not Met"},{"sheet":"Cases","column":"Days"}]}`)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp struct {
		Message     string `json:"message"`
		DownloadURL string `json:"download_url"`
		Sheets      []struct {
			Sheet   string `json:"sheet"`
			Summary struct {
				Met           int `json:"met"`
				NotMet        int `json:"not_met"`
				NotApplicable int `json:"not_applicable"`
				Total         int `json:"total"`
			} `json:"summary"`
		} `json:"sheets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Processing Completed!", resp.Message)
	require.Len(t, resp.Sheets, 2)
	assert.Equal(t, "Archive", resp.Sheets[0].Sheet)
	assert.Equal(t, 1, resp.Sheets[0].Summary.Met)
	assert.Equal(t, 3, resp.Sheets[0].Summary.NotMet)
	assert.Equal(t, 1, resp.Sheets[0].Summary.NotApplicable)
	assert.Equal(t, "Cases", resp.Sheets[1].Sheet)
	assert.Equal(t, 2, resp.Sheets[1].Summary.NotApplicable)
	assert.Equal(t, 5, resp.Sheets[1].Summary.Total)

	// downloads repeat until the result expires
	for i := 0; i < 2; i++ {
		rec = httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, resp.DownloadURL, nil))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	assert.Equal(t, `attachment; filename="Updated_Compliance_Check.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))

	sheets, rows := testutil.ReadWorkbookRows(t, rec.Body.Bytes())
	assert.Equal(t, []string{"Archive", "Cases"}, sheets)
	require.Len(t, rows["Cases"], 6)
	assert.Equal(t, []string{"Case", "Owner", "Days", "Status"}, rows["Cases"][0])
	assert.Equal(t, []string{"C-001", "North", "50", "Met"}, rows["Cases"][1])
	assert.Equal(t, []string{"C-002", "South", "42", "Not Met"}, rows["Cases"][2])

	// a discarded result is gone before its expiry
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, resp.DownloadURL, nil))
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, resp.DownloadURL, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, app.Store.Len())
}

func TestCheckRejectsUploads(t *testing.T) {
	app := newTestApp(t)
	workbook := testutil.BuildWorkbook(t, testutil.CasesSheet("Cases"))
	request := `{"direction":"greater_than","threshold":42,"sheets":[{"sheet":"Cases","column":"Days"}]}`

	tests := []struct {
		name           string
		data           []byte
		filename       string
		request        string
		expectedStatus int
	}{
		{name: "csv file", data: []byte("a,b\n1,2\n"), filename: "cases.csv", request: request, expectedStatus: http.StatusUnsupportedMediaType},
		{name: "corrupt workbook", data: []byte("not a zip"), filename: "cases.xlsx", request: request, expectedStatus: http.StatusUnprocessableEntity},
		{name: "unknown sheet", data: workbook, filename: "cases.xlsx", request: `{"direction":"greater_than","threshold":42,"sheets":[{"sheet":"Nope","column":"Days"}]}`, expectedStatus: http.StatusUnprocessableEntity},
		{name: "unknown column", data: workbook, filename: "cases.xlsx", request: `{"direction":"greater_than","threshold":42,"sheets":[{"sheet":"Cases","column":"Age"}]}`, expectedStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			app.Router.ServeHTTP(rec, checkRequest(t, tt.data, tt.filename, tt.request))
			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestStartStop(t *testing.T) {
	app := newTestApp(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	assert.NoError(t, app.Stop(stopCtx))
}

func TestRunFailsWhenPortIsTaken(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := config.Default()
	cfg.Server.Port = ln.Addr().(*net.TCPAddr).Port
	cfg.Security.RateLimit.Enabled = false
	cfg.Observability.Environment = "test"

	logger, _ := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})

	done := make(chan error, 1)
	go func() { done <- app.Run() }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the listener failed")
	}
}

func TestOTelConfig(t *testing.T) {
	oc := otelConfig(config.ObservabilityConfig{
		ServiceName:    "svc",
		Environment:    "prod",
		TraceExporter:  "none",
		MetricsEnabled: false,
		SampleRatio:    0.5,
	})

	assert.Equal(t, "svc", oc.ServiceName)
	assert.Equal(t, "prod", oc.Environment)
	assert.False(t, oc.EnableTracing)
	assert.False(t, oc.EnableMetrics)
	assert.Equal(t, "none", oc.MetricExporter)
	assert.Equal(t, 0.5, oc.SampleRatio)
}
