package services

import (
	"context"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/shared/testutil"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts"
)

func TestHealthService(t *testing.T) {
	t.Run("Service_Construction", testHealthServiceConstruction)
	t.Run("Health_Check_Basic", testHealthCheckBasic)
	t.Run("Readiness_Check_Scenarios", testReadinessCheckScenarios)
	t.Run("Liveness_Check", testLivenessCheck)
	t.Run("Version_Information", testVersionInformation)
}

func testHealthServiceConstruction(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	service := NewHealthService(nil, logger)

	assert.Equal(t, contracts.Version, service.version)
	assert.False(t, service.startTime.IsZero())
	testutil.AssertLogContains(t, handler, slog.LevelInfo, "HealthService initialized")

	withDefault := NewHealthService(nil, nil)
	assert.NotNil(t, withDefault.logger)
}

func testHealthCheckBasic(t *testing.T) {
	service := NewHealthService(nil, nil)

	status := service.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, contracts.Version, status.Version)
	assert.WithinDuration(t, time.Now(), status.Timestamp, time.Second)
}

func testReadinessCheckScenarios(t *testing.T) {
	tests := []struct {
		name       string
		store      *ResultStore
		wantStatus string
		wantStore  string
	}{
		{
			name:       "store_available",
			store:      NewResultStore(4, nil, nil),
			wantStatus: "ready",
			wantStore:  "ready",
		},
		{
			name:       "store_missing",
			store:      nil,
			wantStatus: "not_ready",
			wantStore:  "not_ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewHealthService(tt.store, nil)

			status := service.ReadinessCheck(context.Background())
			assert.Equal(t, tt.wantStatus, status.Status)

			sh, ok := status.Services["result_store"].(ServiceHealth)
			require.True(t, ok)
			assert.Equal(t, tt.wantStore, sh.Status)
		})
	}
}

func testLivenessCheck(t *testing.T) {
	service := NewHealthService(nil, nil)

	status := service.LivenessCheck(context.Background())
	assert.Equal(t, "alive", status.Status)
	assert.Equal(t, runtime.Version(), status.Runtime["go_version"])
	assert.Contains(t, status.Runtime, "uptime")
	assert.Contains(t, status.Runtime, "goroutines")
}

func testVersionInformation(t *testing.T) {
	service := NewHealthService(nil, nil)

	info := service.Version()
	assert.Equal(t, contracts.AppName, info["name"])
	assert.Equal(t, contracts.Version, info["version"])
	assert.Equal(t, contracts.APIVersion, info["api_version"])
	assert.Equal(t, runtime.GOOS, info["os"])
	assert.Equal(t, runtime.GOARCH, info["arch"])
}
