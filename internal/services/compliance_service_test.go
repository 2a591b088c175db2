package services

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/compliance"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/config"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/infrastructure"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/shared/testutil"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/workbook"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts/domain"
)

type serviceFixture struct {
	svc     *ComplianceService
	store   *ResultStore
	reader  *sdkmetric.ManualReader
	handler *testutil.BufferedSlogHandler
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	meter, reader := testutil.NewTestMeter(t)
	metrics, err := infrastructure.CreateBusinessMetrics(meter)
	require.NoError(t, err)

	logger, handler := testutil.NewTestLogger(t)
	store := NewResultStore(0, metrics, logger)
	svc := NewComplianceService(config.Default().Compliance, store, metrics, nil, logger)

	return &serviceFixture{svc: svc, store: store, reader: reader, handler: handler}
}

func rule(sheet, column string, blank domain.Status) domain.SheetRule {
	return domain.SheetRule{Sheet: sheet, Column: column, BlankPolicy: blank}
}

func TestComplianceServiceInspect(t *testing.T) {
	f := newServiceFixture(t)
	data := testutil.BuildWorkbook(t,
		testutil.CasesSheet("North"),
		testutil.FixtureSheet{Name: "Notes"},
	)

	info, err := f.svc.Inspect(context.Background(), bytes.NewReader(data), "cases.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "cases.xlsx", info.Filename)
	require.Len(t, info.Sheets, 2)
	assert.Equal(t, "North", info.Sheets[0].Name)
	assert.Equal(t, []string{"Case", "Owner", "Days"}, info.Sheets[0].Columns)
	assert.Equal(t, 5, info.Sheets[0].RowCount)
	assert.True(t, info.Sheets[1].Empty)

	assert.Equal(t, int64(1), testutil.MetricSum(t, f.reader, "compliance_workbook_inspections_total"))
	testutil.AssertLogContains(t, f.handler, slog.LevelInfo, "workbook inspected")
}

func TestComplianceServiceInspectInvalidWorkbook(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Inspect(context.Background(), strings.NewReader("plain text"), "notes.xlsx")
	assert.ErrorIs(t, err, workbook.ErrInvalidWorkbook)
}

func TestComplianceServiceCheck(t *testing.T) {
	f := newServiceFixture(t)
	data := testutil.BuildWorkbook(t,
		testutil.CasesSheet("North"),
		testutil.CasesSheet("South"),
		testutil.CasesSheet("East"),
	)

	req := domain.CheckRequest{
		Direction: domain.DirectionGreaterThan,
		Threshold: 42,
		Sheets: []domain.SheetRule{
			rule("South", "Days", domain.StatusNotMet),
			rule("North", "Days", domain.StatusNotApplicable),
		},
	}

	result, err := f.svc.Check(context.Background(), bytes.NewReader(data), "cases.xlsx", req)
	require.NoError(t, err)

	assert.NotEmpty(t, result.ID)
	assert.Equal(t, "Updated_Compliance_Check.xlsx", result.Filename)
	assert.Equal(t, domain.DirectionGreaterThan, result.Direction)
	assert.Equal(t, 42, result.Threshold)
	assert.Positive(t, result.Size)
	assert.Equal(t, result.CreatedAt.Add(15*time.Minute), result.ExpiresAt)

	require.Len(t, result.Sheets, 2)
	assert.Equal(t, "South", result.Sheets[0].Sheet)
	assert.Equal(t, "North", result.Sheets[1].Sheet)

	// blank row follows each sheet's own policy
	assert.Equal(t, domain.StatusNotMet, result.Sheets[0].Statuses[3])
	assert.Equal(t, domain.StatusNotApplicable, result.Sheets[1].Statuses[3])
	assert.Equal(t, domain.Summary{Met: 1, NotMet: 3, NotApplicable: 1, Total: 5}, result.Sheets[0].Summary)
	assert.Equal(t, domain.Summary{Met: 1, NotMet: 2, NotApplicable: 2, Total: 5}, result.Sheets[1].Summary)

	stored, err := f.svc.Download(context.Background(), result.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Size, len(stored.Data))

	sheets, rows := testutil.ReadWorkbookRows(t, stored.Data)
	assert.Equal(t, []string{"South", "North"}, sheets)
	assert.Equal(t, "Status", rows["South"][0][3])
	assert.Len(t, rows["North"], 6)

	assert.Equal(t, int64(1), testutil.MetricSum(t, f.reader, "compliance_checks_total", attribute.String("status", "success")))
	assert.Equal(t, int64(2), testutil.MetricSum(t, f.reader, "compliance_sheets_processed_total"))
	assert.Equal(t, int64(2), testutil.MetricSum(t, f.reader, "compliance_rows_classified_total", attribute.String("status", "Met")))
	assert.Equal(t, int64(1), testutil.MetricSum(t, f.reader, "compliance_downloads_total"))
	assert.Equal(t, int64(len(data)), testutil.MetricSum(t, f.reader, "compliance_upload_bytes_total"))
}

func TestComplianceServiceCheckLessThan(t *testing.T) {
	f := newServiceFixture(t)
	data := testutil.BuildWorkbook(t, testutil.CasesSheet("Cases"))

	req := domain.CheckRequest{
		Direction: domain.DirectionLessThan,
		Threshold: 42,
		Sheets:    []domain.SheetRule{rule("Cases", "Days", domain.StatusMet)},
	}

	result, err := f.svc.Check(context.Background(), bytes.NewReader(data), "cases.xlsx", req)
	require.NoError(t, err)
	assert.Equal(t, []domain.Status{
		domain.StatusNotMet,
		domain.StatusNotMet,
		domain.StatusMet,
		domain.StatusMet,
		domain.StatusNotApplicable,
	}, result.Sheets[0].Statuses)
}

func TestComplianceServiceCheckErrors(t *testing.T) {
	data := testutil.BuildWorkbook(t,
		testutil.CasesSheet("Cases"),
		testutil.FixtureSheet{Name: "Empty"},
	)

	tests := []struct {
		name    string
		upload  []byte
		req     domain.CheckRequest
		wantErr error
		kind    string
	}{
		{
			name:    "no sheets",
			upload:  data,
			req:     domain.CheckRequest{Direction: domain.DirectionGreaterThan, Threshold: 42},
			wantErr: ErrNoSheetsSelected,
			kind:    "invalid_request",
		},
		{
			name:   "unknown sheet",
			upload: data,
			req: domain.CheckRequest{
				Direction: domain.DirectionGreaterThan,
				Threshold: 42,
				Sheets:    []domain.SheetRule{rule("Missing", "Days", domain.StatusMet)},
			},
			wantErr: workbook.ErrSheetNotFound,
			kind:    "sheet_not_found",
		},
		{
			name:   "unknown column",
			upload: data,
			req: domain.CheckRequest{
				Direction: domain.DirectionGreaterThan,
				Threshold: 42,
				Sheets:    []domain.SheetRule{rule("Cases", "Age", domain.StatusMet)},
			},
			wantErr: compliance.ErrColumnNotFound,
			kind:    "column_not_found",
		},
		{
			name:   "empty sheet",
			upload: data,
			req: domain.CheckRequest{
				Direction: domain.DirectionGreaterThan,
				Threshold: 42,
				Sheets:    []domain.SheetRule{rule("Empty", "Days", domain.StatusMet)},
			},
			wantErr: workbook.ErrEmptySheet,
			kind:    "empty_sheet",
		},
		{
			name:   "not a workbook",
			upload: []byte("hello"),
			req: domain.CheckRequest{
				Direction: domain.DirectionGreaterThan,
				Threshold: 42,
				Sheets:    []domain.SheetRule{rule("Cases", "Days", domain.StatusMet)},
			},
			wantErr: workbook.ErrInvalidWorkbook,
			kind:    "invalid_workbook",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)

			_, err := f.svc.Check(context.Background(), bytes.NewReader(tt.upload), "cases.xlsx", tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.kind, ErrorKind(err))

			assert.Zero(t, f.store.Len())
			assert.Equal(t, int64(1), testutil.MetricSum(t, f.reader, "compliance_check_failures_total", attribute.String("error.type", tt.kind)))
		})
	}
}

func TestComplianceServiceCheckCanceled(t *testing.T) {
	f := newServiceFixture(t)
	data := testutil.BuildWorkbook(t, testutil.CasesSheet("Cases"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Check(ctx, bytes.NewReader(data), "cases.xlsx", domain.CheckRequest{
		Direction: domain.DirectionGreaterThan,
		Threshold: 42,
		Sheets:    []domain.SheetRule{rule("Cases", "Days", domain.StatusMet)},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "canceled", ErrorKind(err))
}

func TestComplianceServiceDownloadUnknown(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Download(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestComplianceServiceDiscard(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	stored, err := f.store.Put(ctx, []byte("data"), "Updated_Compliance_Check.xlsx", time.Minute)
	require.NoError(t, err)

	require.NoError(t, f.svc.Discard(ctx, stored.ID))

	_, err = f.svc.Download(ctx, stored.ID)
	assert.ErrorIs(t, err, ErrResultNotFound)
	assert.ErrorIs(t, f.svc.Discard(ctx, stored.ID), ErrResultNotFound)
}

func TestComplianceServiceDiscardExpired(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	f.store.now = clock.Now

	stored, err := f.store.Put(ctx, []byte("data"), "Updated_Compliance_Check.xlsx", time.Minute)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	assert.ErrorIs(t, f.svc.Discard(ctx, stored.ID), ErrResultNotFound)
}

func TestValidateCheckRequest(t *testing.T) {
	valid := domain.CheckRequest{
		Direction: domain.DirectionGreaterThan,
		Threshold: 0,
		Sheets:    []domain.SheetRule{rule("A", "Days", domain.StatusMet)},
	}
	assert.NoError(t, ValidateCheckRequest(valid))

	tests := []struct {
		name   string
		mutate func(*domain.CheckRequest)
	}{
		{"unknown direction", func(r *domain.CheckRequest) { r.Direction = "up" }},
		{"negative threshold", func(r *domain.CheckRequest) { r.Threshold = -1 }},
		{"missing sheet name", func(r *domain.CheckRequest) { r.Sheets[0].Sheet = "" }},
		{"missing column", func(r *domain.CheckRequest) { r.Sheets[0].Column = "" }},
		{"unknown blank policy", func(r *domain.CheckRequest) { r.Sheets[0].BlankPolicy = "Maybe" }},
		{"duplicate sheet", func(r *domain.CheckRequest) { r.Sheets = append(r.Sheets, r.Sheets[0]) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			req.Sheets = append([]domain.SheetRule(nil), valid.Sheets...)
			tt.mutate(&req)
			assert.ErrorIs(t, ValidateCheckRequest(req), ErrInvalidRequest)
		})
	}
}
