package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/compliance"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/config"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/infrastructure"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/workbook"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts/domain"
)

// ComplianceService runs compliance checks on uploaded workbooks and keeps
// the annotated workbooks available for download.
type ComplianceService struct {
	cfg     config.ComplianceConfig
	store   *ResultStore
	metrics *infrastructure.BusinessMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewComplianceService creates a compliance service. metrics and tracer may
// be nil.
func NewComplianceService(cfg config.ComplianceConfig, store *ResultStore, metrics *infrastructure.BusinessMetrics, tracer trace.Tracer, logger *slog.Logger) *ComplianceService {
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}
	return &ComplianceService{
		cfg:     cfg,
		store:   store,
		metrics: metrics,
		tracer:  tracer,
		logger:  infrastructure.WithComponent(logger, "compliance_service"),
	}
}

// Inspect lists the sheets of an uploaded workbook with their columns.
func (s *ComplianceService) Inspect(ctx context.Context, upload io.Reader, filename string) (*domain.WorkbookInfo, error) {
	ctx, span := s.tracer.Start(ctx, "compliance.inspect")
	defer span.End()

	r, err := workbook.Open(upload)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "cannot open workbook",
			slog.String("filename", filename),
			slog.String("error", err.Error()))
		return nil, err
	}
	defer r.Close()

	info, err := r.Info()
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, fmt.Errorf("inspect workbook: %w", err)
	}
	info.Filename = filename

	if s.metrics != nil {
		s.metrics.WorkbookInspects.Add(ctx, 1)
	}
	span.SetAttributes(attribute.Int("workbook.sheets", len(info.Sheets)))
	s.logger.InfoContext(ctx, "workbook inspected",
		slog.String("filename", filename),
		slog.Int("sheets", len(info.Sheets)))

	return info, nil
}

// Check classifies every selected sheet in selection order, renders the
// annotated workbook and stores it for download.
func (s *ComplianceService) Check(ctx context.Context, upload io.Reader, filename string, req domain.CheckRequest) (result *domain.CheckResult, err error) {
	ctx, span := s.tracer.Start(ctx, "compliance.check", trace.WithAttributes(
		attribute.String("compliance.direction", string(req.Direction)),
		attribute.Int("compliance.threshold", req.Threshold),
		attribute.Int("compliance.sheets", len(req.Sheets)),
	))
	defer span.End()

	start := time.Now()
	var uploadBytes int64
	defer func() {
		kind := ""
		sheets := 0
		if err != nil {
			kind = ErrorKind(err)
			infrastructure.RecordError(ctx, err)
		} else {
			sheets = len(result.Sheets)
		}
		infrastructure.RecordCheckMetrics(ctx, s.metrics, string(req.Direction), sheets, uploadBytes, time.Since(start), kind)
	}()

	if err := ValidateCheckRequest(req); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(upload)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	uploadBytes = int64(len(data))

	r, err := workbook.Open(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	results := make([]domain.SheetResult, 0, len(req.Sheets))
	for _, rule := range req.Sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sheet, err := r.ReadSheet(rule.Sheet)
		if err != nil {
			return nil, err
		}

		sr, err := compliance.ClassifySheet(sheet, req.Direction, req.Threshold, rule)
		if err != nil {
			return nil, err
		}
		results = append(results, sr)

		infrastructure.RecordRowStatuses(ctx, s.metrics, map[string]int{
			domain.StatusMet.String():           sr.Summary.Met,
			domain.StatusNotMet.String():        sr.Summary.NotMet,
			domain.StatusNotApplicable.String(): sr.Summary.NotApplicable,
		})
		s.logger.DebugContext(ctx, "sheet classified",
			slog.String("sheet", sr.Sheet),
			slog.String("column", sr.Column),
			slog.Int("rows", sr.Summary.Total),
			slog.Int("met", sr.Summary.Met),
			slog.Int("not_met", sr.Summary.NotMet),
			slog.Int("not_applicable", sr.Summary.NotApplicable))
	}

	var out bytes.Buffer
	if err := workbook.Write(&out, results, s.cfg.StatusColumn); err != nil {
		return nil, fmt.Errorf("write annotated workbook: %w", err)
	}

	stored, err := s.store.Put(ctx, out.Bytes(), s.cfg.OutputFilename, s.cfg.ResultTTL)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "compliance check completed",
		slog.String("result_id", stored.ID),
		slog.String("filename", filename),
		slog.String("direction", string(req.Direction)),
		slog.Int("threshold", req.Threshold),
		slog.Int("sheets", len(results)),
		slog.Int("size", out.Len()),
		slog.Duration("duration", time.Since(start)))

	return &domain.CheckResult{
		ID:        stored.ID,
		Direction: req.Direction,
		Threshold: req.Threshold,
		Filename:  stored.Filename,
		Sheets:    results,
		Size:      out.Len(),
		CreatedAt: stored.CreatedAt,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

// Download returns a stored annotated workbook.
func (s *ComplianceService) Download(ctx context.Context, id string) (*StoredResult, error) {
	stored, err := s.store.Get(ctx, id)
	if err != nil {
		s.logger.InfoContext(ctx, "download of unknown result", slog.String("result_id", id))
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.DownloadsTotal.Add(ctx, 1)
	}
	s.logger.InfoContext(ctx, "result downloaded",
		slog.String("result_id", id),
		slog.Int("size", len(stored.Data)))
	return stored, nil
}

// Discard removes a stored result before it expires.
func (s *ComplianceService) Discard(ctx context.Context, id string) error {
	if !s.store.Delete(ctx, id) {
		return ErrResultNotFound
	}

	s.logger.InfoContext(ctx, "result discarded", slog.String("result_id", id))
	return nil
}

// ValidateCheckRequest checks the parts of a request that do not depend on
// the workbook.
func ValidateCheckRequest(req domain.CheckRequest) error {
	if len(req.Sheets) == 0 {
		return ErrNoSheetsSelected
	}
	if !req.Direction.Valid() {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidRequest, req.Direction)
	}
	if req.Threshold < 0 {
		return fmt.Errorf("%w: threshold must not be negative", ErrInvalidRequest)
	}

	seen := make(map[string]bool, len(req.Sheets))
	for _, rule := range req.Sheets {
		if rule.Sheet == "" {
			return fmt.Errorf("%w: sheet name is required", ErrInvalidRequest)
		}
		if seen[rule.Sheet] {
			return fmt.Errorf("%w: sheet %q selected twice", ErrInvalidRequest, rule.Sheet)
		}
		seen[rule.Sheet] = true

		if rule.Column == "" {
			return fmt.Errorf("%w: sheet %q has no column", ErrInvalidRequest, rule.Sheet)
		}
		if !rule.BlankPolicy.Valid() {
			return fmt.Errorf("%w: sheet %q has unknown blank policy %q", ErrInvalidRequest, rule.Sheet, rule.BlankPolicy)
		}
	}
	return nil
}

// ErrorKind maps an error to a low-cardinality label for metrics.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrNoSheetsSelected), errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	case errors.Is(err, workbook.ErrInvalidWorkbook):
		return "invalid_workbook"
	case errors.Is(err, workbook.ErrSheetNotFound):
		return "sheet_not_found"
	case errors.Is(err, workbook.ErrEmptySheet):
		return "empty_sheet"
	case errors.Is(err, compliance.ErrColumnNotFound):
		return "column_not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "internal"
	}
}
