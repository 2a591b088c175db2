package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/compliance"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/config"
	apierrors "github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/errors"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/exporter"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/files"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/infrastructure"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/validation"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/workbook"
	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts/domain"
)

const outputPrefix = "Updated_"

// options holds the parsed command line.
type options struct {
	In        string
	OutDir    string
	Sheets    []string
	Column    string
	Columns   map[string]string
	Direction domain.Direction
	Threshold int
	Blank     domain.Status
	Summary   string
	Append    bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger := infrastructure.NewLogger(os.Stderr, cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], cfg, logger, os.Stderr); err != nil {
		logger.Error("compliance check failed", slog.String("error", err.Error()))
		os.Exit(apierrors.ExitCode(err))
	}
}

// run parses args and checks every matched workbook. Any failure is
// returned after all files were attempted; the first one decides the exit
// code.
func run(ctx context.Context, args []string, cfg *config.Config, logger *slog.Logger, stderr io.Writer) error {
	opts, err := parseFlags(args, cfg.Compliance, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return apierrors.NewAppValidationError(err.Error())
	}

	inputs, err := expandInputs(opts.In, cfg.Upload.Extensions)
	if err != nil {
		return err
	}

	outputs, err := outputPaths(inputs, opts.OutDir)
	if err != nil {
		return err
	}

	fileValidator := validation.NewFileValidator(cfg.Upload, logger)
	if err := fileValidator.ValidateOutputDirectory(opts.OutDir); err != nil {
		return apierrors.NewStorageError("output directory", err)
	}

	ctx = infrastructure.EnsureTraceID(ctx)
	logger.InfoContext(ctx, "Starting compliance check",
		slog.Int("files", len(inputs)),
		slog.String("output_dir", opts.OutDir),
		slog.String("direction", string(opts.Direction)),
		slog.Int("threshold", opts.Threshold))

	start := time.Now()
	records := make([][][]string, len(inputs))
	failures := make([]error, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				failures[i] = apierrors.NewWorkbookError(path, err)
				return nil
			}
			recs, err := processFile(gctx, path, outputs[i], opts, cfg.Compliance.StatusColumn, fileValidator, logger)
			if err != nil {
				logger.ErrorContext(gctx, "Workbook failed",
					slog.String("file", path),
					slog.String("error", err.Error()))
				var appErr *apierrors.AppError
				if !errors.As(err, &appErr) {
					err = apierrors.NewWorkbookError(path, err).WithContext("file", path)
				}
				failures[i] = err
				return nil
			}
			records[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var summary [][]string
	for _, recs := range records {
		summary = append(summary, recs...)
	}

	if opts.Summary != "" {
		exporter.SortRecords(summary)
		if err := writeSummary(exporter.NewCSVWriter("", logger), opts, summary); err != nil {
			failures = append(failures, apierrors.NewStorageError("write summary", err))
		}
	}

	failed := errors.Join(failures...)
	logger.InfoContext(ctx, "Compliance check finished",
		slog.Int("files", len(inputs)),
		slog.Int("sheets", len(summary)),
		slog.Bool("failed", failed != nil),
		slog.Duration("duration", time.Since(start)))

	return failed
}

func writeSummary(w *exporter.CSVWriter, opts *options, records [][]string) error {
	if opts.Append {
		return w.AppendSummary(opts.Summary, records)
	}
	return w.WriteSummary(opts.Summary, records)
}

// outputPaths maps every input to Updated_<name>.xlsx in outDir. Two inputs
// with the same file name would overwrite each other and are rejected.
func outputPaths(inputs []string, outDir string) ([]string, error) {
	outputs := make([]string, len(inputs))
	seen := make(map[string]string, len(inputs))
	for i, path := range inputs {
		name := outputPrefix + filepath.Base(path)
		key := strings.ToLower(name)
		if prev, ok := seen[key]; ok {
			return nil, apierrors.NewAppValidationError(
				fmt.Sprintf("inputs %s and %s both write %s", prev, path, name))
		}
		seen[key] = path
		outputs[i] = filepath.Join(outDir, name)
	}
	return outputs, nil
}

// processFile classifies the selected sheets of one workbook and writes
// them to out.
func processFile(ctx context.Context, path, out string, opts *options, statusColumn string, fileValidator *validation.FileValidator, logger *slog.Logger) ([][]string, error) {
	if err := fileValidator.ValidateWorkbookFile(path); err != nil {
		return nil, err
	}

	r, err := workbook.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rules, err := opts.rules(r)
	if err != nil {
		return nil, err
	}

	results := make([]domain.SheetResult, 0, len(rules))
	for _, rule := range rules {
		sheet, err := r.ReadSheet(rule.Sheet)
		if err != nil {
			return nil, err
		}
		result, err := compliance.ClassifySheet(sheet, opts.Direction, opts.Threshold, rule)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	base := filepath.Base(path)
	if err := workbook.WriteFile(out, results, statusColumn); err != nil {
		return nil, apierrors.NewStorageError("write "+out, err)
	}

	logger.InfoContext(ctx, "Workbook processed",
		slog.String("file", base),
		slog.String("output", out),
		slog.Int("sheets", len(results)))

	return exporter.SummaryRecords(base, opts.Direction, opts.Threshold, results), nil
}

// rules builds the ordered sheet rules for one workbook. Without -sheets
// every non-empty sheet is checked.
func (o *options) rules(r *workbook.Reader) ([]domain.SheetRule, error) {
	sheets := o.Sheets
	if len(sheets) == 0 {
		info, err := r.Info()
		if err != nil {
			return nil, err
		}
		for _, s := range info.Sheets {
			if !s.Empty {
				sheets = append(sheets, s.Name)
			}
		}
	}
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no data", workbook.ErrEmptySheet)
	}

	rules := make([]domain.SheetRule, 0, len(sheets))
	for _, name := range sheets {
		column := o.Column
		if c, ok := o.Columns[name]; ok {
			column = c
		}
		if column == "" {
			return nil, fmt.Errorf("no column given for sheet %q (use -column or -columns)", name)
		}
		rules = append(rules, domain.SheetRule{Sheet: name, Column: column, BlankPolicy: o.Blank})
	}
	return rules, nil
}

func parseFlags(args []string, defaults config.ComplianceConfig, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("compliance-check", flag.ContinueOnError)
	fs.SetOutput(stderr)

	in := fs.String("in", "", "input .xlsx file, directory or glob pattern (required)")
	outDir := fs.String("out-dir", ".", "directory for Updated_<name>.xlsx outputs")
	sheets := fs.String("sheets", "", "comma separated sheets to check, in order (default: all sheets)")
	column := fs.String("column", "", "target column used for every sheet")
	columns := fs.String("columns", "", "per-sheet target columns as Sheet=Column,...")
	direction := fs.String("direction", defaults.DefaultDirection, "greater_than | less_than")
	threshold := fs.Int("threshold", defaults.DefaultThreshold, "day threshold (>= 0)")
	blank := fs.String("blank", defaults.DefaultBlankPolicy, "status for blank cells: Met | Not Met | Not Applicable")
	summary := fs.String("summary", "", "optional CSV path for per-sheet status counts")
	appendSummary := fs.Bool("append", false, "append to an existing -summary CSV instead of replacing it")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if *in == "" {
		return nil, errors.New("-in is required")
	}
	if *threshold < 0 {
		return nil, fmt.Errorf("threshold must be >= 0, got %d", *threshold)
	}

	dir, err := domain.ParseDirection(*direction)
	if err != nil {
		return nil, err
	}
	policy, err := domain.ParseStatus(*blank)
	if err != nil {
		return nil, err
	}
	overrides, err := parseColumns(*columns)
	if err != nil {
		return nil, err
	}

	return &options{
		In:        *in,
		OutDir:    *outDir,
		Sheets:    splitList(*sheets),
		Column:    strings.TrimSpace(*column),
		Columns:   overrides,
		Direction: dir,
		Threshold: *threshold,
		Blank:     policy,
		Summary:   *summary,
		Append:    *appendSummary,
	}, nil
}

// parseColumns parses "Sheet=Column,Other=Column".
func parseColumns(s string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range splitList(s) {
		sheet, column, ok := strings.Cut(pair, "=")
		sheet, column = strings.TrimSpace(sheet), strings.TrimSpace(column)
		if !ok || sheet == "" || column == "" {
			return nil, fmt.Errorf("invalid -columns entry %q, want Sheet=Column", pair)
		}
		out[sheet] = column
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// expandInputs resolves -in as a directory, file or glob.
func expandInputs(input string, extensions []string) ([]string, error) {
	found, err := files.NewDiscovery("", extensions...).FindWorkbooks(input)
	if err != nil {
		return nil, apierrors.NewAppValidationError(fmt.Sprintf("invalid -in: %v", err))
	}
	if len(found) == 0 {
		return nil, apierrors.NewNotFoundError(fmt.Sprintf("workbooks matching %q", input))
	}

	paths := make([]string, 0, len(found))
	for _, f := range found {
		paths = append(paths, f.Path)
	}
	return paths, nil
}
