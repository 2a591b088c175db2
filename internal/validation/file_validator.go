package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/config"
)

var (
	// ErrUnsupportedFileType is returned for files that are not xlsx workbooks.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrFileTooLarge is returned when an upload exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")
	// ErrEmptyUpload is returned when no file or an empty file was sent.
	ErrEmptyUpload = errors.New("empty upload")
)

// lockFilePrefix marks the owner files Excel leaves next to open workbooks.
const lockFilePrefix = "~$"

// FileValidator checks workbook uploads and local workbook paths.
type FileValidator struct {
	extensions []string
	maxBytes   int64
	logger     *slog.Logger
}

// NewFileValidator creates a validator for the given upload limits. An empty
// extension list allows .xlsx only; a non-positive size disables the limit.
func NewFileValidator(cfg config.UploadConfig, logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}

	exts := make([]string, 0, len(cfg.Extensions))
	for _, e := range cfg.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	if len(exts) == 0 {
		exts = []string{".xlsx"}
	}

	return &FileValidator{
		extensions: exts,
		maxBytes:   cfg.MaxBytes,
		logger:     logger.With(slog.String("component", "file_validator")),
	}
}

// MaxBytes returns the upload size limit, or zero when unlimited.
func (v *FileValidator) MaxBytes() int64 {
	if v.maxBytes < 0 {
		return 0
	}
	return v.maxBytes
}

// ValidateUpload checks an uploaded file's name and size.
func (v *FileValidator) ValidateUpload(filename string, size int64) error {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if filename == "" || base == "." || base == "/" {
		return fmt.Errorf("%w: no file name", ErrEmptyUpload)
	}

	if strings.HasPrefix(base, lockFilePrefix) {
		v.logger.Warn("Rejected temporary Excel file", slog.String("file", base))
		return fmt.Errorf("%w: %s is a temporary Excel file", ErrUnsupportedFileType, base)
	}

	ext := strings.ToLower(filepath.Ext(base))
	if !v.allowed(ext) {
		v.logger.Warn("Rejected file type",
			slog.String("file", base),
			slog.String("extension", ext))
		return fmt.Errorf("%w: %q (allowed: %s)", ErrUnsupportedFileType, ext, strings.Join(v.extensions, ", "))
	}

	if size == 0 {
		return fmt.Errorf("%w: %s has no content", ErrEmptyUpload, base)
	}
	if v.maxBytes > 0 && size > v.maxBytes {
		v.logger.Warn("Rejected oversized file",
			slog.String("file", base),
			slog.Int64("size", size),
			slog.Int64("max_bytes", v.maxBytes))
		return fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, base, size, v.maxBytes)
	}

	return nil
}

// ValidateWorkbookFile checks that path is a readable workbook file within
// the upload limits.
func (v *FileValidator) ValidateWorkbookFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	if err := v.ValidateUpload(filepath.Base(path), info.Size()); err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("Workbook file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

func (v *FileValidator) allowed(ext string) bool {
	for _, e := range v.extensions {
		if e == ext {
			return true
		}
	}
	return false
}
