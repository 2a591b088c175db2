package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/internal/config"
)

func newValidator(t *testing.T) *FileValidator {
	t.Helper()
	return NewFileValidator(config.UploadConfig{MaxBytes: 1024, Extensions: []string{".xlsx"}}, nil)
}

func TestNewFileValidator_NormalizesExtensions(t *testing.T) {
	v := NewFileValidator(config.UploadConfig{Extensions: []string{"XLSX", " .xlsm ", ""}}, nil)
	assert.Equal(t, []string{".xlsx", ".xlsm"}, v.extensions)

	v = NewFileValidator(config.UploadConfig{}, nil)
	assert.Equal(t, []string{".xlsx"}, v.extensions)
	assert.Zero(t, v.MaxBytes())
}

func TestFileValidator_ValidateUpload(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		wantErr  error
	}{
		{name: "valid workbook", filename: "cases.xlsx", size: 512},
		{name: "upper case extension", filename: "CASES.XLSX", size: 512},
		{name: "windows path", filename: `C:\Users\me\cases.xlsx`, size: 512},
		{name: "exactly at limit", filename: "cases.xlsx", size: 1024},
		{name: "no file name", filename: "", size: 10, wantErr: ErrEmptyUpload},
		{name: "empty file", filename: "cases.xlsx", size: 0, wantErr: ErrEmptyUpload},
		{name: "legacy xls", filename: "cases.xls", size: 10, wantErr: ErrUnsupportedFileType},
		{name: "csv", filename: "cases.csv", size: 10, wantErr: ErrUnsupportedFileType},
		{name: "no extension", filename: "cases", size: 10, wantErr: ErrUnsupportedFileType},
		{name: "excel lock file", filename: "~$cases.xlsx", size: 10, wantErr: ErrUnsupportedFileType},
		{name: "too large", filename: "cases.xlsx", size: 1025, wantErr: ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newValidator(t).ValidateUpload(tt.filename, tt.size)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestFileValidator_ValidateWorkbookFile(t *testing.T) {
	tests := []struct {
		name          string
		setupFunc     func(t *testing.T) string
		wantErr       error
		errorContains string
	}{
		{
			name: "valid workbook",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "cases.xlsx")
				require.NoError(t, os.WriteFile(path, []byte("PK"), 0644))
				return path
			},
		},
		{
			name: "missing file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.xlsx")
			},
			errorContains: "does not exist",
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "folder.xlsx")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			errorContains: "is a directory",
		},
		{
			name: "wrong extension",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "cases.csv")
				require.NoError(t, os.WriteFile(path, []byte("a,b"), 0644))
				return path
			},
			wantErr: ErrUnsupportedFileType,
		},
		{
			name: "too large",
			setupFunc: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "cases.xlsx")
				require.NoError(t, os.WriteFile(path, make([]byte, 2048), 0644))
				return path
			},
			wantErr: ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newValidator(t).ValidateWorkbookFile(tt.setupFunc(t))
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errorContains != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := newValidator(t)

	dir := filepath.Join(t.TempDir(), "nested", "out")
	require.NoError(t, v.ValidateOutputDirectory(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = os.Stat(filepath.Join(dir, ".write_test"))
	assert.True(t, os.IsNotExist(err))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	assert.Error(t, v.ValidateOutputDirectory(filepath.Join(file, "sub")))
}
