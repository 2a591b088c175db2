package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	err := NewWorkbookError("open cases.xlsx", cause).WithContext("path", "cases.xlsx")

	assert.Equal(t, "[WORKBOOK] open cases.xlsx: zip: not a valid zip file", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cases.xlsx", err.Context["path"])

	assert.Equal(t, "[NOT_FOUND] result not found", NewNotFoundError("result").Error())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain error", errors.New("boom"), 1},
		{"config", NewConfigError("load", nil), 2},
		{"validation", NewAppValidationError("threshold must not be negative"), 3},
		{"not found", NewNotFoundError("sheet"), 4},
		{"workbook", NewWorkbookError("read", nil), 5},
		{"storage", NewStorageError("write", nil), 6},
		{"wrapped", fmt.Errorf("run: %w", NewConfigError("load", nil)), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
