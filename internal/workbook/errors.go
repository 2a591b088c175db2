package workbook

import (
	"errors"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrInvalidWorkbook is returned when the upload is not a readable xlsx file.
	ErrInvalidWorkbook = errors.New("invalid workbook")
	// ErrSheetNotFound is returned when a requested sheet does not exist.
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrEmptySheet is returned when a sheet has no header row.
	ErrEmptySheet = errors.New("sheet is empty")
	// ErrNoSheets is returned when there is nothing to write.
	ErrNoSheets = errors.New("no sheets to write")
	// ErrDuplicateSheet is returned when the same sheet is written twice.
	ErrDuplicateSheet = errors.New("duplicate sheet")
)

// isSheetNotExist reports whether err is excelize's missing sheet error.
func isSheetNotExist(err error) bool {
	var target excelize.ErrSheetNotExist
	return errors.As(err, &target)
}
