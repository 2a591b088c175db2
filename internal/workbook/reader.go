package workbook

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts/domain"
)

// Reader reads sheets from an xlsx workbook.
type Reader struct {
	file *excelize.File
}

// Open reads a workbook from r.
func Open(r io.Reader) (*Reader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	return &Reader{file: f}, nil
}

// OpenFile reads a workbook from disk.
func OpenFile(path string) (*Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidWorkbook, path, err)
	}
	return &Reader{file: f}, nil
}

// Close releases the workbook's temporary files.
func (r *Reader) Close() error {
	return r.file.Close()
}

// SheetNames returns the worksheet names in workbook order.
func (r *Reader) SheetNames() []string {
	return r.file.GetSheetList()
}

// HasSheet reports whether the workbook contains a sheet called name.
func (r *Reader) HasSheet(name string) bool {
	for _, s := range r.file.GetSheetList() {
		if s == name {
			return true
		}
	}
	return false
}

// Info lists every sheet with its columns and data row count. Sheets
// without a header row are reported as empty instead of failing.
func (r *Reader) Info() (*domain.WorkbookInfo, error) {
	names := r.SheetNames()
	info := &domain.WorkbookInfo{Sheets: make([]domain.SheetInfo, 0, len(names))}
	for _, name := range names {
		sheet, err := r.ReadSheet(name)
		switch {
		case err == nil:
			info.Sheets = append(info.Sheets, domain.SheetInfo{
				Name:     name,
				Columns:  sheet.Columns,
				RowCount: len(sheet.Rows),
			})
		case errors.Is(err, ErrEmptySheet):
			info.Sheets = append(info.Sheets, domain.SheetInfo{Name: name, Columns: []string{}, Empty: true})
		default:
			return nil, err
		}
	}
	return info, nil
}

// ReadSheet loads a sheet as a table. The first row is the header; every
// following row up to the last non-empty one is a data row padded to the
// header width. Blank rows in between are kept.
func (r *Reader) ReadSheet(name string) (domain.Sheet, error) {
	if !r.HasSheet(name) {
		return domain.Sheet{}, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}

	raw, err := r.file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		if isSheetNotExist(err) {
			return domain.Sheet{}, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
		}
		return domain.Sheet{}, fmt.Errorf("read sheet %q: %w", name, err)
	}
	formatted, err := r.file.GetRows(name)
	if err != nil {
		return domain.Sheet{}, fmt.Errorf("read sheet %q: %w", name, err)
	}

	if len(raw) == 0 {
		return domain.Sheet{}, fmt.Errorf("%w: %q", ErrEmptySheet, name)
	}

	width := 0
	for _, row := range raw {
		width = max(width, len(row))
	}

	sheet := domain.Sheet{
		Name:    name,
		Columns: headerNames(raw[0], width),
		Rows:    make([][]domain.Cell, 0, len(raw)-1),
	}

	for i := 1; i < len(raw); i++ {
		var text []string
		if i < len(formatted) {
			text = formatted[i]
		}
		row := make([]domain.Cell, width)
		for j, value := range raw[i] {
			if value == "" {
				continue
			}
			cell, err := r.cell(name, j, i, value)
			if err != nil {
				return domain.Sheet{}, err
			}
			if j < len(text) && text[j] != value {
				cell.Text = text[j]
			}
			row[j] = cell
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet, nil
}

// cell types one non-empty value at zero-based column col and row idx.
func (r *Reader) cell(sheet string, col, idx int, value string) (domain.Cell, error) {
	ref, err := excelize.CoordinatesToCellName(col+1, idx+1)
	if err != nil {
		return domain.Cell{}, err
	}
	typ, err := r.file.GetCellType(sheet, ref)
	if err != nil {
		return domain.Cell{}, fmt.Errorf("cell %s!%s: %w", sheet, ref, err)
	}

	switch typ {
	case excelize.CellTypeBool:
		return domain.Cell{Kind: domain.CellBool, Raw: value}, nil
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return domain.TextCell(value), nil
		}
		cell := domain.NumberCell(value)
		cell.NumFmt, cell.NumFmtCode = r.numberFormat(sheet, ref)
		return cell, nil
	default:
		return domain.TextCell(value), nil
	}
}

// numberFormat returns the number format applied to ref. Unstyled cells
// report the General format.
func (r *Reader) numberFormat(sheet, ref string) (int, string) {
	styleID, err := r.file.GetCellStyle(sheet, ref)
	if err != nil || styleID == 0 {
		return 0, ""
	}
	style, err := r.file.GetStyle(styleID)
	if err != nil || style == nil {
		return 0, ""
	}
	if style.CustomNumFmt != nil {
		return style.NumFmt, *style.CustomNumFmt
	}
	return style.NumFmt, ""
}
