package workbook

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts/domain"
)

// Write renders results as a new workbook, one sheet per result in order.
// Each sheet keeps the original columns and carries the status column,
// replacing a column of the same name if the header already has one.
func Write(w io.Writer, results []domain.SheetResult, statusColumn string) error {
	if len(results) == 0 {
		return ErrNoSheets
	}

	f := excelize.NewFile()
	defer f.Close()

	sw := &sheetWriter{file: f, styles: make(map[string]int)}
	var err error
	if sw.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	seen := make(map[string]bool, len(results))
	for i, result := range results {
		if seen[result.Sheet] {
			return fmt.Errorf("%w: %q", ErrDuplicateSheet, result.Sheet)
		}
		seen[result.Sheet] = true

		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), result.Sheet); err != nil {
				return fmt.Errorf("rename sheet %q: %w", result.Sheet, err)
			}
		} else if _, err := f.NewSheet(result.Sheet); err != nil {
			return fmt.Errorf("create sheet %q: %w", result.Sheet, err)
		}

		if err := sw.write(result, statusColumn); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile writes the annotated workbook to path.
func WriteFile(path string, results []domain.SheetResult, statusColumn string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(out, results, statusColumn); err != nil {
		out.Close()
		os.Remove(path)
		return err
	}
	return out.Close()
}

type sheetWriter struct {
	file   *excelize.File
	header int
	styles map[string]int
}

func (s *sheetWriter) write(result domain.SheetResult, statusColumn string) error {
	if len(result.Statuses) != len(result.Rows) {
		return fmt.Errorf("sheet %q: %d statuses for %d rows", result.Sheet, len(result.Statuses), len(result.Rows))
	}

	stream, err := s.file.NewStreamWriter(result.Sheet)
	if err != nil {
		return fmt.Errorf("create stream writer for %q: %w", result.Sheet, err)
	}

	columns, statusIdx := result.OutputColumns(statusColumn)

	headerRow := make([]interface{}, len(columns))
	for i, name := range columns {
		headerRow[i] = excelize.Cell{Value: name, StyleID: s.header}
	}
	if err := stream.SetRow("A1", headerRow); err != nil {
		return fmt.Errorf("write header of %q: %w", result.Sheet, err)
	}

	for i, cells := range result.Rows {
		row := make([]interface{}, len(columns))
		for j, cell := range cells {
			if j >= len(row) {
				break
			}
			if row[j], err = s.value(cell); err != nil {
				return err
			}
		}
		row[statusIdx] = result.Statuses[i].String()

		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := stream.SetRow(ref, row); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+2, result.Sheet, err)
		}
	}

	if err := stream.Flush(); err != nil {
		return fmt.Errorf("flush sheet %q: %w", result.Sheet, err)
	}
	return nil
}

// value converts a source cell back to a typed excelize value.
func (s *sheetWriter) value(cell domain.Cell) (interface{}, error) {
	switch cell.Kind {
	case domain.CellEmpty:
		return nil, nil
	case domain.CellBool:
		return cell.Raw == "1" || cell.Raw == "TRUE" || cell.Raw == "true", nil
	case domain.CellNumber:
		n, err := strconv.ParseFloat(cell.Raw, 64)
		if err != nil {
			return cell.Raw, nil
		}
		if cell.NumFmt == 0 && cell.NumFmtCode == "" {
			return n, nil
		}
		styleID, err := s.numberStyle(cell.NumFmt, cell.NumFmtCode)
		if err != nil {
			return nil, err
		}
		return excelize.Cell{Value: n, StyleID: styleID}, nil
	default:
		return cell.Raw, nil
	}
}

// numberStyle returns a cached style for a number format.
func (s *sheetWriter) numberStyle(numFmt int, code string) (int, error) {
	key := fmt.Sprintf("%d_%s", numFmt, code)
	if id, ok := s.styles[key]; ok {
		return id, nil
	}

	style := &excelize.Style{NumFmt: numFmt}
	if code != "" {
		style.CustomNumFmt = &code
	}
	id, err := s.file.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("create number style: %w", err)
	}
	s.styles[key] = id
	return id, nil
}
