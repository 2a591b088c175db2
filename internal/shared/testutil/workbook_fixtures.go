package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// FixtureSheet describes one worksheet of a test workbook. Rows[0] is the
// header row; nil values leave the cell unset.
type FixtureSheet struct {
	Name string
	Rows [][]interface{}
}

// CasesSheet returns a typical compliance sheet with numeric, blank and
// textual day values.
func CasesSheet(name string) FixtureSheet {
	return FixtureSheet{
		Name: name,
		Rows: [][]interface{}{
			{"Case", "Owner", "Days"},
			{"C-001", "North", 50},
			{"C-002", "South", 42},
			{"C-003", "East", 10},
			{"C-004", "West", nil},
			{"C-005", "North", "N/A"},
		},
	}
}

// BuildWorkbook renders sheets into xlsx bytes, in the given order.
func BuildWorkbook(t *testing.T, sheets ...FixtureSheet) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				t.Fatalf("rename fixture sheet: %v", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			t.Fatalf("create fixture sheet %q: %v", sheet.Name, err)
		}

		for r, row := range sheet.Rows {
			for c, value := range row {
				if value == nil {
					continue
				}
				ref, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					t.Fatalf("cell name: %v", err)
				}
				if err := f.SetCellValue(sheet.Name, ref, value); err != nil {
					t.Fatalf("set %s!%s: %v", sheet.Name, ref, err)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write fixture workbook: %v", err)
	}
	return buf.Bytes()
}

// WriteWorkbookFile saves a fixture workbook under dir and returns its path.
func WriteWorkbookFile(t *testing.T, dir, name string, sheets ...FixtureSheet) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildWorkbook(t, sheets...), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadWorkbookRows returns the raw rows of every sheet in a workbook.
func ReadWorkbookRows(t *testing.T, data []byte) (sheets []string, rows map[string][][]string) {
	t.Helper()

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows = make(map[string][][]string)
	sheets = f.GetSheetList()
	for _, name := range sheets {
		r, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		rows[name] = r
	}
	return sheets, rows
}
