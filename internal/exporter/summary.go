package exporter

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strconv"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts/domain"
)

// SummaryHeaders is the header row of a summary CSV.
var SummaryHeaders = []string{
	"File", "Sheet", "Column", "Direction", "Threshold", "Blank Policy",
	"Met", "Not Met", "Not Applicable", "Total",
}

// SummaryRecords returns one record per classified sheet, in result order.
func SummaryRecords(file string, direction domain.Direction, threshold int, results []domain.SheetResult) [][]string {
	records := make([][]string, 0, len(results))
	for _, r := range results {
		records = append(records, []string{
			file,
			r.Sheet,
			r.Column,
			direction.Label(),
			strconv.Itoa(threshold),
			r.BlankPolicy.String(),
			strconv.Itoa(r.Summary.Met),
			strconv.Itoa(r.Summary.NotMet),
			strconv.Itoa(r.Summary.NotApplicable),
			strconv.Itoa(r.Summary.Total),
		})
	}
	return records
}

// SortRecords orders records by file name. Sheet order within a file is kept.
func SortRecords(records [][]string) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i][0] < records[j][0]
	})
}

// WriteSummary writes a summary CSV with a BOM.
func (w *CSVWriter) WriteSummary(filePath string, records [][]string) error {
	return w.WriteSimpleCSV(filePath, SummaryHeaders, records)
}

// AppendSummary adds records to an existing summary CSV, creating it with
// headers when it does not exist yet.
func (w *CSVWriter) AppendSummary(filePath string, records [][]string) error {
	if _, err := os.Stat(w.resolvePath(filePath)); errors.Is(err, fs.ErrNotExist) {
		return w.WriteSummary(filePath, records)
	}
	return w.AppendToCSV(filePath, records)
}
