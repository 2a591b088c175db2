package api

import (
	"time"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts/domain"
)

// SheetPreview is the on-screen table of one processed sheet. Rows include the
// Status column as their last value.
type SheetPreview struct {
	Sheet       string         `json:"sheet"`
	Column      string         `json:"column"`
	BlankPolicy string         `json:"blank_policy"`
	Columns     []string       `json:"columns"`
	Rows        [][]string     `json:"rows"`
	TotalRows   int            `json:"total_rows"`
	Truncated   bool           `json:"truncated"`
	Summary     domain.Summary `json:"summary"`
}

// CheckResponse is returned by POST /api/compliance/check.
type CheckResponse struct {
	ID          string         `json:"id"`
	Message     string         `json:"message"`
	Direction   string         `json:"direction"`
	Threshold   int            `json:"threshold"`
	Filename    string         `json:"filename"`
	DownloadURL string         `json:"download_url"`
	ExpiresAt   time.Time      `json:"expires_at"`
	Sheets      []SheetPreview `json:"sheets"`
}

// NewCheckResponse builds the response for result, keeping at most previewRows
// rows per sheet (0 keeps all of them).
func NewCheckResponse(result *domain.CheckResult, statusColumn, downloadURL string, previewRows int) *CheckResponse {
	resp := &CheckResponse{
		ID:          result.ID,
		Message:     "Processing Completed!",
		Direction:   result.Direction.Label(),
		Threshold:   result.Threshold,
		Filename:    result.Filename,
		DownloadURL: downloadURL,
		ExpiresAt:   result.ExpiresAt,
		Sheets:      make([]SheetPreview, 0, len(result.Sheets)),
	}
	for _, sr := range result.Sheets {
		resp.Sheets = append(resp.Sheets, NewSheetPreview(sr, statusColumn, previewRows))
	}
	return resp
}

// NewSheetPreview renders a classified sheet as strings.
func NewSheetPreview(sr domain.SheetResult, statusColumn string, previewRows int) SheetPreview {
	columns, statusIdx := sr.OutputColumns(statusColumn)

	n := len(sr.Rows)
	truncated := false
	if previewRows > 0 && n > previewRows {
		n = previewRows
		truncated = true
	}

	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(columns))
		for j, cell := range sr.Rows[i] {
			if j < len(row) {
				row[j] = cell.Display()
			}
		}
		row[statusIdx] = sr.Statuses[i].String()
		rows = append(rows, row)
	}

	return SheetPreview{
		Sheet:       sr.Sheet,
		Column:      sr.Column,
		BlankPolicy: sr.BlankPolicy.String(),
		Columns:     columns,
		Rows:        rows,
		TotalRows:   len(sr.Rows),
		Truncated:   truncated,
		Summary:     sr.Summary,
	}
}
