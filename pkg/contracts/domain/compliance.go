package domain

import "time"

// SheetRule holds the per-sheet choices of a check: which column carries the
// day values and what status a blank cell receives.
type SheetRule struct {
	Sheet       string `json:"sheet"`
	Column      string `json:"column"`
	BlankPolicy Status `json:"blank_policy"`
}

// CheckRequest is one run of the checker. Direction and Threshold are shared by
// every selected sheet; Sheets keeps the selection order.
type CheckRequest struct {
	Direction Direction   `json:"direction"`
	Threshold int         `json:"threshold"`
	Sheets    []SheetRule `json:"sheets"`
}

// Summary counts the statuses assigned in one sheet.
type Summary struct {
	Met           int `json:"met"`
	NotMet        int `json:"not_met"`
	NotApplicable int `json:"not_applicable"`
	Total         int `json:"total"`
}

// Add records one status.
func (s *Summary) Add(status Status) {
	switch status {
	case StatusMet:
		s.Met++
	case StatusNotMet:
		s.NotMet++
	case StatusNotApplicable:
		s.NotApplicable++
	}
	s.Total++
}

// Count returns the number of rows with the given status.
func (s Summary) Count(status Status) int {
	switch status {
	case StatusMet:
		return s.Met
	case StatusNotMet:
		return s.NotMet
	case StatusNotApplicable:
		return s.NotApplicable
	}
	return 0
}

// SheetResult is a classified sheet: the original table plus one status per row.
type SheetResult struct {
	Sheet       string   `json:"sheet"`
	Column      string   `json:"column"`
	BlankPolicy Status   `json:"blank_policy"`
	Columns     []string `json:"columns"`
	Rows        [][]Cell `json:"-"`
	Statuses    []Status `json:"-"`
	Summary     Summary  `json:"summary"`
}

// OutputColumns returns the header of the annotated sheet and the index of the
// status column. An existing column named statusColumn is reused in place.
func (r SheetResult) OutputColumns(statusColumn string) ([]string, int) {
	for i, c := range r.Columns {
		if c == statusColumn {
			return append([]string(nil), r.Columns...), i
		}
	}
	out := make([]string, len(r.Columns), len(r.Columns)+1)
	copy(out, r.Columns)
	return append(out, statusColumn), len(r.Columns)
}

// CheckResult is the outcome of a check, addressable for download by ID until
// ExpiresAt.
type CheckResult struct {
	ID        string        `json:"id"`
	Direction Direction     `json:"direction"`
	Threshold int           `json:"threshold"`
	Filename  string        `json:"filename"`
	Sheets    []SheetResult `json:"sheets"`
	Size      int           `json:"size"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
}
