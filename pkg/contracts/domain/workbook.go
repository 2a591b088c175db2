package domain

// CellKind describes how a cell value was stored in the source workbook.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
	CellBool
)

// String returns the kind name used in previews.
func (k CellKind) String() string {
	switch k {
	case CellNumber:
		return "number"
	case CellText:
		return "text"
	case CellBool:
		return "bool"
	default:
		return "empty"
	}
}

// Cell is one source cell. Raw is the unformatted value used for
// classification; Text is the value as displayed by the workbook.
type Cell struct {
	Kind       CellKind `json:"-"`
	Raw        string   `json:"raw"`
	Text       string   `json:"text,omitempty"`
	NumFmt     int      `json:"-"`
	NumFmtCode string   `json:"-"`
}

// TextCell builds a text cell, or an empty cell for "".
func TextCell(s string) Cell {
	if s == "" {
		return Cell{Kind: CellEmpty}
	}
	return Cell{Kind: CellText, Raw: s}
}

// NumberCell builds a numeric cell from its raw representation.
func NumberCell(raw string) Cell {
	return Cell{Kind: CellNumber, Raw: raw}
}

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty
}

// Display returns the formatted value when known, else the raw value.
func (c Cell) Display() string {
	if c.Text != "" {
		return c.Text
	}
	return c.Raw
}

// Sheet is one named table of a workbook. The first row of the source sheet
// provides Columns; every following row is a data row padded to len(Columns).
type Sheet struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Rows    [][]Cell `json:"-"`
}

// ColumnIndex returns the position of column, or -1.
func (s *Sheet) ColumnIndex(column string) int {
	for i, c := range s.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// SheetInfo summarises a sheet for the selection form.
type SheetInfo struct {
	Name     string   `json:"name"`
	Columns  []string `json:"columns"`
	RowCount int      `json:"row_count"`
	Empty    bool     `json:"empty,omitempty"`
}

// WorkbookInfo lists the sheets of an uploaded workbook in workbook order.
type WorkbookInfo struct {
	Filename string      `json:"filename,omitempty"`
	Sheets   []SheetInfo `json:"sheets"`
}
