package compliance

import (
	"errors"
	"fmt"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts/domain"
)

// ErrColumnNotFound is returned when the target column is not in the sheet header.
var ErrColumnNotFound = errors.New("column not found")

// ClassifySheet tags every row of sheet using rule. Rows are neither dropped
// nor reordered.
func ClassifySheet(sheet domain.Sheet, direction domain.Direction, threshold int, rule domain.SheetRule) (domain.SheetResult, error) {
	idx := sheet.ColumnIndex(rule.Column)
	if idx < 0 {
		return domain.SheetResult{}, fmt.Errorf("sheet %q: %w: %q", sheet.Name, ErrColumnNotFound, rule.Column)
	}

	values := make([]domain.Cell, len(sheet.Rows))
	for i, row := range sheet.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	statuses := ClassifyColumn(values, direction, threshold, rule.BlankPolicy)

	return domain.SheetResult{
		Sheet:       sheet.Name,
		Column:      rule.Column,
		BlankPolicy: rule.BlankPolicy,
		Columns:     sheet.Columns,
		Rows:        sheet.Rows,
		Statuses:    statuses,
		Summary:     Summarize(statuses),
	}, nil
}
