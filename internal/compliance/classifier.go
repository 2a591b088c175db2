package compliance

import (
	"strconv"
	"strings"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts/domain"
)

// Classify returns the status of a single raw value.
func Classify(value string, direction domain.Direction, threshold int, blankPolicy domain.Status) domain.Status {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return blankPolicy
	}

	n, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return domain.StatusNotApplicable
	}

	limit := float64(threshold)
	switch direction {
	case domain.DirectionGreaterThan:
		if n > limit {
			return domain.StatusMet
		}
	case domain.DirectionLessThan:
		if n < limit {
			return domain.StatusMet
		}
	}
	return domain.StatusNotMet
}

// ClassifyCell classifies a workbook cell. Empty cells are blank.
func ClassifyCell(cell domain.Cell, direction domain.Direction, threshold int, blankPolicy domain.Status) domain.Status {
	if cell.IsEmpty() {
		return blankPolicy
	}
	if cell.Kind == domain.CellBool {
		return domain.StatusNotApplicable
	}
	return Classify(cell.Raw, direction, threshold, blankPolicy)
}

// ClassifyColumn classifies values in order. The result has the same length
// as values.
func ClassifyColumn(values []domain.Cell, direction domain.Direction, threshold int, blankPolicy domain.Status) []domain.Status {
	out := make([]domain.Status, len(values))
	for i, v := range values {
		out[i] = ClassifyCell(v, direction, threshold, blankPolicy)
	}
	return out
}

// Summarize counts statuses.
func Summarize(statuses []domain.Status) domain.Summary {
	var s domain.Summary
	for _, st := range statuses {
		s.Add(st)
	}
	return s
}
