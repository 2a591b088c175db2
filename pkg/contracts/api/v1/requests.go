// Package api contains the HTTP contract of the compliance checker.
// Version v1 represents the current stable API version.
package api

import (
	"fmt"

	"github.com/syedbaqir291-debug/42-Days-Compliance-Status/pkg/contracts/domain"
)

// SheetRuleRequest selects one sheet and its per-sheet options.
type SheetRuleRequest struct {
	Sheet       string `json:"sheet" validate:"required,max=31"`
	Column      string `json:"column" validate:"required"`
	BlankPolicy string `json:"blank_policy,omitempty" validate:"omitempty,status"`
}

// CheckRequest is the JSON document sent in the "request" field of
// POST /api/compliance/check next to the uploaded workbook.
type CheckRequest struct {
	Direction string             `json:"direction" validate:"required,direction"`
	Threshold *int               `json:"threshold" validate:"required,gte=0"`
	Sheets    []SheetRuleRequest `json:"sheets" validate:"required,min=1,unique=Sheet,dive"`
}

// ToDomain converts a validated request. Sheets without a blank policy get
// defaultBlank.
func (r CheckRequest) ToDomain(defaultBlank domain.Status) (domain.CheckRequest, error) {
	direction, err := domain.ParseDirection(r.Direction)
	if err != nil {
		return domain.CheckRequest{}, err
	}
	if r.Threshold == nil {
		return domain.CheckRequest{}, fmt.Errorf("threshold is required")
	}

	out := domain.CheckRequest{
		Direction: direction,
		Threshold: *r.Threshold,
		Sheets:    make([]domain.SheetRule, 0, len(r.Sheets)),
	}
	for _, s := range r.Sheets {
		policy := defaultBlank
		if s.BlankPolicy != "" {
			if policy, err = domain.ParseStatus(s.BlankPolicy); err != nil {
				return domain.CheckRequest{}, fmt.Errorf("sheet %q: %w", s.Sheet, err)
			}
		}
		out.Sheets = append(out.Sheets, domain.SheetRule{
			Sheet:       s.Sheet,
			Column:      s.Column,
			BlankPolicy: policy,
		})
	}
	return out, nil
}
