package domain

import (
	"fmt"
	"strings"
)

// Status is the compliance label attached to every classified row.
type Status string

const (
	StatusMet           Status = "Met"
	StatusNotMet        Status = "Not Met"
	StatusNotApplicable Status = "Not Applicable"
)

// AllStatuses returns every status in display order.
func AllStatuses() []Status {
	return []Status{StatusMet, StatusNotMet, StatusNotApplicable}
}

// ParseStatus parses a status label ("Not Met") or identifier ("not_met"),
// case-insensitively.
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	switch key {
	case "met":
		return StatusMet, nil
	case "not met", "notmet":
		return StatusNotMet, nil
	case "not applicable", "notapplicable", "n/a", "na":
		return StatusNotApplicable, nil
	default:
		return "", fmt.Errorf("invalid status: %q", s)
	}
}

// String returns the label written into the Status column.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusMet, StatusNotMet, StatusNotApplicable:
		return true
	}
	return false
}

// Direction selects the comparator applied against the threshold.
type Direction string

const (
	DirectionGreaterThan Direction = "greater_than"
	DirectionLessThan    Direction = "less_than"
)

// ParseDirection accepts the identifiers and the form labels
// "Greater Than" / "Less Than".
func ParseDirection(s string) (Direction, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	switch key {
	case "greater_than", "gt", ">":
		return DirectionGreaterThan, nil
	case "less_than", "lt", "<":
		return DirectionLessThan, nil
	default:
		return "", fmt.Errorf("invalid direction: %q", s)
	}
}

// Label returns the human readable form of the direction.
func (d Direction) Label() string {
	switch d {
	case DirectionGreaterThan:
		return "Greater Than"
	case DirectionLessThan:
		return "Less Than"
	}
	return string(d)
}

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionGreaterThan || d == DirectionLessThan
}
