package services

import "errors"

var (
	// ErrResultNotFound is returned for unknown or expired result IDs.
	ErrResultNotFound = errors.New("result not found")
	// ErrNoSheetsSelected is returned when a check selects no sheet.
	ErrNoSheetsSelected = errors.New("no sheets selected")
	// ErrInvalidRequest wraps semantic problems with a check request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrStoreFull is returned when the result store cannot take more results.
	ErrStoreFull = errors.New("result store is full")
)
