package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrInvalidReportName = errors.New("report name must match [a-z_]+")
	ErrReportNotFound    = errors.New("report not found")
	ErrReadReport        = errors.New("read report")
)
