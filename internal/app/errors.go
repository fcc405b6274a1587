package app

import "errors"

// Sentinel kinds for export errors.
var (
	ErrMissingClanTag = errors.New("clan tag is required")
	ErrMissingFetcher = errors.New("fetcher is required")
	ErrUnknownReport  = errors.New("unknown report")
	ErrWriteReport    = errors.New("write report")
)
