package app

import (
	"time"

	"github.com/okian/clanstats/pkg/logger"
)

// Option applies a configuration option to the Exporter.
type Option func(*Exporter)

// WithOutputDir sets the directory reports are written to.
func WithOutputDir(dir string) Option {
	return func(e *Exporter) {
		if dir != "" {
			e.outputDir = dir
		}
	}
}

// WithIncludeWarlog adds the clan war log to the snapshot.
func WithIncludeWarlog(include bool) Option {
	return func(e *Exporter) {
		e.includeWarlog = include
	}
}

// WithClock replaces time.Now for generatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithRunID fixes the run identifier stamped into every document.
func WithRunID(id string) Option {
	return func(e *Exporter) {
		if id != "" {
			e.runID = id
		}
	}
}

// WithLogger sets a custom logger for the exporter.
func WithLogger(l logger.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}
