package cache

import (
	"time"

	"github.com/okian/clanstats/pkg/logger"
)

// Option applies a configuration option to the DiskStore.
type Option func(*DiskStore)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *DiskStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for corrupt entries and writes.
func WithLogger(l logger.Logger) Option {
	return func(s *DiskStore) {
		if l != nil {
			s.log = l
		}
	}
}
