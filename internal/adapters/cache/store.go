// Package cache stores raw upstream responses on disk with a read-time TTL.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is the on-disk document for one key.
type Entry struct {
	FetchedAt *time.Time      `json:"fetchedAt"`
	Data      json.RawMessage `json:"data"`
}

// Store provides keyed access to cached responses.
type Store interface {
	// Get returns the cached value for key when it was fetched no more than
	// ttl ago. Missing, stale and unreadable entries all report false.
	Get(ctx context.Context, key string, ttl time.Duration) (json.RawMessage, bool)

	// Set writes value under key stamped with the current time, replacing
	// any previous entry.
	Set(ctx context.Context, key string, value json.RawMessage) error
}
