package cache

import "errors"

// Sentinel kinds for cache errors.
var (
	ErrCorruptEntry = errors.New("corrupt cache entry")
	ErrWriteEntry   = errors.New("write cache entry")
	ErrInvalidValue = errors.New("cache value is not a JSON document")
)
