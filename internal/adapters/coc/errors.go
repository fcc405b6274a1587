package coc

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API client errors.
var (
	ErrMissingCredential = errors.New("missing API credential")
	ErrAuth              = errors.New("API rejected credential")
	ErrNotFound          = errors.New("resource not found")
	ErrUpstreamStatus    = errors.New("unexpected upstream status")
	ErrInvalidBody       = errors.New("upstream body is not valid JSON")
	ErrUnknownResource   = errors.New("unknown resource kind")
	ErrEmptyTag          = errors.New("empty tag")
)

// RequestError is a failed request: a transport failure or a non-2xx status
// other than an auth rejection. It is retried once.
type RequestError struct {
	Resource   Resource
	StatusCode int
	Body       string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request %s: %v", e.Resource, e.Err)
	}
	if e.Body == "" {
		return fmt.Sprintf("request %s: status %d: %v", e.Resource, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("request %s: status %d: %v: %s", e.Resource, e.StatusCode, e.Err, e.Body)
}

func (e *RequestError) Unwrap() error { return e.Err }
