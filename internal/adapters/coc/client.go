// Package coc fetches clan, player and war resources from the game API,
// serving repeated reads from a cache.
package coc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/clanstats/internal/adapters/cache"
	"github.com/okian/clanstats/pkg/logger"
	"github.com/okian/clanstats/pkg/metrics"
)

// DefaultBaseURL is the public API root.
const DefaultBaseURL = "https://api.clashofclans.com/v1"

const (
	defaultTimeout     = 20 * time.Second
	defaultTTL         = time.Hour
	defaultSleep       = 250 * time.Millisecond
	defaultWarlogLimit = 25
	minRetryDelay      = 500 * time.Millisecond
	maxBodyBytes       = 16 << 20
	maxErrorBodyBytes  = 512
)

// Resource is a kind of API resource.
type Resource string

// Resource kinds.
const (
	ResourceClan       Resource = "clan"
	ResourceMembers    Resource = "members"
	ResourcePlayer     Resource = "player"
	ResourceCurrentWar Resource = "currentWar"
	ResourceWarLog     Resource = "warLog"
)

// Client fetches API resources cache-first. It is meant for sequential use.
type Client struct {
	baseURL     string
	token       string
	http        *http.Client
	timeout     time.Duration
	store       cache.Store
	ttl         time.Duration
	sleep       time.Duration
	sleeper     Sleeper
	limiter     *rate.Limiter
	warlogLimit int
	log         logger.Logger
}

// New creates a client authenticating with token.
func New(token string, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingCredential
	}
	c := &Client{
		baseURL:     DefaultBaseURL,
		token:       token,
		http:        &http.Client{},
		timeout:     defaultTimeout,
		store:       noStore{},
		ttl:         defaultTTL,
		sleep:       defaultSleep,
		sleeper:     sleepContext,
		warlogLimit: defaultWarlogLimit,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ReadToken returns the credential stored in the environment variable
// envVar.
func ReadToken(envVar string) (string, error) {
	token := strings.TrimSpace(os.Getenv(envVar))
	if token == "" {
		return "", fmt.Errorf("%w: env var %s is empty", ErrMissingCredential, envVar)
	}
	return token, nil
}

// Endpoint returns the cache key and the escaped request path for a
// resource. Cache keys keep the tag verbatim; paths escape '#' as %23.
func (c *Client) Endpoint(kind Resource, tag string) (key, path string, err error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return "", "", fmt.Errorf("%w: %s", ErrEmptyTag, kind)
	}
	esc := url.PathEscape(tag)
	switch kind {
	case ResourceClan:
		return "clans_" + tag, "clans/" + esc, nil
	case ResourceMembers:
		return "clans_" + tag + "/members", "clans/" + esc + "/members", nil
	case ResourcePlayer:
		return "players_" + tag, "players/" + esc, nil
	case ResourceCurrentWar:
		return "clans_" + tag + "/currentwar", "clans/" + esc + "/currentwar", nil
	case ResourceWarLog:
		q := fmt.Sprintf("/warlog?limit=%d", c.warlogLimit)
		return "clans_" + tag + q, "clans/" + esc + q, nil
	}
	return "", "", fmt.Errorf("%w: %q", ErrUnknownResource, kind)
}

// Fetch returns the raw JSON for a resource. Fresh cache entries are
// returned without any network call or delay. Otherwise the resource is
// requested, retried once on failure, cached and followed by the courtesy
// delay.
func (c *Client) Fetch(ctx context.Context, kind Resource, tag string) (json.RawMessage, error) {
	key, path, err := c.Endpoint(kind, tag)
	if err != nil {
		return nil, err
	}
	if data, ok := c.store.Get(ctx, key, c.ttl); ok {
		return data, nil
	}

	data, err := c.fetchWithRetry(ctx, kind, c.baseURL+"/"+path)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, key, data); err != nil {
		c.log.Warn(ctx, "failed to cache response", logger.String("key", key), logger.Error(err))
	}
	if err := c.sleeper(ctx, c.sleep); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, kind Resource, u string) (json.RawMessage, error) {
	data, err := c.get(ctx, kind, u)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, ErrAuth) || ctx.Err() != nil {
		return nil, err
	}

	delay := max(minRetryDelay, c.sleep)
	c.log.Warn(ctx, "request failed, retrying once",
		logger.String("resource", string(kind)),
		logger.Duration("delay", delay),
		logger.Error(err))
	metrics.RecordUpstreamRetry(string(kind))
	if err := c.sleeper(ctx, delay); err != nil {
		return nil, err
	}
	return c.get(ctx, kind, u)
}

func (c *Client) get(ctx context.Context, kind Resource, u string) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &RequestError{Resource: kind, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RecordUpstreamLatency(string(kind), float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordUpstreamRequest(string(kind), "error")
		return nil, &RequestError{Resource: kind, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		metrics.RecordUpstreamRequest(string(kind), "error")
		return nil, &RequestError{Resource: kind, StatusCode: resp.StatusCode, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.RecordUpstreamRequest(string(kind), "auth")
		return nil, fmt.Errorf("%w: %s: status %d: %s", ErrAuth, kind, resp.StatusCode, excerpt(body))
	case resp.StatusCode == http.StatusNotFound:
		metrics.RecordUpstreamRequest(string(kind), "error")
		return nil, &RequestError{Resource: kind, StatusCode: resp.StatusCode, Body: excerpt(body), Err: ErrNotFound}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.RecordUpstreamRequest(string(kind), "error")
		return nil, &RequestError{Resource: kind, StatusCode: resp.StatusCode, Body: excerpt(body), Err: ErrUpstreamStatus}
	}

	data, err := cache.Compact(body)
	if err != nil {
		metrics.RecordUpstreamRequest(string(kind), "error")
		return nil, &RequestError{Resource: kind, StatusCode: resp.StatusCode, Err: ErrInvalidBody}
	}
	metrics.RecordUpstreamRequest(string(kind), "ok")
	c.log.Debug(ctx, "fetched resource",
		logger.String("resource", string(kind)),
		logger.Int("bytes", len(data)))
	return data, nil
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodyBytes {
		s = s[:maxErrorBodyBytes]
	}
	return s
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// noStore is the cache used when none is configured: every read misses.
type noStore struct{}

func (noStore) Get(context.Context, string, time.Duration) (json.RawMessage, bool) { return nil, false }
func (noStore) Set(context.Context, string, json.RawMessage) error                 { return nil }
