// Package familysearch implements ports.Fetcher over the FamilySearch
// platform API.
package familysearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/ersonp/famgraph/internal/domain/ports"
	"github.com/ersonp/famgraph/internal/infrastructure/cache"
)

const (
	sessionCookie = "fssessionid"

	// restrictedMessage is the 403 message of accounts that may not read
	// ordinances.
	restrictedMessage = "Unable to get ordinances."

	maxBodyBytes = 32 << 20
)

// ErrUnauthorized is returned when the session is missing or expired.
var ErrUnauthorized = errors.New("session is not authorized, sign in again and update source.session_id")

// Defaults for Client.
const (
	DefaultTimeout    = 60 * time.Second
	DefaultRateLimit  = 10
	DefaultBurst      = 5
	DefaultMaxRetries = 5
	DefaultRetryDelay = time.Second
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
			c.maxDelay = d
		}
	}
}

// WithRateLimit bounds the request rate across all goroutines.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			return
		}
		if burst <= 0 {
			burst = DefaultBurst
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithRetries sets the number of retries after a transient failure and the
// first wait between them.
func WithRetries(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if delay >= 0 {
			c.retryDelay = delay
		}
	}
}

// WithCache serves repeated paths from store. ttl is passed to every Set.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client fetches and decodes documents. It is safe for concurrent use.
type Client struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *slog.Logger
	maxRetries int
	retryDelay time.Duration
	maxDelay   time.Duration

	requests atomic.Int64
}

var (
	_ ports.Fetcher        = (*Client)(nil)
	_ ports.RequestCounter = (*Client)(nil)
)

// NewClient creates a client for baseURL authenticated by sessionID.
func NewClient(baseURL, sessionID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		sessionID:  sessionID,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(DefaultRateLimit, DefaultBurst),
		logger:     slog.Default(),
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		maxDelay:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Requests returns the number of HTTP requests sent so far. Cache hits are
// not counted.
func (c *Client) Requests() int64 {
	return c.requests.Load()
}

// Fetch implements ports.Fetcher.
//
// 204, 404, 405, 410 and 500 responses and undecodable bodies are absent.
// 401 yields ErrUnauthorized. A 403 carrying the ordinances message yields
// ports.ErrRestricted; any other 403 is absent. Other failures are retried.
func (c *Client) Fetch(ctx context.Context, path string, v any) (bool, error) {
	url := c.baseURL + path
	key := cache.Key(url)
	cacheable := c.cache != nil && isCacheable(path)

	if cacheable {
		if body, ok := c.cache.Get(ctx, key); ok {
			if err := json.Unmarshal(body, v); err == nil {
				c.logger.Debug("cache hit", "path", path)
				return true, nil
			}
			_ = c.cache.Delete(ctx, key)
		}
	}

	body, err := retryWithContext(ctx, c.maxRetries+1, c.retryDelay, c.maxDelay, func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, path, url)
	})
	if errors.Is(err, errAbsent) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fetching %s: %w", path, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		c.logger.Warn("corrupted response", "path", path, "error", err)
		return false, nil
	}
	if cacheable {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			c.logger.Warn("caching response failed", "path", path, "error", err)
		}
	}
	return true, nil
}

// errAbsent marks a response that carries no document.
var errAbsent = errors.New("absent")

// get performs one request. Non-retryable outcomes are permanent errors.
func (c *Client) get(ctx context.Context, path, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.sessionID != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.sessionID})
	}

	c.requests.Add(1)
	c.logger.Debug("downloading", "path", path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed, retrying", "path", path, "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	switch status := resp.StatusCode; {
	case status == http.StatusNoContent:
		return nil, permanent(errAbsent)
	case status == http.StatusNotFound, status == http.StatusMethodNotAllowed,
		status == http.StatusGone, status == http.StatusInternalServerError:
		c.logger.Warn("document unavailable", "path", path, "status", status)
		return nil, permanent(errAbsent)
	case status == http.StatusUnauthorized:
		return nil, permanent(ErrUnauthorized)
	case status == http.StatusForbidden:
		msg := errorMessage(body)
		if msg == restrictedMessage {
			return nil, permanent(ports.ErrRestricted)
		}
		c.logger.Warn("access denied", "path", path, "message", msg)
		return nil, permanent(errAbsent)
	case status >= 200 && status < 300:
		return body, nil
	default:
		c.logger.Warn("unexpected status, retrying", "path", path, "status", status)
		return nil, fmt.Errorf("unexpected status %d", status)
	}
}

// errorMessage extracts the first error message of an error document.
func errorMessage(body []byte) string {
	var doc struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &doc); err != nil || len(doc.Errors) == 0 {
		return ""
	}
	return doc.Errors[0].Message
}

// isCacheable excludes documents that depend on the signed-in account.
func isCacheable(path string) bool {
	return !strings.HasPrefix(path, "/platform/users/") && !strings.HasSuffix(path, "/ordinances.json")
}
