// Package backend is the typed HTTP client for the CarteCalcio game API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	rateLimitDelay = 100 * time.Millisecond
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// Authenticator supplies bearer tokens for authenticated calls and handles
// the retry-once-after-refresh policy when a token is rejected.
type Authenticator interface {
	// Token returns the current access token, refreshing if none is held.
	Token(ctx context.Context) (string, error)
	// Invalidate discards a rejected token and returns a fresh one.
	Invalidate(ctx context.Context, stale string) (string, error)
}

// Client talks to the game backend with rate limiting and bounded retries.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
	auth        Authenticator
}

// Options configures a Client.
type Options struct {
	// BaseURL of the backend, e.g. https://api.cartecalcio.example.
	BaseURL string
	// Timeout for individual HTTP requests. Default 30s.
	Timeout time.Duration
	// RateLimit between requests. Default one per 100ms.
	RateLimit time.Duration
	// HTTPClient allows injecting a custom client, mostly for tests.
	HTTPClient *http.Client
}

// NewClient creates a backend client. The authenticator may be attached
// later with SetAuth once the token store is wired up.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	limit := opts.RateLimit
	if limit <= 0 {
		limit = rateLimitDelay
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		httpClient:  httpClient,
		rateLimiter: rate.NewLimiter(rate.Every(limit), 1),
		userAgent:   "CarteCalcio-Companion/1.0",
	}
}

// SetAuth attaches the authenticator used for bearer-authenticated calls.
func (c *Client) SetAuth(auth Authenticator) {
	c.auth = auth
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// url joins the base URL with an API path.
func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// request describes one backend call for doRequest.
type request struct {
	method string
	path   string
	body   any
	// authed requests carry a bearer token and retry once after a refresh
	// when the backend answers 401.
	authed bool
	// tolerateMissing treats 404 and 204 as an empty-but-absent result
	// instead of an error; doRequest reports it through the missing flag.
	tolerateMissing bool
}

// doRequest performs one call with rate limiting, bounded retries on network
// errors and 429, and the single refresh-and-retry on 401 for authed calls.
// The missing return is true only when tolerateMissing is set and the
// backend answered 404 or 204.
func (c *Client) doRequest(ctx context.Context, req request, result any) (missing bool, err error) {
	var bodyBytes []byte
	if req.body != nil {
		bodyBytes, err = json.Marshal(req.body)
		if err != nil {
			return false, fmt.Errorf("encode request body: %w", err)
		}
	}

	token := ""
	if req.authed {
		if c.auth == nil {
			return false, ErrMissingToken
		}
		token, err = c.auth.Token(ctx)
		if err != nil {
			return false, err
		}
	}

	var lastErr error
	backoff := initialBackoff
	refreshed := false

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return false, fmt.Errorf("rate limiter: %w", err)
		}

		var reader io.Reader
		if bodyBytes != nil {
			reader = bytes.NewReader(bodyBytes)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.method, c.url(req.path), reader)
		if err != nil {
			return false, fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("User-Agent", c.userAgent)
		httpReq.Header.Set("Accept", "application/json")
		if bodyBytes != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			if attempt < maxRetries {
				time.Sleep(backoff)
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return false, lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized && req.authed && !refreshed:
			refreshed = true
			token, err = c.auth.Invalidate(ctx, token)
			if err != nil {
				return false, err
			}
			continue

		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
			if attempt < maxRetries {
				time.Sleep(retryDelay(resp, backoff))
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return false, lastErr

		case resp.StatusCode == http.StatusNoContent:
			if req.tolerateMissing {
				return true, nil
			}
			return false, nil

		case resp.StatusCode == http.StatusNotFound:
			if req.tolerateMissing {
				return true, nil
			}
			return false, &NotFoundError{URL: c.url(req.path)}

		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if readErr != nil {
				return false, fmt.Errorf("read response body: %w", readErr)
			}
			if result == nil || len(body) == 0 {
				return false, nil
			}
			if err := json.Unmarshal(body, result); err != nil {
				// Feed-style endpoints keep the screen usable on a garbled
				// payload rather than failing the whole fetch.
				if req.tolerateMissing {
					return true, nil
				}
				return false, fmt.Errorf("parse response: %w", err)
			}
			return false, nil

		default:
			apiErr := &APIError{Status: resp.StatusCode}
			var payload struct {
				Detail string `json:"detail"`
			}
			if json.Unmarshal(body, &payload) == nil && payload.Detail != "" {
				apiErr.Detail = payload.Detail
			}
			return false, apiErr
		}
	}

	return false, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// get is a shorthand for unauthenticated GETs.
func (c *Client) get(ctx context.Context, path string, result any) error {
	_, err := c.doRequest(ctx, request{method: http.MethodGet, path: path}, result)
	return err
}

// authedGet is a shorthand for authenticated GETs.
func (c *Client) authedGet(ctx context.Context, path string, result any) error {
	_, err := c.doRequest(ctx, request{method: http.MethodGet, path: path, authed: true}, result)
	return err
}

func retryDelay(resp *http.Response, fallback time.Duration) time.Duration {
	if after := resp.Header.Get("Retry-After"); after != "" {
		if d, err := time.ParseDuration(after + "s"); err == nil {
			return d
		}
	}
	return fallback
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

// ErrMissingToken signals that no access token is available and the refresh
// path could not produce one.
var ErrMissingToken = errors.New("missing access token")

// APIError is a non-2xx answer from the backend, with the detail message the
// server attaches when it has one.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("backend request failed with status %d", e.Status)
}

// NotFoundError is a 404 from an endpoint that does not tolerate absence.
type NotFoundError struct {
	URL string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.URL)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
