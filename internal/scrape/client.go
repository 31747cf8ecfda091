// Package scrape fetches tournament fields from Wikipedia and season
// statistics from Sports-Reference.
//
// All requests go through Client, which paces requests with a token bucket,
// backs off on 429 responses and decodes compressed bodies.
package scrape

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"

	"github.com/bracketiq/madness-data/internal/metrics"
)

var (
	// ErrPageNotFound is returned for 404 responses.
	ErrPageNotFound = errors.New("page not found")
	// ErrRateLimited is returned when 429 responses outlast the retry budget.
	ErrRateLimited = errors.New("rate limited")
)

// StatusError is an unexpected non-200 response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

// ClientOptions configures pacing and retries.
type ClientOptions struct {
	RequestsPerMinute int
	MaxRetries        int
	InitialBackoff    time.Duration
	Timeout           time.Duration
}

// Client is a rate-limited HTTP client for HTML pages.
type Client struct {
	httpClient *http.Client
	source     string
	limiter    *rate.Limiter
	maxRetries int
	backoff    time.Duration
	logger     *slog.Logger
}

// NewClient creates a client. source labels metrics and log lines.
func NewClient(source string, opts ClientOptions, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	rps := float64(opts.RequestsPerMinute) / 60.0
	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		source:     source,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		maxRetries: opts.MaxRetries,
		backoff:    opts.InitialBackoff,
		logger:     logger,
	}
}

// Get fetches url and returns the decoded body.
//
// A 429 waits for Retry-After when the server sends one, otherwise for the
// current backoff, which doubles after every retry. 5xx responses are retried
// the same way. 404 returns ErrPageNotFound.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	wait := c.backoff
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		body, retryAfter, err := c.fetch(ctx, url)
		if err == nil {
			return body, nil
		}

		var se *StatusError
		retryable := errors.As(err, &se) && (se.Code == http.StatusTooManyRequests || se.Code >= 500)
		if !retryable {
			return nil, err
		}
		if attempt >= c.maxRetries {
			if se.Code == http.StatusTooManyRequests {
				return nil, fmt.Errorf("GET %s after %d retries: %w", url, attempt, ErrRateLimited)
			}
			return nil, err
		}

		delay := wait
		if retryAfter >= 0 {
			delay = retryAfter
		}
		c.logger.Warn("Retrying request", "source", c.source, "url", url, "status", se.Code, "wait", delay)
		metrics.ScrapeRetriesTotal.WithLabelValues(c.source).Inc()

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		wait *= 2
	}
}

// fetch performs one request. retryAfter is negative when the response did
// not carry a usable Retry-After header.
func (c *Client) fetch(ctx context.Context, url string) (body []byte, retryAfter time.Duration, err error) {
	retryAfter = -1

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, retryAfter, fmt.Errorf("create request: %w", err)
	}
	setBrowserHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ScrapeRequestsTotal.WithLabelValues(c.source, "error").Inc()
		return nil, retryAfter, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()
	metrics.ScrapeRequestsTotal.WithLabelValues(c.source, strconv.Itoa(resp.StatusCode)).Inc()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, retryAfter, fmt.Errorf("GET %s: %w", url, ErrPageNotFound)
	default:
		if secs, perr := strconv.Atoi(resp.Header.Get("Retry-After")); perr == nil && secs >= 0 {
			retryAfter = time.Duration(secs) * time.Second
		}
		return nil, retryAfter, &StatusError{URL: url, Code: resp.StatusCode}
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, retryAfter, err
	}
	defer reader.Close()

	body, err = io.ReadAll(reader)
	if err != nil {
		return nil, retryAfter, fmt.Errorf("read response body: %w", err)
	}
	return body, retryAfter, nil
}

// decodeBody unwraps the Content-Encoding we advertise in Accept-Encoding.
func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		r, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return r, nil
	case "deflate":
		return flate.NewReader(resp.Body), nil
	case "br":
		return io.NopCloser(brotli.NewReader(resp.Body)), nil
	default:
		return io.NopCloser(resp.Body), nil
	}
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", "https://www.google.com/")
}
