// Package linkcheck verifies that the URLs referenced by the catalog still resolve.
//
// Every distinct URL is requested once with HEAD, falling back to GET when the
// server refuses HEAD. Requests are bounded by a worker limit and a per-host
// rate limiter; transport errors, 429 and 5xx responses are retried with
// exponential backoff.
package linkcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/tc-opendata/railcat/pkg/core"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Checker checks URLs over HTTP.
type Checker struct {
	cfg     core.LinksConfig
	client  *http.Client
	logger  *slog.Logger
	backoff time.Duration

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Option configures a Checker.
type Option func(*Checker)

// WithHTTPClient replaces the HTTP client. The client's Timeout is left as is.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		c.client = client
	}
}

// WithBackoff sets the base delay between retries (default 500ms).
func WithBackoff(base time.Duration) Option {
	return func(c *Checker) {
		c.backoff = base
	}
}

// New creates a Checker. Zero values in cfg fall back to core.DefaultLinksConfig.
func New(cfg core.LinksConfig, logger *slog.Logger, opts ...Option) *Checker {
	defaults := core.DefaultLinksConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.Concurrency
	}
	if cfg.RatePerHost <= 0 {
		cfg.RatePerHost = defaults.RatePerHost
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	c := &Checker{
		cfg:      cfg,
		client:   &http.Client{},
		logger:   logger,
		backoff:  500 * time.Millisecond,
		limiters: make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check requests every distinct URL and returns one result per URL, sorted
// by URL. Failed links are results, not errors; an error is returned only
// when ctx is cancelled.
func (c *Checker) Check(ctx context.Context, urls []string) ([]core.LinkResult, error) {
	unique := dedupe(urls)
	results := make([]core.LinkResult, len(unique))

	c.logger.Debug("checking links",
		slog.Int("count", len(unique)),
		slog.Int("concurrency", c.cfg.Concurrency))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)

	for i, u := range unique {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.CheckOne(gctx, u)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("link check cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("link check cancelled: %w", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].URL < results[j].URL })
	return results, nil
}

// CheckOne checks a single URL.
func (c *Checker) CheckOne(ctx context.Context, rawURL string) core.LinkResult {
	start := time.Now()
	result := core.LinkResult{URL: rawURL, CheckedAt: start.UTC()}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		result.Status = core.LinkStatusSkipped
		result.Error = "not an http(s) URL"
		return result
	}

	limiter := c.limiter(strings.ToLower(u.Host))
	b := retry.WithMaxRetries(uint64(c.cfg.Retries), retry.NewExponential(c.backoff))

	var lastErr error
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		result.Attempts++
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		code, err := c.probe(ctx, rawURL)
		if err != nil {
			lastErr = err
			result.StatusCode = 0
			return retry.RetryableError(err)
		}

		lastErr = nil
		result.StatusCode = code
		if retryableStatus(code) {
			return retry.RetryableError(fmt.Errorf("HTTP %d", code))
		}
		return nil
	})
	result.Duration = time.Since(start)

	switch {
	case result.StatusCode != 0 && result.StatusCode < 400:
		result.Status = core.LinkStatusOK
	case result.StatusCode != 0:
		result.Status = core.LinkStatusBroken
	default:
		result.Status = core.LinkStatusUnreachable
		switch {
		case lastErr != nil:
			result.Error = lastErr.Error()
		case err != nil:
			result.Error = err.Error()
		}
	}

	c.logger.Debug("checked link",
		slog.String("url", rawURL),
		slog.String("status", string(result.Status)),
		slog.Int("code", result.StatusCode),
		slog.Int("attempts", result.Attempts))
	return result
}

// probe issues HEAD and falls back to GET when HEAD is not supported.
func (c *Checker) probe(ctx context.Context, rawURL string) (int, error) {
	code, err := c.do(ctx, http.MethodHead, rawURL)
	if err != nil {
		return 0, err
	}
	if code == http.StatusMethodNotAllowed || code == http.StatusNotImplemented {
		return c.do(ctx, http.MethodGet, rawURL)
	}
	return code, nil
}

func (c *Checker) do(ctx context.Context, method, rawURL string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			return 0, urlErr.Err
		}
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	return resp.StatusCode, nil
}

// limiter returns the rate limiter for host, creating it on first use.
func (c *Checker) limiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(c.cfg.RatePerHost), 1)
		c.limiters[host] = l
	}
	return l
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}
