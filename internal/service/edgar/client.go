package edgar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"EdgarPull/internal/domain/models"
	drepo "EdgarPull/internal/domain/repository"
	"EdgarPull/internal/service/ratelimit"
	"EdgarPull/pkg/cache"
	xhttp "EdgarPull/pkg/http"
	xlogger "EdgarPull/pkg/logger"
)

// Client talks to SEC EDGAR. Every request passes through the shared rate
// limiter, carries the mandatory User-Agent, retries transient failures
// with exponential backoff, and caches document bodies for the run.
type Client struct {
	baseURL     string // archive + search host
	dataBaseURL string // submissions API host
	userAgent   string
	maxRetries  int
	backoffMin  time.Duration
	backoffMax  time.Duration

	limiter *ratelimit.Limiter
	cache   cache.Service
	http    *xhttp.Client
	metrics drepo.Metrics
	logger  *xlogger.Logger
}

// Option configures Client.
type Option func(*Client)

// WithBaseURL overrides the archive/search host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithDataBaseURL overrides the submissions API host.
func WithDataBaseURL(u string) Option {
	return func(c *Client) { c.dataBaseURL = strings.TrimRight(u, "/") }
}

// WithRetry sets the attempt ceiling and backoff bounds.
func WithRetry(maxRetries int, min, max time.Duration) Option {
	return func(c *Client) {
		if maxRetries > 0 {
			c.maxRetries = maxRetries
		}
		if min > 0 {
			c.backoffMin = min
		}
		if max > 0 {
			c.backoffMax = max
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = xhttp.NewClient(xhttp.WithTimeout(d)) }
}

// New creates an EDGAR client. userAgent identifies the caller to the SEC
// and is mandatory; its absence is a configuration error, not a
// per-request failure.
func New(userAgent string, limiter *ratelimit.Limiter, docCache cache.Service, metrics drepo.Metrics, logger *xlogger.Logger, opts ...Option) (*Client, error) {
	if strings.TrimSpace(userAgent) == "" {
		return nil, &models.ConfigurationError{Field: "edgar.user_agent", Reason: "identifying User-Agent is required"}
	}

	c := &Client{
		baseURL:     "https://www.sec.gov",
		dataBaseURL: "https://data.sec.gov",
		userAgent:   userAgent,
		maxRetries:  3,
		backoffMin:  500 * time.Millisecond,
		backoffMax:  8 * time.Second,
		limiter:     limiter,
		cache:       docCache,
		metrics:     metrics,
		logger:      logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(30 * time.Second))
	}
	return c, nil
}

// FetchSubmissions returns the parsed submissions index for a CIK.
func (c *Client) FetchSubmissions(ctx context.Context, cik string) (*drepo.Submissions, error) {
	url := fmt.Sprintf("%s/submissions/CIK%s.json", c.dataBaseURL, cik)

	body, err := c.getCached(ctx, "submissions", url)
	if err != nil {
		return nil, err
	}

	var subs drepo.Submissions
	if err := decodeSubmissions(body, &subs); err != nil {
		return nil, fmt.Errorf("decode submissions for CIK %s: %w", cik, err)
	}
	return &subs, nil
}

// FetchDocument returns the raw body at an archive location. location may
// be a full URL or an Archives-relative path.
func (c *Client) FetchDocument(ctx context.Context, location string) ([]byte, error) {
	url := location
	if !strings.HasPrefix(url, "http") {
		url = c.baseURL + "/" + strings.TrimLeft(location, "/")
	}
	return c.getCached(ctx, "document", url)
}

// ArchiveURL builds the archive location of a filing document.
func (c *Client) ArchiveURL(cik, accessionNumber, document string) string {
	flat := strings.ReplaceAll(accessionNumber, "-", "")
	return fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s", c.baseURL, strings.TrimLeft(cik, "0"), flat, document)
}

// SearchCompanies looks up 13F filers by company name in the EDGAR
// company index.
func (c *Client) SearchCompanies(ctx context.Context, name string) ([]drepo.CompanyMatch, error) {
	url := c.baseURL + "/cgi-bin/browse-edgar"
	body, err := c.get(ctx, "search", url, map[string][]string{
		"company": {name},
		"type":    {"13F-HR"},
		"owner":   {"exclude"},
		"action":  {"getcompany"},
		"output":  {"atom"},
	})
	if err != nil {
		return nil, err
	}
	return parseCompanySearch(body)
}

func (c *Client) Close() error { return nil }

// getCached is a read-through wrapper around get. Keys are prefixed by
// endpoint and hash the URL so long archive paths stay within key size
// limits.
func (c *Client) getCached(ctx context.Context, endpoint, url string) ([]byte, error) {
	key := cache.GenerateKeyWithParams("edgarpull:doc", endpoint, cache.HashKey(url))

	if c.cache != nil {
		var cached string
		if err := c.cache.Get(ctx, key, &cached); err == nil {
			return []byte(cached), nil
		}
	}

	body, err := c.get(ctx, endpoint, url, nil)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, key, string(body), 0)
	}
	return body, nil
}

// get performs one rate-limited GET with retry on transient failures.
// The attempt chain yields either the body or a tagged error; retry
// exhaustion surfaces RetrievalError with the last cause.
func (c *Client) get(ctx context.Context, endpoint, url string, query map[string][]string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, err
		}

		start := time.Now()
		body, retryable, err := c.doOnce(ctx, url, query)
		if c.metrics != nil {
			c.metrics.RecordRequest(endpoint)
			c.metrics.RecordLatency("edgar_"+endpoint, time.Since(start).Seconds())
		}
		if err == nil {
			return body, nil
		}
		if !retryable {
			if c.metrics != nil {
				c.metrics.RecordError(endpoint)
			}
			return nil, err
		}

		lastErr = err
		if c.logger != nil {
			c.logger.Warn("edgar request retry",
				xlogger.String("url", url),
				xlogger.Int("attempt", attempt),
				xlogger.Error(err))
		}
		if c.metrics != nil {
			c.metrics.RecordRetry(endpoint)
		}

		if attempt == c.maxRetries {
			break
		}
		if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
			return nil, err
		}
	}

	if c.metrics != nil {
		c.metrics.RecordError(endpoint)
	}
	return nil, &models.RetrievalError{URL: url, Attempts: c.maxRetries, Cause: lastErr}
}

// doOnce performs a single request. retryable classifies the failure:
// timeouts, connection errors, 429 and 5xx are transient; a 4xx other
// than 404 indicates a malformed request and fails the chain immediately.
func (c *Client) doOnce(ctx context.Context, url string, query map[string][]string) (body []byte, retryable bool, err error) {
	resp, err := c.http.SendRequest(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         url,
		QueryParams: query,
		Headers: map[string]string{
			"User-Agent": c.userAgent,
			"Accept":     "*/*",
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, false, ctx.Err()
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		b, rerr := io.ReadAll(resp.Body)
		if rerr != nil {
			return nil, true, fmt.Errorf("read body: %w", rerr)
		}
		return b, false, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%w: %s", models.ErrNotFound, url)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("edgar status %d: %s", resp.StatusCode, url)
	default:
		return nil, false, fmt.Errorf("edgar rejected request (status %d): %s", resp.StatusCode, url)
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.backoffMin << (attempt - 1)
	if d > c.backoffMax {
		d = c.backoffMax
	}
	return d
}

func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ drepo.FilingSource = (*Client)(nil)

// IsNotFound reports whether err is the repository's not-found response.
func IsNotFound(err error) bool { return errors.Is(err, models.ErrNotFound) }
