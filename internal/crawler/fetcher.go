// Package crawler discovers article links on the news site, fetches article
// pages and extracts their text and metadata.
package crawler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	"newscorpus/internal/config"
	"newscorpus/internal/logger"
)

const (
	defaultUserAgent = "newscorpus/1.0 (+https://github.com/newscorpus)"
	maxBodyBytes     = 8 << 20
)

// Fetch errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrRequestFailed        = errors.New("request failed")
	ErrDecodeBody           = errors.New("failed to decode response body")
)

// FetchError describes a failed request for a single URL.
type FetchError struct {
	Err        error
	URL        string
	StatusCode int
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %v (status %d)", e.URL, e.Err, e.StatusCode)
	}

	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Retryable reports whether a caller may reasonably try the request again.
func (e *FetchError) Retryable() bool {
	if e.StatusCode != 0 {
		return isRetryableStatus(e.StatusCode)
	}

	var netErr net.Error

	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Response is a fetched page with its body decoded to UTF-8.
type Response struct {
	Header     http.Header
	URL        string
	Body       string
	StatusCode int
}

// PageFetcher performs a single GET request.
type PageFetcher interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// Fetcher issues single GET requests with the configured headers, timeout,
// certificate policy and response encoding. It never retries.
type Fetcher struct {
	client   *http.Client
	headers  map[string]string
	encoding encoding.Encoding
	limiter  *rate.Limiter
	logger   *logger.Logger
}

// NewFetcher creates a fetcher from a validated configuration.
func NewFetcher(cfg *config.Config, log *logger.Logger) (*Fetcher, error) {
	enc, err := htmlindex.Get(cfg.Encoding())
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", cfg.Encoding(), err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: !cfg.VerifyCertificate(), //nolint:gosec // controlled by should_verify_certificate
	}

	limit := rate.Inf
	if delay := cfg.RequestDelay(); delay > 0 {
		limit = rate.Every(delay)
	}

	if cfg.HeadlessMode() {
		log.Warn("headless mode is not supported, falling back to plain HTTP")
	}

	return &Fetcher{
		client: &http.Client{
			Timeout:   cfg.Timeout(),
			Transport: transport,
		},
		headers:  cfg.Headers(),
		encoding: enc,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   log,
	}, nil
}

// UserAgent returns the User-Agent sent with every request.
func (f *Fetcher) UserAgent() string {
	for k, v := range f.headers {
		if http.CanonicalHeaderKey(k) == "User-Agent" {
			return v
		}
	}

	return defaultUserAgent
}

// Get fetches url once and returns the decoded response. Any non-2xx status
// is a *FetchError.
func (f *Fetcher) Get(ctx context.Context, url string) (*Response, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("%w: %w", ErrRequestFailed, err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("%w: %w", ErrRequestFailed, err)}
	}

	req.Header.Set("User-Agent", defaultUserAgent)

	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("%w: %w", ErrRequestFailed, err)}
	}
	defer resp.Body.Close()

	f.logger.Debug("fetched page", "url", url, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: ErrUnexpectedStatusCode}
	}

	reader := transform.NewReader(io.LimitReader(resp.Body, maxBodyBytes), f.encoding.NewDecoder())

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("%w: %w", ErrDecodeBody, err)}
	}

	return &Response{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       string(body),
	}, nil
}

// isRetryableStatus determines if a caller may retry based on HTTP status code.
func isRetryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusTooManyRequests,
		http.StatusRequestTimeout:
		return true
	}

	return false
}
