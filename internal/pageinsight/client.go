package pageinsight

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Bahjat/site-audit/backend/internal/model"
	"github.com/vnykmshr/goflow/pkg/ratelimit/bucket"
	"golang.org/x/net/html/charset"
)

// Fetcher defines how the engine retrieves a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.FetchedPage, error)
}

// HTTPClient implements Fetcher using a real HTTP client.
type HTTPClient struct {
	client  *http.Client
	limiter bucket.Limiter
}

// ClientOptions tunes NewHTTPClient.
type ClientOptions struct {
	Timeout time.Duration
	// Rate caps outbound fetches per second across the process; 0 disables it.
	Rate float64
	// AllowPrivate turns off the private address guard.
	AllowPrivate bool
}

const (
	maxRedirects    = 5
	maxResponseBody = 10 << 20
	userAgent       = "SiteAuditBot/1.0 (+https://github.com/Bahjat/site-audit)"
	acceptHeader    = "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
	acceptLanguage  = "de-DE,de;q=0.9,en;q=0.8"
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
)

// NewHTTPClient returns a Fetcher backed by an http.Client with a dedicated
// transport that blocks connections to private/reserved IP ranges, and
// redirect validation that prevents SSRF via redirect chains.
func NewHTTPClient(opts ClientOptions) (*HTTPClient, error) {
	var limiter bucket.Limiter
	if opts.Rate > 0 {
		burst := int(opts.Rate * 2)
		if burst < 1 {
			burst = 1
		}
		var err error
		limiter, err = bucket.NewSafe(bucket.Limit(opts.Rate), burst)
		if err != nil {
			return nil, fmt.Errorf("creating fetch limiter: %w", err)
		}
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				DialContext:         newDialer(opts.AllowPrivate).DialContext,
				MaxConnsPerHost:     10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
			CheckRedirect: safeRedirectPolicy,
		},
		limiter: limiter,
	}, nil
}

// safeRedirectPolicy validates redirect targets and limits the redirect chain length.
func safeRedirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// Fetch issues one GET for targetURL, follows redirects and reads the body,
// decoded to UTF-8. ResponseTime covers the request up to the last body byte.
// Responses with an error status are returned as-is; judging them is up to
// the caller.
func (c *HTTPClient) Fetch(ctx context.Context, targetURL string) (*model.FetchedPage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for fetch slot: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", acceptLanguage)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	// Bodies beyond the cap are truncated rather than rejected.
	raw := io.LimitReader(resp.Body, maxResponseBody)

	decoded, err := charset.NewReader(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decoding body: %w", err)
	}
	body, err := io.ReadAll(decoded)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	elapsed := time.Since(start)

	final := resp.Request.URL
	return &model.FetchedPage{
		URL:          final.String(),
		Scheme:       final.Scheme,
		StatusCode:   resp.StatusCode,
		Headers:      resp.Header,
		Body:         string(body),
		Size:         len(body),
		ResponseTime: elapsed,
	}, nil
}
