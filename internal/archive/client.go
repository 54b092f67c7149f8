package archive

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/ppiankov/leakprobe/internal/cache"
	"github.com/ppiankov/leakprobe/internal/model"
	"github.com/ppiankov/leakprobe/internal/util"
)

// RateLimiter throttles outbound requests per target URL
type RateLimiter interface {
	Wait(ctx context.Context, rawURL string) error
}

type options struct {
	httpClient *http.Client
	limiter    RateLimiter
	logger     *slog.Logger
	verdicts   *cache.VerdictCache
}

// Option customizes an archive backend
type Option func(*options)

// WithHTTPClient replaces the client built from the HTTP config
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLimiter throttles every archive request
func WithLimiter(l RateLimiter) Option {
	return func(o *options) { o.limiter = l }
}

// WithLogger sets the logger for absorbed failures
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithVerdictCache memoizes verdicts
func WithVerdictCache(v *cache.VerdictCache) Option {
	return func(o *options) { o.verdicts = v }
}

func buildOptions(cfg model.HTTPConfig, opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = newHTTPClient(cfg)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func newHTTPClient(cfg model.HTTPConfig) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)
	if cfg.InsecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in flag
	}
	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}
}

// client issues GET requests against archive endpoints
type client struct {
	httpClient *http.Client
	limiter    RateLimiter
	userAgent  string
	maxBytes   int64
}

func newClient(cfg model.HTTPConfig, o options) *client {
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = model.DefaultConfig().HTTP.MaxBodyBytes
	}
	return &client{
		httpClient: o.httpClient,
		limiter:    o.limiter,
		userAgent:  cfg.UserAgent,
		maxBytes:   maxBytes,
	}
}

type response struct {
	StatusCode int
	Body       []byte
	Truncated  bool // Body was cut at the size limit
}

func (r *response) ok() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// get performs a GET on endpoint with query parameters appended
func (c *client) get(ctx context.Context, endpoint string, query url.Values) (*response, error) {
	target := endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, target); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// One byte past the limit tells a cut body from one that fits exactly
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	truncated := int64(len(body)) > c.maxBytes
	if truncated {
		body = body[:c.maxBytes]
	}

	return &response{StatusCode: resp.StatusCode, Body: body, Truncated: truncated}, nil
}
