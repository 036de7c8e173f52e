// Package fetch pulls result pages from search backends over HTTP. A fetch
// never aborts a run: transport failures are captured in the returned Result
// so the caller can journal them and move on to the next page.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/seclorum/xbsearch/internal/challenge"
	"github.com/seclorum/xbsearch/internal/metrics"
	"github.com/seclorum/xbsearch/pkg/httpclient"
	"github.com/seclorum/xbsearch/pkg/proxy"
	"github.com/seclorum/xbsearch/pkg/ratelimit"
	"github.com/seclorum/xbsearch/pkg/useragent"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

// Config configures a Fetcher.
type Config struct {
	Timeout      time.Duration
	MaxRedirects int
	UseCookieJar bool
	ProxyPool    *proxy.Pool
	UAPool       *useragent.Pool
	Limiter      *ratelimit.Limiter
}

// Result captures one page fetch attempt. Error is non-empty when no HTTP
// response was obtained.
type Result struct {
	URL          string
	StatusCode   int
	Headers      http.Header
	Body         []byte
	Duration     time.Duration
	Challenged   bool
	ChallengeSrc string
	CreatedAt    time.Time
	Error        string
}

// Fetcher performs sequential page fetches with User-Agent rotation,
// optional proxying, and request spacing.
type Fetcher struct {
	config Config
	client *httpclient.Client
}

// New initializes a Fetcher with the given configuration.
// By holding a single client across requests, cookie jars (if configured) persist for the lifetime of the Fetcher.
func New(cfg Config) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}

	// Create the transport just once per fetcher to allow connection pooling.
	// The proxy function reads the proxy URL from the request context so the
	// pool can rotate per request without swapping transports.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if val := req.Context().Value(proxyKey); val != nil {
			if u, ok := val.(*url.URL); ok {
				return u, nil
			}
		}
		// Keep system proxies out of local test traffic.
		if req.URL.Host == "example.com" || req.URL.Hostname() == "127.0.0.1" {
			return nil, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxyFunc

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return &Fetcher{config: cfg, client: client}, nil
}

// Fetch executes a GET request to the target URL, tracking the duration and
// classifying challenged responses.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Result, error) {
	if f.config.Limiter != nil {
		if err := f.config.Limiter.Wait(ctx); err != nil {
			return &Result{
				URL:       targetURL,
				CreatedAt: time.Now().UTC(),
				Error:     fmt.Sprintf("rate limiter interrupted: %v", err),
			}, nil
		}
	}

	start := time.Now()

	result := &Result{
		URL:       targetURL,
		CreatedAt: start.UTC(),
	}

	var activeProxy *url.URL
	if f.config.ProxyPool != nil {
		activeProxy = f.config.ProxyPool.Next()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("building request: %v", err)
		result.Duration = time.Since(start)
		return result, nil
	}

	if activeProxy != nil {
		req = req.WithContext(context.WithValue(req.Context(), proxyKey, activeProxy))
	}

	req.Header.Set("User-Agent", f.config.UAPool.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		if activeProxy != nil {
			_ = f.config.ProxyPool.MarkFailure(activeProxy)
			metrics.ProxyFailures.WithLabelValues(activeProxy.String()).Inc()
		}
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.Duration = time.Since(start)
		return result, nil
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = f.config.ProxyPool.MarkSuccess(activeProxy)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = fmt.Sprintf("reading body: %v", err)
	}

	result.StatusCode = resp.StatusCode
	result.Headers = resp.Header
	result.Body = body
	result.Duration = time.Since(start)

	result.Challenged, result.ChallengeSrc = challenge.Analyze(challenge.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       body,
	}, challenge.DefaultDetectors())

	return result, nil
}
