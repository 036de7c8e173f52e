// Package challenge classifies search backend responses that blocked or
// challenged a query instead of serving results. Classification is purely
// diagnostic: callers report and count challenges, they never attempt to
// defeat them.
package challenge

import (
	"bytes"
	"net/http"
	"strings"
)

// Response is the view of an HTTP response a detector inspects.
type Response struct {
	StatusCode int
	Headers    map[string][]string
	Body       []byte
}

// Detector examines a response to determine if the backend blocked or
// challenged the request.
type Detector func(res Response) (detected bool, source string)

// DefaultDetectors returns the standard list of challenge detectors, most
// specific first.
func DefaultDetectors() []Detector {
	return []Detector{
		detectRateLimit,
		detectCAPTCHA,
		detectCloudflare,
	}
}

// Analyze runs the response through all provided detectors and reports the
// first classification that triggers.
func Analyze(res Response, detectors []Detector) (bool, string) {
	for _, d := range detectors {
		if detected, source := d(res); detected {
			return true, source
		}
	}
	return false, ""
}

func getHeader(headers map[string][]string, key string) string {
	if vals, ok := headers[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	// Case-insensitive fallback
	lowerKey := strings.ToLower(key)
	for k, vals := range headers {
		if strings.ToLower(k) == lowerKey && len(vals) > 0 {
			return vals[0]
		}
	}
	return ""
}

// detectRateLimit flags explicit throttling responses.
func detectRateLimit(res Response) (bool, string) {
	if res.StatusCode == http.StatusTooManyRequests {
		return true, "RateLimit"
	}
	if res.StatusCode == http.StatusServiceUnavailable && getHeader(res.Headers, "Retry-After") != "" {
		return true, "RateLimit"
	}
	return false, ""
}

// detectCAPTCHA looks for interstitial verification pages. Search backends
// serve these on any status code, so the body is checked unconditionally.
func detectCAPTCHA(res Response) (bool, string) {
	signatures := [][]byte{
		[]byte("g-recaptcha"),
		[]byte("recaptcha/api.js"),
		[]byte("h-captcha"),
		[]byte("unusual traffic from your computer network"),
		[]byte("/sorry/index"),
		[]byte("anomaly-modal"),
	}
	for _, sig := range signatures {
		if bytes.Contains(res.Body, sig) {
			return true, "CAPTCHA"
		}
	}
	return false, ""
}

// detectCloudflare looks for common Cloudflare challenge/block signatures.
func detectCloudflare(res Response) (bool, string) {
	// Status codes 403 or 503 are common for CF challenges
	if res.StatusCode == http.StatusForbidden || res.StatusCode == http.StatusServiceUnavailable {
		// Check headers
		server := strings.ToLower(getHeader(res.Headers, "Server"))
		if strings.Contains(server, "cloudflare") {
			return true, "Cloudflare"
		}

		// Check body signatures
		if bytes.Contains(res.Body, []byte("cf-browser-verification")) ||
			bytes.Contains(res.Body, []byte("cloudflare-nginx")) ||
			bytes.Contains(res.Body, []byte("cf-turnstile")) ||
			bytes.Contains(res.Body, []byte("Attention Required! | Cloudflare")) {
			return true, "Cloudflare"
		}
	}
	return false, ""
}
