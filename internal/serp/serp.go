// Package serp abstracts the search backends xbsearch harvests domains from.
// An Engine knows two things about its backend: how to address one page of
// results for a query, and how to pull result links out of the HTML it
// returns. Everything else (fetching, accumulation, output) is engine
// agnostic.
package serp

import (
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"
)

// ResultsPerPage is the nominal number of results a backend serves per page.
// Page offsets are derived from it: page n starts at result n*ResultsPerPage.
const ResultsPerPage = 10

// Engine is one search backend.
type Engine interface {
	// Name returns the engine name used in flags, logs, and metrics.
	Name() string

	// PageURL returns the address of one result page for the query.
	// Pages are zero-based.
	PageURL(query string, page int) string

	// ParsePage extracts result URLs from one page of backend HTML.
	// Backend-internal links are dropped. Malformed markup is not an
	// error; it simply yields fewer results.
	ParsePage(r io.Reader) ([]string, error)
}

// BuildQuery combines a word with an optional dork filter. The dork is
// appended verbatim after a single space.
func BuildQuery(word, dork string) string {
	if dork == "" {
		return word
	}
	return word + " " + dork
}

// New returns the engine registered under name. Matching is
// case-insensitive.
func New(name string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "duckduckgo", "ddg":
		return NewDuckDuckGo(), nil
	case "google":
		return NewGoogle(), nil
	case "bing":
		return NewBing(), nil
	}
	return nil, fmt.Errorf("unknown engine %q (supported: %s)", name, strings.Join(Names(), ", "))
}

// Names lists the supported engine names in display order.
func Names() []string {
	names := []string{"duckduckgo", "google", "bing"}
	sort.Strings(names)
	return names
}

// internalHost reports whether host belongs to one of the backend's own
// domains. Matching covers the apex and any subdomain.
func internalHost(host string, own ...string) bool {
	host = strings.ToLower(host)
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	for _, o := range own {
		if host == o || strings.HasSuffix(host, "."+o) {
			return true
		}
	}
	return false
}

// absoluteResult parses href and returns it when it is an absolute http(s)
// URL pointing outside the backend's own domains.
func absoluteResult(href string, own ...string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if u.Host == "" || internalHost(u.Host, own...) {
		return "", false
	}
	return u.String(), true
}
