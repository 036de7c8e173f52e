package serp

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DuckDuckGo harvests the HTML (non-JS) DuckDuckGo interface. It is the
// default backend: it paginates predictably and serves complete result
// markup without rendering.
type DuckDuckGo struct {
	// BaseURL is the search endpoint. Overridable for tests.
	BaseURL string
}

// NewDuckDuckGo creates a DuckDuckGo engine pointed at the public HTML
// endpoint.
func NewDuckDuckGo() *DuckDuckGo {
	return &DuckDuckGo{BaseURL: "https://html.duckduckgo.com/html/"}
}

// Name returns the engine name.
func (d *DuckDuckGo) Name() string {
	return "duckduckgo"
}

// PageURL returns the address of one result page. DuckDuckGo paginates with
// the s parameter holding the result offset.
func (d *DuckDuckGo) PageURL(query string, page int) string {
	v := url.Values{}
	v.Set("q", query)
	if page > 0 {
		v.Set("s", fmt.Sprintf("%d", page*ResultsPerPage))
	}
	return d.BaseURL + "?" + v.Encode()
}

// ParsePage extracts result URLs. DuckDuckGo wraps every result link in a
// redirect carrying the destination in the uddg parameter, so anchors are
// unwrapped before the internal-link filter runs.
func (d *DuckDuckGo) ParsePage(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing result page: %w", err)
	}

	var results []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		if unwrapped, ok := unwrapUDDG(href); ok {
			results = append(results, unwrapped)
			return
		}
		if res, ok := absoluteResult(href, "duckduckgo.com", "duck.com"); ok {
			results = append(results, res)
		}
	})
	return results, nil
}

// unwrapUDDG pulls the destination URL out of a DuckDuckGo redirect link.
func unwrapUDDG(href string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", false
	}
	raw := u.Query().Get("uddg")
	if raw == "" {
		return "", false
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "", false
	}
	return raw, true
}
