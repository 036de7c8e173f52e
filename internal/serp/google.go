package serp

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Google harvests the classic Google results interface. Google paginates
// with the start parameter holding the result offset.
type Google struct {
	// BaseURL is the search endpoint. Overridable for tests.
	BaseURL string
}

// NewGoogle creates a Google engine pointed at the public endpoint.
func NewGoogle() *Google {
	return &Google{BaseURL: "https://www.google.com/search"}
}

// Name returns the engine name.
func (g *Google) Name() string {
	return "google"
}

// PageURL returns the address of one result page.
func (g *Google) PageURL(query string, page int) string {
	v := url.Values{}
	v.Set("q", query)
	if page > 0 {
		v.Set("start", fmt.Sprintf("%d", page*ResultsPerPage))
	}
	return g.BaseURL + "?" + v.Encode()
}

// ParsePage extracts result URLs. Depending on the served variant, result
// anchors are either direct or wrapped in /url?q= redirects; both forms are
// handled, and Google-internal links are dropped.
func (g *Google) ParsePage(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing result page: %w", err)
	}

	own := []string{"google.com", "googleusercontent.com", "gstatic.com", "youtube.com"}

	var results []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		if unwrapped, ok := unwrapGoogleRedirect(href); ok {
			if res, ok := absoluteResult(unwrapped, own...); ok {
				results = append(results, res)
			}
			return
		}
		if res, ok := absoluteResult(href, own...); ok {
			results = append(results, res)
		}
	})
	return results, nil
}

// unwrapGoogleRedirect pulls the destination out of a /url?q= result anchor.
func unwrapGoogleRedirect(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if !strings.HasPrefix(href, "/url?") && !strings.HasPrefix(href, "url?") {
		return "", false
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	raw := u.Query().Get("q")
	if raw == "" {
		raw = u.Query().Get("url")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return "", false
	}
	return raw, true
}
