package serp

import (
	"fmt"
	"io"
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// Bing harvests the Bing results interface. Bing paginates with the first
// parameter holding the one-based index of the first result on the page.
type Bing struct {
	// BaseURL is the search endpoint. Overridable for tests.
	BaseURL string
}

// NewBing creates a Bing engine pointed at the public endpoint.
func NewBing() *Bing {
	return &Bing{BaseURL: "https://www.bing.com/search"}
}

// Name returns the engine name.
func (b *Bing) Name() string {
	return "bing"
}

// PageURL returns the address of one result page.
func (b *Bing) PageURL(query string, page int) string {
	v := url.Values{}
	v.Set("q", query)
	if page > 0 {
		v.Set("first", fmt.Sprintf("%d", page*ResultsPerPage+1))
	}
	return b.BaseURL + "?" + v.Encode()
}

// ParsePage extracts result URLs. Bing serves direct anchors; its own
// properties are dropped.
func (b *Bing) ParsePage(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing result page: %w", err)
	}

	own := []string{"bing.com", "microsoft.com", "msn.com", "live.com"}

	var results []string
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}
		if res, ok := absoluteResult(href, own...); ok {
			results = append(results, res)
		}
	})
	return results, nil
}
