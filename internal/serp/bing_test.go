package serp

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const bingFixture = `<!DOCTYPE html>
<html><body>
<ol id="b_results">
  <li class="b_algo"><h2><a href="https://a.example.com/login">A</a></h2></li>
  <li class="b_algo"><h2><a href="http://b.example.org:8443/portal">B</a></h2></li>
  <li class="b_algo"><h2><a href="https://www.bing.com/images/search?q=x">internal</a></h2></li>
  <li class="b_pag"><a href="/search?q=next&amp;first=11">Next</a></li>
  <a href="https://www.microsoft.com/privacy">Privacy</a>
</ol>
</body></html>`

func TestBing_PageURL(t *testing.T) {
	b := NewBing()

	first := b.PageURL("login", 0)
	if first != "https://www.bing.com/search?q=login" {
		t.Errorf("unexpected first page URL: %s", first)
	}

	// Bing's first parameter is the one-based index of the first result.
	second := b.PageURL("login", 1)
	if !strings.Contains(second, "first=11") {
		t.Errorf("expected first=11 on page 1, got %s", second)
	}
	third := b.PageURL("login", 2)
	if !strings.Contains(third, "first=21") {
		t.Errorf("expected first=21 on page 2, got %s", third)
	}
}

func TestBing_ParsePage(t *testing.T) {
	b := NewBing()

	got, err := b.ParsePage(strings.NewReader(bingFixture))
	if err != nil {
		t.Fatalf("ParsePage returned error: %v", err)
	}

	want := []string{
		"https://a.example.com/login",
		"http://b.example.org:8443/portal",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}
