package serp

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const googleFixture = `<!DOCTYPE html>
<html><body>
<div id="search">
  <div class="g"><a href="/url?q=https://a.example.com/login&amp;sa=U&amp;ved=xyz">A</a></div>
  <div class="g"><a href="/url?q=http://b.example.org/&amp;sa=U">B</a></div>
  <div class="g"><a href="https://c.example.net/direct">C</a></div>
  <div class="g"><a href="/url?q=https://www.google.com/intl/en/about&amp;sa=U">internal</a></div>
  <a href="https://accounts.google.com/signin">Sign in</a>
  <a href="/search?q=next&amp;start=10">Next</a>
  <a href="https://www.youtube.com/watch?v=123">video</a>
</div>
</body></html>`

func TestGoogle_PageURL(t *testing.T) {
	g := NewGoogle()

	first := g.PageURL("admin portal", 0)
	if first != "https://www.google.com/search?q=admin+portal" {
		t.Errorf("unexpected first page URL: %s", first)
	}

	second := g.PageURL("admin portal", 1)
	if !strings.Contains(second, "start=10") {
		t.Errorf("expected offset 10 on page 1, got %s", second)
	}
}

func TestGoogle_ParsePage(t *testing.T) {
	g := NewGoogle()

	got, err := g.ParsePage(strings.NewReader(googleFixture))
	if err != nil {
		t.Fatalf("ParsePage returned error: %v", err)
	}

	want := []string{
		"https://a.example.com/login",
		"http://b.example.org/",
		"https://c.example.net/direct",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestUnwrapGoogleRedirect(t *testing.T) {
	got, ok := unwrapGoogleRedirect("/url?q=https://example.com/x&sa=U")
	if !ok || got != "https://example.com/x" {
		t.Errorf("expected unwrapped URL, got %q (%v)", got, ok)
	}

	if _, ok := unwrapGoogleRedirect("https://example.com/x"); ok {
		t.Error("expected direct link to not unwrap")
	}

	if _, ok := unwrapGoogleRedirect("/url?q=/relative"); ok {
		t.Error("expected non-http destination to be rejected")
	}
}
