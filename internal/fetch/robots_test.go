package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsAuditor_IsAllowed(t *testing.T) {
	var robotsFetches atomic.Int64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsFetches.Add(1)
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	fetcher, _ := New(Config{Timeout: 5 * time.Second})
	auditor := NewRobotsAuditor(fetcher, nil)

	ctx := context.Background()

	allowed, err := auditor.IsAllowed(ctx, ts.URL+"/private", "TestBot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Errorf("expected /private to be disallowed")
	}

	allowed, err = auditor.IsAllowed(ctx, ts.URL+"/search", "TestBot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Errorf("expected /search to be allowed")
	}

	if n := robotsFetches.Load(); n != 1 {
		t.Errorf("expected 1 robots.txt fetch, got %d", n)
	}
}

func TestRobotsAuditor_FailOpen(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	fetcher, _ := New(Config{Timeout: 5 * time.Second})
	auditor := NewRobotsAuditor(fetcher, nil)

	allowed, err := auditor.IsAllowed(context.Background(), ts.URL+"/anything", "TestBot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Errorf("expected fail-open allow when robots.txt is unavailable")
	}
}
