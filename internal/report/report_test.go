package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/seclorum/xbsearch/internal/journal"
)

func TestGenerateSummary(t *testing.T) {
	now := time.Now()

	records := []*journal.Record{
		{
			Word:       "login",
			StatusCode: 200,
			Domains:    4,
			CreatedAt:  now,
		},
		{
			Word:         "login",
			StatusCode:   403,
			CreatedAt:    now.Add(1 * time.Second),
			Challenged:   true,
			ChallengeSrc: "Cloudflare",
		},
		{
			Word:      "admin",
			CreatedAt: now.Add(2 * time.Second),
			Error:     "timeout",
		},
	}

	summary := GenerateSummary(records, 9)

	if summary.Words != 2 {
		t.Errorf("expected 2 words, got %d", summary.Words)
	}

	if summary.PagesFetched != 3 {
		t.Errorf("expected 3 pages fetched, got %d", summary.PagesFetched)
	}

	if summary.PageErrors != 1 {
		t.Errorf("expected 1 page error, got %d", summary.PageErrors)
	}

	if summary.TotalChallenges != 1 {
		t.Errorf("expected 1 challenge, got %d", summary.TotalChallenges)
	}

	if summary.ChallengesBySrc["Cloudflare"] != 1 {
		t.Errorf("expected 1 CF challenge, got %d", summary.ChallengesBySrc["Cloudflare"])
	}

	if summary.StatusCodes[200] != 1 {
		t.Errorf("expected 1 200 OK, got %d", summary.StatusCodes[200])
	}

	if summary.StatusCodes[403] != 1 {
		t.Errorf("expected 1 403 Forbidden, got %d", summary.StatusCodes[403])
	}

	if summary.Domains != 9 {
		t.Errorf("expected 9 domains, got %d", summary.Domains)
	}

	if summary.Duration != 2*time.Second {
		t.Errorf("expected 2s duration, got %v", summary.Duration)
	}
}

func TestGenerateSummary_Empty(t *testing.T) {
	summary := GenerateSummary(nil, 0)

	if summary.PagesFetched != 0 {
		t.Errorf("expected 0 pages fetched, got %d", summary.PagesFetched)
	}
	if !summary.StartTime.IsZero() {
		t.Errorf("expected zero start time, got %v", summary.StartTime)
	}
}

func TestWriteJSON(t *testing.T) {
	summary := Summary{
		PagesFetched: 5,
	}
	var buf bytes.Buffer
	err := WriteJSON(&buf, summary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(buf.String(), `"PagesFetched": 5`) {
		t.Errorf("expected JSON to contain PagesFetched: 5")
	}
}

func TestWriteText(t *testing.T) {
	summary := Summary{
		Words:        2,
		PagesFetched: 5,
		PageErrors:   1,
		Domains:      12,
		StatusCodes: map[int]int{
			200: 4,
			500: 1,
		},
	}
	var buf bytes.Buffer
	err := WriteText(&buf, summary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Pages:         5 fetched") {
		t.Errorf("expected text to contain pages fetched count")
	}
	if !strings.Contains(out, "Domains:       12 unique") {
		t.Errorf("expected text to contain domain count")
	}
	if !strings.Contains(out, "200: 4") {
		t.Errorf("expected text to contain 200: 4")
	}
}

func TestWriteHTML(t *testing.T) {
	summary := Summary{
		PagesFetched:    10,
		TotalChallenges: 2,
		ChallengesBySrc: map[string]int{
			"CAPTCHA": 2,
		},
	}
	var buf bytes.Buffer
	err := WriteHTML(&buf, summary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<title>xbsearch Run Report</title>") {
		t.Errorf("expected HTML title")
	}
	if !strings.Contains(out, "CAPTCHA") {
		t.Errorf("expected HTML to contain CAPTCHA")
	}
}
