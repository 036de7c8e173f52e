// Package report renders end-of-run summaries from the fetch journal.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/seclorum/xbsearch/internal/journal"
)

// Summary contains aggregated metrics about one harvest run.
type Summary struct {
	Words           int
	PagesFetched    int
	PageErrors      int
	TotalChallenges int
	ChallengesBySrc map[string]int
	StatusCodes     map[int]int
	Domains         int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// GenerateSummary aggregates the run's fetch records. domains is the size of
// the final collected set, which is not derivable from per-page counts.
func GenerateSummary(records []*journal.Record, domains int) Summary {
	s := Summary{
		ChallengesBySrc: make(map[string]int),
		StatusCodes:     make(map[int]int),
		Domains:         domains,
	}

	if len(records) == 0 {
		return s
	}

	s.StartTime = records[0].CreatedAt
	s.EndTime = records[0].CreatedAt

	words := make(map[string]struct{})

	for _, r := range records {
		s.PagesFetched++
		words[r.Word] = struct{}{}
		if r.Error != "" {
			s.PageErrors++
		}
		if r.Challenged {
			s.TotalChallenges++
			s.ChallengesBySrc[r.ChallengeSrc]++
		}
		if r.StatusCode > 0 {
			s.StatusCodes[r.StatusCode]++
		}

		if r.CreatedAt.Before(s.StartTime) {
			s.StartTime = r.CreatedAt
		}
		if r.CreatedAt.After(s.EndTime) {
			s.EndTime = r.CreatedAt
		}
	}

	s.Words = len(words)
	s.Duration = s.EndTime.Sub(s.StartTime)
	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `xbsearch Run Summary
--------------------
Time:          {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:      {{.Duration}}
Words:         {{.Words}} processed
Pages:         {{.PagesFetched}} fetched
Page Errors:   {{.PageErrors}}
Domains:       {{.Domains}} unique

Status Codes:
{{- range $code, $count := .StatusCodes}}
  {{$code}}: {{$count}}
{{- else}}
  None
{{- end}}

Challenges: {{.TotalChallenges}}
{{- range $src, $count := .ChallengesBySrc}}
  {{$src}}: {{$count}}
{{- else}}
  None
{{- end}}
`

	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("parsing text template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("rendering text summary: %w", err)
	}

	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>xbsearch Run Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>xbsearch Run Report</h1>
  <p><strong>Time:</strong> {{.StartTime.Format "2006-01-02 15:04:05"}} to {{.EndTime.Format "2006-01-02 15:04:05"}} ({{.Duration}})</p>

  <div class="stat-card">
    <div>Words</div>
    <div class="stat-val">{{.Words}}</div>
  </div>
  <div class="stat-card">
    <div>Pages Fetched</div>
    <div class="stat-val">{{.PagesFetched}}</div>
  </div>
  <div class="stat-card">
    <div>Page Errors</div>
    <div class="stat-val">{{.PageErrors}}</div>
  </div>
  <div class="stat-card">
    <div>Challenges</div>
    <div class="stat-val" style="color: {{if gt .TotalChallenges 0}}red{{else}}green{{end}};">{{.TotalChallenges}}</div>
  </div>
  <div class="stat-card">
    <div>Unique Domains</div>
    <div class="stat-val">{{.Domains}}</div>
  </div>

  <h3>Status Codes</h3>
  <table>
    <tr><th>Code</th><th>Count</th></tr>
    {{- range $code, $count := .StatusCodes}}
    <tr><td>{{$code}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Challenges By Source</h3>
  <table>
    <tr><th>Source</th><th>Count</th></tr>
    {{- range $src, $count := .ChallengesBySrc}}
    <tr><td>{{$src}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := template.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("parsing html template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}

	return nil
}
