// Package runner drives one harvest: every word in the list, every page per
// word, strictly in order. Page-level failures are isolated; only
// cancellation stops a run early, and even then the domains collected so far
// are returned.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/seclorum/xbsearch/internal/domainset"
	"github.com/seclorum/xbsearch/internal/fetch"
	"github.com/seclorum/xbsearch/internal/journal"
	"github.com/seclorum/xbsearch/internal/metrics"
	"github.com/seclorum/xbsearch/internal/serp"
)

// Config provides parameters for one harvest run.
type Config struct {
	Engine serp.Engine
	// Pages is the number of result pages fetched per word. Zero fetches
	// nothing and yields an empty set.
	Pages int
	// Dork is appended verbatim to every query; a site:*.tld dork also
	// restricts which hostnames are kept.
	Dork string
	// StripWWW folds www. hosts into their bare domain.
	StripWWW bool
	// RespectRobots specifies whether to check robots.txt before fetching
	RespectRobots bool
	// UserAgent is the User-Agent string to use when checking robots.txt
	UserAgent string
	// Backend journals every page fetch when set.
	Backend journal.Backend
	// Progress renders a live per-word progress bar to this writer when set.
	Progress io.Writer
}

// Result carries what one run produced.
type Result struct {
	Domains *domainset.Set
	Records []*journal.Record
}

// Runner coordinates the sequential harvest loop.
type Runner struct {
	cfg     Config
	fetcher *fetch.Fetcher
	logger  *slog.Logger
	auditor *fetch.RobotsAuditor
	filter  domainset.Filter
}

// New creates a Runner.
func New(cfg Config, fetcher *fetch.Fetcher, logger *slog.Logger) (*Runner, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("engine is nil")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "*" // default generic user-agent for robots.txt
	}

	var auditor *fetch.RobotsAuditor
	if cfg.RespectRobots {
		auditor = fetch.NewRobotsAuditor(fetcher, logger)
	}

	return &Runner{
		cfg:     cfg,
		fetcher: fetcher,
		logger:  logger,
		auditor: auditor,
		filter:  domainset.DorkFilter(cfg.Dork),
	}, nil
}

// Run processes every word in input order and returns the accumulated
// domains plus one journal record per page fetch. Cancellation returns the
// partial result alongside the context error.
func (r *Runner) Run(ctx context.Context, words []string) (*Result, error) {
	res := &Result{Domains: domainset.New()}

	var bar *progressbar.ProgressBar
	if r.cfg.Progress != nil {
		bar = progressbar.NewOptions(len(words),
			progressbar.OptionSetWriter(r.cfg.Progress),
			progressbar.OptionSetDescription("harvesting"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for i, word := range words {
		query := serp.BuildQuery(word, r.cfg.Dork)
		wordDomains := 0

		for page := 0; page < r.cfg.Pages; page++ {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			default:
			}

			wordDomains += r.processPage(ctx, res, word, query, page)
		}

		r.logger.Info("word processed",
			"word", word,
			"progress", fmt.Sprintf("%d/%d", i+1, len(words)),
			"new_domains", wordDomains,
			"total_domains", res.Domains.Len(),
		)

		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if bar != nil {
		_ = bar.Finish()
	}

	return res, nil
}

// processPage fetches and parses one result page, returning how many new
// hostnames it contributed to the set.
func (r *Runner) processPage(ctx context.Context, res *Result, word, query string, page int) int {
	pageURL := r.cfg.Engine.PageURL(query, page)

	if r.cfg.RespectRobots && r.auditor != nil {
		allowed, err := r.auditor.IsAllowed(ctx, pageURL, r.cfg.UserAgent)
		if err != nil {
			r.logger.Warn("error checking robots.txt", "url", pageURL, "err", err)
		} else if !allowed {
			r.logger.Debug("url blocked by robots.txt", "url", pageURL)
			return 0
		}
	}

	r.logger.Debug("fetching", "word", word, "page", page, "url", pageURL)

	result, err := r.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		r.logger.Error("fetch error", "url", pageURL, "err", err)
		return 0
	}

	rec := &journal.Record{
		ID:           uuid.New().String(),
		Word:         word,
		Query:        query,
		Engine:       r.cfg.Engine.Name(),
		Page:         page,
		URL:          pageURL,
		StatusCode:   result.StatusCode,
		Duration:     result.Duration,
		Challenged:   result.Challenged,
		ChallengeSrc: result.ChallengeSrc,
		CreatedAt:    result.CreatedAt,
		Error:        result.Error,
	}

	added := 0
	switch {
	case result.Error != "":
		r.logger.Warn("page fetch failed", "url", pageURL, "err", result.Error)
	case result.StatusCode != http.StatusOK:
		r.logger.Warn("page fetch returned non-200",
			"url", pageURL, "status", result.StatusCode, "challenge", result.ChallengeSrc)
	default:
		links, perr := r.cfg.Engine.ParsePage(bytes.NewReader(result.Body))
		if perr != nil {
			r.logger.Warn("page parse failed", "url", pageURL, "err", perr)
			break
		}
		for _, link := range links {
			host, ok := domainset.Hostname(link, r.cfg.StripWWW)
			if !ok {
				continue
			}
			if r.filter != nil && !r.filter(host) {
				continue
			}
			rec.Domains++
			if res.Domains.Add(host) {
				added++
				metrics.DomainsTotal.Inc()
			}
		}
	}

	metrics.RecordFetch(rec.Engine, result.StatusCode, result.Error != "", result.ChallengeSrc, result.Duration)

	if r.cfg.Backend != nil {
		if err := r.cfg.Backend.Save(ctx, rec); err != nil {
			r.logger.Error("failed to save journal record", "url", pageURL, "err", err)
		}
	}

	res.Records = append(res.Records, rec)

	return added
}
