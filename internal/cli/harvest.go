package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/seclorum/xbsearch/internal/config"
	"github.com/seclorum/xbsearch/internal/fetch"
	"github.com/seclorum/xbsearch/internal/journal"
	"github.com/seclorum/xbsearch/internal/journal/csvbackend"
	"github.com/seclorum/xbsearch/internal/journal/jsonbackend"
	"github.com/seclorum/xbsearch/internal/journal/postgres"
	"github.com/seclorum/xbsearch/internal/journal/sqlite"
	"github.com/seclorum/xbsearch/internal/metrics"
	"github.com/seclorum/xbsearch/internal/output"
	"github.com/seclorum/xbsearch/internal/report"
	"github.com/seclorum/xbsearch/internal/runner"
	"github.com/seclorum/xbsearch/internal/serp"
	"github.com/seclorum/xbsearch/internal/wordlist"
	"github.com/seclorum/xbsearch/pkg/proxy"
	"github.com/seclorum/xbsearch/pkg/ratelimit"
	"github.com/seclorum/xbsearch/pkg/useragent"
	"github.com/spf13/cobra"
)

var (
	flagFile       string
	flagOutput     string
	flagDork       string
	flagPages      int
	flagEngine     string
	flagDelay      float64
	flagJitter     float64
	flagTimeout    float64
	flagStripWWW   bool
	flagUserAgents string
	flagProxy      string
	flagProxies    string
	flagRobots     bool
	flagJournal    string
	flagMetrics    int
	flagReport     string
	flagProgress   bool
)

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&flagFile, "file", "f", "", "path to the word list (required)")
	f.StringVarP(&flagOutput, "output", "o", "", "output path (default xb_DDMMYYHHMM.txt)")
	f.StringVarP(&flagDork, "dork", "d", "", "filter string combined into each query")
	f.IntVarP(&flagPages, "pages", "p", 3, "result pages fetched per word")
	f.StringVar(&flagEngine, "engine", "duckduckgo", "search backend (duckduckgo, google, bing)")
	f.Float64Var(&flagDelay, "delay", 0, "fixed delay between page fetches, in seconds")
	f.Float64Var(&flagJitter, "jitter", 0, "0..1 randomization applied to --delay")
	f.Float64Var(&flagTimeout, "timeout", 30, "per-request timeout, in seconds")
	f.BoolVar(&flagStripWWW, "strip-www", false, `strip a leading "www." from extracted hostnames`)
	f.StringVar(&flagUserAgents, "user-agents", "", "rotate User-Agents from a file, one per line")
	f.StringVar(&flagProxy, "proxy", "", "route requests through a single proxy URL")
	f.StringVar(&flagProxies, "proxies", "", "rotate through proxy URLs from a file")
	f.BoolVar(&flagRobots, "respect-robots", false, "honor the backend's robots.txt before each fetch")
	f.StringVar(&flagJournal, "journal", "", "journal every page fetch (path.csv, path.ndjson, path.db, postgres://...)")
	f.IntVar(&flagMetrics, "metrics-port", 0, "expose Prometheus /metrics on this port while running")
	f.StringVar(&flagReport, "report", "", "write an end-of-run summary (.txt, .json, .html)")
	f.BoolVar(&flagProgress, "progress", false, "render a live progress bar")

	_ = rootCmd.MarkFlagRequired("file")
}

// applyConfig fills flags the user did not set from the loaded config file.
func applyConfig(cmd *cobra.Command) {
	flags := cmd.Flags()
	if !flags.Changed("engine") {
		flagEngine = cfg.Engine
	}
	if !flags.Changed("pages") {
		flagPages = cfg.Pages
	}
	if !flags.Changed("delay") {
		flagDelay = cfg.Delay
	}
	if !flags.Changed("jitter") {
		flagJitter = cfg.Jitter
	}
	if !flags.Changed("timeout") {
		flagTimeout = cfg.Timeout
	}
	if !flags.Changed("strip-www") {
		flagStripWWW = cfg.StripWWW
	}
	if !flags.Changed("respect-robots") {
		flagRobots = cfg.RespectRobots
	}
	if !flags.Changed("user-agents") {
		flagUserAgents = cfg.UserAgents
	}
	if !flags.Changed("proxies") {
		flagProxies = cfg.Proxies
	}
	if !flags.Changed("journal") {
		flagJournal = cfg.Journal
	}
	if !flags.Changed("metrics-port") {
		flagMetrics = cfg.MetricsPort
	}
}

func runHarvest(cmd *cobra.Command, args []string) error {
	if cfg == nil {
		cfg = config.Default()
	}
	applyConfig(cmd)

	if flagPages < 0 {
		return fmt.Errorf("pages cannot be negative")
	}
	if flagJitter < 0 || flagJitter > 1 {
		return fmt.Errorf("jitter must be between 0 and 1")
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	words, err := wordlist.Load(flagFile)
	if err != nil {
		return err
	}

	outPath := flagOutput
	if outPath == "" {
		outPath = output.DefaultName(time.Now())
		fmt.Printf("%s No output file specified. Using default: '%s'\n", infoTag, outPath)
	}

	engine, err := serp.New(flagEngine)
	if err != nil {
		return err
	}

	fmt.Printf("%s Processing %d words from '%s'...\n", infoTag, len(words), flagFile)

	uaPool := useragent.NewPool(nil)
	if flagUserAgents != "" {
		uaPool, err = useragent.LoadFile(flagUserAgents)
		if err != nil {
			return err
		}
	}

	var proxyPool *proxy.Pool
	switch {
	case flagProxy != "" && flagProxies != "":
		return fmt.Errorf("--proxy and --proxies are mutually exclusive")
	case flagProxy != "":
		proxyPool = proxy.NewPool(proxy.Config{})
		if err := proxyPool.Add(flagProxy); err != nil {
			return err
		}
	case flagProxies != "":
		proxyPool = proxy.NewPool(proxy.Config{})
		if err := proxyPool.LoadFile(flagProxies); err != nil {
			return err
		}
	}

	limiter := ratelimit.NewLimiter(time.Duration(flagDelay*float64(time.Second)), flagJitter)
	defer limiter.Stop()

	fetcher, err := fetch.New(fetch.Config{
		Timeout:      time.Duration(flagTimeout * float64(time.Second)),
		MaxRedirects: 5,
		UAPool:       uaPool,
		ProxyPool:    proxyPool,
		Limiter:      limiter,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	backend, err := openJournal(ctx, flagJournal)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	if backend != nil {
		defer backend.Close()
	}

	if flagMetrics > 0 {
		srv := metrics.Start(flagMetrics)
		defer func() { _ = srv.Stop(context.Background()) }()
		logger.Debug("metrics server started", "port", flagMetrics)
	}

	// First signal stops fetching; collected domains are still written.
	// A second signal force-exits.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\n%s Interrupt received, finishing up. Press Ctrl+C again to force quit.\n", warnTag)
		cancel()
		<-sigChan
		os.Exit(1)
	}()

	var progressOut io.Writer
	if flagProgress && !verbose {
		progressOut = os.Stderr
	}

	r, err := runner.New(runner.Config{
		Engine:        engine,
		Pages:         flagPages,
		Dork:          flagDork,
		StripWWW:      flagStripWWW,
		RespectRobots: flagRobots,
		Backend:       backend,
		Progress:      progressOut,
	}, fetcher, logger)
	if err != nil {
		return err
	}

	res, runErr := r.Run(ctx, words)
	if runErr != nil {
		if !errors.Is(runErr, context.Canceled) {
			return runErr
		}
		fmt.Printf("%s Run interrupted. Writing domains collected so far.\n", warnTag)
	}

	if err := output.Write(outPath, res.Domains); err != nil {
		return fmt.Errorf("failed to write to output file '%s': %w", outPath, err)
	}

	if flagReport != "" {
		if err := writeReport(flagReport, res); err != nil {
			return err
		}
		fmt.Printf("%s Report written to '%s'\n", infoTag, flagReport)
	}

	fmt.Printf("%s Successfully collected %d unique domains to '%s'.\n", successTag, res.Domains.Len(), outPath)

	return nil
}

// openJournal picks a journal backend from the DSN shape. An empty DSN
// disables journaling.
func openJournal(ctx context.Context, dsn string) (journal.Backend, error) {
	switch {
	case dsn == "":
		return nil, nil
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return postgres.New(ctx, dsn)
	case strings.HasSuffix(dsn, ".db") || strings.HasSuffix(dsn, ".sqlite") || strings.HasSuffix(dsn, ".sqlite3"):
		return sqlite.New(dsn)
	case strings.HasSuffix(dsn, ".csv"):
		return csvbackend.New(dsn)
	default:
		return jsonbackend.New(dsn)
	}
}

// writeReport renders the run summary in the format implied by the path
// extension.
func writeReport(path string, res *runner.Result) error {
	summary := report.GenerateSummary(res.Records, res.Domains.Len())

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return report.WriteJSON(f, summary)
	case ".html":
		return report.WriteHTML(f, summary)
	default:
		return report.WriteText(f, summary)
	}
}
