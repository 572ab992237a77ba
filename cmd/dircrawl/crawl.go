package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/nao1215/dircrawl/internal/config"
	"github.com/nao1215/dircrawl/internal/crawler"
	"github.com/nao1215/dircrawl/internal/database"
	"github.com/nao1215/dircrawl/internal/fetcher"
	"github.com/nao1215/dircrawl/internal/log"
	"github.com/nao1215/dircrawl/internal/model"
	"github.com/nao1215/dircrawl/internal/recorder"
	"github.com/nao1215/dircrawl/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [directory-url]",
		Short: "Crawl all pages under a directory URL",
		Long: `Crawl downloads every page under a directory-scoped URL.

Starting from the directory index, it follows links that stay on the same
host and under the same path, and saves each page as a Markdown text file
named after its URL path. A crawl summary report is written into the
output directory alongside the pages.

Examples:
  # Crawl a documentation directory one level deep (the default)
  dircrawl crawl https://example.com/docs/git/

  # Crawl deeper and allow more pages
  dircrawl crawl --depth 3 --max-pages 200 https://example.com/docs/

  # Crawl several directories concurrently
  dircrawl crawl https://example.com/docs/ https://example.com/guides/

  # Render JavaScript-built pages with a headless browser
  dircrawl crawl --render https://spa.example.com/docs/

  # Output JSON report
  dircrawl crawl --json https://example.com/docs/

  # Use a custom configuration file
  dircrawl crawl -c myconfig.yaml https://example.com/docs/

Configuration file (.dircrawl) example:
  sites:
    docs.example.com:
      depth: 3
      headers:
        Authorization: "Bearer token"
    spa.example.com:
      render: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link distance from the directory root (0 = index page only)")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of successfully saved pages per directory")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Pause between page fetches")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")
	cmd.Flags().BoolP("render", "r", false,
		"Fetch pages through a headless browser (for JavaScript-built sites)")

	// Output flags
	cmd.Flags().StringP("output", "o", "",
		"Output directory for saved pages (default: derived from the URL)")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent crawls when multiple directories are given")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .dircrawl in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().String("report", "",
		"Write the terminal report to specified file path instead of stdout")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	// Get flag values
	var err error

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.Render, err = cmd.Flags().GetBool("render")
	if err != nil {
		return nil, err
	}

	cfg.OutputDir, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("report")
	if err != nil {
		return nil, err
	}

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	// Get positional arguments (directory URLs)
	cfg.Targets = args

	return cfg, nil
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify one or more directory URLs as arguments)")
	}

	logger.Info("starting crawl",
		"targets", cfg.Targets,
		"maxDepth", cfg.MaxDepth,
		"maxPages", cfg.MaxPages,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled. History recording is
	// best effort: a broken database must not block the crawl itself.
	var db *database.CrawlDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			logger.Error("failed to open database, crawl history will not be recorded",
				"dir", cfg.DBDir, "error", err)
			db = nil
		} else {
			defer db.Close()
			logger.Info("database opened", "dir", cfg.DBDir)
		}
	}

	// Reject invalid directory URLs up front so a typo in a batch does
	// not surface halfway through the run
	for _, target := range cfg.Targets {
		if _, err := crawler.NewScope(target); err != nil {
			return fmt.Errorf("invalid directory URL %q: %w", target, err)
		}
	}

	// Use batch runner for parallel crawling if multiple targets
	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchCrawl(ctx, cfg, db, logger)
	}

	// Single target or sequential crawling
	return runSequentialCrawl(ctx, cfg, db, logger)
}

// runSequentialCrawl crawls targets one at a time.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Printf("Crawling %s...\n", target)
		startTime := time.Now()

		crawlReport, err := crawlOne(ctx, cfg, target, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("crawl failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", target, err)
			if crawlReport == nil {
				continue
			}
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}

		// Save to database if enabled
		if err := saveCrawlReport(ctx, db, crawlReport, logger); err != nil {
			logger.Error("failed to save crawl report", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple targets concurrently using the batch runner.
func runBatchCrawl(ctx context.Context, cfg *config.Config, db *database.CrawlDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	runner := crawler.NewRunner(
		func(ctx context.Context, target string) (*model.CrawlReport, error) {
			return crawlOne(ctx, cfg, target, logger)
		},
		crawler.WithRunnerConcurrency(cfg.BatchSize),
		crawler.WithRunnerLogger(logger),
	)

	results, err := runner.Run(ctx, cfg.Targets)

	for i, crawlReport := range results {
		if crawlReport == nil {
			continue
		}
		fmt.Printf("[%d/%d] Crawl completed: %s\n", i+1, len(results), crawlReport.Directory)

		// Generate and output report
		if reportErr := outputReport(cfg, crawlReport); reportErr != nil {
			logger.Error("report failed", "target", crawlReport.Directory, "error", reportErr)
		}

		// Save to database if enabled
		if saveErr := saveCrawlReport(ctx, db, crawlReport, logger); saveErr != nil {
			logger.Error("failed to save crawl report", "target", crawlReport.Directory, "error", saveErr)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch crawl completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// crawlOne crawls a single directory target from scope construction to the
// per-run report file. The returned report is non-nil whenever the scope
// was valid, including cancelled runs, so callers can still output and
// persist partial results.
func crawlOne(ctx context.Context, cfg *config.Config, target string, logger *slog.Logger) (*model.CrawlReport, error) {
	scope, err := crawler.NewScope(target)
	if err != nil {
		return nil, fmt.Errorf("invalid directory URL %q: %w", target, err)
	}

	// Site-specific configuration overrides global flags
	var siteConfig config.SiteConfig
	if cfg.SiteConfigs != nil {
		siteConfig = cfg.SiteConfigs.GetSiteConfig(scope.Host)
	}

	rec, err := recorder.New(outputDirFor(cfg, scope.RootURL()))
	if err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	fetch := buildFetcher(cfg, siteConfig)
	if err := fetch.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start fetch engine: %w", err)
	}
	defer func() {
		if err := fetch.Close(); err != nil {
			logger.Error("failed to close fetch engine", "error", err)
		}
	}()

	maxDepth := cfg.MaxDepth
	if siteConfig.Depth > 0 {
		maxDepth = siteConfig.Depth
	}
	maxPages := cfg.MaxPages
	if siteConfig.MaxPages > 0 {
		maxPages = siteConfig.MaxPages
	}
	delay := cfg.CrawlDelay
	if siteConfig.Delay > 0 {
		delay = time.Duration(siteConfig.Delay)
	}

	frontier := crawler.NewFrontier(scope, fetch, rec,
		crawler.WithMaxDepth(maxDepth),
		crawler.WithMaxPages(maxPages),
		crawler.WithDelay(delay),
		crawler.WithLogger(logger),
	)

	crawlReport, runErr := frontier.Run(ctx)

	// The per-run report file is written even for cancelled runs so the
	// output directory always documents what it contains
	if err := writeRunReport(rec.ReportPath(), crawlReport); err != nil {
		logger.Error("failed to write run report", "path", rec.ReportPath(), "error", err)
	}

	logger.Info("pages saved", "dir", rec.Dir(), "count", crawlReport.SuccessCount())

	return crawlReport, runErr
}

// outputDirFor resolves the output directory for a target.
// Without -o the directory name is derived from the URL in the current
// working directory. With -o and a single target the flag value is used
// as-is; with multiple targets each crawl gets a derived subdirectory so
// the runs cannot overwrite each other's pages.
func outputDirFor(cfg *config.Config, rootURL string) string {
	derived := recorder.DefaultOutputDir(rootURL)
	if cfg.OutputDir == "" {
		return derived
	}
	if len(cfg.Targets) > 1 {
		return filepath.Join(cfg.OutputDir, derived)
	}
	return cfg.OutputDir
}

// buildFetcher selects the fetch engine for a target.
func buildFetcher(cfg *config.Config, siteConfig config.SiteConfig) fetcher.Fetcher {
	userAgent := cfg.UserAgent
	if siteConfig.UserAgent != "" {
		userAgent = siteConfig.UserAgent
	}

	if cfg.Render || siteConfig.Render {
		return fetcher.NewChromeFetcher(
			fetcher.WithChromeUserAgent(userAgent),
			fetcher.WithPageTimeout(config.DefaultRenderTimeout),
		)
	}

	opts := []fetcher.HTTPOption{
		fetcher.WithUserAgent(userAgent),
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
	}
	if len(siteConfig.Headers) > 0 {
		opts = append(opts, fetcher.WithHeaders(siteConfig.Headers))
	}
	return fetcher.NewHTTPFetcher(opts...)
}

// writeRunReport writes the Markdown crawl report into the output directory.
func writeRunReport(path string, crawlReport *model.CrawlReport) error {
	// 0600 like the saved pages; reports list every fetched URL
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if _, err := report.NewMarkdownWriter(f).Write(crawlReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// outputReport outputs the crawl report in the requested format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full report with version envelope)
	if cfg.JSONReport {
		_, err := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint()).Write(crawlReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		_, err := report.NewMarkdownWriter(output).Write(crawlReport)
		return err
	}

	// Human-readable report (default)
	_, err := report.NewSimpleWriter(output).Write(crawlReport)
	return err
}

// saveCrawlReport saves the crawl report to the database if enabled.
// If db is nil, this function is a no-op.
func saveCrawlReport(ctx context.Context, db *database.CrawlDB, crawlReport *model.CrawlReport, logger *slog.Logger) error {
	if db == nil || crawlReport == nil {
		return nil
	}

	id, err := db.SaveReport(ctx, crawlReport)
	if err != nil {
		return fmt.Errorf("failed to save crawl report: %w", err)
	}

	logger.Info("crawl report saved to database", "target", crawlReport.Directory, "runID", id)
	return nil
}
