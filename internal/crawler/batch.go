package crawler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/dircrawl/internal/model"
	"golang.org/x/sync/errgroup"
)

// CrawlFunc crawls a single target directory end to end and returns its
// report. Implementations typically build a Frontier together with its
// fetch and persistence collaborators, run it, and finalize the output.
//
// A nil report with a non-nil error marks a setup failure (for example a
// malformed target URL); the Runner converts it into a single failed
// record so the batch result stays positional.
type CrawlFunc func(ctx context.Context, target string) (*model.CrawlReport, error)

// Runner crawls multiple directory targets concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate Runner rather than adding batch
// functionality to Frontier because:
// 1. It keeps the Frontier focused on a single-directory crawl
// 2. Each target gets its own isolated queue and visited set
// 3. It allows different batch strategies (e.g. per-host throttling) later
type Runner struct {
	// crawl performs one full target crawl. It is called once per target.
	crawl CrawlFunc

	// concurrency is the maximum number of concurrent crawls.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed crawl reports, one per target.
	// Access is synchronized via mutex.
	results []*model.CrawlReport
	mu      sync.Mutex
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets a custom logger for batch crawling.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithRunnerConcurrency sets the maximum number of concurrent crawls.
// Default is 4 if not specified.
func WithRunnerConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewRunner creates a new Runner.
func NewRunner(crawl CrawlFunc, opts ...RunnerOption) *Runner {
	r := &Runner{
		crawl:       crawl,
		concurrency: 4,
		results:     make([]*model.CrawlReport, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Run crawls all targets concurrently and returns their reports in the
// same order as the targets slice. It respects the configured concurrency
// limit and context cancellation.
//
// Returns all reports collected, even for targets that failed.
// The error return indicates whether the batch was cancelled.
func (r *Runner) Run(ctx context.Context, targets []string) ([]*model.CrawlReport, error) {
	r.logger.Info("starting batch crawl",
		"total_targets", len(targets),
		"concurrency", r.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	r.results = make([]*model.CrawlReport, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			r.logger.Info("crawling target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			report, err := r.crawl(ctx, target)

			if report == nil {
				// Setup failure before a crawl could start.
				report = model.NewCrawlReport(target, 0, 0)
				if err != nil {
					report.Append(model.PageRecord{URL: target, Error: err.Error()})
				}
				report.Finish()
			}

			// Store the result regardless of error; a cancelled run still
			// carries the records collected so far.
			r.store(i, report)

			if ctx.Err() != nil {
				// Propagate cancellation so remaining goroutines stop early.
				return ctx.Err()
			}

			if err != nil {
				r.logger.Warn("crawl failed",
					"target", target,
					"error", err,
				)
				// Per-target failures do not abort the batch.
				return nil
			}

			r.logger.Info("crawl completed",
				"target", target,
				"pages", report.SuccessCount(),
			)

			return nil
		})
	}

	err := g.Wait()

	elapsed := time.Since(startTime)
	r.logger.Info("batch crawl complete",
		"total_targets", len(targets),
		"elapsed", elapsed.Round(time.Millisecond),
	)

	return r.results, err
}

// store records the report for target index i.
func (r *Runner) store(i int, report *model.CrawlReport) {
	r.mu.Lock()
	r.results[i] = report
	r.mu.Unlock()
}
