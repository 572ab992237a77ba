package crawler

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/dircrawl/internal/fetcher"
	"github.com/nao1215/dircrawl/internal/model"
)

// Default limits applied when no option overrides them.
const (
	defaultMaxDepth = 1
	defaultMaxPages = 50

	// defaultQueueFanout bounds the pending queue at maxPages*fanout.
	// Failed fetches do not consume the page budget, so without a cap a
	// pathological site full of broken links could grow the queue
	// indefinitely. The cap is a safety margin, not observed behavior.
	defaultQueueFanout = 64
)

// Fetcher is the external fetch collaborator the Frontier drives.
// Only the per-page fetch is needed here; session acquisition and release
// are the caller's responsibility (scoped Start/Close around Run).
type Fetcher interface {
	// Fetch retrieves one page and converts it to text.
	// A non-nil error is a per-page fetch failure, recorded and skipped.
	Fetch(ctx context.Context, pageURL string) (*fetcher.Result, error)
}

// Recorder persists converted page content.
// A persist failure must be contained: implementations return an error,
// the Frontier records an empty storage path and continues.
type Recorder interface {
	// Persist writes one page's converted text and returns the storage path.
	Persist(pageURL string, depth int, title, text string) (string, error)
}

// workItem is one entry in the pending queue.
type workItem struct {
	url   string
	depth int
}

// Frontier is the crawl state machine. It owns the FIFO queue of pending
// work items, the visited set, the budget counters, and the per-page
// outcome records of a single run.
//
// A Frontier must not be shared between goroutines: it processes exactly
// one work item at a time, end-to-end, so none of its state is locked.
// Crawl several directories concurrently by creating one Frontier each.
type Frontier struct {
	// scope restricts the crawl to one directory subtree.
	scope *Scope

	// parser discovers new in-scope links on fetched pages.
	parser *Parser

	// fetch is the external fetch collaborator.
	fetch Fetcher

	// recorder persists converted page content.
	recorder Recorder

	// maxDepth is the maximum link distance from the directory root.
	maxDepth int

	// maxPages is the budget of successful fetches.
	maxPages int

	// delay is the politeness pause between fetches.
	delay time.Duration

	// queueFanout is the queue capacity multiplier applied to maxPages.
	queueFanout int

	// queueCap bounds the pending queue. Items discovered while the
	// queue is full are dropped. Derived from maxPages and queueFanout
	// once all options have been applied.
	queueCap int

	// logger receives per-page progress lines.
	logger *slog.Logger

	// pending is the FIFO queue; its order gives breadth-first traversal.
	pending []workItem

	// visited holds every URL that has been dequeued for processing.
	// A URL is added before its fetch begins so it is never requeued
	// while in flight or after a failure.
	visited map[string]bool

	// queued tracks URLs that have ever been enqueued, preventing
	// duplicate queue entries without scanning the slice.
	queued map[string]bool
}

// Option configures a Frontier.
type Option func(*Frontier)

// WithMaxDepth sets the maximum crawl depth.
// 0 = only the directory index, 1 = index plus directly linked pages, etc.
func WithMaxDepth(depth int) Option {
	return func(f *Frontier) {
		f.maxDepth = depth
	}
}

// WithMaxPages sets the budget of successful fetches.
func WithMaxPages(maxPages int) Option {
	return func(f *Frontier) {
		f.maxPages = maxPages
	}
}

// WithDelay sets the politeness pause between fetches.
func WithDelay(d time.Duration) Option {
	return func(f *Frontier) {
		f.delay = d
	}
}

// WithLogger sets the logger for per-page progress.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Frontier) {
		f.logger = logger
	}
}

// WithQueueFanout overrides the queue capacity multiplier.
func WithQueueFanout(fanout int) Option {
	return func(f *Frontier) {
		if fanout > 0 {
			f.queueFanout = fanout
		}
	}
}

// NewFrontier creates a Frontier for one crawl run against scope.
//
// Design decision: We require external fetch and persistence collaborators
// because:
//  1. Network fetch and rendering are outside the controller's concern
//  2. Tests drive the loop with in-memory fakes
//  3. HTTP and headless-browser engines stay interchangeable
func NewFrontier(scope *Scope, fetch Fetcher, recorder Recorder, opts ...Option) *Frontier {
	f := &Frontier{
		scope:    scope,
		parser:   NewParser(scope),
		fetch:    fetch,
		recorder: recorder,
		maxDepth: defaultMaxDepth,
		maxPages: defaultMaxPages,
		visited:  make(map[string]bool),
		queued:   make(map[string]bool),
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.queueFanout == 0 {
		f.queueFanout = defaultQueueFanout
	}
	f.queueCap = f.maxPages * f.queueFanout

	return f
}

// Run executes the crawl: it seeds the queue with the directory root at
// depth 0 and processes work items until the queue is empty, the page
// budget is exhausted, or ctx is cancelled.
//
// The returned report is never nil. On cancellation it contains every
// record produced so far together with ctx.Err(), so a partial run is
// still finalizable.
func (f *Frontier) Run(ctx context.Context) (*model.CrawlReport, error) {
	report := model.NewCrawlReport(f.scope.RootURL(), f.maxDepth, f.maxPages)

	f.enqueue(f.scope.RootURL(), 0)

	f.logger.Info("crawl started",
		"directory", f.scope.RootURL(),
		"maxDepth", f.maxDepth,
		"maxPages", f.maxPages,
	)

	for len(f.pending) > 0 && report.SuccessCount() < f.maxPages {
		select {
		case <-ctx.Done():
			report.Cancelled = true
			report.Finish()
			return report, ctx.Err()
		default:
		}

		item := f.pending[0]
		f.pending = f.pending[1:]

		// Sole deduplication point: skipped items produce no record.
		if f.visited[item.url] {
			continue
		}

		// Invariant guard; enqueue-time checks keep this from firing.
		if item.depth > f.maxDepth {
			continue
		}

		// Mark in flight before the fetch so the URL is never requeued,
		// even if the fetch fails.
		f.visited[item.url] = true

		f.logger.Info("fetching page", "url", item.url, "depth", item.depth)

		result, err := f.fetch.Fetch(ctx, item.url)
		if err != nil {
			f.logger.Warn("fetch failed", "url", item.url, "error", err)
			report.Append(model.PageRecord{
				URL:   item.url,
				Depth: item.depth,
				Error: err.Error(),
			})
			f.pause(ctx)
			continue
		}

		record := model.PageRecord{
			URL:           item.url,
			Depth:         item.depth,
			ContentLength: len(result.Text),
			Success:       true,
		}

		// Discover new links before persisting so the record can carry
		// the page title. The extractor only runs below the depth limit;
		// pages at maxDepth are leaves.
		if item.depth < f.maxDepth && result.RawHTML != "" {
			links := f.parser.Extract(strings.NewReader(result.RawHTML), item.url)
			record.Title = links.Title

			added := 0
			for _, link := range links.InScope {
				if f.enqueue(link, item.depth+1) {
					added++
				}
			}
			f.logger.Info("links discovered",
				"url", item.url,
				"inScope", len(links.InScope),
				"enqueued", added,
			)
		}

		path, err := f.recorder.Persist(item.url, item.depth, record.Title, result.Text)
		if err != nil {
			// A persist failure does not abort the crawl; the record
			// keeps an empty storage path.
			f.logger.Warn("persist failed", "url", item.url, "error", err)
		} else {
			record.FilePath = path
		}

		report.Append(record)

		f.logger.Info("page recorded",
			"url", item.url,
			"depth", item.depth,
			"bytes", record.ContentLength,
			"file", record.FilePath,
		)

		f.pause(ctx)
	}

	report.Finish()

	f.logger.Info("crawl finished",
		"directory", f.scope.RootURL(),
		"pages", report.TotalPages(),
		"success", report.SuccessCount(),
		"failed", report.FailureCount(),
		"elapsed", report.Duration().Round(time.Millisecond),
	)

	return report, nil
}

// enqueue appends (url, depth) to the pending queue tail.
// It refuses URLs that were already visited or queued, and drops new
// items once the queue cap is reached. Returns true when the item was
// actually added.
func (f *Frontier) enqueue(pageURL string, depth int) bool {
	if f.visited[pageURL] || f.queued[pageURL] {
		return false
	}
	if len(f.pending) >= f.queueCap {
		f.logger.Debug("queue full, dropping link", "url", pageURL)
		return false
	}

	f.queued[pageURL] = true
	f.pending = append(f.pending, workItem{url: pageURL, depth: depth})
	return true
}

// pause sleeps for the politeness delay between fetches.
// Cancellation during the pause is picked up at the top of the loop.
func (f *Frontier) pause(ctx context.Context) {
	if f.delay <= 0 || len(f.pending) == 0 {
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(f.delay):
	}
}
