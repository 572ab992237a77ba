package model

import "time"

// CrawlReport aggregates everything produced by a single crawl run.
// One report exists per target directory; the frontier controller owns it
// while the run is active and hands it to the report writers afterwards.
//
// Design decision: The report holds the full record list rather than only
// counters because:
//  1. The final report document itemizes every processed page in order
//  2. The database persists per-page rows for later inspection
//  3. Counters are cheap to derive and hard to keep consistent separately
type CrawlReport struct {
	// Directory is the canonical URL of the crawled directory root,
	// always ending with a trailing slash.
	Directory string `json:"directory"`

	// MaxDepth is the depth limit the run was configured with.
	MaxDepth int `json:"max_depth"`

	// MaxPages is the budget of successful fetches for the run.
	MaxPages int `json:"max_pages"`

	// Started is when the frontier controller began processing.
	Started time.Time `json:"started"`

	// Finished is when the run terminated. Zero while the run is active.
	Finished time.Time `json:"finished,omitempty"`

	// Cancelled reports whether the run was stopped by the operator
	// before the queue drained or the budget was exhausted.
	Cancelled bool `json:"cancelled,omitempty"`

	// Records lists one entry per processed page in processing order.
	Records []PageRecord `json:"records"`
}

// NewCrawlReport creates a report for a run against the given directory.
func NewCrawlReport(directory string, maxDepth, maxPages int) *CrawlReport {
	return &CrawlReport{
		Directory: directory,
		MaxDepth:  maxDepth,
		MaxPages:  maxPages,
		Started:   time.Now(),
		Records:   make([]PageRecord, 0),
	}
}

// Append adds a page record to the report.
func (r *CrawlReport) Append(record PageRecord) {
	r.Records = append(r.Records, record)
}

// Finish marks the run as terminated.
func (r *CrawlReport) Finish() {
	r.Finished = time.Now()
}

// TotalPages returns the number of processed pages, successful or not.
func (r *CrawlReport) TotalPages() int {
	return len(r.Records)
}

// SuccessCount returns the number of successfully fetched pages.
// This is the value compared against the MaxPages budget.
func (r *CrawlReport) SuccessCount() int {
	count := 0
	for _, record := range r.Records {
		if record.Success {
			count++
		}
	}
	return count
}

// FailureCount returns the number of pages whose fetch failed.
func (r *CrawlReport) FailureCount() int {
	return len(r.Records) - r.SuccessCount()
}

// Duration returns the elapsed wall-clock time of the run.
// For an unfinished run it returns the time elapsed so far.
func (r *CrawlReport) Duration() time.Duration {
	if r.Finished.IsZero() {
		return time.Since(r.Started)
	}
	return r.Finished.Sub(r.Started)
}
