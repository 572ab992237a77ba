package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values mirror typical documentation-site characteristics: shallow
// link trees, moderate page counts, fast clearnet connections.
const (
	// DefaultMaxDepth of 1 crawls the directory index plus the pages it
	// links to directly. Documentation directories are usually flat, so
	// one hop already covers most of the content.
	DefaultMaxDepth = 1

	// DefaultMaxPages caps a single run at 50 successful fetches.
	// This prevents runaway crawling on large or infinitely-generating
	// sites. Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 50

	// DefaultTimeout is the per-request timeout. Clearnet documentation
	// sites respond quickly; 30 seconds accommodates slow shared hosting
	// without letting a dead server stall the whole run.
	DefaultTimeout = 30 * time.Second

	// DefaultCrawlDelay is the pause between page fetches.
	// This is a politeness setting to avoid overwhelming servers.
	// 500ms keeps a 50-page run under a minute while staying gentle.
	DefaultCrawlDelay = 500 * time.Millisecond

	// DefaultBatchSize of 4 concurrent directory crawls balances throughput
	// with resource usage when multiple targets are given.
	DefaultBatchSize = 4

	// DefaultUserAgent identifies dircrawl in HTTP requests.
	// A descriptive User-Agent lets site operators identify crawler
	// traffic in their logs.
	DefaultUserAgent = "dircrawl/1.0 (+https://github.com/nao1215/dircrawl)"

	// DefaultMaxBodySize limits the response body size to read.
	// 5MB is sufficient for HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultQueueFanout is the safety multiplier for the pending queue
	// capacity. The queue is capped at MaxPages*DefaultQueueFanout so a
	// pathological site full of failing pages cannot grow it without bound.
	DefaultQueueFanout = 64

	// DefaultRenderTimeout is the per-page timeout when rendering with a
	// headless browser. Rendering waits for script execution, so it needs
	// more headroom than a plain HTTP fetch.
	DefaultRenderTimeout = 60 * time.Second

	// AppName is the application name used for XDG directory paths.
	AppName = "dircrawl"
)

// Config holds all configuration options for dircrawl.
// It is populated from CLI flags and passed through the application via
// dependency injection rather than global state.
type Config struct {
	// Targets is the list of directory URLs to crawl.
	// Each must be an absolute http(s) URL; a trailing slash is added
	// when missing so the path prefix cannot match sibling directories.
	Targets []string

	// MaxDepth is the maximum link distance from the directory root.
	// Depth 0 means only fetch the directory index page.
	MaxDepth int

	// MaxPages is the budget of successful fetches per directory.
	// Failed fetches do not count against this budget.
	MaxPages int

	// OutputDir overrides the derived output directory.
	// When empty, a directory named after the target host and path is
	// created in the current working directory.
	OutputDir string

	// Timeout is the per-request timeout for the fetch collaborator.
	Timeout time.Duration

	// CrawlDelay is the pause between page fetches within one run.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// Render fetches pages through a headless browser instead of plain
	// HTTP. Needed for documentation sites that build their content with
	// client-side JavaScript.
	Render bool

	// BatchSize is the number of concurrent runs when crawling multiple
	// target directories.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .dircrawl in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-host overrides loaded from the config file.
	SiteConfigs *File

	// JSONReport prints the report to the terminal as JSON.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the report to the terminal as Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is an optional path the terminal report is written to
	// instead of stdout. The per-run report file inside the output
	// directory is always written regardless of this setting.
	ReportFile string

	// DBDir is the directory path for the SQLite crawl-history database.
	// When empty, crawl history is not recorded.
	DBDir string

	// SaveToDB indicates whether to record finished runs in the database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use
// cases. Users can override specific values after creation.
func NewConfig() *Config {
	return &Config{
		MaxDepth:    DefaultMaxDepth,
		MaxPages:    DefaultMaxPages,
		Timeout:     DefaultTimeout,
		CrawlDelay:  DefaultCrawlDelay,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		BatchSize:   DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for dircrawl.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/dircrawl
// On macOS: ~/Library/Application Support/dircrawl
// On Windows: %LOCALAPPDATA%\dircrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for dircrawl.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// Depth 0 is valid (index page only), negative is not
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}

	// A zero budget would mean no pages at all
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	// Timeout must be positive; zero would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// BatchSize must be positive; zero would mean no crawling
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// MaxBodySize must be non-negative; 0 means default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}
