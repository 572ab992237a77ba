package fetcher

import "context"

// Result holds the converted outcome of one successful page fetch.
type Result struct {
	// RawHTML is the response markup before text conversion. The crawl
	// controller feeds it to the link extractor.
	RawHTML string

	// Text is the plain-text rendition of the page content, ready for
	// persistence.
	Text string

	// StatusCode is the HTTP status of the final response.
	StatusCode int

	// ContentType is the media type of the response, without parameters.
	ContentType string
}

// Fetcher retrieves pages and converts them to text.
//
// Design decision: The interface carries explicit Start/Close lifecycle
// methods because:
//  1. The browser engine must launch and tear down a Chrome process
//  2. The crawl controller should not know which engine it drives
//  3. A no-op lifecycle is trivial for engines that need none
type Fetcher interface {
	// Start acquires whatever resources the engine needs.
	// It must be called once before the first Fetch.
	Start(ctx context.Context) error

	// Fetch retrieves one page. The returned error marks a per-page
	// failure; the engine stays usable for subsequent calls.
	Fetch(ctx context.Context, pageURL string) (*Result, error)

	// Close releases the engine's resources.
	Close() error
}
