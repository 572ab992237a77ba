// Package fetcher provides page fetch engines that retrieve a URL and
// convert the response to plain text.
//
// # Architecture
//
// This package implements the Fetcher interface for each supported engine,
// allowing the crawl controller to drive page retrieval in a uniform way.
//
// Design decision: Each engine is implemented as a separate type rather
// than a single fetcher with a mode switch because:
//  1. The plain-HTTP and headless-browser paths share almost no code
//  2. Engine lifecycle differs - a browser needs explicit start/stop
//  3. Easier testing - the HTTP engine tests against httptest servers
//     without pulling in a browser
//
// # Supported Engines
//
//   - HTTPFetcher: plain HTTP GET via net/http, suitable for static sites
//   - ChromeFetcher: headless Chrome via chromedp, for pages that only
//     materialize their content through JavaScript
//
// # Usage
//
// Each engine implements the Fetcher interface:
//
//	f := fetcher.NewHTTPFetcher()
//	if err := f.Start(ctx); err != nil { ... }
//	defer f.Close()
//	result, err := f.Fetch(ctx, "https://example.com/docs/")
package fetcher
