// Package recorder persists converted page content as Markdown files in
// the crawl output directory.
//
// Each crawled page becomes one file whose name is derived from the URL
// path, sanitized so it is safe on every common filesystem. A short
// provenance header (source URL, depth, timestamp) precedes the content so
// files remain traceable after they leave the output directory.
//
// Design decision: One flat directory of files rather than mirroring the
// site's path hierarchy because:
//  1. Crawl output is consumed as a corpus, not browsed as a tree
//  2. Deep hierarchies hit path length limits on some filesystems
//  3. The report file indexes everything, so hierarchy adds nothing
package recorder
