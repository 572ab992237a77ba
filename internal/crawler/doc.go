// Package crawler provides the directory-scoped crawl engine.
//
// # Architecture
//
// The package is designed around the Frontier type, which owns all mutable
// crawl state: the FIFO queue of pending (url, depth) work items, the
// visited set, and the per-page outcome records. It drives the fetch loop
// and decides termination.
//
// Design decision: We implement our own frontier rather than using a
// third-party crawling framework because:
//  1. Directory scoping needs exact host and path-prefix semantics
//  2. The breadth-first order and the success-only page budget must be
//     under our control, not a callback scheduler's
//  3. Per-page outcomes feed the report in processing order
//
// # Components
//
//   - Scope: URL normalization and directory containment checks
//   - Parser: link extraction from fetched markup
//   - Frontier: the crawl state machine (queue, visited set, budget)
//   - Runner: concurrent crawls of multiple independent directories
//
// # Concurrency
//
// A Frontier processes exactly one work item at a time; there is no
// concurrent mutation of its state and therefore no locking. Multiple
// directories are crawled concurrently by giving each target its own
// Frontier instance via Runner.
package crawler
