// Package log provides logging utilities for dircrawl.
// It contains a slog.Handler wrapper that keeps per-page crawl logging
// readable by truncating oversized attribute values such as page text
// or raw markup.
package log
