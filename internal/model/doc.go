// Package model defines the core data structures shared across dircrawl.
// It contains the per-page crawl records and the aggregated crawl report
// that the report writers and the database serialize.
package model
