// Package config provides configuration structures and utilities for dircrawl.
// It defines the main options for directory crawling, output locations,
// and report generation preferences.
package config
