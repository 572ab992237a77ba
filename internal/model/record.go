package model

// PageRecord captures the outcome of processing a single work item.
// Exactly one record is created per popped queue item; records are
// append-only and immutable after creation.
//
// Design decision: We keep both success and failure outcomes in the same
// structure rather than using separate types because:
//  1. The report lists all pages in original processing order
//  2. A single slice preserves that order without merging
//  3. The Success flag plus Error string is sufficient to distinguish them
type PageRecord struct {
	// URL is the normalized absolute URL of the page.
	URL string `json:"url"`

	// Depth is the number of link hops from the directory root.
	// The root itself has depth 0.
	Depth int `json:"depth"`

	// Title is the page title extracted during link discovery.
	// Empty for pages at the maximum depth (no extraction pass) and
	// for failed fetches.
	Title string `json:"title,omitempty"`

	// FilePath is the path of the persisted text file.
	// Empty when the fetch failed or the file could not be written.
	FilePath string `json:"file_path,omitempty"`

	// ContentLength is the length of the converted text in bytes.
	ContentLength int `json:"content_length"`

	// Success reports whether the page was fetched and converted.
	Success bool `json:"success"`

	// Error holds the fetch collaborator's error message for failed pages.
	Error string `json:"error,omitempty"`
}
