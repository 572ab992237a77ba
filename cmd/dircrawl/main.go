// Package main provides the entry point for the dircrawl CLI.
//
// dircrawl downloads every HTML page under a directory-scoped URL and
// saves each page as a Markdown-flavored text file.
//
// Usage:
//
//	dircrawl crawl <directory-url>
//	dircrawl crawl --depth 2 <directory-url>
//
// See --help for all available options.
package main

// main is the entry point for dircrawl.
func main() {
	Execute()
}
