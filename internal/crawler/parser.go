package crawler

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// nonNavigableSchemes are href prefixes that never lead to a fetchable
// page and are discarded before normalization.
var nonNavigableSchemes = []string{"javascript:", "mailto:", "tel:", "data:"}

// Parser extracts in-scope links from fetched page markup.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure
//  3. Standard library extension, well-maintained
type Parser struct {
	// scope filters and normalizes every discovered href.
	scope *Scope
}

// PageLinks is the result of one extraction pass over a page.
type PageLinks struct {
	// Title is the page title from the <title> tag, if any.
	Title string

	// InScope contains the deduplicated normalized URLs that lie within
	// the target directory. Order is not significant; the Frontier
	// imposes its own ordering on enqueue.
	InScope []string
}

// NewParser creates a Parser bound to the given scope.
func NewParser(scope *Scope) *Parser {
	return &Parser{scope: scope}
}

// Extract parses markup and returns the in-scope links plus the page
// title. baseURL is the URL of the page being parsed and anchors relative
// hrefs. Extraction is best-effort: any parse failure yields an empty
// result rather than an error, because link discovery must never abort
// the crawl.
func (p *Parser) Extract(markup io.Reader, baseURL string) *PageLinks {
	result := &PageLinks{InScope: make([]string, 0)}

	doc, err := html.Parse(markup)
	if err != nil {
		return result
	}

	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					result.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "a":
				if href := getAttr(n, "href"); href != "" {
					if link, ok := p.candidate(href, baseURL); ok && !seen[link] {
						seen[link] = true
						result.InScope = append(result.InScope, link)
					}
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result
}

// candidate filters and normalizes a single href value.
// It returns the normalized URL and true only when the link is navigable,
// parseable, and inside the target directory.
func (p *Parser) candidate(href, baseURL string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" {
		return "", false
	}

	for _, scheme := range nonNavigableSchemes {
		if strings.HasPrefix(href, scheme) {
			return "", false
		}
	}

	link, err := p.scope.Normalize(href, baseURL)
	if err != nil {
		// Malformed href: treated as not in scope, never surfaced.
		return "", false
	}

	if !p.scope.Contains(link) {
		return "", false
	}

	return link, true
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
