package crawler

import (
	"fmt"
	"net/url"
	"strings"
)

// Scope defines the URL subtree a crawl is restricted to.
// It is immutable once the crawl starts.
type Scope struct {
	// Scheme is the URL scheme of the target directory (http or https).
	Scheme string

	// Host is the host the crawl is limited to. Matching is exact and
	// case-sensitive; no wildcard or subdomain matching.
	Host string

	// PathPrefix is the directory path. It always ends with "/" so that
	// prefix matching cannot accidentally accept a sibling path such as
	// /gitx/ when the target is /git/.
	PathPrefix string
}

// NewScope parses directoryURL and builds the crawl scope from it.
// A trailing slash is appended to the path when missing.
func NewScope(directoryURL string) (*Scope, error) {
	u, err := url.Parse(directoryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid directory URL %q: %w", directoryURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q: only http and https are supported", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("directory URL %q has no host", directoryURL)
	}

	prefix := u.Path
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return &Scope{
		Scheme:     u.Scheme,
		Host:       u.Host,
		PathPrefix: prefix,
	}, nil
}

// RootURL returns the canonical URL of the directory root.
// This is the depth-0 seed of every crawl.
func (s *Scope) RootURL() string {
	return s.Scheme + "://" + s.Host + s.PathPrefix
}

// Normalize canonicalizes a raw link into a comparable absolute URL.
//
// The transform is purely syntactic:
//   - the fragment portion (everything from '#') is stripped
//   - protocol-relative links (//host/path) get the scope's scheme
//   - root-relative links (/path) get the scope's scheme and host
//   - anything else is resolved against baseURL with standard URL-join
//     semantics
//
// Applying Normalize twice yields the same result as applying it once.
// Malformed input returns an error; callers treat it as out of scope.
func (s *Scope) Normalize(raw, baseURL string) (string, error) {
	// The fragment never reaches the server, so two URLs differing only
	// in fragment are the same page.
	if i := strings.Index(raw, "#"); i >= 0 {
		raw = raw[:i]
	}

	switch {
	case strings.HasPrefix(raw, "//"):
		raw = s.Scheme + ":" + raw
	case strings.HasPrefix(raw, "/"):
		raw = s.Scheme + "://" + s.Host + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("unparseable URL %q: %w", raw, err)
	}

	if !u.IsAbs() && baseURL != "" {
		base, err := url.Parse(baseURL)
		if err != nil {
			return "", fmt.Errorf("unparseable base URL %q: %w", baseURL, err)
		}
		u = base.ResolveReference(u)
	}

	return u.String(), nil
}

// Contains reports whether rawURL lies within the target directory.
// Any parse error yields false (fail closed).
func (s *Scope) Contains(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	if u.Host != s.Host {
		return false
	}

	return strings.HasPrefix(u.Path, s.PathPrefix)
}
