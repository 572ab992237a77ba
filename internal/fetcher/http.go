package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jaytaylor/html2text"
	"golang.org/x/net/html/charset"
)

// HTTPFetcher retrieves pages with a plain HTTP GET.
// It is the default engine and handles the vast majority of documentation
// sites, which serve their content as static HTML.
//
// Design decision: We use a struct with an owned http.Client rather than
// accepting one per call because:
//  1. Client configuration (timeouts, redirects) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with httptest servers
type HTTPFetcher struct {
	// client is the HTTP client used for all requests.
	client *http.Client

	// userAgent is the User-Agent header sent with every request.
	userAgent string

	// headers holds extra request headers, e.g. site-specific auth.
	headers map[string]string

	// maxBodySize limits the response body size to prevent memory
	// exhaustion. Default is 5MB.
	maxBodySize int64

	// timeout is the per-request timeout.
	timeout time.Duration
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithHeaders sets extra request headers sent with every request.
func WithHeaders(headers map[string]string) HTTPOption {
	return func(f *HTTPFetcher) {
		f.headers = headers
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) HTTPOption {
	return func(f *HTTPFetcher) {
		if size > 0 {
			f.maxBodySize = size
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(f *HTTPFetcher) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// NewHTTPFetcher creates a new HTTP fetch engine.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	f := &HTTPFetcher{
		userAgent:   "dircrawl/1.0 (+https://github.com/nao1215/dircrawl)",
		maxBodySize: 5 * 1024 * 1024, // 5MB
		timeout:     30 * time.Second,
	}

	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Start is a no-op; the HTTP engine needs no session setup.
func (f *HTTPFetcher) Start(_ context.Context) error {
	return nil
}

// Close is a no-op counterpart to Start.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// Fetch performs a GET on pageURL and converts the HTML response to text.
// Non-2xx statuses and non-HTML content types are fetch failures.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for key, value := range f.headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, pageURL)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isHTMLContentType(contentType) {
		return nil, fmt.Errorf("unsupported content type %q for %s", contentType, pageURL)
	}

	// Decode the body to UTF-8 based on the declared charset (or byte
	// sniffing when none is declared), with a hard size limit.
	bodyReader, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodySize), contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	body, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	text, err := html2text.FromString(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to convert page to text: %w", err)
	}

	return &Result{
		RawHTML:     string(body),
		Text:        text,
		StatusCode:  resp.StatusCode,
		ContentType: mediaType(contentType),
	}, nil
}

// isHTMLContentType reports whether the Content-Type header names a
// document the text converter can handle. An empty header is accepted
// because some static servers omit it for HTML files.
func isHTMLContentType(contentType string) bool {
	if contentType == "" {
		return true
	}

	mt := mediaType(contentType)
	switch mt {
	case "text/html", "application/xhtml+xml":
		return true
	}
	return false
}

// mediaType strips parameters such as charset from a Content-Type value.
func mediaType(contentType string) string {
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.TrimSpace(strings.ToLower(contentType))
}
