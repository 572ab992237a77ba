package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/jaytaylor/html2text"
)

// ChromeFetcher retrieves pages with a headless Chrome browser.
// It exists for sites that build their documentation client-side; a plain
// GET against those returns a nearly empty shell.
//
// Design decision: We keep one browser process alive for the whole crawl
// and open a fresh tab per page because:
//  1. Launching Chrome per page is far too slow for a crawl
//  2. A fresh tab isolates per-page state (dialogs, hung scripts)
//  3. A page timeout kills the tab, not the browser
type ChromeFetcher struct {
	// allocCtx is the exec allocator context owning the Chrome process.
	allocCtx    context.Context
	allocCancel context.CancelFunc

	// browserCtx is the long-lived browser context tabs derive from.
	browserCtx    context.Context
	browserCancel context.CancelFunc

	// userAgent is the User-Agent the browser announces.
	userAgent string

	// pageTimeout bounds navigation plus render time per page.
	// Rendering is slower than a plain GET, so the default is generous.
	pageTimeout time.Duration

	// settle is the extra pause after the DOM is ready, giving
	// client-side rendering time to populate the page.
	settle time.Duration
}

// ChromeOption configures a ChromeFetcher.
type ChromeOption func(*ChromeFetcher)

// WithChromeUserAgent sets the User-Agent the browser announces.
func WithChromeUserAgent(ua string) ChromeOption {
	return func(f *ChromeFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithPageTimeout sets the per-page navigation and render timeout.
func WithPageTimeout(timeout time.Duration) ChromeOption {
	return func(f *ChromeFetcher) {
		if timeout > 0 {
			f.pageTimeout = timeout
		}
	}
}

// NewChromeFetcher creates a headless-browser fetch engine.
// The browser process is not launched until Start is called.
func NewChromeFetcher(opts ...ChromeOption) *ChromeFetcher {
	f := &ChromeFetcher{
		userAgent:   "dircrawl/1.0 (+https://github.com/nao1215/dircrawl)",
		pageTimeout: 60 * time.Second,
		settle:      2 * time.Second,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Start launches the headless Chrome process.
func (f *ChromeFetcher) Start(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.userAgent),
	)

	f.allocCtx, f.allocCancel = chromedp.NewExecAllocator(ctx, opts...)
	f.browserCtx, f.browserCancel = chromedp.NewContext(f.allocCtx)

	// Run an empty task list to force the browser to launch now, so a
	// missing Chrome binary fails Start instead of the first Fetch.
	if err := chromedp.Run(f.browserCtx); err != nil {
		f.Close()
		return fmt.Errorf("failed to launch headless browser: %w", err)
	}

	return nil
}

// Close terminates the browser process.
func (f *ChromeFetcher) Close() error {
	if f.browserCancel != nil {
		f.browserCancel()
		f.browserCancel = nil
	}
	if f.allocCancel != nil {
		f.allocCancel()
		f.allocCancel = nil
	}
	return nil
}

// Fetch opens a new tab, navigates to pageURL, waits for the page to
// render, and converts the resulting DOM to text.
func (f *ChromeFetcher) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	if f.browserCtx == nil {
		return nil, errors.New("browser not started: call Start first")
	}

	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.pageTimeout)
	defer cancelTimeout()

	// Honor cancellation of the crawl context while the tab runs.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var markup string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &markup),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", pageURL, err)
	}

	text, err := html2text.FromString(markup)
	if err != nil {
		return nil, fmt.Errorf("failed to convert page to text: %w", err)
	}

	// The DevTools protocol exposes no simple final status here; a
	// successful render is reported as 200.
	return &Result{
		RawHTML:     markup,
		Text:        text,
		StatusCode:  200,
		ContentType: "text/html",
	}, nil
}
