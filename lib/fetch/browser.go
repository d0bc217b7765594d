package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sitecrawl/lib/crawl"

	"github.com/chromedp/chromedp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultRenderTimeout is used by BrowserFetcher.Fetch, which only waits
// for the body.
const DefaultRenderTimeout = 30 * time.Second

type BrowserOptions struct {
	Headless bool
	// ExecPath overrides the chrome binary chromedp looks up.
	ExecPath  string
	UserAgent string
}

// BrowserFetcher drives a single headless chrome tab. It is not safe for
// concurrent use, pages are loaded one after another.
type BrowserFetcher struct {
	browser       context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
}

func chromeLogf(format string, args ...any) {
	slog.Debug(fmt.Sprintf(format, args...), "source", "chromedp")
}

// NewBrowserFetcher launches chrome. The browser lives until Close is
// called or ctx is done.
func NewBrowserFetcher(ctx context.Context, opts BrowserOptions) (*BrowserFetcher, error) {
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browser, cancelBrowser := chromedp.NewContext(
		allocCtx,
		chromedp.WithLogf(chromeLogf),
		chromedp.WithDebugf(chromeLogf),
	)
	// starts the browser and its first tab
	err := chromedp.Run(browser)
	if err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	return &BrowserFetcher{
		browser:       browser,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
	}, nil
}

func (f *BrowserFetcher) Close() {
	f.cancelBrowser()
	f.cancelAlloc()
}

func (f *BrowserFetcher) Fetch(ctx context.Context, address string) (crawl.Page, error) {
	return f.FetchRendered(ctx, address, "body", DefaultRenderTimeout)
}

func (f *BrowserFetcher) FetchRendered(ctx context.Context, address, selector string, timeout time.Duration) (crawl.Page, error) {
	ctx, span := tracer.Start(ctx, "BrowserFetcher.FetchRendered")
	defer span.End()
	span.SetAttributes(
		attribute.String("address", address),
		attribute.String("selector", selector),
	)

	// the tab belongs to the browser context, ctx only contributes
	// cancellation
	tab, cancel := context.WithCancel(f.browser)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	res, err := chromedp.RunResponse(tab, chromedp.Navigate(address))
	if ctx.Err() != nil {
		return crawl.Page{}, ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "navigation failed")
		return crawl.Page{}, crawl.NewFetchError(address, 0, err)
	}
	if res != nil && res.Status != 200 {
		err := crawl.NewFetchError(address, int(res.Status), nil)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unexpected status")
		return crawl.Page{}, err
	}

	wait, cancelWait := context.WithTimeout(tab, timeout)
	defer cancelWait()
	err = chromedp.Run(wait, chromedp.WaitReady(selector, chromedp.ByQuery))
	if ctx.Err() != nil {
		return crawl.Page{}, ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		timeoutErr := &crawl.RenderTimeoutError{Address: address, Selector: selector, Timeout: timeout}
		span.RecordError(timeoutErr)
		return crawl.Page{}, timeoutErr
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "wait failed")
		return crawl.Page{}, crawl.NewFetchError(address, 0, err)
	}

	var location, body string
	err = chromedp.Run(
		tab,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &body, chromedp.ByQuery),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read rendered html")
		return crawl.Page{}, crawl.NewFetchError(address, 0, err)
	}
	if location == "" {
		location = address
	}

	return crawl.Page{
		Address: location,
		Status:  200,
		Body:    []byte(body),
	}, nil
}
