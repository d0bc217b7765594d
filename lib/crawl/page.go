package crawl

import (
	"bytes"
	"context"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Page is a single fetched document. It is created per fetch and
// discarded once the extractor and navigator are done with it.
type Page struct {
	Address string
	Status  int
	Body    []byte
}

// Document parses the page body, the returned document has its Url set
// to the page address so relative links can be resolved.
func (p Page) Document() (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(p.Body))
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(p.Address)
	if err == nil {
		doc.Url = base
	}
	return doc, nil
}

// Resolve resolves href against the page address, if either fails to
// parse href is returned as-is.
func (p Page) Resolve(href string) string {
	base, err := url.Parse(p.Address)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

type Fetcher interface {
	// Fetch retrieves one page, any status other than 200 results in a
	// *FetchError.
	Fetch(ctx context.Context, address string) (Page, error)
}

// RenderedFetcher fetches pages that only become useful after client-side
// rendering.
type RenderedFetcher interface {
	// FetchRendered loads address and waits up to timeout for selector
	// to be present. If it never appears a *RenderTimeoutError is returned.
	FetchRendered(ctx context.Context, address, selector string, timeout time.Duration) (Page, error)
}

type waitFetcher struct {
	rendered RenderedFetcher
	selector string
	timeout  time.Duration
}

// WaitFor adapts a RenderedFetcher into a Fetcher that always waits for
// the same selector.
func WaitFor(rendered RenderedFetcher, selector string, timeout time.Duration) Fetcher {
	return waitFetcher{rendered: rendered, selector: selector, timeout: timeout}
}

func (f waitFetcher) Fetch(ctx context.Context, address string) (Page, error) {
	return f.rendered.FetchRendered(ctx, address, f.selector, f.timeout)
}
