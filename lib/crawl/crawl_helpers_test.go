package crawl_test

import (
	"context"
	"strings"
	"time"

	"sitecrawl/lib/crawl"

	"github.com/PuerkitoBio/goquery"
)

type fakeFetcher struct {
	pages   map[string]string
	status  map[string]int
	visited []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, address string) (crawl.Page, error) {
	f.visited = append(f.visited, address)
	if status, ok := f.status[address]; ok {
		return crawl.Page{}, crawl.NewFetchError(address, status, nil)
	}
	body, ok := f.pages[address]
	if !ok {
		return crawl.Page{}, crawl.NewFetchError(address, 404, nil)
	}
	return crawl.Page{Address: address, Status: 200, Body: []byte(body)}, nil
}

type fakeRenderer struct {
	pages map[string]string
	// keyed by "<address>|<selector>"
	timeouts map[string]bool
	visited  []string
}

func (f *fakeRenderer) FetchRendered(ctx context.Context, address, selector string, timeout time.Duration) (crawl.Page, error) {
	f.visited = append(f.visited, address+"|"+selector)
	if f.timeouts[address+"|"+selector] {
		return crawl.Page{}, &crawl.RenderTimeoutError{Address: address, Selector: selector, Timeout: timeout}
	}
	body, ok := f.pages[address]
	if !ok {
		return crawl.Page{}, crawl.NewFetchError(address, 404, nil)
	}
	return crawl.Page{Address: address, Status: 200, Body: []byte(body)}, nil
}

type memSink struct {
	rows       map[string][]crawl.Record
	headers    map[string]int
	namespaces []string
}

func newMemSink() *memSink {
	return &memSink{
		rows:    map[string][]crawl.Record{},
		headers: map[string]int{},
	}
}

func (s *memSink) Append(ctx context.Context, destination string, header []string, records []crawl.Record) error {
	if _, ok := s.rows[destination]; !ok {
		s.headers[destination]++
	}
	s.rows[destination] = append(s.rows[destination], records...)
	return nil
}

func (s *memSink) Namespace(ctx context.Context, namespace string) error {
	s.namespaces = append(s.namespaces, namespace)
	return nil
}

// itemExtractor reads the text of every li.item, items with an empty
// name are skipped.
type itemExtractor struct{}

func (itemExtractor) Header() []string {
	return []string{"name"}
}

func (itemExtractor) Extract(ctx context.Context, page crawl.Page) ([]crawl.Record, error) {
	doc, err := page.Document()
	if err != nil {
		return nil, err
	}
	var records []crawl.Record
	doc.Find("li.item").Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Text())
		if name == "" {
			return
		}
		records = append(records, crawl.Record{name})
	})
	return records, nil
}

func listing(pagination string, items ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><body>")
	sb.WriteString(pagination)
	sb.WriteString("<ul>")
	for _, item := range items {
		sb.WriteString(`<li class="item">` + item + `</li>`)
	}
	sb.WriteString("</ul></body></html>")
	return sb.String()
}
