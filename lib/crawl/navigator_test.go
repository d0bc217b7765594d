package crawl_test

import (
	"context"
	"testing"

	"sitecrawl/lib/crawl"

	"github.com/stretchr/testify/require"
)

var pager = crawl.PaginationNavigator{
	Region: "div.pages",
	Links:  "a",
}

func TestPaginationNavigator(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		body string
		next string
		ok   bool
	}{
		{
			name: "links to the following page",
			body: `<div class="pages"><span>1</span><a href="page2.html">2</a><a href="page3.html">3</a></div>`,
			next: "https://example.com/list/page2.html",
			ok:   true,
		},
		{
			name: "picks the first link containing the next number",
			body: `<div class="pages"><a href="?page=1">1</a><span>2</span><a href="?page=3">3</a><a href="?page=3&sort=asc">next</a></div>`,
			next: "https://example.com/list/?page=3",
			ok:   true,
		},
		{
			name: "no pagination region",
			body: `<div class="products"></div>`,
		},
		{
			name: "single page",
			body: `<div class="pages"><span>1</span></div>`,
		},
		{
			name: "last page",
			body: `<div class="pages"><a href="page1.html">1</a><span>2</span></div>`,
		},
		{
			name: "current page is not a number",
			body: `<div class="pages"><span>...</span><a href="page2.html">2</a></div>`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page := crawl.Page{Address: "https://example.com/list/", Status: 200, Body: []byte(tc.body)}
			next, ok := pager.Next(ctx, page)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.next, next)
		})
	}
}

func TestMarkerNavigator(t *testing.T) {
	nav := crawl.MarkerNavigator{Selector: "li.PagedList-skipToNext a"}
	ctx := context.Background()

	page := crawl.Page{
		Address: "https://example.com/novel/x/chapters",
		Body:    []byte(`<ul><li class="PagedList-skipToNext"><a href="/novel/x/chapters/page-2">&gt;</a></li></ul>`),
	}
	next, ok := nav.Next(ctx, page)
	require.True(t, ok)
	require.Equal(t, "https://example.com/novel/x/chapters/page-2", next)

	page.Body = []byte(`<ul><li class="PagedList-skipToPrevious"><a href="/novel/x/chapters/page-1">&lt;</a></li></ul>`)
	_, ok = nav.Next(ctx, page)
	require.False(t, ok)
}

func TestMarkerNavigatorSelfLink(t *testing.T) {
	nav := crawl.MarkerNavigator{Selector: "li.next a"}
	page := crawl.Page{
		Address: "https://example.com/book",
		Body:    []byte(`<ul><li class="next"><a href="#">next</a></li></ul>`),
	}
	_, ok := nav.Next(context.Background(), page)
	require.False(t, ok)

	page.Body = []byte(`<ul><li class="next"><a href="/book">next</a></li></ul>`)
	_, ok = nav.Next(context.Background(), page)
	require.False(t, ok)
}
