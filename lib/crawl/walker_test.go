package crawl_test

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"sitecrawl/lib/crawl"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const (
	entryAddress  = "https://store.example/"
	countSelector = "#count"
	itemSelector  = "li.item"
)

type testCatalog struct {
	categories []crawl.Category
}

func (c testCatalog) Entry() (string, string) {
	return entryAddress, "#menu"
}

func (c testCatalog) Categories(ctx context.Context, page crawl.Page) ([]crawl.Category, error) {
	return c.categories, nil
}

func (c testCatalog) PageAddress(leaf crawl.Leaf, n int) string {
	return fmt.Sprintf("%s?page=%d", leaf.Address, n)
}

func (c testCatalog) CountSelector() string { return countSelector }
func (c testCatalog) ItemSelector() string  { return itemSelector }

func (c testCatalog) PageCount(page crawl.Page) int {
	doc, err := page.Document()
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(doc.Find(countSelector).Text()))
	if err != nil {
		return 1
	}
	return n
}

func (c testCatalog) Extractor() crawl.Extractor {
	return itemExtractor{}
}

func counted(n int, items ...string) string {
	return listing(fmt.Sprintf(`<div id="count">%d</div>`, n), items...)
}

func TestWalkerCoversEveryLeaf(t *testing.T) {
	catalog := testCatalog{categories: []crawl.Category{
		{
			Name: "Phones",
			Subcategories: []crawl.Subcategory{{
				Name: "Smartphones",
				Leaves: []crawl.Leaf{
					{Name: "Android", Address: "https://store.example/android"},
					{Name: "Iphone", Address: "https://store.example/iphone"},
				},
			}},
		},
		{
			Name: "Tv",
			Subcategories: []crawl.Subcategory{{
				Name: "Led",
				Leaves: []crawl.Leaf{
					{Name: "Small", Address: "https://store.example/small"},
					{Name: "Large", Address: "https://store.example/large"},
				},
			}},
		},
	}}

	renderer := &fakeRenderer{
		pages: map[string]string{
			entryAddress: `<ul id="menu"></ul>`,

			"https://store.example/android?page=1": counted(2, "A1", "A2"),
			"https://store.example/android?page=2": counted(2, "A3", "A1"),
			"https://store.example/iphone?page=1":  listing("", "I1"),
			"https://store.example/small?page=1":   counted(1, "S1"),
			"https://store.example/large?page=1":   counted(1, "L1"),
		},
		timeouts: map[string]bool{
			// the pagination summary of this leaf never renders
			"https://store.example/iphone?page=1|" + countSelector: true,
			// and this leaf's only page never renders its items
			"https://store.example/small?page=1|" + itemSelector: true,
		},
	}
	sink := newMemSink()
	walker := crawl.Walker{
		Fetcher:   renderer,
		Catalog:   catalog,
		Sink:      sink,
		Namespace: "Store",
	}

	stats, err := walker.Walk(context.Background())
	require.NoError(t, err)
	require.Equal(t, crawl.Stats{Pages: 4, Records: 5, Duplicates: 1, Skipped: 1}, stats)

	expected := map[string][]crawl.Record{
		"Store/Phones/Smartphones/Android.csv": {{"A1"}, {"A2"}, {"A3"}},
		"Store/Phones/Smartphones/Iphone.csv":  {{"I1"}},
		"Store/Tv/Led/Large.csv":               {{"L1"}},
	}
	if diff := cmp.Diff(expected, sink.rows); diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, []string{
		"Store/Phones",
		"Store/Phones/Smartphones",
		"Store/Tv",
		"Store/Tv/Led",
	}, sink.namespaces)

	require.Equal(t, []string{
		entryAddress + "|#menu",
		"https://store.example/android?page=1|" + countSelector,
		"https://store.example/android?page=1|" + itemSelector,
		"https://store.example/android?page=2|" + itemSelector,
		"https://store.example/iphone?page=1|" + countSelector,
		"https://store.example/iphone?page=1|" + itemSelector,
		"https://store.example/small?page=1|" + countSelector,
		"https://store.example/small?page=1|" + itemSelector,
		"https://store.example/large?page=1|" + countSelector,
		"https://store.example/large?page=1|" + itemSelector,
	}, renderer.visited)
}

func TestWalkerFilter(t *testing.T) {
	catalog := testCatalog{categories: []crawl.Category{
		{Name: "Phones", Subcategories: []crawl.Subcategory{{
			Name:   "Smartphones",
			Leaves: []crawl.Leaf{{Name: "Android", Address: "https://store.example/android"}},
		}}},
		{Name: "Tv", Subcategories: []crawl.Subcategory{{
			Name:   "Led",
			Leaves: []crawl.Leaf{{Name: "Large", Address: "https://store.example/large"}},
		}}},
	}}
	renderer := &fakeRenderer{pages: map[string]string{
		entryAddress: `<ul id="menu"></ul>`,

		"https://store.example/large?page=1": counted(1, "L1"),
	}}
	sink := newMemSink()
	walker := crawl.Walker{
		Fetcher: renderer,
		Catalog: catalog,
		Sink:    sink,
		Filter: func(category string) bool {
			return category == "Tv"
		},
	}

	stats, err := walker.Walk(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Records)
	require.Contains(t, sink.rows, "Tv/Led/Large.csv")
}

func TestWalkerEntryTimeout(t *testing.T) {
	renderer := &fakeRenderer{
		pages:    map[string]string{},
		timeouts: map[string]bool{entryAddress + "|#menu": true},
	}
	walker := crawl.Walker{
		Fetcher: renderer,
		Catalog: testCatalog{},
		Sink:    newMemSink(),
	}
	_, err := walker.Walk(context.Background())
	require.ErrorIs(t, err, crawl.ErrRenderTimeout)
}
