package crawl_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"sitecrawl/lib/crawl"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type testLinker struct{}

func (testLinker) ChapterLinks(ctx context.Context, page crawl.Page) []string {
	doc, err := page.Document()
	if err != nil {
		return nil
	}
	var links []string
	doc.Find("ul.chapters a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		links = append(links, page.Resolve(href))
	})
	return links
}

type testReader struct{}

func (testReader) ReadChapter(ctx context.Context, page crawl.Page) (crawl.Chapter, bool) {
	doc, err := page.Document()
	if err != nil {
		return crawl.Chapter{}, false
	}
	title := strings.TrimSpace(doc.Find("h1").Text())
	if title == "" {
		return crawl.Chapter{}, false
	}
	chapter := crawl.Chapter{Title: title}
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		chapter.Paragraphs = append(chapter.Paragraphs, s.Text())
	})
	return chapter, true
}

type memChapters struct {
	written []string
	byTitle map[string]crawl.Chapter

	// unnamable titles are refused like a sink that cannot build a file name
	unnamable map[string]bool
}

func (m *memChapters) WriteChapter(ctx context.Context, collection string, chapter crawl.Chapter) error {
	if m.unnamable[chapter.Title] {
		return fmt.Errorf("%w: no file name for %q", crawl.ErrExtractionGap, chapter.Title)
	}
	if m.byTitle == nil {
		m.byTitle = map[string]crawl.Chapter{}
	}
	m.written = append(m.written, collection+"/"+chapter.Title)
	m.byTitle[chapter.Title] = chapter
	return nil
}

func TestChapterCrawler(t *testing.T) {
	const base = "https://novels.example/novel/test/chapters"
	fetcher := &fakeFetcher{pages: map[string]string{
		base: `<ul class="chapters">
			<li><a href="/c/1">1</a></li>
			<li><a href="/c/2">2</a></li>
		</ul>
		<li class="next"><a href="/novel/test/chapters?page=2">next</a></li>`,
		base + "?page=2": `<ul class="chapters">
			<li><a href="/c/2">2</a></li>
			<li><a href="/c/3">3</a></li>
		</ul>`,
		"https://novels.example/c/1": `<h1>Chapter 1</h1><p>First.</p><p>Second.</p>`,
		"https://novels.example/c/2": `<h1>Chapter 2</h1><p>Third.</p>`,
		"https://novels.example/c/3": `<div>missing title</div>`,
	}}
	sink := &memChapters{}
	crawler := crawl.ChapterCrawler{
		Fetcher:    fetcher,
		Links:      testLinker{},
		Reader:     testReader{},
		Navigator:  crawl.MarkerNavigator{Selector: "li.next a"},
		Sink:       sink,
		Collection: "test",
	}

	stats, err := crawler.Run(context.Background(), base)
	require.NoError(t, err)
	require.Equal(t, crawl.Stats{Pages: 2, Records: 2, Duplicates: 1, Skipped: 1}, stats)
	require.Equal(t, []string{"test/Chapter 1", "test/Chapter 2"}, sink.written)

	expected := crawl.Chapter{Title: "Chapter 1", Paragraphs: []string{"First.", "Second."}}
	if diff := cmp.Diff(expected, sink.byTitle["Chapter 1"]); diff != "" {
		t.Fatal(diff)
	}
}

func TestChapterCrawlerFetchFailure(t *testing.T) {
	const base = "https://novels.example/novel/missing/chapters"
	fetcher := &fakeFetcher{status: map[string]int{base: 404}}
	sink := &memChapters{}
	crawler := crawl.ChapterCrawler{
		Fetcher:   fetcher,
		Links:     testLinker{},
		Reader:    testReader{},
		Navigator: crawl.MarkerNavigator{Selector: "li.next a"},
		Sink:      sink,
	}

	_, err := crawler.Run(context.Background(), base)
	var fetchErr *crawl.FetchError
	require.ErrorAs(t, err, &fetchErr)
	require.Equal(t, 404, fetchErr.Status)
	require.Empty(t, sink.written)
}

func TestChapterCrawlerSkipsUnnamableChapter(t *testing.T) {
	const base = "https://novels.example/novel/cjk/chapters"
	fetcher := &fakeFetcher{pages: map[string]string{
		base: `<ul class="chapters">
			<li><a href="/c/1">1</a></li>
			<li><a href="/c/2">2</a></li>
		</ul>`,
		"https://novels.example/c/1": `<h1>第一章</h1><p>开始</p>`,
		"https://novels.example/c/2": `<h1>Chapter 2</h1><p>Onwards.</p>`,
	}}
	sink := &memChapters{unnamable: map[string]bool{"第一章": true}}
	crawler := crawl.ChapterCrawler{
		Fetcher:    fetcher,
		Links:      testLinker{},
		Reader:     testReader{},
		Navigator:  crawl.MarkerNavigator{Selector: "li.next a"},
		Sink:       sink,
		Collection: "cjk",
	}

	stats, err := crawler.Run(context.Background(), base)
	require.NoError(t, err)
	require.Equal(t, crawl.Stats{Pages: 1, Records: 1, Skipped: 1}, stats)
	require.Equal(t, []string{"cjk/Chapter 2"}, sink.written)
}

func TestChapterCrawlerSinkFailure(t *testing.T) {
	const base = "https://novels.example/novel/full/chapters"
	fetcher := &fakeFetcher{pages: map[string]string{
		base: `<ul class="chapters"><li><a href="/c/1">1</a></li></ul>`,

		"https://novels.example/c/1": `<h1>Chapter 1</h1><p>First.</p>`,
	}}
	crawler := crawl.ChapterCrawler{
		Fetcher:   fetcher,
		Links:     testLinker{},
		Reader:    testReader{},
		Navigator: crawl.MarkerNavigator{Selector: "li.next a"},
		Sink:      failingChapters{},
	}

	_, err := crawler.Run(context.Background(), base)
	require.ErrorIs(t, err, errDiskFull)
}

var errDiskFull = errors.New("disk full")

type failingChapters struct{}

func (failingChapters) WriteChapter(ctx context.Context, collection string, chapter crawl.Chapter) error {
	return errDiskFull
}
