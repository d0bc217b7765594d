package lightnovel

import (
	"context"
	"fmt"

	"sitecrawl/lib/crawl"
	"sitecrawl/lib/htmlutil"
	"sitecrawl/lib/textsink"
	"sitecrawl/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

const BaseUrl = "https://www.lightnovelworld.com"

// UserAgent is the header the site accepts from scripted clients.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_11_5) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/50.0.2661.102 Safari/537.36"

// ChaptersAddress returns the first chapter-list page of a novel slug.
func ChaptersAddress(base, slug string) string {
	if base == "" {
		base = BaseUrl
	}
	return fmt.Sprintf("%s/novel/%s/chapters", base, slug)
}

var Navigator = crawl.MarkerNavigator{
	Selector: "div.pagenav li.PagedList-skipToNext a",
}

type Links struct{}

func (Links) ChapterLinks(ctx context.Context, page crawl.Page) []string {
	doc, err := page.Document()
	if err != nil {
		return nil
	}
	// only the first link of an item points at the chapter
	var links []string
	doc.Find("ul.chapter-list li").Each(func(_ int, item *goquery.Selection) {
		for _, anchor := range htmlutil.GetAnchors(ctx, doc.Url, item.Find("a[href]").First()) {
			links = append(links, anchor.Href)
		}
	})
	return links
}

type Reader struct{}

func (Reader) ReadChapter(ctx context.Context, page crawl.Page) (crawl.Chapter, bool) {
	doc, err := page.Document()
	if err != nil {
		return crawl.Chapter{}, false
	}
	title := htmlutil.FindText(doc.Selection, "span.chapter-title")
	if title == "" {
		return crawl.Chapter{}, false
	}

	chapter := crawl.Chapter{Title: title}
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		chapter.Paragraphs = append(chapter.Paragraphs, htmlutil.Text(p))
	})
	return chapter, true
}

// NewCrawler saves every chapter of the novel into root/<slug>/, each file
// holds the chapter title followed by its paragraphs.
func NewCrawler(fetcher crawl.Fetcher, root, slug string, maxPages int) crawl.ChapterCrawler {
	return crawl.ChapterCrawler{
		Fetcher:   fetcher,
		Links:     Links{},
		Reader:    Reader{},
		Navigator: Navigator,
		Sink: textsink.Sink{
			Root:     root,
			Filename: textutil.SanitizeFilename,
		},
		Collection: slug,
		MaxPages:   maxPages,
	}
}
