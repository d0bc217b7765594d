package novelbin

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"sitecrawl/lib/crawl"
	"sitecrawl/lib/htmlutil"
	"sitecrawl/lib/textsink"
	"sitecrawl/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	BaseUrl = "https://novelbin.com"
	// ChapterHost serves the chapter pages the book page links to.
	ChapterHost = "https://fast.novelupdates.net"
	// ListSelector marks a rendered chapter list.
	ListSelector = "#list-chapter a"
	ListTimeout  = 20 * time.Second
)

// BookAddress returns the book page with the chapter tab open.
func BookAddress(slug string) string {
	return fmt.Sprintf("%s/b/%s#tab-chapters-title", BaseUrl, slug)
}

// Collection names the directory of a book, "the-first-book" becomes
// "The First Book".
func Collection(slug string) string {
	return textutil.TitleCase(strings.ReplaceAll(slug, "-", " "))
}

// ChapterPattern matches the chapter links of one book on host.
func ChapterPattern(host, slug string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(
		`^%s/book/%s/chapter-[\w-]+`,
		regexp.QuoteMeta(strings.TrimSuffix(host, "/")),
		regexp.QuoteMeta(slug),
	))
}

var mirrorPrefix = strings.NewReplacer("novelbin.me/novel-", "fast.novelupdates.net/")

// Links keeps the links of a book page that point at its chapters, links
// to the novelbin.me mirror are rewritten to the chapter host first.
type Links struct {
	Pattern *regexp.Regexp
}

func (l Links) ChapterLinks(ctx context.Context, page crawl.Page) []string {
	doc, err := page.Document()
	if err != nil {
		return nil
	}
	var links []string
	for _, anchor := range htmlutil.GetAnchors(ctx, doc.Url, doc.Find("a")) {
		href := mirrorPrefix.Replace(anchor.Href)
		if l.Pattern.MatchString(href) {
			links = append(links, href)
		}
	}
	return links
}

type Reader struct{}

// ReadChapter takes the title from the breadcrumb, whose third entry is
// the chapter.
func (Reader) ReadChapter(ctx context.Context, page crawl.Page) (crawl.Chapter, bool) {
	doc, err := page.Document()
	if err != nil {
		return crawl.Chapter{}, false
	}
	crumbs := doc.Find(`span[itemprop="name"]`)
	var title string
	if crumbs.Length() >= 3 {
		title = htmlutil.Text(crumbs.Eq(2))
	} else {
		title = htmlutil.Text(crumbs.Last())
	}
	if title == "" {
		return crawl.Chapter{}, false
	}

	paragraphs := doc.Find("#chr-content p")
	if paragraphs.Length() == 0 {
		paragraphs = doc.Find("p")
	}
	chapter := crawl.Chapter{Title: title}
	paragraphs.Each(func(_ int, p *goquery.Selection) {
		chapter.Paragraphs = append(chapter.Paragraphs, htmlutil.Text(p))
	})
	return chapter, true
}

// Filename strips characters that are illegal in paths and title-cases
// the rest.
func Filename(title string) string {
	return strings.TrimSpace(textutil.TitleCase(textutil.StripIllegal(title)))
}

// NewCrawler renders the book page with list to find chapters and fetches
// each chapter with fetcher. Chapter files only hold the paragraphs.
func NewCrawler(list crawl.RenderedFetcher, fetcher crawl.Fetcher, root, slug string, maxPages int) crawl.ChapterCrawler {
	return crawl.ChapterCrawler{
		ListFetcher: crawl.WaitFor(list, ListSelector, ListTimeout),
		Fetcher:     fetcher,
		Links:       Links{Pattern: ChapterPattern(ChapterHost, slug)},
		Reader:      Reader{},
		Navigator:   crawl.MarkerNavigator{Selector: "#list-chapter li.next a"},
		Sink: textsink.Sink{
			Root:      root,
			Filename:  Filename,
			OmitTitle: true,
		},
		Collection: Collection(slug),
		MaxPages:   maxPages,
	}
}
