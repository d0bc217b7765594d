package globe

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"sitecrawl/lib/crawl"
	"sitecrawl/lib/htmlutil"
	"sitecrawl/lib/sites"

	"github.com/PuerkitoBio/goquery"
)

const BaseUrl = "https://globe.al"

// Namespace is the directory every Globe listing is written to.
const Namespace = "Globe"

type Category struct {
	Slug string `json:"slug"`
	File string `json:"file"`
}

var DefaultCategories = []Category{
	{Slug: "elektroshtepiake-te-medha-sq", File: "GlobeElektroshtepiakeTeMedha2.csv"},
	{Slug: "elektroshtepiake-te-vogla-sq", File: "GlobeElektroshtepiakeTeVogla.csv"},
	{Slug: "foto-video-sq", File: "GlobeFotoDheVideo.csv"},
	{Slug: "kompjutera-dhe-rrjeti", File: "GlobeKompjuteraDheRrjeti.csv"},
	{Slug: "kondicionimi", File: "GlobeKondicionimi.csv"},
	{Slug: "telefonia", File: "GlobeTelefonia.csv"},
}

func (c Category) Address() string {
	return fmt.Sprintf("%s/%s/", BaseUrl, c.Slug)
}

func (c Category) Destination() string {
	return path.Join(Namespace, c.File)
}

// Navigator follows the numbered pagination under the product grid.
var Navigator = crawl.PaginationNavigator{
	Region:  "div.ty-pagination__items",
	Links:   "a.cm-history.ty-pagination__item.cm-ajax",
	Current: "span",
}

func cleanPrice(price string) string {
	price = strings.ReplaceAll(price, "Lekë", "")
	price = strings.ReplaceAll(price, ".", ",")
	return strings.TrimSpace(price)
}

type Extractor struct{}

func (Extractor) Header() []string {
	return sites.PriceHeader
}

// Extract reads every product on a listing page. The container of a
// product is the closest div around its title that also holds a price.
// Products without an old price are not discounted and are skipped,
// along with the "-" and "Home" placeholders the site renders in its place.
func (Extractor) Extract(ctx context.Context, page crawl.Page) ([]crawl.Record, error) {
	doc, err := page.Document()
	if err != nil {
		return nil, err
	}

	var records []crawl.Record
	skipped := 0
	doc.Find("a.product-title").Each(func(_ int, title *goquery.Selection) {
		container := title.ParentsFiltered("div").FilterFunction(func(_ int, div *goquery.Selection) bool {
			return div.Find("span.ty-price-num").Length() > 0
		}).First()
		if container.Length() == 0 {
			skipped++
			return
		}

		name := htmlutil.Text(title)
		current := cleanPrice(htmlutil.FindText(container, "span.ty-price-num"))
		old := cleanPrice(htmlutil.FindText(container, "bdi"))
		if old == "-" || old == "Home" {
			skipped++
			return
		}
		record, ok := sites.PriceRecord(name, current, old)
		if !ok {
			skipped++
			return
		}
		records = append(records, record)
	})

	if skipped > 0 {
		slog.DebugContext(ctx, "skipped incomplete products", "address", page.Address, "count", skipped)
	}
	return records, nil
}

// NewDriver returns a flat crawl of one category, run it with
// category.Address() as the entry.
func NewDriver(fetcher crawl.Fetcher, sink crawl.Sink, category Category, maxPages int) crawl.Driver {
	return crawl.Driver{
		Fetcher:     fetcher,
		Extractor:   Extractor{},
		Navigator:   Navigator,
		Sink:        sink,
		Destination: category.Destination(),
		MaxPages:    maxPages,
	}
}
