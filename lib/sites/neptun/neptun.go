package neptun

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"sitecrawl/lib/crawl"
	"sitecrawl/lib/htmlutil"
	"sitecrawl/lib/sites"
	"sitecrawl/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

const (
	BaseUrl = "https://www.neptun.al"
	// Namespace is the root directory of the category tree.
	Namespace = "Neptun.al"
	// ItemsPerPage is the largest page size the listing accepts.
	ItemsPerPage = 100
)

// Catalog reads the neptun.al mega menu into categories, subcategories
// and listing leaves.
type Catalog struct {
	// BaseUrl defaults to the package BaseUrl.
	BaseUrl string
}

func (c Catalog) base() string {
	if c.BaseUrl == "" {
		return BaseUrl
	}
	return strings.TrimSuffix(c.BaseUrl, "/")
}

func (c Catalog) Entry() (string, string) {
	return c.base() + "/", "#neptunMain"
}

func (c Catalog) Categories(ctx context.Context, page crawl.Page) ([]crawl.Category, error) {
	doc, err := page.Document()
	if err != nil {
		return nil, err
	}
	menu := doc.Find("li#neptunMain")
	if menu.Length() == 0 {
		return nil, fmt.Errorf("%w: no category menu on %s", crawl.ErrExtractionGap, page.Address)
	}

	var categories []crawl.Category
	menu.Find("li[data-tag]").Each(func(_ int, item *goquery.Selection) {
		name := textutil.TitleCase(htmlutil.FindText(item, "a"))
		if name == "" {
			return
		}
		category := crawl.Category{Name: textutil.StripIllegal(name)}

		item.Find("ul.dropdown-menu").First().Find("ul.dropdown-menu").Each(func(_ int, group *goquery.Selection) {
			sub := crawl.Subcategory{
				Name: textutil.StripIllegal(textutil.TitleCase(htmlutil.Text(group.PrevFiltered("a")))),
			}
			if sub.Name == "" {
				sub.Name = textutil.StripIllegal(textutil.TitleCase(htmlutil.Text(group.Parent().ChildrenFiltered("a"))))
			}
			if sub.Name == "" {
				slog.DebugContext(ctx, "subcategory without a name", "category", category.Name)
				return
			}

			for _, anchor := range htmlutil.GetAnchors(ctx, nil, group.Find("a")) {
				leafName := strings.ReplaceAll(textutil.TitleCase(anchor.Name), "/", "")
				leafName = textutil.StripIllegal(leafName)
				if leafName == "" {
					continue
				}
				sub.Leaves = append(sub.Leaves, crawl.Leaf{Name: leafName, Address: anchor.Href})
			}
			category.Subcategories = append(category.Subcategories, sub)
		})

		categories = append(categories, category)
	})
	return categories, nil
}

// PageAddress appends the paging query to a leaf link, links in the menu
// are site-relative.
func (c Catalog) PageAddress(leaf crawl.Leaf, n int) string {
	address := leaf.Address
	if strings.HasPrefix(address, "/") {
		address = c.base() + address
	}
	return fmt.Sprintf("%s?items=%d&page=%d", address, ItemsPerPage, n)
}

func (c Catalog) CountSelector() string {
	return "#affix2 ul li"
}

// PageCount reads the pager, whose first and last entries are the
// previous and next arrows.
func (c Catalog) PageCount(page crawl.Page) int {
	doc, err := page.Document()
	if err != nil {
		return 1
	}
	var numbers []string
	doc.Find(c.CountSelector()).Each(func(_ int, li *goquery.Selection) {
		numbers = append(numbers, htmlutil.Text(li))
	})
	if len(numbers) < 3 {
		return 1
	}
	numbers = numbers[1 : len(numbers)-1]
	if len(numbers) == 1 {
		return 1
	}
	count, err := strconv.Atoi(numbers[len(numbers)-1])
	if err != nil || count < 1 {
		return 1
	}
	return count
}

func (c Catalog) ItemSelector() string {
	return ".product-list-item__content--title"
}

func (c Catalog) Extractor() crawl.Extractor {
	return Extractor{}
}

type Extractor struct{}

func (Extractor) Header() []string {
	return sites.PriceHeader
}

// Extract reads the product grid. A product without a Happy Card price
// gets "N/A" as its current price, one without a regular price is skipped.
func (Extractor) Extract(ctx context.Context, page crawl.Page) ([]crawl.Record, error) {
	doc, err := page.Document()
	if err != nil {
		return nil, err
	}

	var records []crawl.Record
	doc.Find("div.product-list-item-grid").Each(func(_ int, item *goquery.Selection) {
		box := item.Find("div.white-box").First()
		if box.Length() == 0 {
			box = item
		}
		title := htmlutil.FindText(box, "h2.product-list-item__content--title")
		prices := box.Find("div.product-list-item__prices").First()

		current := htmlutil.FindText(prices.Find("div.HappyCard"), "span.product-price__amount--value")
		if current == "" {
			current = "N/A"
		}
		old := htmlutil.FindText(prices.Find("div.newPriceModel"), "span.product-price__amount--value")

		record, ok := sites.PriceRecord(title, current, old)
		if !ok {
			slog.DebugContext(ctx, "skipping incomplete product", "address", page.Address, "title", title)
			return
		}
		records = append(records, record)
	})
	return records, nil
}

type Timeouts struct {
	Entry time.Duration
	Count time.Duration
	Page  time.Duration
}

// NewWalker walks the whole catalog into <Namespace>/<category>/<subcategory>.
func NewWalker(fetcher crawl.RenderedFetcher, sink crawl.Sink, timeouts Timeouts, maxPages int) crawl.Walker {
	return crawl.Walker{
		Fetcher:      fetcher,
		Catalog:      Catalog{},
		Sink:         sink,
		Namespace:    Namespace,
		EntryTimeout: timeouts.Entry,
		CountTimeout: timeouts.Count,
		PageTimeout:  timeouts.Page,
		MaxPages:     maxPages,
	}
}
