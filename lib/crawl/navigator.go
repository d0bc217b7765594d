package crawl

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type Navigator interface {
	// Next returns the address of the page after this one, ok is false
	// when there is none.
	Next(ctx context.Context, page Page) (address string, ok bool)
}

// PaginationNavigator follows numbered pagination controls. It reads the
// current page number N from the region and picks the first link whose
// href contains N+1. If nothing matches the crawl is considered done
// rather than guessing.
type PaginationNavigator struct {
	// Region selects the pagination control.
	Region string
	// Links selects candidate links inside Region.
	Links string
	// Current selects the element holding the current page number inside
	// Region, defaults to "span".
	Current string
}

func (n PaginationNavigator) Next(ctx context.Context, page Page) (string, bool) {
	ctx, span := tracer.Start(ctx, "PaginationNavigator.Next")
	defer span.End()

	doc, err := page.Document()
	if err != nil {
		slog.WarnContext(ctx, "failed to parse page for pagination", "address", page.Address, "err", err)
		return "", false
	}

	region := doc.Find(n.Region).First()
	if region.Length() == 0 {
		slog.DebugContext(ctx, "no pagination region", "address", page.Address)
		return "", false
	}

	current := n.Current
	if current == "" {
		current = "span"
	}
	text := strings.TrimSpace(region.Find(current).First().Text())
	num, err := strconv.Atoi(text)
	if err != nil {
		slog.DebugContext(ctx, "current page number unreadable", "address", page.Address, "text", text)
		return "", false
	}
	target := strconv.Itoa(num + 1)

	var next string
	region.Find(n.Links).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, ok := link.Attr("href")
		if ok && strings.Contains(href, target) {
			next = href
			return false
		}
		return true
	})
	if next == "" {
		slog.DebugContext(ctx, "no link to next page", "address", page.Address, "target", target)
		return "", false
	}
	return page.Resolve(next), true
}

// MarkerNavigator follows the first link matching Selector, such as a
// "skip to next" control. A link back to the current page ends the crawl.
type MarkerNavigator struct {
	Selector string
}

func (n MarkerNavigator) Next(ctx context.Context, page Page) (string, bool) {
	doc, err := page.Document()
	if err != nil {
		slog.WarnContext(ctx, "failed to parse page for pagination", "address", page.Address, "err", err)
		return "", false
	}
	href, ok := doc.Find(n.Selector).First().Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return "", false
	}
	next := page.Resolve(href)
	if next == page.Address || strings.HasPrefix(href, "#") {
		slog.DebugContext(ctx, "next link points back at the current page", "address", page.Address)
		return "", false
	}
	return next, true
}
