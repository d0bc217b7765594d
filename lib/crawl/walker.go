package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Leaf struct {
	Name    string
	Address string
}

type Subcategory struct {
	Name   string
	Leaves []Leaf
}

type Category struct {
	Name          string
	Subcategories []Subcategory
}

// Catalog describes a site that nests paginated listings under
// categories and subcategories.
type Catalog interface {
	// Entry returns the page the category tree is read from and the
	// selector that marks it as rendered.
	Entry() (address string, selector string)
	Categories(ctx context.Context, page Page) ([]Category, error)

	// PageAddress returns the address of page n (1-based) of a leaf.
	PageAddress(leaf Leaf, n int) string
	// CountSelector marks the rendered pagination summary of a leaf.
	CountSelector() string
	// PageCount reads the number of pages from a rendered leaf page.
	PageCount(page Page) int
	// ItemSelector marks a rendered listing page.
	ItemSelector() string

	Extractor() Extractor
}

const (
	DefaultEntryTimeout = 10 * time.Second
	DefaultCountTimeout = 10 * time.Second
	DefaultPageTimeout  = 20 * time.Second
)

// Walker performs a depth-first walk over a Catalog, writing each leaf to
// <namespace>/<category>/<subcategory>/<leaf><extension>.
//
// A page that fails to render or extract is logged and skipped, so one
// bad page never stops the walk. Only fetch errors, sink errors and
// cancellation end it early.
type Walker struct {
	Fetcher   RenderedFetcher
	Catalog   Catalog
	Sink      Sink
	Namespace string
	// Extension defaults to ".csv".
	Extension string

	EntryTimeout time.Duration
	CountTimeout time.Duration
	PageTimeout  time.Duration

	// MaxPages caps the pages walked per leaf, defaults to DefaultMaxPages.
	MaxPages int
	// Filter, if set, limits the walk to categories it accepts.
	Filter func(category string) bool
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}

func (w Walker) Walk(ctx context.Context) (Stats, error) {
	ctx, span := tracer.Start(ctx, "Walker.Walk")
	defer span.End()

	var stats Stats
	address, selector := w.Catalog.Entry()
	entry, err := w.Fetcher.FetchRendered(ctx, address, selector, orDefault(w.EntryTimeout, DefaultEntryTimeout))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to render catalog entry")
		return stats, fmt.Errorf("render catalog entry: %w", err)
	}
	categories, err := w.Catalog.Categories(ctx, entry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read categories")
		return stats, fmt.Errorf("read categories: %w", err)
	}

	for _, category := range categories {
		if w.Filter != nil && !w.Filter(category.Name) {
			slog.DebugContext(ctx, "category filtered out", "category", category.Name)
			continue
		}
		categoryStats, err := w.walkCategory(ctx, category)
		stats.Add(categoryStats)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return stats, err
		}
	}
	return stats, nil
}

func (w Walker) namespace(ctx context.Context, ns string) error {
	namespacer, ok := w.Sink.(Namespacer)
	if !ok {
		return nil
	}
	return namespacer.Namespace(ctx, ns)
}

func (w Walker) walkCategory(ctx context.Context, category Category) (Stats, error) {
	ctx, span := tracer.Start(ctx, "Walker.walkCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category", category.Name))

	var stats Stats
	categoryNs := path.Join(w.Namespace, category.Name)
	err := w.namespace(ctx, categoryNs)
	if err != nil {
		return stats, err
	}

	for _, sub := range category.Subcategories {
		subNs := path.Join(categoryNs, sub.Name)
		err := w.namespace(ctx, subNs)
		if err != nil {
			return stats, err
		}
		for _, leaf := range sub.Leaves {
			leafStats, err := w.walkLeaf(ctx, subNs, leaf)
			stats.Add(leafStats)
			if err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

func (w Walker) pageCount(ctx context.Context, leaf Leaf) (int, error) {
	page, err := w.Fetcher.FetchRendered(
		ctx,
		w.Catalog.PageAddress(leaf, 1),
		w.Catalog.CountSelector(),
		orDefault(w.CountTimeout, DefaultCountTimeout),
	)
	if errors.Is(err, ErrRenderTimeout) {
		slog.WarnContext(ctx, "pagination did not render, assuming one page", "leaf", leaf.Name, "err", err)
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	count := w.Catalog.PageCount(page)
	if count < 1 {
		count = 1
	}
	limit := w.MaxPages
	if limit <= 0 {
		limit = DefaultMaxPages
	}
	if count > limit {
		slog.WarnContext(ctx, "page count exceeds limit", "leaf", leaf.Name, "count", count, "limit", limit)
		count = limit
	}
	return count, nil
}

func (w Walker) walkLeaf(ctx context.Context, ns string, leaf Leaf) (Stats, error) {
	ctx, span := tracer.Start(ctx, "Walker.walkLeaf")
	defer span.End()
	span.SetAttributes(attribute.String("leaf", leaf.Name))

	var stats Stats
	ext := w.Extension
	if ext == "" {
		ext = ".csv"
	}
	destination := path.Join(ns, leaf.Name+ext)
	extractor := w.Catalog.Extractor()
	seen := NewDeduplicator()

	count, err := w.pageCount(ctx, leaf)
	if err != nil {
		return stats, err
	}
	slog.InfoContext(ctx, "walking leaf", "leaf", leaf.Name, "pages", count, "destination", destination)

	for n := 1; n <= count; n++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		address := w.Catalog.PageAddress(leaf, n)
		page, err := w.Fetcher.FetchRendered(
			ctx, address,
			w.Catalog.ItemSelector(),
			orDefault(w.PageTimeout, DefaultPageTimeout),
		)
		if errors.Is(err, ErrRenderTimeout) {
			slog.WarnContext(ctx, "page did not render, skipping", "address", address, "page", n, "err", err)
			stats.Skipped++
			continue
		}
		if err != nil {
			return stats, err
		}

		stats.Pages++

		records, err := extractor.Extract(ctx, page)
		if err != nil {
			slog.WarnContext(ctx, "failed to extract page, skipping", "address", address, "page", n, "err", err)
			stats.Skipped++
			continue
		}

		fresh, dropped := seen.Filter(records)
		stats.Duplicates += dropped
		if len(fresh) == 0 {
			continue
		}
		err = w.Sink.Append(ctx, destination, extractor.Header(), fresh)
		if err != nil {
			return stats, fmt.Errorf("append to %s: %w", destination, err)
		}
		stats.Records += len(fresh)
	}
	return stats, nil
}
