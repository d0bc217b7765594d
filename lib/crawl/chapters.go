package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Chapter is one unit of serialized text.
type Chapter struct {
	Title      string
	Paragraphs []string
}

type ChapterLinker interface {
	// ChapterLinks returns the absolute addresses of the chapters listed
	// on a chapter-list page, in reading order.
	ChapterLinks(ctx context.Context, page Page) []string
}

type ChapterReader interface {
	// ReadChapter extracts a chapter, ok is false if the page has no
	// usable title.
	ReadChapter(ctx context.Context, page Page) (chapter Chapter, ok bool)
}

type ChapterSink interface {
	// WriteChapter saves one chapter. A chapter that cannot be named is
	// reported with ErrExtractionGap and skipped by the crawler.
	WriteChapter(ctx context.Context, collection string, chapter Chapter) error
}

// ChapterCrawler walks a paginated chapter list and saves every chapter
// it links to as its own file inside Collection.
type ChapterCrawler struct {
	// ListFetcher fetches chapter-list pages, defaults to Fetcher.
	ListFetcher Fetcher
	Fetcher     Fetcher
	Links       ChapterLinker
	Reader      ChapterReader
	Navigator   Navigator
	Sink        ChapterSink
	Collection  string
	// MaxPages caps the number of chapter-list pages, defaults to
	// DefaultMaxPages.
	MaxPages int
}

type chapterState struct {
	address string
	seen    *Deduplicator
	stats   Stats
}

func (c ChapterCrawler) Run(ctx context.Context, entry string) (Stats, error) {
	ctx, span := tracer.Start(ctx, "ChapterCrawler.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("entry", entry),
		attribute.String("collection", c.Collection),
	)

	limit := c.MaxPages
	if limit <= 0 {
		limit = DefaultMaxPages
	}

	state := chapterState{address: entry, seen: NewDeduplicator()}
	for state.address != "" {
		if state.stats.Pages >= limit {
			err := fmt.Errorf("%w: stopped after %d chapter-list pages before %s", ErrPageLimit, limit, state.address)
			span.RecordError(err)
			span.SetStatus(codes.Error, "page limit reached")
			return state.stats, err
		}
		if err := ctx.Err(); err != nil {
			return state.stats, err
		}

		next, err := c.step(ctx, state)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return next.stats, err
		}
		state = next
	}

	slog.InfoContext(
		ctx, "chapters saved",
		"collection", c.Collection,
		"list_pages", state.stats.Pages,
		"chapters", state.stats.Records,
		"links", state.seen.Len(),
		"skipped", state.stats.Skipped,
	)
	return state.stats, nil
}

func (c ChapterCrawler) step(ctx context.Context, state chapterState) (chapterState, error) {
	listFetcher := c.ListFetcher
	if listFetcher == nil {
		listFetcher = c.Fetcher
	}
	list, err := listFetcher.Fetch(ctx, state.address)
	if err != nil {
		return state, err
	}
	state.stats.Pages++

	for _, link := range c.Links.ChapterLinks(ctx, list) {
		if !state.seen.IsNew(Record{link}) {
			state.stats.Duplicates++
			continue
		}
		if err := ctx.Err(); err != nil {
			return state, err
		}

		page, err := c.Fetcher.Fetch(ctx, link)
		if err != nil {
			return state, err
		}
		chapter, ok := c.Reader.ReadChapter(ctx, page)
		if !ok {
			slog.WarnContext(ctx, "chapter has no title, skipping", "address", link)
			state.stats.Skipped++
			continue
		}
		err = c.Sink.WriteChapter(ctx, c.Collection, chapter)
		if errors.Is(err, ErrExtractionGap) {
			slog.WarnContext(ctx, "chapter cannot be saved, skipping", "address", link, "title", chapter.Title, "err", err)
			state.stats.Skipped++
			continue
		}
		if err != nil {
			return state, fmt.Errorf("write chapter %q: %w", chapter.Title, err)
		}
		state.stats.Records++
		slog.DebugContext(ctx, "chapter saved", "title", chapter.Title, "paragraphs", len(chapter.Paragraphs))
	}

	next, ok := c.Navigator.Next(ctx, list)
	if !ok {
		next = ""
	}
	state.address = next
	return state, nil
}
