package crawl

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sitecrawl/crawl")

const DefaultMaxPages = 1000

// Driver runs a flat crawl: fetch, extract, dedup, append, navigate until
// the navigator runs out of pages.
type Driver struct {
	Fetcher     Fetcher
	Extractor   Extractor
	Navigator   Navigator
	Sink        Sink
	Destination string
	// MaxPages caps the number of pages fetched in one run, defaults to
	// DefaultMaxPages.
	MaxPages int
}

// driverState is everything that changes between iterations, an empty
// address means the run is done.
type driverState struct {
	address string
	seen    *Deduplicator
	stats   Stats
}

func (s driverState) done() bool {
	return s.address == ""
}

func (d Driver) Run(ctx context.Context, entry string) (Stats, error) {
	ctx, span := tracer.Start(ctx, "Driver.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("entry", entry),
		attribute.String("destination", d.Destination),
	)

	limit := d.MaxPages
	if limit <= 0 {
		limit = DefaultMaxPages
	}

	state := driverState{address: entry, seen: NewDeduplicator()}
	for !state.done() {
		if state.stats.Pages >= limit {
			err := fmt.Errorf("%w: stopped after %d pages before %s", ErrPageLimit, limit, state.address)
			span.RecordError(err)
			span.SetStatus(codes.Error, "page limit reached")
			return state.stats, err
		}
		if err := ctx.Err(); err != nil {
			return state.stats, err
		}

		next, err := d.step(ctx, state)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return next.stats, err
		}
		state = next
	}

	slog.InfoContext(
		ctx, "crawl finished",
		"destination", d.Destination,
		"pages", state.stats.Pages,
		"records", state.stats.Records,
		"duplicates", state.stats.Duplicates,
		"unique", state.seen.Len(),
	)
	return state.stats, nil
}

func (d Driver) step(ctx context.Context, state driverState) (driverState, error) {
	page, err := d.Fetcher.Fetch(ctx, state.address)
	if err != nil {
		return state, err
	}
	state.stats.Pages++

	records, err := d.Extractor.Extract(ctx, page)
	if err != nil {
		slog.WarnContext(ctx, "failed to extract page", "address", page.Address, "err", err)
		state.stats.Skipped++
		records = nil
	}

	fresh, dropped := state.seen.Filter(records)
	state.stats.Duplicates += dropped
	if len(fresh) > 0 {
		err = d.Sink.Append(ctx, d.Destination, d.Extractor.Header(), fresh)
		if err != nil {
			return state, fmt.Errorf("append to %s: %w", d.Destination, err)
		}
		state.stats.Records += len(fresh)
	}
	slog.DebugContext(
		ctx, "page processed",
		"address", page.Address,
		"status", page.Status,
		"records", len(fresh),
		"duplicates", dropped,
	)

	next, ok := d.Navigator.Next(ctx, page)
	if !ok {
		next = ""
	}
	state.address = next
	return state, nil
}
