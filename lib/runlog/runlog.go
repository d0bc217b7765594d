package runlog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"
	"strings"
	"time"

	"sitecrawl/lib/crawl"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

var tracer = otel.Tracer("sitecrawl/runlog")

//go:embed schema.sql
var Schema string

// Open opens the ledger at dsn and makes sure its schema exists. Remote
// databases (libsql:// or https://) go through libsql, anything else is a
// local sqlite file.
func Open(ctx context.Context, dsn, authToken string) (Ledger, error) {
	var db *sql.DB
	var err error
	if isRemote(dsn) {
		if authToken != "" {
			dsn = withAuthToken(dsn, authToken)
		}
		db, err = sql.Open("libsql", dsn)
	} else {
		db, err = sql.Open("sqlite", dsn)
		if err == nil {
			db.SetMaxOpenConns(1)
		}
	}
	if err != nil {
		return Ledger{}, err
	}

	_, err = db.ExecContext(ctx, Schema)
	if err != nil {
		db.Close()
		return Ledger{}, fmt.Errorf("create ledger schema: %w", err)
	}
	return Ledger{db: db}, nil
}

func isRemote(dsn string) bool {
	return strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "https://")
}

func withAuthToken(dsn, token string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return dsn
	}
	q := u.Query()
	q.Set("authToken", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// Ledger records every crawl run with its outcome.
type Ledger struct {
	db *sql.DB
}

func (l Ledger) Close() error {
	return l.db.Close()
}

type Run struct {
	Id       string
	Site     string
	Target   string
	Started  time.Time
	Finished time.Time
	Stats    crawl.Stats
	Error    string
}

// Done reports whether the run has been finished.
func (r Run) Done() bool {
	return !r.Finished.IsZero()
}

// Start records the beginning of a run and returns its id.
func (l Ledger) Start(ctx context.Context, site, target string) (string, error) {
	ctx, span := tracer.Start(ctx, "Start")
	defer span.End()
	span.SetAttributes(attribute.String("site", site), attribute.String("target", target))

	id, err := random.String(8)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate run id")
		return "", err
	}
	_, err = l.db.ExecContext(
		ctx,
		"insert into runs(id, site, target, started_at) values (?, ?, ?, ?)",
		id, site, target, time.Now().Unix(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to insert run")
		return "", err
	}
	return id, nil
}

// Finish stores the stats and error (if any) of a run.
func (l Ledger) Finish(ctx context.Context, id string, stats crawl.Stats, runErr error) error {
	ctx, span := tracer.Start(ctx, "Finish")
	defer span.End()
	span.SetAttributes(attribute.String("id", id))

	var errText sql.NullString
	if runErr != nil {
		errText = sql.NullString{String: runErr.Error(), Valid: true}
	}
	res, err := l.db.ExecContext(
		ctx,
		`update runs set finished_at = ?, pages = ?, records = ?, duplicates = ?, skipped = ?, error = ?
		where id = ?`,
		time.Now().Unix(),
		stats.Pages, stats.Records, stats.Duplicates, stats.Skipped,
		errText, id,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update run")
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		err = fmt.Errorf("unknown run %q", id)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// List returns the most recent runs first, at most limit of them.
func (l Ledger) List(ctx context.Context, limit int) ([]Run, error) {
	ctx, span := tracer.Start(ctx, "List")
	defer span.End()

	rows, err := l.db.QueryContext(
		ctx,
		`select id, site, target, started_at, finished_at, pages, records, duplicates, skipped, error
		from runs order by started_at desc, rowid desc limit ?`,
		limit,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query runs")
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started int64
		var finished sql.NullInt64
		var errText sql.NullString
		err := rows.Scan(
			&run.Id, &run.Site, &run.Target,
			&started, &finished,
			&run.Stats.Pages, &run.Stats.Records, &run.Stats.Duplicates, &run.Stats.Skipped,
			&errText,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to scan run")
			return nil, err
		}
		run.Started = time.Unix(started, 0)
		if finished.Valid {
			run.Finished = time.Unix(finished.Int64, 0)
		}
		run.Error = errText.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
