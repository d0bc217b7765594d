package csvsink

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"sitecrawl/lib/crawl"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sitecrawl/csvsink")

// Sink appends records to CSV files under a root directory. A file is
// created with its header on the first write and only ever appended to
// afterwards, so rows accumulate across runs.
type Sink struct {
	root string
}

func New(root string) Sink {
	return Sink{root: root}
}

func (s Sink) Path(destination string) string {
	return filepath.Join(s.root, filepath.FromSlash(destination))
}

func (s Sink) Namespace(ctx context.Context, namespace string) error {
	return os.MkdirAll(s.Path(namespace), 0777)
}

func (s Sink) Append(ctx context.Context, destination string, header []string, records []crawl.Record) error {
	if len(records) == 0 {
		return nil
	}

	_, span := tracer.Start(ctx, "Append")
	defer span.End()
	span.SetAttributes(
		attribute.String("destination", destination),
		attribute.Int("records", len(records)),
	)

	err := s.appendFile(s.Path(destination), header, records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to append records")
		return err
	}
	return nil
}

func (s Sink) appendFile(path string, header []string, records []crawl.Record) error {
	err := os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return err
	}

	// an empty file is treated like a missing one so it still gets a header
	info, statErr := os.Stat(path)
	if statErr != nil && !os.IsNotExist(statErr) {
		return statErr
	}
	isNew := os.IsNotExist(statErr) || info.Size() == 0

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew && len(header) > 0 {
		err = w.Write(header)
		if err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, r := range records {
		err = w.Write(r)
		if err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
