package textsink

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"sitecrawl/lib/crawl"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sitecrawl/textsink")

// Sink writes each chapter to <root>/<collection>/<filename>.txt where the
// filename is derived from the chapter title.
type Sink struct {
	Root string
	// Filename turns a chapter title into a file name without extension.
	Filename func(title string) string
	// OmitTitle leaves the title out of the file body.
	OmitTitle bool
}

// Render formats a chapter as its title followed by every paragraph, each
// followed by a blank line.
func Render(chapter crawl.Chapter, withTitle bool) []byte {
	var buf bytes.Buffer
	if withTitle {
		buf.WriteString(chapter.Title)
		buf.WriteString("\n\n")
	}
	for _, p := range chapter.Paragraphs {
		buf.WriteString(p)
		buf.WriteString("\n\n")
	}
	return buf.Bytes()
}

func (s Sink) WriteChapter(ctx context.Context, collection string, chapter crawl.Chapter) error {
	_, span := tracer.Start(ctx, "WriteChapter")
	defer span.End()
	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.String("title", chapter.Title),
	)

	name := chapter.Title
	if s.Filename != nil {
		name = s.Filename(chapter.Title)
	}
	if name == "" {
		err := fmt.Errorf("%w: chapter %q has no usable file name", crawl.ErrExtractionGap, chapter.Title)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	dir := filepath.Join(s.Root, collection)
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create collection directory")
		return err
	}
	err = os.WriteFile(filepath.Join(dir, name+".txt"), Render(chapter, !s.OmitTitle), 0666)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write chapter")
		return err
	}
	return nil
}
