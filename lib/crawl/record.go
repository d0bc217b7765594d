package crawl

import (
	"context"
	"strconv"
	"strings"
)

// Record is an ordered tuple of field values, positions line up with
// the header of the extractor that produced it.
type Record []string

// key encodes every field so that no two distinct tuples share a key.
func (r Record) key() string {
	var sb strings.Builder
	for i, field := range r {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Quote(field))
	}
	return sb.String()
}

// Extractor maps one page to records. Implementations skip candidates
// with missing required fields instead of failing, an error means the
// page could not be read at all.
type Extractor interface {
	Header() []string
	Extract(ctx context.Context, page Page) ([]Record, error)
}

// Sink persists records incrementally. A destination that does not exist
// yet is created with the header first, an existing one is appended to.
type Sink interface {
	Append(ctx context.Context, destination string, header []string, records []Record) error
}

// Namespacer is implemented by sinks that can materialize an empty
// namespace (directory) ahead of the first write.
type Namespacer interface {
	Namespace(ctx context.Context, namespace string) error
}

// Stats summarizes a run.
type Stats struct {
	Pages      int
	Records    int
	Duplicates int
	Skipped    int
}

func (s *Stats) Add(other Stats) {
	s.Pages += other.Pages
	s.Records += other.Records
	s.Duplicates += other.Duplicates
	s.Skipped += other.Skipped
}
