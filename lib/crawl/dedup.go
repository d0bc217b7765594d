package crawl

// Deduplicator remembers every record seen during one run. The zero value
// is ready to use.
type Deduplicator struct {
	seen map[string]struct{}
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: map[string]struct{}{}}
}

// IsNew reports whether the record has not been seen before and registers
// it if so.
func (d *Deduplicator) IsNew(record Record) bool {
	if d.seen == nil {
		d.seen = map[string]struct{}{}
	}
	key := record.key()
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Filter returns the records that are new, in their original order, and
// the number that were dropped.
func (d *Deduplicator) Filter(records []Record) ([]Record, int) {
	fresh := make([]Record, 0, len(records))
	for _, r := range records {
		if d.IsNew(r) {
			fresh = append(fresh, r)
		}
	}
	return fresh, len(records) - len(fresh)
}

func (d *Deduplicator) Len() int {
	return len(d.seen)
}
