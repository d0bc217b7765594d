package timezone

import (
	"time"
	_ "time/tzdata"
)

// Default is the zone of the crawled shops.
const Default = "Europe/Tirane"

// Load returns the location called name, an empty name means Default.
func Load(name string) (*time.Location, error) {
	if name == "" {
		name = Default
	}
	return time.LoadLocation(name)
}

// Format renders t in loc, a zero time renders as "".
func Format(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(time.DateTime)
}
