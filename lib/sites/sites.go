// Package sites holds what the price scrapers have in common, each site
// lives in its own subpackage.
package sites

import "sitecrawl/lib/crawl"

// PriceHeader is the column layout of every price listing: name, current
// price and the price before the discount.
var PriceHeader = []string{"Emri", "Cmimi aktual", "Cmimi i vjeter"}

// PriceRecord builds a listing record, ok is false if any field is empty.
func PriceRecord(name, current, old string) (crawl.Record, bool) {
	if name == "" || current == "" || old == "" {
		return nil, false
	}
	return crawl.Record{name, current, old}, true
}
