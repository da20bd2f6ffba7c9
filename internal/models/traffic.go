package models

import (
	"strings"
	"time"
)

// ListingPathSuffix marks traffic rows that count listing-page views, the
// only page type that carries ad slots. Traffic paths look like
// "gadgets-GET_listing"; the site name is everything before the suffix.
const ListingPathSuffix = "-GET_listing"

// TrafficIntervalDay is the granularity label for daily traffic rows.
const TrafficIntervalDay = "day"

// PageviewRow is one day of pageview counts for one traffic path.
type PageviewRow struct {
	Path      string    `json:"path"`
	Interval  string    `json:"interval"`
	Date      time.Time `json:"date"`
	Pageviews int64     `json:"pageviews"`
}

// SiteFromListingPath extracts the site name from a listing traffic path.
// Paths without the listing suffix are not listing views and report ok=false;
// callers skip them rather than treating them as errors.
func SiteFromListingPath(path string) (site string, ok bool) {
	if !strings.HasSuffix(path, ListingPathSuffix) {
		return "", false
	}
	return strings.TrimSuffix(path, ListingPathSuffix), true
}
