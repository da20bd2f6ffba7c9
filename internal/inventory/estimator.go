// Package inventory estimates ad inventory for sites: predicted pageviews,
// pageviews already sold to campaigns, and what remains available over a
// date range. The "prediction" is deliberately simple: the minimum observed
// daily pageview count over a trailing window, cached between aggregation
// runs. Real forecasting is out of scope.
package inventory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/adinventory/internal/models"
)

const (
	// MinDailyCacheKey is the metrics-cache key holding the per-site
	// minimum daily listing pageview counts.
	MinDailyCacheKey = "min_daily_pageviews.GET_listing"

	// DefaultWindowDays is how much traffic history the aggregator uses.
	DefaultWindowDays = 14

	// DefaultInventoryFactor scales cached minimums when projecting
	// predicted pageviews. Reserved for headroom/derating policy.
	DefaultInventoryFactor = 1.0
)

// MetricsCache is a small key-value store holding numeric per-site mappings.
// It is assumed eventually consistent: readers may observe the previous
// aggregation's value shortly after a write.
type MetricsCache interface {
	// Get returns the cached values for the requested fields under key.
	// Absent fields are simply missing from the result, not an error.
	Get(ctx context.Context, key string, fields []string) (map[string]int64, error)
	// Set overwrites the mapping stored under key wholesale.
	Set(ctx context.Context, key string, values map[string]int64) error
}

// TrafficStore reads the time-series traffic table.
type TrafficStore interface {
	// MinPageviewsByPath returns, for every path with the given suffix and
	// at least one row in [start, end] at the given interval, the minimum
	// pageview count across those rows.
	MinPageviewsByPath(ctx context.Context, interval string, start, end time.Time, pathSuffix string) (map[string]int64, error)
	// LastModified reports the freshness of the traffic data.
	LastModified(ctx context.Context) (time.Time, error)
}

// CampaignStore reads campaigns, bids, and the promotion-weight calendar.
type CampaignStore interface {
	// PromotionWeights returns the calendar rows for the given site lookup
	// keys whose date falls in [start, end). ignoreCampaignID excludes rows
	// for one campaign; zero means no exclusion.
	PromotionWeights(ctx context.Context, siteKeys []string, start, end time.Time, ignoreCampaignID int64) ([]models.PromotionWeight, error)
	// CampaignsByID bulk-loads campaign records.
	CampaignsByID(ctx context.Context, ids []int64) ([]models.Campaign, error)
	// BidsByTransactionID bulk-loads bid records by transaction id.
	BidsByTransactionID(ctx context.Context, ids []int64) ([]models.Bid, error)
}

// Estimator wires the three stores together. All methods are synchronous
// read queries followed by in-memory arithmetic; there is no internal
// concurrency and store errors propagate unretried.
type Estimator struct {
	Traffic   TrafficStore
	Cache     MetricsCache
	Campaigns CampaignStore
	Logger    *zap.Logger

	// WindowDays and InventoryFactor default to DefaultWindowDays and
	// DefaultInventoryFactor when left zero.
	WindowDays      int
	InventoryFactor float64
}

// NewEstimator creates an Estimator with default window and factor.
func NewEstimator(traffic TrafficStore, cache MetricsCache, campaigns CampaignStore, logger *zap.Logger) *Estimator {
	return &Estimator{
		Traffic:         traffic,
		Cache:           cache,
		Campaigns:       campaigns,
		Logger:          logger,
		WindowDays:      DefaultWindowDays,
		InventoryFactor: DefaultInventoryFactor,
	}
}

func (e *Estimator) windowDays() int {
	if e.WindowDays > 0 {
		return e.WindowDays
	}
	return DefaultWindowDays
}

func (e *Estimator) inventoryFactor() float64 {
	if e.InventoryFactor > 0 {
		return e.InventoryFactor
	}
	return DefaultInventoryFactor
}
