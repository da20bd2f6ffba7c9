package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patrickwarner/adinventory/internal/models"
	"github.com/patrickwarner/adinventory/internal/observability"
)

// UpdatePredictionData recomputes the per-site minimum daily pageview counts
// and writes them to the metrics cache, replacing the previous mapping
// entirely. It is meant to run periodically (e.g. daily from cron); the
// scheduler must not run it concurrently with itself, last write wins.
func (e *Estimator) UpdatePredictionData(ctx context.Context) error {
	runID := uuid.NewString()
	start := time.Now()

	minDaily, err := e.minDailyPageviewsBySite(ctx, e.windowDays(), time.Time{})
	if err != nil {
		observability.AggregationErrors.Inc()
		return fmt.Errorf("aggregate min daily pageviews: %w", err)
	}

	if err := e.Cache.Set(ctx, MinDailyCacheKey, minDaily); err != nil {
		observability.AggregationErrors.Inc()
		return fmt.Errorf("write prediction cache: %w", err)
	}

	observability.AggregationRuns.Inc()
	observability.AggregationDuration.Observe(time.Since(start).Seconds())
	observability.AggregatedSites.Set(float64(len(minDaily)))

	e.Logger.Info("updated prediction data",
		zap.String("run_id", runID),
		zap.Int("sites", len(minDaily)),
		zap.Int("window_days", e.windowDays()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// minDailyPageviewsBySite returns sr-name -> minimum daily listing pageviews
// over the trailing window ending at end. A zero end defaults to the traffic
// data's last-modified day minus one, so partial days never enter the
// minimum. Sites with no qualifying rows in the window are absent from the
// result; downstream readers treat absence as zero.
func (e *Estimator) minDailyPageviewsBySite(ctx context.Context, windowDays int, end time.Time) (map[string]int64, error) {
	if end.IsZero() {
		lastModified, err := e.Traffic.LastModified(ctx)
		if err != nil {
			return nil, fmt.Errorf("traffic last modified: %w", err)
		}
		end = lastModified.AddDate(0, 0, -1)
	}
	stop := models.ToDate(end)
	start := stop.AddDate(0, 0, -windowDays)

	byPath, err := e.Traffic.MinPageviewsByPath(ctx, models.TrafficIntervalDay, start, stop, models.ListingPathSuffix)
	if err != nil {
		return nil, fmt.Errorf("min pageviews by path: %w", err)
	}

	minDaily := make(map[string]int64, len(byPath))
	for path, count := range byPath {
		site, ok := models.SiteFromListingPath(path)
		if !ok {
			// not a listing view, no ad slots to count
			continue
		}
		minDaily[site] = count
	}
	return minDaily, nil
}
