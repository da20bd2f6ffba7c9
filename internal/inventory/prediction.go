package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickwarner/adinventory/internal/models"
)

// PredictedByDate returns the raw cached minimum daily pageviews for one
// site, expanded across [start, end). A zero end means a single day (the
// start date). No inventory factor is applied; this is the unscaled cache
// read used by traffic reporting.
func (e *Estimator) PredictedByDate(ctx context.Context, site models.Site, start, end time.Time) (map[time.Time]int64, error) {
	minDaily, err := e.readMinDaily(ctx, []string{site.Name})
	if err != nil {
		return nil, err
	}

	if end.IsZero() {
		end = start.AddDate(0, 0, 1)
	}
	predicted := make(map[time.Time]int64)
	for _, date := range models.DateRange(start, end) {
		predicted[date] = minDaily[site.Name]
	}
	return predicted, nil
}

// PredictedPageviews returns the predicted pageviews per day for one site
// over [start, end): the cached minimum scaled by the inventory factor and
// truncated to an integer, flat across every day.
func (e *Estimator) PredictedPageviews(ctx context.Context, site models.Site, start, end time.Time) (map[time.Time]int64, error) {
	bySite, err := e.PredictedPageviewsBySite(ctx, []models.Site{site}, start, end)
	if err != nil {
		return nil, err
	}
	return bySite[site.Name], nil
}

// PredictedPageviewsBySite is the bulk form of PredictedPageviews, keyed by
// site name. Every requested site has an entry; sites absent from the cache
// predict zero.
func (e *Estimator) PredictedPageviewsBySite(ctx context.Context, sites []models.Site, start, end time.Time) (map[string]map[time.Time]int64, error) {
	names := make([]string, len(sites))
	for i, site := range sites {
		names[i] = site.Name
	}
	minDaily, err := e.readMinDaily(ctx, names)
	if err != nil {
		return nil, err
	}

	// The prediction does not vary by date: each site gets one flat value.
	dates := models.DateRange(start, end)
	ret := make(map[string]map[time.Time]int64, len(sites))
	for _, site := range sites {
		daily := int64(float64(minDaily[site.Name]) * e.inventoryFactor())
		byDate := make(map[time.Time]int64, len(dates))
		for _, date := range dates {
			byDate[date] = daily
		}
		ret[site.Name] = byDate
	}
	return ret, nil
}

func (e *Estimator) readMinDaily(ctx context.Context, siteNames []string) (map[string]int64, error) {
	minDaily, err := e.Cache.Get(ctx, MinDailyCacheKey, siteNames)
	if err != nil {
		return nil, fmt.Errorf("read prediction cache: %w", err)
	}
	return minDaily, nil
}
