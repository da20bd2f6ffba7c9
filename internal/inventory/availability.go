package inventory

import (
	"context"
	"time"

	"github.com/patrickwarner/adinventory/internal/models"
)

// AvailablePageviews returns the remaining inventory per day on one site
// over [start, end): max(0, predicted - sold). Days with nothing sold count
// sold as zero; availability is never negative.
func (e *Estimator) AvailablePageviews(ctx context.Context, site models.Site, start, end time.Time, ignore *models.Campaign) (map[time.Time]int64, error) {
	bySite, err := e.AvailablePageviewsBySite(ctx, []models.Site{site}, start, end, ignore)
	if err != nil {
		return nil, err
	}
	return bySite[site.Name], nil
}

// AvailablePageviewsBySite is the bulk form of AvailablePageviews, keyed by
// site name. Prediction and sales are computed over the identical site set
// and date range.
func (e *Estimator) AvailablePageviewsBySite(ctx context.Context, sites []models.Site, start, end time.Time, ignore *models.Campaign) (map[string]map[time.Time]int64, error) {
	predictedBySite, err := e.PredictedPageviewsBySite(ctx, sites, start, end)
	if err != nil {
		return nil, err
	}
	soldBySite, err := e.SoldPageviewsBySite(ctx, sites, start, end, ignore)
	if err != nil {
		return nil, err
	}

	dates := models.DateRange(start, end)
	ret := make(map[string]map[time.Time]int64, len(sites))
	for _, site := range sites {
		predicted := predictedBySite[site.Name]
		sold := soldBySite[site.Name]
		available := make(map[time.Time]int64, len(dates))
		for _, date := range dates {
			available[date] = max(0, predicted[date]-sold[date])
		}
		ret[site.Name] = available
	}
	return ret, nil
}

// DateKeys re-keys a daily mapping by formatted date string, for callers
// that render dates rather than compute with them.
func DateKeys(byDate map[time.Time]int64) map[string]int64 {
	ret := make(map[string]int64, len(byDate))
	for date, v := range byDate {
		ret[models.DateKey(date)] = v
	}
	return ret
}

// Oversold returns the dates in [start, end) where available inventory on
// site falls strictly below dailyRequest, keyed by formatted date and paired
// with the actual availability. Campaign editors use it to warn that a
// requested volume cannot be met on those days.
func (e *Estimator) Oversold(ctx context.Context, site models.Site, start, end time.Time, dailyRequest int64, ignore *models.Campaign) (map[string]int64, error) {
	available, err := e.AvailablePageviews(ctx, site, start, end, ignore)
	if err != nil {
		return nil, err
	}
	oversold := make(map[string]int64)
	for date, avail := range available {
		if avail < dailyRequest {
			oversold[models.DateKey(date)] = avail
		}
	}
	return oversold, nil
}
