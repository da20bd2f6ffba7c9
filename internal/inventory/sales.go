package inventory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/adinventory/internal/models"
)

// CampaignsByDate returns the paying campaigns active on each day of
// [start, end) for one site. ignore excludes one campaign from the result,
// used when editing it to see inventory without its own consumption.
func (e *Estimator) CampaignsByDate(ctx context.Context, site models.Site, start, end time.Time, ignore *models.Campaign) (map[time.Time][]models.Campaign, error) {
	bySite, err := e.CampaignsByDateBySite(ctx, []models.Site{site}, start, end, ignore)
	if err != nil {
		return nil, err
	}
	return bySite[site.Name], nil
}

// CampaignsByDateBySite is the bulk form of CampaignsByDate, keyed by site
// name. Every requested site has an entry, possibly empty.
//
// A campaign qualifies only if it has a payment transaction, a positive
// impression budget, and a bid that is authorized or charged. Qualifying
// campaigns are attributed to every day in the intersection of their own
// active range and the query range.
func (e *Estimator) CampaignsByDateBySite(ctx context.Context, sites []models.Site, start, end time.Time, ignore *models.Campaign) (map[string]map[time.Time][]models.Campaign, error) {
	siteKeys := make([]string, len(sites))
	for i, site := range sites {
		siteKeys[i] = site.Key()
	}

	var ignoreID int64
	if ignore != nil {
		ignoreID = ignore.ID
	}

	weights, err := e.Campaigns.PromotionWeights(ctx, siteKeys, models.ToDate(start), models.ToDate(end), ignoreID)
	if err != nil {
		return nil, fmt.Errorf("query promotion weights: %w", err)
	}

	campaignIDs := make(map[int64]struct{}, len(weights))
	for _, w := range weights {
		campaignIDs[w.CampaignID] = struct{}{}
	}
	campaigns, err := e.Campaigns.CampaignsByID(ctx, sortedIDs(campaignIDs))
	if err != nil {
		return nil, fmt.Errorf("load campaigns: %w", err)
	}

	transactionIDs := make(map[int64]struct{})
	for _, c := range campaigns {
		if c.TransactionID != nil {
			transactionIDs[*c.TransactionID] = struct{}{}
		}
	}
	bidByTransaction := make(map[int64]models.Bid, len(transactionIDs))
	if len(transactionIDs) > 0 {
		bids, err := e.Campaigns.BidsByTransactionID(ctx, sortedIDs(transactionIDs))
		if err != nil {
			return nil, fmt.Errorf("load bids: %w", err)
		}
		for _, b := range bids {
			bidByTransaction[b.TransactionID] = b
		}
	}

	queryDates := make(map[time.Time]struct{})
	for _, date := range models.DateRange(start, end) {
		queryDates[date] = struct{}{}
	}

	ret := make(map[string]map[time.Time][]models.Campaign, len(sites))
	for _, site := range sites {
		ret[site.Name] = make(map[time.Time][]models.Campaign)
	}
	for _, c := range campaigns {
		if c.TransactionID == nil {
			continue
		}
		if c.Impressions <= 0 {
			// pre-CPM campaign
			continue
		}
		bid, ok := bidByTransaction[*c.TransactionID]
		if !ok {
			e.Logger.Warn("campaign references missing bid",
				zap.Int64("campaign_id", c.ID),
				zap.Int64("transaction_id", *c.TransactionID),
			)
			continue
		}
		if !bid.IsAuthorized() && !bid.IsCharged() {
			continue
		}

		siteName := c.DisplaySiteName()
		byDate, ok := ret[siteName]
		if !ok {
			continue
		}
		for _, date := range c.ActiveDates() {
			if _, ok := queryDates[date]; ok {
				byDate[date] = append(byDate[date], c)
			}
		}
	}
	return ret, nil
}

// SoldPageviews returns the impressions already committed per day on one
// site over [start, end).
func (e *Estimator) SoldPageviews(ctx context.Context, site models.Site, start, end time.Time, ignore *models.Campaign) (map[time.Time]int64, error) {
	bySite, err := e.SoldPageviewsBySite(ctx, []models.Site{site}, start, end, ignore)
	if err != nil {
		return nil, err
	}
	return bySite[site.Name], nil
}

// SoldPageviewsBySite is the bulk form of SoldPageviews, keyed by site name.
// Each campaign contributes impressions/ndays (floor division) to every day
// it is attributed to; the truncated remainder is intentionally dropped to
// match billed inventory accounting.
func (e *Estimator) SoldPageviewsBySite(ctx context.Context, sites []models.Site, start, end time.Time, ignore *models.Campaign) (map[string]map[time.Time]int64, error) {
	campaignsBySite, err := e.CampaignsByDateBySite(ctx, sites, start, end, ignore)
	if err != nil {
		return nil, err
	}

	ret := make(map[string]map[time.Time]int64, len(campaignsBySite))
	for siteName, campaignsByDate := range campaignsBySite {
		sold := make(map[time.Time]int64, len(campaignsByDate))
		for date, campaigns := range campaignsByDate {
			for _, c := range campaigns {
				if c.NDays <= 0 {
					continue
				}
				sold[date] += c.Impressions / int64(c.NDays)
			}
		}
		ret[siteName] = sold
	}
	return ret, nil
}

func sortedIDs(set map[int64]struct{}) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
