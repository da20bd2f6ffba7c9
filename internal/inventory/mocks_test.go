package inventory

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/patrickwarner/adinventory/internal/models"
)

// mockTrafficStore serves canned per-path minimums.
type mockTrafficStore struct {
	minByPath    map[string]int64
	lastModified time.Time

	// captured arguments from the last MinPageviewsByPath call
	gotInterval   string
	gotStart      time.Time
	gotEnd        time.Time
	gotPathSuffix string
}

func (m *mockTrafficStore) MinPageviewsByPath(ctx context.Context, interval string, start, end time.Time, pathSuffix string) (map[string]int64, error) {
	m.gotInterval = interval
	m.gotStart = start
	m.gotEnd = end
	m.gotPathSuffix = pathSuffix
	return m.minByPath, nil
}

func (m *mockTrafficStore) LastModified(ctx context.Context) (time.Time, error) {
	return m.lastModified, nil
}

// mockCache is an in-memory MetricsCache.
type mockCache struct {
	data map[string]map[string]int64
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string]map[string]int64)}
}

func (m *mockCache) Get(ctx context.Context, key string, fields []string) (map[string]int64, error) {
	ret := make(map[string]int64)
	for _, f := range fields {
		if v, ok := m.data[key][f]; ok {
			ret[f] = v
		}
	}
	return ret, nil
}

func (m *mockCache) Set(ctx context.Context, key string, values map[string]int64) error {
	copied := make(map[string]int64, len(values))
	for k, v := range values {
		copied[k] = v
	}
	m.data[key] = copied
	return nil
}

// mockCampaignStore serves campaigns, bids, and weights from slices the way
// the relational store would.
type mockCampaignStore struct {
	weights   []models.PromotionWeight
	campaigns []models.Campaign
	bids      []models.Bid
}

func (m *mockCampaignStore) PromotionWeights(ctx context.Context, siteKeys []string, start, end time.Time, ignoreCampaignID int64) ([]models.PromotionWeight, error) {
	keys := make(map[string]struct{}, len(siteKeys))
	for _, k := range siteKeys {
		keys[k] = struct{}{}
	}
	var ret []models.PromotionWeight
	for _, w := range m.weights {
		if _, ok := keys[w.SiteName]; !ok {
			continue
		}
		if w.Date.Before(start) || !w.Date.Before(end) {
			continue
		}
		if ignoreCampaignID != 0 && w.CampaignID == ignoreCampaignID {
			continue
		}
		ret = append(ret, w)
	}
	return ret, nil
}

func (m *mockCampaignStore) CampaignsByID(ctx context.Context, ids []int64) ([]models.Campaign, error) {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var ret []models.Campaign
	for _, c := range m.campaigns {
		if _, ok := want[c.ID]; ok {
			ret = append(ret, c)
		}
	}
	return ret, nil
}

func (m *mockCampaignStore) BidsByTransactionID(ctx context.Context, ids []int64) ([]models.Bid, error) {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var ret []models.Bid
	for _, b := range m.bids {
		if _, ok := want[b.TransactionID]; ok {
			ret = append(ret, b)
		}
	}
	return ret, nil
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func txn(id int64) *int64 {
	return &id
}

// weightsFor expands a campaign into one weight row per active day, the way
// the ad-management system writes them.
func weightsFor(c models.Campaign) []models.PromotionWeight {
	var ws []models.PromotionWeight
	for _, d := range c.ActiveDates() {
		ws = append(ws, models.PromotionWeight{SiteName: c.SiteName, Date: d, CampaignID: c.ID})
	}
	return ws
}

func testEstimator(traffic *mockTrafficStore, cache *mockCache, campaigns *mockCampaignStore) *Estimator {
	if cache == nil {
		cache = newMockCache()
	}
	est := NewEstimator(traffic, cache, campaigns, zap.NewNop())
	return est
}
