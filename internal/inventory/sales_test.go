package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/adinventory/internal/models"
)

func salesFixture() *mockCampaignStore {
	paying := models.Campaign{
		ID:            1,
		SiteName:      "foo",
		StartDate:     date(2026, time.May, 25),
		EndDate:       date(2026, time.June, 4),
		NDays:         10,
		Impressions:   100,
		TransactionID: txn(501),
	}
	noTransaction := models.Campaign{
		ID:          2,
		SiteName:    "foo",
		StartDate:   date(2026, time.June, 1),
		EndDate:     date(2026, time.June, 4),
		NDays:       3,
		Impressions: 300,
	}
	preCPM := models.Campaign{
		ID:            3,
		SiteName:      "foo",
		StartDate:     date(2026, time.June, 1),
		EndDate:       date(2026, time.June, 4),
		NDays:         3,
		Impressions:   0,
		TransactionID: txn(502),
	}
	refunded := models.Campaign{
		ID:            4,
		SiteName:      "foo",
		StartDate:     date(2026, time.June, 1),
		EndDate:       date(2026, time.June, 4),
		NDays:         3,
		Impressions:   900,
		TransactionID: txn(503),
	}
	frontPage := models.Campaign{
		ID:            5,
		SiteName:      "", // front page campaigns carry no site name
		StartDate:     date(2026, time.June, 1),
		EndDate:       date(2026, time.June, 3),
		NDays:         2,
		Impressions:   50,
		TransactionID: txn(504),
	}

	store := &mockCampaignStore{
		campaigns: []models.Campaign{paying, noTransaction, preCPM, refunded, frontPage},
		bids: []models.Bid{
			{TransactionID: 501, CampaignID: 1, Status: models.BidStatusAuthorized},
			{TransactionID: 502, CampaignID: 3, Status: models.BidStatusCharged},
			{TransactionID: 503, CampaignID: 4, Status: models.BidStatusRefunded},
			{TransactionID: 504, CampaignID: 5, Status: models.BidStatusCharged},
		},
	}
	for _, c := range store.campaigns {
		store.weights = append(store.weights, weightsFor(c)...)
	}
	return store
}

func TestSoldPageviewsFiltersAndDivides(t *testing.T) {
	est := testEstimator(nil, nil, salesFixture())

	got, err := est.SoldPageviews(context.Background(), models.Site{Name: "foo"},
		date(2026, time.June, 1), date(2026, time.June, 4), nil)
	require.NoError(t, err)

	// Only campaign 1 qualifies: 100 impressions over 10 days = 10/day.
	// Campaign 2 has no transaction, 3 has no impressions, 4 is refunded.
	want := map[time.Time]int64{
		date(2026, time.June, 1): 10,
		date(2026, time.June, 2): 10,
		date(2026, time.June, 3): 10,
	}
	assert.Equal(t, want, got)
}

func TestSoldPageviewsIntersectsCampaignRange(t *testing.T) {
	est := testEstimator(nil, nil, salesFixture())

	// Query window extends past campaign 1's end date of June 4.
	got, err := est.SoldPageviews(context.Background(), models.Site{Name: "foo"},
		date(2026, time.June, 3), date(2026, time.June, 6), nil)
	require.NoError(t, err)

	want := map[time.Time]int64{
		date(2026, time.June, 3): 10,
	}
	assert.Equal(t, want, got)
}

func TestSoldPageviewsFloorDivision(t *testing.T) {
	c := models.Campaign{
		ID:            7,
		SiteName:      "foo",
		StartDate:     date(2026, time.June, 1),
		EndDate:       date(2026, time.June, 4),
		NDays:         3,
		Impressions:   100,
		TransactionID: txn(600),
	}
	store := &mockCampaignStore{
		campaigns: []models.Campaign{c},
		bids:      []models.Bid{{TransactionID: 600, CampaignID: 7, Status: models.BidStatusAuthorized}},
		weights:   weightsFor(c),
	}
	est := testEstimator(nil, nil, store)

	got, err := est.SoldPageviews(context.Background(), models.Site{Name: "foo"},
		date(2026, time.June, 1), date(2026, time.June, 4), nil)
	require.NoError(t, err)

	// 100/3 truncates to 33 per day; the remainder is dropped.
	var total int64
	for _, v := range got {
		assert.Equal(t, int64(33), v)
		total += v
	}
	assert.LessOrEqual(t, total, c.Impressions)
}

func TestSoldPageviewsDefaultSite(t *testing.T) {
	est := testEstimator(nil, nil, salesFixture())

	got, err := est.SoldPageviews(context.Background(), models.DefaultSite(),
		date(2026, time.June, 1), date(2026, time.June, 3), nil)
	require.NoError(t, err)

	// Campaign 5 (empty site name) lands on the front page: 50/2 = 25/day.
	want := map[time.Time]int64{
		date(2026, time.June, 1): 25,
		date(2026, time.June, 2): 25,
	}
	assert.Equal(t, want, got)
}

func TestSoldPageviewsIgnoreCampaign(t *testing.T) {
	est := testEstimator(nil, nil, salesFixture())
	ignore := &models.Campaign{ID: 1}

	got, err := est.SoldPageviews(context.Background(), models.Site{Name: "foo"},
		date(2026, time.June, 1), date(2026, time.June, 4), ignore)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCampaignsByDateBySiteHasEntryPerSite(t *testing.T) {
	est := testEstimator(nil, nil, salesFixture())

	got, err := est.CampaignsByDateBySite(context.Background(),
		[]models.Site{{Name: "foo"}, {Name: "quiet"}},
		date(2026, time.June, 1), date(2026, time.June, 4), nil)
	require.NoError(t, err)

	require.Contains(t, got, "foo")
	require.Contains(t, got, "quiet")
	assert.Empty(t, got["quiet"])

	byDate := got["foo"]
	require.Len(t, byDate[date(2026, time.June, 1)], 1)
	assert.Equal(t, int64(1), byDate[date(2026, time.June, 1)][0].ID)
}

func TestSoldPageviewsBySiteSymmetry(t *testing.T) {
	est := testEstimator(nil, nil, salesFixture())
	sites := []models.Site{{Name: "foo"}, models.DefaultSite()}
	start, end := date(2026, time.June, 1), date(2026, time.June, 4)

	bulk, err := est.SoldPageviewsBySite(context.Background(), sites, start, end, nil)
	require.NoError(t, err)

	for _, site := range sites {
		single, err := est.SoldPageviews(context.Background(), site, start, end, nil)
		require.NoError(t, err)
		assert.Equal(t, bulk[site.Name], single)
	}
}
