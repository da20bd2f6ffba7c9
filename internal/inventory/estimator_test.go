package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickwarner/adinventory/internal/db"
	"github.com/patrickwarner/adinventory/internal/models"
)

// Full pass through aggregation, prediction, sales and availability with the
// real Redis-backed cache.
func TestEstimatorEndToEnd(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(s.Close)
	cache := db.NewMetricsStore(redis.NewClient(&redis.Options{Addr: s.Addr()}))

	traffic := &mockTrafficStore{
		// ClickHouse would have reduced daily counts [100, 80, 120, 90]
		// for foo down to their minimum
		minByPath:    map[string]int64{"foo-GET_listing": 80},
		lastModified: date(2026, time.June, 10),
	}
	est := testEstimator(traffic, nil, salesFixture())
	est.Cache = cache
	ctx := context.Background()

	require.NoError(t, est.UpdatePredictionData(ctx))

	site := models.Site{Name: "foo"}
	start, end := date(2026, time.June, 1), date(2026, time.June, 4)

	predicted, err := est.PredictedPageviews(ctx, site, start, end)
	require.NoError(t, err)
	for _, d := range models.DateRange(start, end) {
		assert.Equal(t, int64(80), predicted[d])
	}

	available, err := est.AvailablePageviews(ctx, site, start, end, nil)
	require.NoError(t, err)
	for _, d := range models.DateRange(start, end) {
		assert.Equal(t, int64(70), available[d], "sold 10/day should leave 70 of 80")
	}

	oversold, err := est.Oversold(ctx, site, start, end, 75, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{
		"06/01/2026": 70,
		"06/02/2026": 70,
		"06/03/2026": 70,
	}, oversold)
}
