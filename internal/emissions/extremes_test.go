package emissions

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyc-taxi-co2/analysis/internal/apperr"
	"github.com/nyc-taxi-co2/analysis/internal/db/dbtest"
)

func TestHeaviestLightestHours(t *testing.T) {
	a := newFixture(t,
		dbtest.Trip{CO2: dbtest.CO2(1.2), Hour: 5},
		dbtest.Trip{CO2: dbtest.CO2(3.4), Hour: 5},
		dbtest.Trip{CO2: dbtest.CO2(0.1), Hour: 9},
	)

	pair, err := a.HeaviestLightest(context.Background(), "yellow_transform", HourOfDay)
	require.NoError(t, err)

	assert.Equal(t, HourOfDay, pair.Column)
	assert.Equal(t, 5, pair.Heaviest.Bucket)
	assert.InDelta(t, 2.3, pair.Heaviest.MeanCO2, 1e-9)
	assert.Equal(t, int64(2), pair.Heaviest.Count)
	assert.Equal(t, 9, pair.Lightest.Bucket)
	assert.InDelta(t, 0.1, pair.Lightest.MeanCO2, 1e-9)
	assert.Equal(t, int64(1), pair.Lightest.Count)
}

func TestBucketStatsSkipsNullEmissions(t *testing.T) {
	a := newFixture(t,
		dbtest.Trip{CO2: dbtest.CO2(2.0), Weekday: 1},
		dbtest.Trip{CO2: nil, Weekday: 1},
		dbtest.Trip{CO2: nil, Weekday: 4},
		dbtest.Trip{CO2: dbtest.CO2(4.0), Weekday: 6},
		dbtest.Trip{CO2: dbtest.CO2(6.0), Weekday: 6},
	)

	stats, err := a.BucketStats(context.Background(), "yellow_transform", DayOfWeek)
	require.NoError(t, err)

	// Day 4 only has NULL emissions so it is absent, not zero
	assert.Equal(t, []BucketStat{
		{Bucket: 1, MeanCO2: 2.0, Count: 1},
		{Bucket: 6, MeanCO2: 5.0, Count: 2},
	}, stats)
}

func TestHeaviestLightestReportsPresentBuckets(t *testing.T) {
	trips := []dbtest.Trip{
		{CO2: dbtest.CO2(0.8), Week: 1},
		{CO2: dbtest.CO2(1.1), Week: 1},
		{CO2: dbtest.CO2(0.3), Week: 17},
		{CO2: dbtest.CO2(2.9), Week: 33},
		{CO2: dbtest.CO2(0.0), Week: 52},
		{CO2: dbtest.CO2(0.8), Week: 52},
		{CO2: nil, Week: 40},
	}
	a := newFixture(t, trips...)

	pair, err := a.HeaviestLightest(context.Background(), "yellow_transform", WeekOfYear)
	require.NoError(t, err)

	counts := map[int]int64{}
	for _, trip := range trips {
		if trip.CO2 != nil {
			counts[trip.Week]++
		}
	}
	for _, s := range []BucketStat{pair.Heaviest, pair.Lightest} {
		require.Contains(t, counts, s.Bucket)
		assert.Equal(t, counts[s.Bucket], s.Count, "count for week %d", s.Bucket)
	}
	assert.Equal(t, 33, pair.Heaviest.Bucket)
	assert.Equal(t, 17, pair.Lightest.Bucket)
}

func TestHeaviestLightestSingleBucket(t *testing.T) {
	a := newFixture(t,
		dbtest.Trip{CO2: dbtest.CO2(1.0), Month: 7},
		dbtest.Trip{CO2: dbtest.CO2(3.0), Month: 7},
	)

	pair, err := a.HeaviestLightest(context.Background(), "yellow_transform", MonthOfYear)
	require.NoError(t, err)
	assert.Equal(t, pair.Heaviest, pair.Lightest)
	assert.Equal(t, BucketStat{Bucket: 7, MeanCO2: 2.0, Count: 2}, pair.Heaviest)
}

func TestHeaviestLightestNoData(t *testing.T) {
	tests := []struct {
		name  string
		trips []dbtest.Trip
	}{
		{"empty table", nil},
		{"all null", []dbtest.Trip{{CO2: nil, Hour: 1}, {CO2: nil, Hour: 2}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newFixture(t, tc.trips...)
			_, err := a.HeaviestLightest(context.Background(), "yellow_transform", HourOfDay)
			assert.True(t, errors.Is(err, apperr.ErrNoData), "got %v", err)
		})
	}
}

func TestBucketStatsRejectsBadInput(t *testing.T) {
	a := newFixture(t)
	ctx := context.Background()

	_, err := a.BucketStats(ctx, "yellow_transform; DROP TABLE x", HourOfDay)
	assert.Equal(t, apperr.CodeInvalidInput, apperr.Code(err))

	_, err = a.BucketStats(ctx, "yellow_transform", BucketColumn("trip_distance"))
	assert.Equal(t, apperr.CodeInvalidInput, apperr.Code(err))

	_, err = a.BucketStats(ctx, "missing_table", HourOfDay)
	assert.Equal(t, apperr.CodeQuery, apperr.Code(err))
}

func TestSelectExtremesTieBreak(t *testing.T) {
	// Input deliberately out of bucket order
	stats := []BucketStat{
		{Bucket: 9, MeanCO2: 2.0, Count: 4},
		{Bucket: 3, MeanCO2: 0.5, Count: 1},
		{Bucket: 2, MeanCO2: 2.0, Count: 7},
		{Bucket: 11, MeanCO2: 0.5, Count: 2},
	}

	pair, err := SelectExtremes(stats)
	require.NoError(t, err)
	assert.Equal(t, 2, pair.Heaviest.Bucket, "lowest bucket wins a heaviest tie")
	assert.Equal(t, 3, pair.Lightest.Bucket, "lowest bucket wins a lightest tie")

	_, err = SelectExtremes(nil)
	assert.ErrorIs(t, err, apperr.ErrNoData)
}
