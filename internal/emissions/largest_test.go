package emissions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyc-taxi-co2/analysis/internal/apperr"
	"github.com/nyc-taxi-co2/analysis/internal/db/dbtest"
)

func TestLargestTrip(t *testing.T) {
	pickup := time.Date(2024, time.May, 17, 22, 4, 11, 0, time.UTC)
	dropoff := pickup.Add(48 * time.Minute)
	a := newFixture(t,
		dbtest.Trip{CO2: dbtest.CO2(0.42), Distance: 1.1},
		dbtest.Trip{CO2: nil, Distance: 900},
		dbtest.Trip{CO2: dbtest.CO2(12.3456), Distance: 31.25, Pickup: pickup, Dropoff: dropoff},
		dbtest.Trip{CO2: dbtest.CO2(3.0), Distance: 7.5},
	)

	rec, err := a.LargestTrip(context.Background(), "yellow_transform")
	require.NoError(t, err)

	assert.InDelta(t, 12.3456, rec.CO2Kgs, 1e-12)
	require.NotNil(t, rec.DistanceMiles)
	assert.InDelta(t, 31.25, *rec.DistanceMiles, 1e-12)
	require.NotNil(t, rec.Pickup)
	require.NotNil(t, rec.Dropoff)
	assert.True(t, pickup.Equal(*rec.Pickup), "pickup %v", *rec.Pickup)
	assert.True(t, dropoff.Equal(*rec.Dropoff), "dropoff %v", *rec.Dropoff)
}

func TestLargestTripTieTakesEarliestPickup(t *testing.T) {
	early := time.Date(2024, time.February, 1, 8, 0, 0, 0, time.UTC)
	late := early.Add(72 * time.Hour)
	a := newFixture(t,
		dbtest.Trip{CO2: dbtest.CO2(5.0), Distance: 2.0, Pickup: late},
		dbtest.Trip{CO2: dbtest.CO2(5.0), Distance: 9.0, Pickup: early},
	)

	rec, err := a.LargestTrip(context.Background(), "yellow_transform")
	require.NoError(t, err)
	assert.InDelta(t, 9.0, *rec.DistanceMiles, 1e-12)
}

func TestLargestTripNotFound(t *testing.T) {
	tests := []struct {
		name  string
		trips []dbtest.Trip
	}{
		{"empty table", nil},
		{"all null", []dbtest.Trip{{CO2: nil, Distance: 3}, {CO2: nil, Distance: 4}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := newFixture(t, tc.trips...)
			rec, err := a.LargestTrip(context.Background(), "yellow_transform")
			assert.Nil(t, rec, "no record may be substituted")
			assert.ErrorIs(t, err, apperr.ErrNoData)
		})
	}
}

func TestLargestTripQueryFailure(t *testing.T) {
	a := newFixture(t)

	_, err := a.LargestTrip(context.Background(), "not_there")
	assert.True(t, apperr.Is(err, apperr.CodeQuery), "got %v", err)
	assert.NotErrorIs(t, err, apperr.ErrNoData)
}
