package emissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nyc-taxi-co2/analysis/internal/apperr"
	"github.com/nyc-taxi-co2/analysis/internal/db"
)

// TripRecord is the trip with the largest emission in a table
type TripRecord struct {
	CO2Kgs        float64    `json:"co2_kgs"`
	DistanceMiles *float64   `json:"distance_miles,omitempty"`
	Pickup        *time.Time `json:"pickup,omitempty"`
	Dropoff       *time.Time `json:"dropoff,omitempty"`
}

// LargestTrip returns the trip with the maximum trip_co2_kgs. Equal
// emissions are resolved by the earliest pickup. Returns apperr.ErrNoData
// when the table is empty or every emission is NULL.
func (a *Analyzer) LargestTrip(ctx context.Context, table string) (*TripRecord, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			trip_co2_kgs,
			trip_distance,
			pickup_datetime,
			dropoff_datetime
		FROM %s
		WHERE trip_co2_kgs IS NOT NULL
		ORDER BY trip_co2_kgs DESC, pickup_datetime ASC
		LIMIT 1
	`, table)

	var rec TripRecord
	var distance sql.NullFloat64
	var pickup, dropoff db.Timestamp
	err := a.src.QueryRow(ctx, query).Scan(&rec.CO2Kgs, &distance, &pickup, &dropoff)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.Wrapf(apperr.ErrNoData, "largest trip in %s", table)
	}
	if err != nil {
		return nil, apperr.Query(err, "largest trip query on %s", table)
	}

	if distance.Valid {
		rec.DistanceMiles = &distance.Float64
	}
	if pickup.Valid {
		rec.Pickup = &pickup.Time
	}
	if dropoff.Valid {
		rec.Dropoff = &dropoff.Time
	}
	return &rec, nil
}
