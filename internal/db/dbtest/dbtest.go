// Package dbtest provides in-memory SQLite fixtures holding trip tables
// with the same columns as the transformed yellow and green datasets.
package dbtest

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/nyc-taxi-co2/analysis/internal/config"
	"github.com/nyc-taxi-co2/analysis/internal/db"
	"github.com/nyc-taxi-co2/analysis/internal/logging"
)

// Trip is one fixture row. A nil CO2 is stored as NULL.
type Trip struct {
	CO2      *float64
	Distance float64
	Pickup   time.Time
	Dropoff  time.Time
	Hour     int
	Weekday  int
	Week     int
	Month    int
}

// CO2 returns a pointer for use in Trip literals
func CO2(v float64) *float64 {
	return &v
}

const tripTableSQL = `
	CREATE TABLE %s (
		trip_co2_kgs     DOUBLE,
		trip_distance    DOUBLE,
		pickup_datetime  TIMESTAMP,
		dropoff_datetime TIMESTAMP,
		hour_of_day      INTEGER,
		day_of_week      INTEGER,
		week_of_year     INTEGER,
		month_of_year    INTEGER
	)
`

// Open returns an empty in-memory database wrapped as a *db.DB.
// The connection is closed when the test ends.
func Open(t testing.TB, logger *logging.Logger) *db.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	// Every pooled connection would get its own :memory: database
	conn.SetMaxOpenConns(1)

	database, err := db.New(conn, config.DriverSQLite, logger)
	if err != nil {
		t.Fatalf("wrap in-memory sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return database
}

// CreateTripTable creates table and inserts trips into it
func CreateTripTable(t testing.TB, database *db.DB, table string, trips ...Trip) {
	t.Helper()

	if _, err := database.Conn().Exec(fmt.Sprintf(tripTableSQL, table)); err != nil {
		t.Fatalf("create %s: %v", table, err)
	}
	InsertTrips(t, database, table, trips...)
}

// InsertTrips appends trips to an existing table
func InsertTrips(t testing.TB, database *db.DB, table string, trips ...Trip) {
	t.Helper()

	query := `INSERT INTO ` + table + ` (trip_co2_kgs, trip_distance, pickup_datetime, dropoff_datetime,
		hour_of_day, day_of_week, week_of_year, month_of_year) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	for i, trip := range trips {
		var co2 any
		if trip.CO2 != nil {
			co2 = *trip.CO2
		}
		pickup, dropoff := trip.Pickup, trip.Dropoff
		if pickup.IsZero() {
			pickup = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
		}
		if dropoff.IsZero() {
			dropoff = pickup.Add(15 * time.Minute)
		}
		_, err := database.Conn().Exec(query, co2, trip.Distance,
			pickup.UTC().Format("2006-01-02 15:04:05"), dropoff.UTC().Format("2006-01-02 15:04:05"),
			trip.Hour, trip.Weekday, trip.Week, trip.Month)
		if err != nil {
			t.Fatalf("insert trip %d into %s: %v", i, table, err)
		}
	}
}
