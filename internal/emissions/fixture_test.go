package emissions

import (
	"testing"

	"github.com/nyc-taxi-co2/analysis/internal/db/dbtest"
	"github.com/nyc-taxi-co2/analysis/internal/logging"
)

// newFixture returns an Analyzer over an in-memory database holding the
// given yellow_transform trips and an empty green_transform table.
func newFixture(t *testing.T, trips ...dbtest.Trip) *Analyzer {
	t.Helper()
	return newFleetFixture(t, trips, nil)
}

func newFleetFixture(t *testing.T, yellow, green []dbtest.Trip) *Analyzer {
	t.Helper()
	database := dbtest.Open(t, logging.Discard())
	dbtest.CreateTripTable(t, database, "yellow_transform", yellow...)
	dbtest.CreateTripTable(t, database, "green_transform", green...)
	return NewAnalyzer(database, logging.Discard())
}
