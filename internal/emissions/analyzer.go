// Package emissions answers the per-fleet CO₂ questions: bucketed
// heaviest/lightest averages, the single largest trip, monthly totals
// reconciled across fleets, and an overall summary of the emission column.
package emissions

import (
	"github.com/nyc-taxi-co2/analysis/internal/apperr"
	"github.com/nyc-taxi-co2/analysis/internal/config"
	"github.com/nyc-taxi-co2/analysis/internal/db"
	"github.com/nyc-taxi-co2/analysis/internal/logging"
)

// Analyzer runs emission queries against a data source
type Analyzer struct {
	src db.DataSource
	log *logging.Logger
}

// NewAnalyzer creates a new Analyzer
func NewAnalyzer(src db.DataSource, logger *logging.Logger) *Analyzer {
	return &Analyzer{src: src, log: logger}
}

// checkTable rejects table names that are unsafe to interpolate into SQL
func checkTable(table string) error {
	if !config.ValidIdentifier(table) {
		return apperr.InvalidInput("invalid table name %q", table)
	}
	return nil
}
