package report

import (
	"encoding/json"
	"os"
	"time"

	"github.com/nyc-taxi-co2/analysis/internal/emissions"
)

// FleetResult collects every answer computed for one fleet
type FleetResult struct {
	Fleet       string                    `json:"fleet"`
	Table       string                    `json:"table"`
	Summary     *emissions.DatasetSummary `json:"summary,omitempty"`
	LargestTrip *emissions.TripRecord     `json:"largest_trip,omitempty"`
	Extremes    []emissions.ExtremumPair  `json:"extremes"`
}

// Failure records a question that could not be answered for a fleet
type Failure struct {
	Question string `json:"question"`
	Fleet    string `json:"fleet,omitempty"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// Report is the machine-readable result of one run
type Report struct {
	RunID         string                    `json:"run_id"`
	StartedAt     time.Time                 `json:"started_at"`
	FinishedAt    time.Time                 `json:"finished_at"`
	Fleets        []*FleetResult            `json:"fleets"`
	Combined      *emissions.DatasetSummary `json:"combined_summary,omitempty"`
	MonthlySeries []emissions.MonthlyRow    `json:"monthly_series"`
	ChartPath     string                    `json:"chart_path,omitempty"`
	Failures      []Failure                 `json:"failures"`
}

// Fleet returns the result for the named fleet, or nil
func (r *Report) Fleet(name string) *FleetResult {
	for _, f := range r.Fleets {
		if f.Fleet == name {
			return f
		}
	}
	return nil
}

// WriteJSON saves the report as indented JSON
func WriteJSON(r *Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
