// Package report runs the fixed sequence of emission questions for the
// yellow and green fleets and prints the answers for an operator.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/nyc-taxi-co2/analysis/internal/apperr"
	"github.com/nyc-taxi-co2/analysis/internal/chart"
	"github.com/nyc-taxi-co2/analysis/internal/db"
	"github.com/nyc-taxi-co2/analysis/internal/emissions"
	"github.com/nyc-taxi-co2/analysis/internal/logging"
)

const timestampLayout = "2006-01-02 15:04:05"

// Fleet names a dataset and the table holding it
type Fleet struct {
	Label string
	Table string
}

// bucketTitles heads the heavy/light questions, asked in emissions.AllBucketColumns order
var bucketTitles = map[emissions.BucketColumn]string{
	emissions.HourOfDay:   "Carbon heavy/light hours",
	emissions.DayOfWeek:   "Carbon heavy/light days of week",
	emissions.WeekOfYear:  "Carbon heavy/light weeks",
	emissions.MonthOfYear: "Carbon heavy/light months",
}

// Driver runs every question against both fleets
type Driver struct {
	src      db.DataSource
	analyzer *emissions.Analyzer
	sink     chart.Sink
	out      io.Writer
	log      *logging.Logger
	yellow   Fleet
	green    Fleet
	now      func() time.Time
}

// NewDriver creates a new Driver. Console lines go to out, diagnostics to logger.
func NewDriver(src db.DataSource, sink chart.Sink, out io.Writer, logger *logging.Logger, yellowTable, greenTable string) *Driver {
	return &Driver{
		src:      src,
		analyzer: emissions.NewAnalyzer(src, logger),
		sink:     sink,
		out:      out,
		log:      logger,
		yellow:   Fleet{Label: "Yellow", Table: yellowTable},
		green:    Fleet{Label: "Green", Table: greenTable},
		now:      time.Now,
	}
}

// CheckTables verifies that both fleet tables exist
func (d *Driver) CheckTables(ctx context.Context) error {
	for _, f := range d.fleets() {
		if !d.src.TableExists(ctx, f.Table) {
			return apperr.Precondition("Missing required table: %s", f.Table)
		}
	}
	return nil
}

// Run checks preconditions, then answers every question in order. Failures
// of a single question are printed, logged and recorded in the report; only
// a failed precondition or a cancelled context stops the run.
func (d *Driver) Run(ctx context.Context) (*Report, error) {
	if err := d.CheckTables(ctx); err != nil {
		return nil, err
	}

	r := &Report{
		RunID:     uuid.NewString(),
		StartedAt: d.now().UTC(),
		Failures:  []Failure{},
	}
	for _, f := range d.fleets() {
		r.Fleets = append(r.Fleets, &FleetResult{Fleet: f.Label, Table: f.Table, Extremes: []emissions.ExtremumPair{}})
	}
	d.log.Info("Analysis run %s started", r.RunID)

	for _, step := range d.steps() {
		if err := ctx.Err(); err != nil {
			d.log.Error("Analysis run %s interrupted: %v", r.RunID, err)
			return nil, apperr.Canceled(err)
		}
		step(ctx, r)
	}

	r.FinishedAt = d.now().UTC()
	return r, nil
}

// steps lists the questions in console order
func (d *Driver) steps() []func(context.Context, *Report) {
	steps := []func(context.Context, *Report){d.overview, d.largestTrips}
	for i, column := range emissions.AllBucketColumns() {
		number, column := i+2, column
		steps = append(steps, func(ctx context.Context, r *Report) {
			d.extremes(ctx, r, number, column, bucketTitles[column])
		})
	}
	return append(steps, d.monthlySeries)
}

func (d *Driver) fleets() []Fleet {
	return []Fleet{d.yellow, d.green}
}

// overview prints the emission column summary per fleet and for both combined
func (d *Driver) overview(ctx context.Context, r *Report) {
	d.printf("Dataset overview:\n")
	for i, f := range d.fleets() {
		s, err := d.analyzer.Summarize(ctx, f.Table)
		if err != nil {
			d.fail(r, "overview", f, err)
			continue
		}
		r.Fleets[i].Summary = s
		d.printf("%s: %s\n", f.Label, formatSummary(s))
	}

	yellow, green := r.Fleets[0].Summary, r.Fleets[1].Summary
	if yellow == nil || green == nil {
		return
	}
	combined, err := d.analyzer.Combine(ctx, d.yellow.Table, d.green.Table, yellow, green)
	if err != nil {
		d.fail(r, "overview", Fleet{Label: "Combined"}, err)
		return
	}
	r.Combined = combined
	d.printf("Combined: %s\n", formatSummary(combined))
}

func (d *Driver) largestTrips(ctx context.Context, r *Report) {
	d.printf("\nQuestion 1. Largest carbon producing trip:\n")
	for i, f := range d.fleets() {
		trip, err := d.analyzer.LargestTrip(ctx, f.Table)
		if err != nil {
			d.fail(r, "largest trip", f, err)
			continue
		}
		r.Fleets[i].LargestTrip = trip
		d.printf("%s: %.4f kg CO₂ over %s miles (pickup=%s, dropoff=%s)\n",
			f.Label, trip.CO2Kgs, formatDistance(trip.DistanceMiles),
			formatTimestamp(trip.Pickup), formatTimestamp(trip.Dropoff))
	}
}

func (d *Driver) extremes(ctx context.Context, r *Report, number int, column emissions.BucketColumn, title string) {
	d.printf("\nQuestion %d. %s:\n", number, title)
	for i, f := range d.fleets() {
		pair, err := d.analyzer.HeaviestLightest(ctx, f.Table, column)
		if err != nil {
			d.fail(r, string(column), f, err)
			continue
		}
		r.Fleets[i].Extremes = append(r.Fleets[i].Extremes, pair)
		d.printf("%s: MOST = %s (avg %.4f kg, n=%d), LEAST = %s (avg %.4f kg, n=%d)\n",
			f.Label,
			column.Label(pair.Heaviest.Bucket), pair.Heaviest.MeanCO2, pair.Heaviest.Count,
			column.Label(pair.Lightest.Bucket), pair.Lightest.MeanCO2, pair.Lightest.Count)
	}
}

func (d *Driver) monthlySeries(ctx context.Context, r *Report) {
	d.printf("\nQuestion 6. Monthly CO₂ totals plot:\n")

	rows, err := d.analyzer.MonthlySeries(ctx, d.yellow.Table, d.green.Table)
	if err != nil {
		d.fail(r, "monthly series", Fleet{}, err)
		return
	}
	r.MonthlySeries = rows
	if len(rows) == 0 {
		d.printf("No data found.\n")
		return
	}

	path, err := d.sink.Plot(rows)
	if err != nil {
		err = apperr.Render(err)
		d.printf("Plotting failed: %v\n", errors.Unwrap(err))
		d.log.Error("Plotting failed: %v", errors.Unwrap(err))
		d.record(r, "monthly series", Fleet{}, err)
		return
	}
	r.ChartPath = path
	d.printf("Saved plot: %s\n", path)
	d.log.Info("Saved monthly CO₂ plot to %s", path)
}

// fail reports a question that could not be answered and records it
func (d *Driver) fail(r *Report, question string, f Fleet, err error) {
	prefix := "Error"
	if f.Label != "" {
		prefix = f.Label
	}
	if errors.Is(err, apperr.ErrNoData) {
		d.printf("%s: No data found.\n", prefix)
		d.log.Warn("%s: no data for %s", question, describe(f))
	} else {
		d.printf("%s: %s failed: %v\n", prefix, question, err)
		d.log.Error("%s failed for %s: %v", question, describe(f), err)
	}
	d.record(r, question, f, err)
}

func (d *Driver) record(r *Report, question string, f Fleet, err error) {
	r.Failures = append(r.Failures, Failure{
		Question: question,
		Fleet:    f.Label,
		Code:     apperr.Code(err),
		Message:  err.Error(),
	})
}

func (d *Driver) printf(format string, args ...interface{}) {
	fmt.Fprintf(d.out, format, args...)
}

func describe(f Fleet) string {
	switch {
	case f.Table != "":
		return f.Table
	case f.Label != "":
		return f.Label
	default:
		return "both fleets"
	}
}

func formatSummary(s *emissions.DatasetSummary) string {
	return fmt.Sprintf("%d trips (%d with CO₂), total %.4f kg, mean %.4f kg, std %.4f kg, median %.4f kg, p95 %.4f kg",
		s.Trips, s.WithCO2, s.TotalCO2, s.MeanCO2, s.StdDevCO2, s.MedianCO2, s.P95CO2)
}

func formatDistance(miles *float64) string {
	if miles == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *miles)
}

func formatTimestamp(ts *time.Time) string {
	if ts == nil {
		return "n/a"
	}
	return ts.Format(timestampLayout)
}
