package emissions

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/montanaflynn/stats"

	"github.com/nyc-taxi-co2/analysis/internal/apperr"
	"github.com/nyc-taxi-co2/analysis/internal/metrics"
)

// DatasetSummary describes the trip_co2_kgs column of one table
type DatasetSummary struct {
	Trips     int64   `json:"trips"`
	WithCO2   int64   `json:"trips_with_co2"`
	TotalCO2  float64 `json:"total_co2_kgs"`
	MeanCO2   float64 `json:"mean_co2_kgs"`
	StdDevCO2 float64 `json:"stddev_co2_kgs"`
	MedianCO2 float64 `json:"median_co2_kgs"`
	P95CO2    float64 `json:"p95_co2_kgs"`
	MinCO2    float64 `json:"min_co2_kgs"`
	MaxCO2    float64 `json:"max_co2_kgs"`

	running metrics.WelfordState
}

// Summarize streams the emission column of table into a DatasetSummary.
// Only the running moments are held in memory; median and p95 are read
// back from the database by rank. Returns apperr.ErrNoData when no trip
// has a non-NULL emission.
func (a *Analyzer) Summarize(ctx context.Context, table string) (*DatasetSummary, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	rows, err := a.src.Query(ctx, fmt.Sprintf(`SELECT trip_co2_kgs FROM %s`, table))
	if err != nil {
		return nil, apperr.Query(err, "summary query on %s", table)
	}
	defer rows.Close()

	summary := &DatasetSummary{}
	for rows.Next() {
		var co2 sql.NullFloat64
		if err := rows.Scan(&co2); err != nil {
			return nil, apperr.Query(err, "scan emission from %s", table)
		}
		summary.Trips++
		if co2.Valid {
			summary.running.Update(co2.Float64)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Query(err, "read emissions from %s", table)
	}
	rows.Close()

	if err := a.finish(ctx, summary, table); err != nil {
		return nil, apperr.Wrapf(err, "summary of %s", table)
	}
	return summary, nil
}

// Combine merges the summaries of two tables into one covering both. The
// moments are merged in memory; median and p95 are ranked over the union.
func (a *Analyzer) Combine(ctx context.Context, tableA, tableB string, sa, sb *DatasetSummary) (*DatasetSummary, error) {
	for _, table := range []string{tableA, tableB} {
		if err := checkTable(table); err != nil {
			return nil, err
		}
	}

	out := &DatasetSummary{Trips: sa.Trips + sb.Trips}
	out.running = sa.running
	out.running.Merge(sb.running)

	union := fmt.Sprintf(`(SELECT trip_co2_kgs FROM %s UNION ALL SELECT trip_co2_kgs FROM %s) AS fleets`, tableA, tableB)
	if err := a.finish(ctx, out, union); err != nil {
		return nil, apperr.Wrap(err, "combined summary")
	}
	return out, nil
}

// finish fills the exported fields from the running state and ranks the
// order statistics over source, a table name or aliased subquery
func (a *Analyzer) finish(ctx context.Context, s *DatasetSummary, source string) error {
	n := s.running.Count
	if n == 0 {
		return apperr.ErrNoData
	}

	// Median is the middle value, or the mean of the two middle values
	middle, err := a.ranked(ctx, source, (n-1)/2, 2-n%2)
	if err != nil {
		return err
	}
	median, err := stats.Median(middle)
	if err != nil {
		return fmt.Errorf("median: %w", err)
	}

	// Nearest-rank p95
	rank := int64(math.Ceil(float64(n) * 95 / 100))
	p95, err := a.ranked(ctx, source, rank-1, 1)
	if err != nil {
		return err
	}

	s.WithCO2 = n
	s.TotalCO2 = s.running.Sum
	s.MeanCO2 = s.running.Mean
	s.StdDevCO2 = s.running.GetStdDev()
	s.MedianCO2 = median
	s.P95CO2 = p95[0]
	s.MinCO2 = s.running.Min
	s.MaxCO2 = s.running.Max
	return nil
}

// ranked returns limit non-NULL emissions of source in ascending order,
// starting at the zero-based position offset
func (a *Analyzer) ranked(ctx context.Context, source string, offset, limit int64) (stats.Float64Data, error) {
	query := fmt.Sprintf(`
		SELECT trip_co2_kgs FROM %s
		WHERE trip_co2_kgs IS NOT NULL
		ORDER BY trip_co2_kgs
		LIMIT %s OFFSET %s`, source, a.src.Placeholder(1), a.src.Placeholder(2))

	rows, err := a.src.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, apperr.Query(err, "rank query")
	}
	defer rows.Close()

	values := make(stats.Float64Data, 0, limit)
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, apperr.Query(err, "scan ranked emission")
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Query(err, "read ranked emissions")
	}
	if int64(len(values)) != limit {
		return nil, apperr.New(apperr.CodeQuery, fmt.Sprintf("expected %d ranked emissions at offset %d, got %d", limit, offset, len(values)))
	}
	return values, nil
}
