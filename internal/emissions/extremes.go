package emissions

import (
	"context"
	"fmt"
	"math"

	"github.com/nyc-taxi-co2/analysis/internal/apperr"
)

// BucketStat is the mean emission and trip count of one bucket
type BucketStat struct {
	Bucket  int     `json:"bucket"`
	MeanCO2 float64 `json:"mean_co2_kgs"`
	Count   int64   `json:"count"`
}

// ExtremumPair holds the heaviest and lightest bucket of one grouping column
type ExtremumPair struct {
	Column   BucketColumn `json:"column"`
	Heaviest BucketStat   `json:"heaviest"`
	Lightest BucketStat   `json:"lightest"`
}

// BucketStats returns mean CO₂ and trip count per bucket value, ordered by
// bucket. Trips with a NULL emission or NULL bucket are not counted.
func (a *Analyzer) BucketStats(ctx context.Context, table string, column BucketColumn) ([]BucketStat, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if !column.Valid() {
		return nil, apperr.InvalidInput("unknown bucket column %q", column)
	}

	query := fmt.Sprintf(`
		SELECT
			%[1]s             AS bucket,
			AVG(trip_co2_kgs) AS avg_co2,
			COUNT(*)          AS n
		FROM %[2]s
		WHERE trip_co2_kgs IS NOT NULL
		  AND %[1]s IS NOT NULL
		GROUP BY %[1]s
		ORDER BY %[1]s
	`, column, table)

	rows, err := a.src.Query(ctx, query)
	if err != nil {
		return nil, apperr.Query(err, "bucket query on %s.%s", table, column)
	}
	defer rows.Close()

	var stats []BucketStat
	for rows.Next() {
		var bucket float64
		var s BucketStat
		if err := rows.Scan(&bucket, &s.MeanCO2, &s.Count); err != nil {
			return nil, apperr.Query(err, "scan bucket row from %s.%s", table, column)
		}
		s.Bucket = int(math.Round(bucket))
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Query(err, "read bucket rows from %s.%s", table, column)
	}

	a.log.Debug("%s.%s: %d buckets", table, column, len(stats))
	return stats, nil
}

// HeaviestLightest finds the buckets with the highest and lowest mean CO₂.
// Returns apperr.ErrNoData when the table has no trip with a non-NULL emission.
func (a *Analyzer) HeaviestLightest(ctx context.Context, table string, column BucketColumn) (ExtremumPair, error) {
	stats, err := a.BucketStats(ctx, table, column)
	if err != nil {
		return ExtremumPair{}, err
	}
	pair, err := SelectExtremes(stats)
	if err != nil {
		return ExtremumPair{}, apperr.Wrapf(err, "%s by %s", table, column)
	}
	pair.Column = column
	return pair, nil
}

// SelectExtremes picks the max-mean and min-mean buckets. On an exact tie
// the lowest bucket value wins for both roles, whatever the input order.
// With a single bucket, heaviest and lightest are the same bucket.
func SelectExtremes(stats []BucketStat) (ExtremumPair, error) {
	if len(stats) == 0 {
		return ExtremumPair{}, apperr.ErrNoData
	}

	heaviest, lightest := stats[0], stats[0]
	for _, s := range stats[1:] {
		if s.MeanCO2 > heaviest.MeanCO2 || (s.MeanCO2 == heaviest.MeanCO2 && s.Bucket < heaviest.Bucket) {
			heaviest = s
		}
		if s.MeanCO2 < lightest.MeanCO2 || (s.MeanCO2 == lightest.MeanCO2 && s.Bucket < lightest.Bucket) {
			lightest = s
		}
	}
	return ExtremumPair{Heaviest: heaviest, Lightest: lightest}, nil
}
