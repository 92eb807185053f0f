package emissions

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/samber/lo"

	"github.com/nyc-taxi-co2/analysis/internal/apperr"
)

// MonthTotal is one fleet's summed CO₂ for a month ordinal
type MonthTotal struct {
	Month    int     `json:"month"`
	TotalCO2 float64 `json:"total_co2_kgs"`
}

// MonthlyRow aligns both fleets on one month ordinal
type MonthlyRow struct {
	Month     int     `json:"month"`
	YellowCO2 float64 `json:"yellow_total_co2_kgs"`
	GreenCO2  float64 `json:"green_total_co2_kgs"`
}

// MonthlyTotals sums trip_co2_kgs per month_of_year. Trips without a month
// are left out; a month whose emissions are all NULL totals 0.
func (a *Analyzer) MonthlyTotals(ctx context.Context, table string) ([]MonthTotal, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT
			month_of_year                  AS trip_month,
			COALESCE(SUM(trip_co2_kgs), 0) AS total_co2
		FROM %s
		WHERE month_of_year IS NOT NULL
		GROUP BY month_of_year
		ORDER BY month_of_year
	`, table)

	rows, err := a.src.Query(ctx, query)
	if err != nil {
		return nil, apperr.Query(err, "monthly totals query on %s", table)
	}
	defer rows.Close()

	var totals []MonthTotal
	for rows.Next() {
		var month float64
		var mt MonthTotal
		if err := rows.Scan(&month, &mt.TotalCO2); err != nil {
			return nil, apperr.Query(err, "scan monthly total from %s", table)
		}
		mt.Month = int(math.Round(month))
		totals = append(totals, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Query(err, "read monthly totals from %s", table)
	}
	return totals, nil
}

// MonthlySeries queries both fleets and reconciles them into one table
func (a *Analyzer) MonthlySeries(ctx context.Context, yellowTable, greenTable string) ([]MonthlyRow, error) {
	yellow, err := a.MonthlyTotals(ctx, yellowTable)
	if err != nil {
		return nil, err
	}
	green, err := a.MonthlyTotals(ctx, greenTable)
	if err != nil {
		return nil, err
	}

	rows := ReconcileMonthly(yellow, green)
	a.log.Debug("monthly series: %d yellow, %d green, %d merged", len(yellow), len(green), len(rows))
	return rows, nil
}

// ReconcileMonthly merges two monthly series on the union of their month
// ordinals. A side without a month contributes 0 for it. The output has one
// row per distinct ordinal, sorted ascending. Repeated ordinals within one
// side are summed.
func ReconcileMonthly(yellow, green []MonthTotal) []MonthlyRow {
	yellowByMonth := sumByMonth(yellow)
	greenByMonth := sumByMonth(green)

	months := lo.Union(lo.Keys(yellowByMonth), lo.Keys(greenByMonth))
	slices.Sort(months)

	rows := make([]MonthlyRow, 0, len(months))
	for _, m := range months {
		rows = append(rows, MonthlyRow{
			Month:     m,
			YellowCO2: yellowByMonth[m],
			GreenCO2:  greenByMonth[m],
		})
	}
	return rows
}

func sumByMonth(totals []MonthTotal) map[int]float64 {
	byMonth := make(map[int]float64, len(totals))
	for _, t := range totals {
		byMonth[t.Month] += t.TotalCO2
	}
	return byMonth
}
