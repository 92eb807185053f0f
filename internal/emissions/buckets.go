package emissions

import "strconv"

// BucketColumn is a precomputed categorical column trips can be grouped by
type BucketColumn string

const (
	HourOfDay   BucketColumn = "hour_of_day"
	DayOfWeek   BucketColumn = "day_of_week"
	WeekOfYear  BucketColumn = "week_of_year"
	MonthOfYear BucketColumn = "month_of_year"
)

// AllBucketColumns returns the grouping columns in report order
func AllBucketColumns() []BucketColumn {
	return []BucketColumn{HourOfDay, DayOfWeek, WeekOfYear, MonthOfYear}
}

// Valid reports whether c is one of the known grouping columns
func (c BucketColumn) Valid() bool {
	switch c {
	case HourOfDay, DayOfWeek, WeekOfYear, MonthOfYear:
		return true
	}
	return false
}

// Label formats a bucket value for display
func (c BucketColumn) Label(bucket int) string {
	switch c {
	case DayOfWeek:
		return WeekdayName(bucket)
	case MonthOfYear:
		return MonthName(bucket)
	default:
		return strconv.Itoa(bucket)
	}
}
