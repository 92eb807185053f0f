package emissions

import (
	"slices"
	"strconv"
)

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// MonthNames returns a copy of the twelve month abbreviations, January first
func MonthNames() []string {
	return slices.Clone(monthNames[:])
}

// MonthName returns the abbreviation for month n (1-12).
// Out-of-range values are returned as their decimal form instead of failing.
func MonthName(n int) string {
	if n >= 1 && n <= 12 {
		return monthNames[n-1]
	}
	return strconv.Itoa(n)
}

// WeekdayName returns the abbreviation for day n of a Sunday-first week (0-6).
// Out-of-range values are returned as their decimal form instead of failing.
func WeekdayName(n int) string {
	if n >= 0 && n <= 6 {
		return weekdayNames[n]
	}
	return strconv.Itoa(n)
}
