package db

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are the textual forms accepted for timestamp columns.
// DuckDB and Postgres return time.Time directly; SQLite stores text.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp scans a timestamp column from any supported backend.
// Valid is false for NULL.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner
func (ts *Timestamp) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		ts.Time, ts.Valid = time.Time{}, false
		return nil
	case time.Time:
		ts.Time, ts.Valid = v, true
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case int64:
		ts.Time, ts.Valid = time.Unix(v, 0).UTC(), true
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", value)
	}
}

func (ts *Timestamp) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time, ts.Valid = t, true
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}
