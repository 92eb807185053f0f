//go:build cgo

package db

// The DuckDB driver links libduckdb through cgo, so it is only registered
// in cgo builds. Connect reports a clear error when it is missing.
import _ "github.com/marcboeker/go-duckdb/v2"
