package db

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/nyc-taxi-co2/analysis/internal/config"
	"github.com/nyc-taxi-co2/analysis/internal/logging"
)

// DataSource is the read-only query capability the analysis runs against
type DataSource interface {
	// TableExists reports whether name is a table or view. Backend errors read as false.
	TableExists(ctx context.Context, name string) bool
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
	// Placeholder returns the bind marker for the n-th (1-based) query argument
	Placeholder(n int) string
}

// dialect captures the per-backend differences the adapter cares about
type dialect struct {
	driverName  string
	catalogSQL  string // table lookup, %s is the name placeholder
	placeholder func(n int) string
	open        func(path string) (*sql.DB, error)
}

func questionMark(int) string { return "?" }

func dollarN(n int) string { return "$" + strconv.Itoa(n) }

var dialects = map[string]dialect{
	config.DriverDuckDB: {
		driverName:  "duckdb",
		catalogSQL:  "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = %s",
		placeholder: questionMark,
		open: func(path string) (*sql.DB, error) {
			return sql.Open("duckdb", path+"?access_mode=READ_ONLY")
		},
	},
	config.DriverSQLite: {
		driverName:  "sqlite",
		catalogSQL:  "SELECT COUNT(*) FROM sqlite_master WHERE type IN ('table', 'view') AND name = %s",
		placeholder: questionMark,
		open: func(path string) (*sql.DB, error) {
			return sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=query_only(1)")
		},
	},
	config.DriverPostgres: {
		driverName:  "pgx",
		catalogSQL:  "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = %s",
		placeholder: dollarN,
		open: func(dsn string) (*sql.DB, error) {
			cfg, err := postgresConfig(dsn)
			if err != nil {
				return nil, err
			}
			return stdlib.OpenDB(*cfg), nil
		},
	},
}

// postgresConfig parses a URL or keyword/value connection string and forces
// every transaction to be read-only
func postgresConfig(dsn string) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres connection string: %w", err)
	}
	if cfg.RuntimeParams == nil {
		cfg.RuntimeParams = map[string]string{}
	}
	cfg.RuntimeParams["default_transaction_read_only"] = "on"
	return cfg, nil
}

// DB wraps a single read-only database connection
type DB struct {
	conn    *sql.DB
	dialect dialect
	log     *logging.Logger
}

// Connect opens the database at path read-only using the named driver
// (one of config.DriverDuckDB, config.DriverSQLite, config.DriverPostgres).
func Connect(ctx context.Context, driver, path string, logger *logging.Logger) (*DB, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if !slices.Contains(sql.Drivers(), d.driverName) {
		return nil, fmt.Errorf("driver %q is not compiled into this binary", d.driverName)
	}

	conn, err := d.open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection for the whole run, released by Close
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to %s database for analysis: %s", driver, path)
	return &DB{conn: conn, dialect: d, log: logger}, nil
}

// New wraps an already opened connection. Used for fixtures that need to
// write before handing the connection to the analysis.
func New(conn *sql.DB, driver string, logger *logging.Logger) (*DB, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	return &DB{conn: conn, dialect: d, log: logger}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// TableExists checks the catalog for name. It fails closed: any backend
// error is logged and reported as a missing table.
func (db *DB) TableExists(ctx context.Context, name string) bool {
	var count int
	query := fmt.Sprintf(db.dialect.catalogSQL, db.Placeholder(1))
	if err := db.conn.QueryRowContext(ctx, query, name).Scan(&count); err != nil {
		db.log.Error("Table check failed for %s: %v", name, err)
		return false
	}
	return count > 0
}

// Query runs a read-only query with bound arguments
func (db *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	db.log.Debug("query: %s", compact(query))
	return db.conn.QueryContext(ctx, query, args...)
}

// QueryRow runs a read-only query expected to return at most one row
func (db *DB) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	db.log.Debug("query: %s", compact(query))
	return db.conn.QueryRowContext(ctx, query, args...)
}

// Placeholder returns the bind marker for the n-th argument: "?" for
// DuckDB and SQLite, "$n" for Postgres
func (db *DB) Placeholder(n int) string {
	return db.dialect.placeholder(n)
}

// compact folds a multi-line query onto one line for logging
func compact(query string) string {
	return strings.Join(strings.Fields(query), " ")
}
