package config

import (
	"os"
	"regexp"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/nyc-taxi-co2/analysis/internal/apperr"
)

// Supported database drivers
const (
	DriverDuckDB   = "duckdb"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Config holds all configuration for a report run
type Config struct {
	// Database
	Driver       string
	DatabasePath string // file path, or connection URL for postgres

	// Source tables
	YellowTable string
	GreenTable  string

	// Outputs
	LogPath   string
	LogLevel  string
	ChartPath string
	ChartDPI  int
	JSONPath  string
}

// Load reads configuration from .env files and environment variables with sensible defaults
func Load() *Config {
	// Base .env first, then .env.local overrides it for local runs
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	return &Config{
		Driver:       getEnv("CO2_DRIVER", DriverDuckDB),
		DatabasePath: getEnv("CO2_DATABASE", "emissions.duckdb"),

		YellowTable: getEnv("CO2_YELLOW_TABLE", "yellow_transform"),
		GreenTable:  getEnv("CO2_GREEN_TABLE", "green_transform"),

		LogPath:   getEnv("CO2_LOG_PATH", "analysis.log"),
		LogLevel:  getEnv("CO2_LOG_LEVEL", "INFO"),
		ChartPath: getEnv("CO2_CHART_PATH", "monthly_co2_totals.png"),
		ChartDPI:  getEnvInt("CO2_CHART_DPI", 150),
		JSONPath:  getEnv("CO2_JSON_PATH", ""),
	}
}

// Validate rejects unknown drivers and table names that are not plain identifiers
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverDuckDB, DriverSQLite, DriverPostgres:
	default:
		return apperr.InvalidInput("unsupported driver %q", c.Driver)
	}
	if c.ChartDPI <= 0 {
		return apperr.InvalidInput("chart dpi must be positive, got %d", c.ChartDPI)
	}
	if c.DatabasePath == "" {
		return apperr.InvalidInput("database path is empty")
	}
	for _, table := range []string{c.YellowTable, c.GreenTable} {
		if !ValidIdentifier(table) {
			return apperr.InvalidInput("invalid table name %q", table)
		}
	}
	return nil
}

// IsFileBacked reports whether the database lives in a local file that must exist
func (c *Config) IsFileBacked() bool {
	return c.Driver != DriverPostgres
}

// ValidIdentifier reports whether name is safe to interpolate as a SQL identifier
func ValidIdentifier(name string) bool {
	return identifierRe.MatchString(name)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
