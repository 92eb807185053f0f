package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyc-taxi-co2/analysis/internal/config"
)

func TestPostgresConfigForcesReadOnly(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		host string
		user string
	}{
		{"url", "postgres://report@db.internal:5432/taxi", "db.internal", "report"},
		{"url with query", "postgres://report@db.internal/taxi?sslmode=disable", "db.internal", "report"},
		{"keyword value", "host=db.internal user=report dbname=taxi sslmode=disable", "db.internal", "report"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := postgresConfig(tc.dsn)
			require.NoError(t, err)
			assert.Equal(t, tc.host, cfg.Host)
			assert.Equal(t, tc.user, cfg.User)
			assert.Equal(t, "taxi", cfg.Database)
			assert.Equal(t, "on", cfg.RuntimeParams["default_transaction_read_only"])
		})
	}
}

func TestPostgresConfigRejectsGarbage(t *testing.T) {
	_, err := postgresConfig("postgres://%zz")
	assert.ErrorContains(t, err, "invalid postgres connection string")
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		driver string
		first  string
		third  string
	}{
		{config.DriverDuckDB, "?", "?"},
		{config.DriverSQLite, "?", "?"},
		{config.DriverPostgres, "$1", "$3"},
	}
	for _, tc := range tests {
		t.Run(tc.driver, func(t *testing.T) {
			database, err := New(nil, tc.driver, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.first, database.Placeholder(1))
			assert.Equal(t, tc.third, database.Placeholder(3))
		})
	}
}
