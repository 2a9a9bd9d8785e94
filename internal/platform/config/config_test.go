package config

import (
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic/internal/platform/database"
	dErrors "civic/pkg/domain-errors"
)

func TestFromEnv_Defaults(t *testing.T) {
	for _, key := range []string{
		"CIVIC_ADDR", "CIVIC_ENV", "CIVIC_DB_DRIVER", "CIVIC_DB_URL", "CIVIC_DB_MAX_OPEN_CONNS",
		"CIVIC_REQUEST_TIMEOUT", "CIVIC_SHUTDOWN_TIMEOUT", "CIVIC_MAX_BODY_BYTES", "CIVIC_SEED_DEMO",
		"CIVIC_LOG_LEVEL", "CIVIC_TRUSTED_PROXIES", "CIVIC_TIMEZONE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultAddr, cfg.Addr)
	assert.Equal(t, DefaultEnvironment, cfg.Environment)
	assert.Equal(t, database.DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, database.DefaultConfig().URL, cfg.DatabaseURL)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.MaxBodyBytes)
	assert.False(t, cfg.SeedDemo)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CIVIC_ADDR", "127.0.0.1:9090")
	t.Setenv("CIVIC_DB_DRIVER", "pgx")
	t.Setenv("CIVIC_DB_URL", "postgres://civic@localhost/civic")
	t.Setenv("CIVIC_DB_MAX_OPEN_CONNS", "4")
	t.Setenv("CIVIC_REQUEST_TIMEOUT", "5s")
	t.Setenv("CIVIC_SEED_DEMO", "true")
	t.Setenv("CIVIC_LOG_LEVEL", "DEBUG")
	t.Setenv("CIVIC_TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.7")
	t.Setenv("CIVIC_TIMEZONE", "Asia/Manila")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.Addr)
	assert.Equal(t, "pgx", cfg.DatabaseDriver)
	assert.Equal(t, 4, cfg.DatabaseMaxOpenConns)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.SeedDemo)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.7/32"),
	}, cfg.TrustedProxies)
	assert.Equal(t, "Asia/Manila", cfg.Location.String())

	db := cfg.Database()
	assert.Equal(t, 4, db.MaxOpenConns)
	assert.Equal(t, 4, db.MaxIdleConns)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{name: "unknown driver", key: "CIVIC_DB_DRIVER", val: "mysql", want: "database_driver must be one of [pgx sqlite]"},
		{name: "bad duration", key: "CIVIC_REQUEST_TIMEOUT", val: "soon", want: "CIVIC_REQUEST_TIMEOUT"},
		{name: "zero connections", key: "CIVIC_DB_MAX_OPEN_CONNS", val: "0", want: "database_max_open_conns must be at least 1"},
		{name: "bad bool", key: "CIVIC_SEED_DEMO", val: "maybe", want: "CIVIC_SEED_DEMO"},
		{name: "bad proxy", key: "CIVIC_TRUSTED_PROXIES", val: "10.0.0.0/99", want: "CIVIC_TRUSTED_PROXIES"},
		{name: "bad level", key: "CIVIC_LOG_LEVEL", val: "loud", want: "log_level must be one of"},
		{name: "bad timezone", key: "CIVIC_TIMEZONE", val: "Mars/Olympus", want: "CIVIC_TIMEZONE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFromEnv_PostgresRequiresURL(t *testing.T) {
	t.Setenv("CIVIC_DB_DRIVER", "pgx")
	t.Setenv("CIVIC_DB_URL", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Contains(t, err.Error(), "database_url is required")
}
