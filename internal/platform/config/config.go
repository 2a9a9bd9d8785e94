package config

import (
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"civic/internal/platform/database"
	"civic/pkg/validation"
)

// Config captures process configuration read from the environment.
type Config struct {
	Addr                 string        `validate:"required,hostname_port"`
	Environment          string        `validate:"required"`
	DatabaseDriver       string        `validate:"oneof=pgx sqlite"`
	DatabaseURL          string        `validate:"required"`
	DatabaseMaxOpenConns int           `validate:"gte=1"`
	RequestTimeout       time.Duration `validate:"gt=0"`
	ShutdownTimeout      time.Duration `validate:"gt=0"`
	MaxBodyBytes         int64         `validate:"gte=1024"`
	SeedDemo             bool
	LogLevel             string `validate:"oneof=debug info warn error"`
	TrustedProxies       []netip.Prefix
	Location             *time.Location `validate:"required"`
}

// Defaults for unset variables.
const (
	DefaultAddr            = ":8080"
	DefaultEnvironment     = "local"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodyBytes    = 1 << 20
	DefaultLogLevel        = "info"
)

// FromEnv builds a Config from CIVIC_* environment variables so main stays lean.
// Malformed values are errors rather than silently replaced by defaults.
func FromEnv() (Config, error) {
	dbDefaults := database.DefaultConfig()
	cfg := Config{
		Addr:                 envOr("CIVIC_ADDR", DefaultAddr),
		Environment:          envOr("CIVIC_ENV", DefaultEnvironment),
		DatabaseDriver:       envOr("CIVIC_DB_DRIVER", database.DriverSQLite),
		DatabaseURL:          os.Getenv("CIVIC_DB_URL"),
		DatabaseMaxOpenConns: dbDefaults.MaxOpenConns,
		RequestTimeout:       DefaultRequestTimeout,
		ShutdownTimeout:      DefaultShutdownTimeout,
		MaxBodyBytes:         DefaultMaxBodyBytes,
		LogLevel:             strings.ToLower(envOr("CIVIC_LOG_LEVEL", DefaultLogLevel)),
	}
	if cfg.DatabaseURL == "" && cfg.DatabaseDriver == database.DriverSQLite {
		cfg.DatabaseURL = dbDefaults.URL
	}

	var err error
	if cfg.DatabaseMaxOpenConns, err = intEnv("CIVIC_DB_MAX_OPEN_CONNS", cfg.DatabaseMaxOpenConns); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = durationEnv("CIVIC_REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = durationEnv("CIVIC_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	maxBody, err := intEnv("CIVIC_MAX_BODY_BYTES", int(cfg.MaxBodyBytes))
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)
	if cfg.SeedDemo, err = boolEnv("CIVIC_SEED_DEMO", false); err != nil {
		return Config{}, err
	}
	if cfg.TrustedProxies, err = prefixesEnv("CIVIC_TRUSTED_PROXIES"); err != nil {
		return Config{}, err
	}
	if cfg.Location, err = time.LoadLocation(envOr("CIVIC_TIMEZONE", "UTC")); err != nil {
		return Config{}, fmt.Errorf("CIVIC_TIMEZONE: %w", err)
	}

	if err := validation.Validate(&cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Database returns the pool configuration derived from cfg.
func (c Config) Database() database.Config {
	db := database.DefaultConfig()
	db.Driver = c.DatabaseDriver
	db.URL = c.DatabaseURL
	db.MaxOpenConns = c.DatabaseMaxOpenConns
	if db.MaxIdleConns > db.MaxOpenConns {
		db.MaxIdleConns = db.MaxOpenConns
	}
	return db
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func prefixesEnv(key string) ([]netip.Prefix, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil, nil
	}
	var out []netip.Prefix
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "/") {
			addr, err := netip.ParseAddr(part)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		p, err := netip.ParsePrefix(part)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		out = append(out, p.Masked())
	}
	return out, nil
}
