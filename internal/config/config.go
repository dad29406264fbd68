// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and the environment.
// - Errors returned from this package wrap ErrInvalidConfig or ErrLoadConfig.
package config

import "time"

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json log lines.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// DBDriver selects the relational store: sqlite or postgres.
	DBDriver string `koanf:"db_driver"`
	// DBDSN is the driver specific data source name.
	DBDSN string `koanf:"db_dsn"`
	// DBMaxOpenConns caps the PostgreSQL connection pool; 0 leaves the driver default. SQLite always uses one connection.
	DBMaxOpenConns int `koanf:"db_max_open_conns"`
	// DBSlowQueryMS marks queries slower than this as warnings in the log.
	DBSlowQueryMS int `koanf:"db_slow_query_ms"`

	// JWTSecret signs issued tokens (HS256). There is no default; startup fails without one.
	JWTSecret string `koanf:"jwt_secret"`
	// JWTIssuer is stamped into the iss claim.
	JWTIssuer string `koanf:"jwt_issuer"`
	// JWTTTLMinutes is the token lifetime.
	JWTTTLMinutes int `koanf:"jwt_ttl_minutes"`
	// BcryptCost is the work factor for stored password hashes.
	BcryptCost int `koanf:"bcrypt_cost"`

	// AdminUsername, when set, bootstraps a superuser at startup.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`
	AdminEmail    string `koanf:"admin_email"`

	// MetricsNamespace and MetricsSubsystem prefix every exported metric name.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`
	// MetricsBucketsMS overrides the latency histogram buckets, in milliseconds.
	MetricsBucketsMS []float64 `koanf:"metrics_buckets_ms"`
	// MetricsLabels are constant labels attached to every metric, e.g. {env: prod}.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "text",
		Addr:           ":8000",
		DBDriver:       DriverSQLite,
		DBDSN:          "muziki.db",
		DBMaxOpenConns: 0,
		DBSlowQueryMS:  200,
		JWTIssuer:      "muziki",
		JWTTTLMinutes:  5,
		BcryptCost:     10,

		MetricsNamespace: "muziki",
		MetricsSubsystem: "catalog",
	}
}

// JWTTTL returns the token lifetime as a duration.
func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

// SlowQueryThreshold returns the slow query threshold as a duration.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.DBSlowQueryMS) * time.Millisecond
}
