// Package config defines the portal's process configuration and how it is
// loaded from defaults, an optional YAML file and PORTAL_* environment
// variables.
package config

import (
	"fmt"
	"time"
)

// Supported storage backends.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// CORSOrigin is echoed in Access-Control-Allow-Origin.
	CORSOrigin string `koanf:"cors_origin"`

	// DatabaseDriver selects the store: postgres or sqlite.
	DatabaseDriver string `koanf:"database_driver"`
	DBHost         string `koanf:"db_host"`
	DBPort         string `koanf:"db_port"`
	DBUser         string `koanf:"db_user"`
	DBPassword     string `koanf:"db_password"`
	DBName         string `koanf:"db_name"`
	DBSSLMode      string `koanf:"db_sslmode"`
	DBMaxConns     int32  `koanf:"db_max_conns"`
	DBMinConns     int32  `koanf:"db_min_conns"`
	// SQLitePath is a file path or ":memory:".
	SQLitePath     string `koanf:"sqlite_path"`

	// DefaultTeamSize is the member limit for team events with no size set.
	DefaultTeamSize int `koanf:"default_team_size"`
	// StatusCacheTTLMS is the staleness window for cached fire status reads.
	StatusCacheTTLMS int `koanf:"status_cache_ttl_ms"`

	// Admin credentials. AdminPasswordHash is a bcrypt hash.
	AdminEmail        string `koanf:"admin_email"`
	AdminPasswordHash string `koanf:"admin_password_hash"`
	JWTSecret         string `koanf:"jwt_secret"`
	SessionTTLMinutes int    `koanf:"session_ttl_minutes"`

	// UploadDir holds event images; PublicBaseURL prefixes their public URLs.
	UploadDir     string `koanf:"upload_dir"`
	PublicBaseURL string `koanf:"public_base_url"`

	// Optional organiser notifications.
	DiscordBotToken  string `koanf:"discord_bot_token"`
	DiscordChannelID string `koanf:"discord_channel_id"`

	// OTelEndpoint enables OTLP trace export when set.
	OTelEndpoint string `koanf:"otel_endpoint"`
}

// New returns a Config populated with local-development defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8080",
		CORSOrigin:        "*",
		DatabaseDriver:    DriverPostgres,
		DBHost:            "localhost",
		DBPort:            "5432",
		DBUser:            "postgres",
		DBPassword:        "postgres",
		DBName:            "eventportal",
		DBSSLMode:         "disable",
		DBMaxConns:        20,
		DBMinConns:        2,
		SQLitePath:        "portal.db",
		DefaultTeamSize:   4,
		StatusCacheTTLMS:  5000,
		SessionTTLMinutes: 24 * 60,
		UploadDir:         "uploads",
		PublicBaseURL:     "http://localhost:8080",
	}
}

// DSN builds a libpq-compatible connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// StatusCacheTTL returns the fire status staleness window.
func (c *Config) StatusCacheTTL() time.Duration {
	return time.Duration(c.StatusCacheTTLMS) * time.Millisecond
}

// SessionTTL returns the lifetime of admin session tokens.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DatabaseDriver != DriverPostgres && c.DatabaseDriver != DriverSQLite:
		return fmt.Errorf("%w: unknown database_driver %q", ErrInvalidConfig, c.DatabaseDriver)
	case c.DefaultTeamSize < 1:
		return fmt.Errorf("%w: default_team_size must be positive", ErrInvalidConfig)
	case c.StatusCacheTTLMS < 0:
		return fmt.Errorf("%w: status_cache_ttl_ms must not be negative", ErrInvalidConfig)
	case c.SessionTTLMinutes <= 0:
		return fmt.Errorf("%w: session_ttl_minutes must be positive", ErrInvalidConfig)
	}
	return nil
}
