// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// SessionModeCookie keeps the identity in a server-side session referenced by a cookie.
	SessionModeCookie = "session"
	// SessionModeToken hands the identity to the client as a signed bearer token.
	SessionModeToken = "token"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	defaultSessionSecret = "change-me"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"-"` // SERVER_TIMEOUT_SECONDS

	// Database Configuration
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"-"` // DB_CONN_MAX_LIFETIME_MINUTES
	DBSQLitePath      string        `mapstructure:"DB_SQLITE_PATH"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Frontend / CORS
	FrontendURL        string   `mapstructure:"FRONTEND_URL"`
	CORSAllowedOrigins []string `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Google OAuth
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `mapstructure:"GOOGLE_REDIRECT_URI"`

	// OAuth state cookie
	OAuthStateCookieName     string `mapstructure:"OAUTH_STATE_COOKIE_NAME"`
	OAuthCookieMaxAgeMinutes int    `mapstructure:"OAUTH_COOKIE_MAX_AGE_MINUTES"`
	OAuthCookieSecure        bool   `mapstructure:"OAUTH_COOKIE_SECURE"`
	OAuthCookieSameSite      string `mapstructure:"OAUTH_COOKIE_SAMESITE"`
	OAuthCookieDomain        string `mapstructure:"OAUTH_COOKIE_DOMAIN"`

	// Session / token issuance
	SessionMode       string        `mapstructure:"SESSION_MODE"`
	SessionStore      string        `mapstructure:"SESSION_STORE"`
	SessionSecret     string        `mapstructure:"SESSION_SECRET"`
	SessionCookieName string        `mapstructure:"SESSION_COOKIE_NAME"`
	SessionTTL        time.Duration `mapstructure:"-"` // SESSION_TTL_HOURS
	StagedTTL         time.Duration `mapstructure:"-"` // STAGED_TTL_MINUTES

	// Redis (used when SESSION_STORE=redis)
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPrefix   string `mapstructure:"REDIS_PREFIX"`

	// Book catalog proxy
	OpenLibrarySearchURL string        `mapstructure:"OPEN_LIBRARY_SEARCH_URL"`
	CatalogTimeout       time.Duration `mapstructure:"-"` // CATALOG_TIMEOUT_SECONDS

	// Account lifecycle events
	EventsAMQPURL  string `mapstructure:"EVENTS_AMQP_URL"`
	EventsExchange string `mapstructure:"EVENTS_EXCHANGE"`

	// Cron Jobs
	StatsJobSchedule string `mapstructure:"STATS_JOB_SCHEDULE"`

	MetricsEnabled bool `mapstructure:"METRICS_ENABLED"`
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Duration fields are plain integers in the environment.
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.SessionTTL = time.Duration(v.GetInt("SESSION_TTL_HOURS")) * time.Hour
	cfg.StagedTTL = time.Duration(v.GetInt("STAGED_TTL_MINUTES")) * time.Minute
	cfg.CatalogTimeout = time.Duration(v.GetInt("CATALOG_TIMEOUT_SECONDS")) * time.Second

	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	// Env vars arrive as a single comma separated string.
	cfg.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{cfg.FrontendURL}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "3000")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_DRIVER", DBDriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "bookmarked_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("DB_SQLITE_PATH", "bookmarked.db")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URI", "http://localhost:3000/auth/google/callback")

	v.SetDefault("OAUTH_STATE_COOKIE_NAME", "bookmarked_oauth_state")
	v.SetDefault("OAUTH_COOKIE_MAX_AGE_MINUTES", 10)
	v.SetDefault("OAUTH_COOKIE_SECURE", false)
	v.SetDefault("OAUTH_COOKIE_SAMESITE", "Lax")
	v.SetDefault("OAUTH_COOKIE_DOMAIN", "")

	v.SetDefault("SESSION_MODE", SessionModeCookie)
	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("SESSION_COOKIE_NAME", "bookmarked.sid")
	v.SetDefault("SESSION_TTL_HOURS", 168)
	v.SetDefault("STAGED_TTL_MINUTES", 30)

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_PREFIX", "bookmarked:session")

	v.SetDefault("OPEN_LIBRARY_SEARCH_URL", "https://openlibrary.org/search.json")
	v.SetDefault("CATALOG_TIMEOUT_SECONDS", 10)

	v.SetDefault("EVENTS_AMQP_URL", "") // Optional, events are dropped when unset
	v.SetDefault("EVENTS_EXCHANGE", "bookmarked.accounts")

	v.SetDefault("STATS_JOB_SCHEDULE", "@every 5m")
	v.SetDefault("METRICS_ENABLED", true)
}

// Validate checks values that would otherwise fail late or insecurely.
func (c *Config) Validate() error {
	switch c.SessionMode {
	case SessionModeCookie, SessionModeToken:
	default:
		return fmt.Errorf("invalid SESSION_MODE %q (expected %q or %q)", c.SessionMode, SessionModeCookie, SessionModeToken)
	}
	switch c.SessionStore {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("invalid SESSION_STORE %q (expected %q or %q)", c.SessionStore, SessionStoreMemory, SessionStoreRedis)
	}
	switch c.DBDriver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		return fmt.Errorf("invalid DB_DRIVER %q", c.DBDriver)
	}

	if c.IsRelease() {
		if strings.TrimSpace(c.SessionSecret) == "" || c.SessionSecret == defaultSessionSecret {
			return fmt.Errorf("FATAL: SESSION_SECRET must be set to a non-default value in release mode")
		}
		if c.GoogleClientID == "" || c.GoogleClientSecret == "" {
			return fmt.Errorf("FATAL: GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required in release mode")
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
