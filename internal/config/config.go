// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// langPlaceholder marks where the language code goes in the event dump URL.
const langPlaceholder = "{{LANG}}"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// Upstream feeds
	CategoryAPIURL  string // category dump, per language
	EventDumpURL    string // event dump, contains {{LANG}}
	ResultAPIURL    string // ended events dump
	CategoryDataURL string // single ended-event detail, event id appended
	SocketURL       string // in-play websocket feed

	// Languages served; the default language's tree receives live patches.
	Languages       []string
	DefaultLanguage string

	// Timezone for day boundaries.
	TimeZone string

	// CacheLifetime is the bulk fetch interval; WindowRefresh re-derives the
	// time windows.
	CacheLifetime time.Duration
	WindowRefresh time.Duration

	// Category ids that collapse their subtree, and ids hidden from search.
	MergePointIDs      []int64
	IgnoredCategoryIDs []int64

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		CategoryAPIURL:  os.Getenv("API_URL"),
		EventDumpURL:    os.Getenv("EVENT_DUMP_URL"),
		ResultAPIURL:    os.Getenv("RESULT_API_URL"),
		CategoryDataURL: os.Getenv("CATEGORY_DATA_URL"),
		SocketURL:       os.Getenv("SOCKET_URL"),

		Languages:       splitCSV(envOrDefault("LANGUAGES", "de")),
		DefaultLanguage: envOrDefault("DEFAULT_LANGUAGE", "de"),

		TimeZone: envOrDefault("TIME_ZONE", "Europe/Berlin"),

		MergePointIDs:      parseIDList(os.Getenv("MERGE_POINT_IDS")),
		IgnoredCategoryIDs: parseIDList(os.Getenv("IGNORED_CATEGORY_IDS")),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "sportboard"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "sportboard"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),
	}

	var err error
	if cfg.CacheLifetime, err = durationOrDefault("CACHE_LIFETIME", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.WindowRefresh, err = durationOrDefault("WINDOW_REFRESH", time.Minute); err != nil {
		return nil, err
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.EventDumpURL == "" {
			return nil, fmt.Errorf("EVENT_DUMP_URL must be set in production")
		}
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// EventDumpURLFor returns the event dump URL for a language.
func (c *Config) EventDumpURLFor(lang string) string {
	return strings.ReplaceAll(c.EventDumpURL, langPlaceholder, lang)
}

// CategoryAPIURLFor returns the category dump URL for a language.
func (c *Config) CategoryAPIURLFor(lang string) string {
	return strings.ReplaceAll(c.CategoryAPIURL, langPlaceholder, lang)
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// durationOrDefault reads a duration-valued environment variable ("15m", "1h").
func durationOrDefault(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, v, err)
	}
	return d, nil
}

// splitCSV splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseIDList parses a comma-separated list of numeric ids. Entries that do
// not parse are skipped.
func parseIDList(value string) []int64 {
	var out []int64
	for _, part := range strings.Split(value, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}
