package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the skudadmin console.
//
// Fields:
//   - APIBaseURL: scheme://host[:port] of the server; the client appends /api.
//   - DatabasePath: sqlite file holding the persisted session and location.
//   - RequestTimeout: per-request HTTP timeout.
//   - UploadConcurrency: max in-flight requests of one photo batch.
//   - EventsPageSize: events per page (limit sent to /api/events).
//   - ReloadDebounce: quiet window before the event list reloads after a filter edit.
//   - LogLevel: debug, info, warn or error.
//   - TimeZone: IANA zone used to render and parse filter timestamps.
type Config struct {
	APIBaseURL        string        `env:"API_BASE_URL"`
	DatabasePath      string        `env:"DATABASE_PATH"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT"`
	UploadConcurrency int           `env:"UPLOAD_CONCURRENCY"`
	EventsPageSize    int           `env:"EVENTS_PAGE_SIZE"`
	ReloadDebounce    time.Duration `env:"RELOAD_DEBOUNCE"`
	LogLevel          string        `env:"LOG_LEVEL"`
	TimeZone          string        `env:"TIME_ZONE"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://localhost"
	c.DatabasePath = "skudadmin.db"
	c.RequestTimeout = 30 * time.Second
	c.UploadConcurrency = 4
	c.EventsPageSize = 100
	c.ReloadDebounce = 100 * time.Millisecond
	c.LogLevel = "info"
	c.TimeZone = "Local"
}

// Location resolves TimeZone. An empty value or "Local" yields time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
