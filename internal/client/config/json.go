package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/skudadmin/internal/flagx"
	"github.com/dmitrijs2005/skudadmin/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Zero values
// are treated as absent.
type JsonConfig struct {
	APIBaseURL        string         `json:"api_base_url"`
	DatabasePath      string         `json:"database_path"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	UploadConcurrency int            `json:"upload_concurrency"`
	EventsPageSize    int            `json:"events_page_size"`
	ReloadDebounce    timex.Duration `json:"reload_debounce"`
	LogLevel          string         `json:"log_level"`
	TimeZone          string         `json:"time_zone"`
}

// parseJson overlays Config with values loaded from a JSON file named by
// -c or -config. Only non-zero JSON values replace what is already in cfg.
//
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.UploadConcurrency > 0 {
		cfg.UploadConcurrency = jc.UploadConcurrency
	}
	if jc.EventsPageSize > 0 {
		cfg.EventsPageSize = jc.EventsPageSize
	}
	if jc.ReloadDebounce.Duration > 0 {
		cfg.ReloadDebounce = jc.ReloadDebounce.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.TimeZone != "" {
		cfg.TimeZone = jc.TimeZone
	}
}
