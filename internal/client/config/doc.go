// Package config loads runtime configuration for the skudadmin console.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Environment variables prefixed with SKUDADMIN_ (see parseEnv).
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the access-control server (without the /api suffix)
//	-d string   path to the local session database
//	-l string   log level: debug, info, warn or error
//	-t int      HTTP request timeout (seconds)
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s"
// or integer nanoseconds:
//
//	{
//	  "api_base_url": "https://localhost",
//	  "database_path": "skudadmin.db",
//	  "request_timeout": "10s",
//	  "upload_concurrency": 4,
//	  "events_page_size": 100,
//	  "reload_debounce": "100ms",
//	  "log_level": "info",
//	  "time_zone": "Europe/Moscow"
//	}
package config
