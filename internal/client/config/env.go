package config

import (
	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment variable name, e.g.
// SKUDADMIN_API_BASE_URL.
const EnvPrefix = "SKUDADMIN_"

// parseEnv overlays Config with variables present in the environment.
// Unset variables leave the current values untouched.
//
// Panics when a variable is present but cannot be parsed.
func parseEnv(cfg *Config) {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
