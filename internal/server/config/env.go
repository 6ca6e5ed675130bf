package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable name in Config tags.
const EnvPrefix = "MESSAGELY_"

// parseEnv overlays MESSAGELY_* variables onto config. Unset variables leave
// the current value untouched.
func parseEnv(config *Config) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// loadDotEnv loads the first readable file among paths into the process
// environment. Variables that are already set are not overridden, and a
// missing file is not an error.
func loadDotEnv(paths ...string) string {
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			return p
		}
	}
	return ""
}
