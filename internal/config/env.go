package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override, e.g. FRAMEDOC_OUTPUT_DIR.
const EnvPrefix = "FRAMEDOC_"

// envFiles are tried in order; existing process variables are never overwritten.
var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads the first readable .env file, if any.
func loadEnvFile() {
	for _, path := range envFiles {
		if err := godotenv.Load(path); err == nil {
			return
		}
	}
}

// applyEnv overlays FRAMEDOC_* variables onto cfg.
func applyEnv(cfg *Config) error {
	return env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix})
}
