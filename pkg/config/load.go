package config

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first env file found among candidates (searching parent
// directories, see FindEnvFile) and then builds the App config from the
// process environment. Variables already set in the environment win over the
// file. Without candidates, or when none is found, ".env" in the working
// directory is tried. A missing file is not an error.
func Load(candidates ...string) (*App, error) {
	loadEnvFile(candidates)

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Config loaded",
		"env", cfg.Env,
		"store_backend", cfg.Store.Backend,
		"db", maskValue(cfg.DB.Url),
		"redis", maskValue(cfg.Redis.URL),
		"event_bus", cfg.EventBus.Driver,
		"breaker_enabled", cfg.Breaker.Enabled,
		"processing_delay", cfg.ProcessingDelay,
		"dispatcher_workers", cfg.Dispatcher.Workers,
	)
	return &cfg, nil
}

func loadEnvFile(candidates []string) {
	for _, name := range candidates {
		path, err := FindEnvFile(name)
		if err != nil {
			slog.Debug("Env file not found", "name", name)
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Env file unreadable", "path", path, "error", err)
			continue
		}
		slog.Info("Env file loaded", "path", path)
		return
	}
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env in working directory")
	}
}

// maskValue keeps the first two and last four characters of a secret.
func maskValue(v string) string {
	if len(v) <= 6 {
		return "****"
	}
	return v[:2] + "****" + v[len(v)-4:]
}
