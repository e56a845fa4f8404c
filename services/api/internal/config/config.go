package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load builds the service configuration. An optional YAML file named by
// SLUGGO_CONFIG supplies the base; environment variables override it, so a
// container can ship a file and still be tuned per deployment.
func Load() (Config, error) {
	cfg := Config{}

	if path := os.Getenv("SLUGGO_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	return cfg, validate(cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("SLUGGO_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("SLUGGO_DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("SLUGGO_NATS_URL"); v != "" {
		cfg.Bus.URL = v
	}
	if v := os.Getenv("SLUGGO_ATTACHMENT_BUCKET"); v != "" {
		cfg.Storage.AttachmentBucket = v
	}
	if v := os.Getenv("SLUGGO_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Auth.TokenTTL = d
		}
	}
	cfg.Paging.PageSize = getEnvInt("SLUGGO_PAGE_SIZE", cfg.Paging.PageSize)
	cfg.Paging.MaxPageSize = getEnvInt("SLUGGO_MAX_PAGE_SIZE", cfg.Paging.MaxPageSize)
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.Auth.TokenTTL <= 0 {
		cfg.Auth.TokenTTL = 12 * time.Hour
	}
	if cfg.Paging.PageSize <= 0 {
		cfg.Paging.PageSize = 25
	}
	if cfg.Paging.MaxPageSize <= 0 {
		cfg.Paging.MaxPageSize = 100
	}
}

func validate(cfg Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("SLUGGO_DB_DSN is required")
	}
	if cfg.Paging.PageSize > cfg.Paging.MaxPageSize {
		return fmt.Errorf("page size %d exceeds the maximum %d",
			cfg.Paging.PageSize, cfg.Paging.MaxPageSize)
	}
	return nil
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
