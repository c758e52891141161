package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// defaultPath is where both builder and searchd look for a config file when
// CONFIG_PATH is not set.
const defaultPath = "./config.yaml"

// Load builds the configuration for one tool invocation. Environment
// variables override YAML values, which override the env-default tags.
//
// A missing file at the default path is fine (containerized deployments set
// everything through the environment); a missing file at an explicit
// CONFIG_PATH is an error, since the operator asked for it. The returned
// config has passed Validate.
func Load() (*Config, error) {
	var cfg Config

	path, explicit := os.LookupEnv("CONFIG_PATH")
	if !explicit || path == "" {
		explicit = false
		path = defaultPath
	}

	switch _, err := os.Stat(path); {
	case err == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit:
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}
