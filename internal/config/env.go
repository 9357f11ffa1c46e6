package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds settings read from the environment. Empty values mean unset.
type EnvConfig struct {
	ConfigPath string `env:"BADHABBIT_CONFIG"`
	DBPath     string `env:"BADHABBIT_DB_PATH"`
	Catalog    string `env:"BADHABBIT_CATALOG"`
	LogLevel   string `env:"BADHABBIT_LOG_LEVEL"`
	Standalone *bool  `env:"BADHABBIT_STANDALONE"`
	PollMs     *int   `env:"BADHABBIT_POLL_MS"`
	Seed       *int64 `env:"BADHABBIT_SEED"`
}

// LoadEnv parses EnvConfig from the process environment.
func LoadEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
