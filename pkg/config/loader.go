package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultPath = "./kelime.yaml"

// Load reads configuration from an optional YAML file and environment
// variables. Environment wins over the file; env-default tags fill the rest.
//
// The file is KELIME_CONFIG when set, which must then exist, or
// ./kelime.yaml when present.
func Load() (*Config, error) {
	var cfg Config

	path, explicit := os.LookupEnv("KELIME_CONFIG")
	explicit = explicit && path != ""
	if !explicit {
		path = defaultPath
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit || !errors.Is(statErr, fs.ErrNotExist):
		return nil, fmt.Errorf("config: file %s: %w", path, statErr)
	default:
		// No file: a fresh checkout runs on env + defaults alone.
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}
