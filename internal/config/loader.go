package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// defaultPath is used when CONFIG_PATH is unset.
const defaultPath = "./lookup.yaml"

// Load reads configuration from CONFIG_PATH (fallback ./lookup.yaml) and the
// environment. Priority: ENV > YAML > env-default tags.
// A missing fallback file is not an error; a missing explicit file is.
func Load() (*Config, error) {
	path, explicit := os.LookupEnv("CONFIG_PATH")
	if !explicit || path == "" {
		return LoadFile(defaultPath, false)
	}
	return LoadFile(path, true)
}

// LoadFile reads configuration from path. When required is false and the
// file does not exist, only ENV and defaults are used.
func LoadFile(path string, required bool) (*Config, error) {
	var cfg Config

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case errors.Is(statErr, fs.ErrNotExist) && !required:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	default:
		return nil, fmt.Errorf("config: file %s: %w", path, statErr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}
