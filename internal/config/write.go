package config

import (
	"os"
	"path/filepath"

	"github.com/rileyhilliard/rcpu/internal/errors"
	"gopkg.in/yaml.v3"
)

const fileHeader = "# rcpu configuration\n# Environment variables override these values, e.g. RCPU_SERVER_LISTEN.\n\n"

// Marshal renders cfg as commented YAML.
func Marshal(cfg *Config) ([]byte, error) {
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig, "Failed to encode config", "")
	}
	return append([]byte(fileHeader), body...), nil
}

// Write validates cfg and writes it to path, creating parent directories.
func Write(path string, cfg *Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create config directory", "Check permissions on "+filepath.Dir(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file", "Check permissions on "+path)
	}
	return nil
}
