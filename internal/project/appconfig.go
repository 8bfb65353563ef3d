// Package project persists application configuration and tool libraries.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/raycam/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultConfigDir returns the default directory for application configuration.
// On all platforms this is ~/.raycam/
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".raycam")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// SaveAppConfig persists an AppConfig to the given path as YAML.
// It creates any missing parent directories automatically.
func SaveAppConfig(path string, config model.AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadAppConfig reads an AppConfig from the given path. Keys missing from
// the file keep their default values. If the file does not exist, it
// returns DefaultAppConfig with no error.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return model.AppConfig{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(config.Tools) == 0 {
		config.Tools = model.DefaultToolLibrary().Tools
	}
	if err := config.Contour.Validate(); err != nil {
		return model.AppConfig{}, fmt.Errorf("%s: contour: %w", path, err)
	}
	if err := config.Clearing.Validate(); err != nil {
		return model.AppConfig{}, fmt.Errorf("%s: clearing: %w", path, err)
	}
	return config, nil
}
