package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/raycam/internal/model"
)

// DefaultToolLibraryPath returns the default file path for the tool library.
// This is located at ~/.raycam/tools.json.
func DefaultToolLibraryPath() string {
	return filepath.Join(DefaultConfigDir(), "tools.json")
}

// SaveToolLibrary writes the tool library to the specified JSON file.
// It creates parent directories if they do not exist.
func SaveToolLibrary(path string, lib model.ToolLibrary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(lib, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadToolLibrary reads the tool library from the specified JSON file.
// A missing file yields an empty library and no error.
func LoadToolLibrary(path string) (model.ToolLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.ToolLibrary{}, nil
		}
		return model.ToolLibrary{}, err
	}
	var lib model.ToolLibrary
	if err := json.Unmarshal(data, &lib); err != nil {
		return model.ToolLibrary{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return lib, nil
}

// LoadTools returns the tools configured in cfg followed by those in the
// library file at path. Config entries win on ID clashes.
func LoadTools(cfg model.AppConfig, path string) (model.ToolLibrary, error) {
	lib := cfg.ToolLibrary()
	file, err := LoadToolLibrary(path)
	if err != nil {
		return model.ToolLibrary{}, err
	}
	lib.Merge(file)
	return lib, nil
}
