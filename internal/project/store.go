// Package project persists designs, preferences, machine profiles and
// templates as JSON files under the user's ~/.tabbox directory.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/TabBox/internal/model"
)

// DesignExt is the file extension used for saved designs.
const DesignExt = ".tabbox.json"

// DefaultConfigDir returns the default directory for application data,
// ~/.tabbox on all platforms.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".tabbox")
}

// DefaultConfigPath returns the default path for the application config file.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// writeJSON marshals v with indentation, creating parent directories.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// readJSON unmarshals path into v. found is false when the file does not
// exist, which callers treat as "use defaults".
func readJSON(path string, v any) (found bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return true, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// SaveDesign writes a design to path.
func SaveDesign(path string, d model.Design) error {
	return writeJSON(path, d)
}

// LoadDesign reads a design from path. Unlike the preference files, a
// missing design is an error.
func LoadDesign(path string) (model.Design, error) {
	var d model.Design
	found, err := readJSON(path, &d)
	if err != nil {
		return model.Design{}, err
	}
	if !found {
		return model.Design{}, fmt.Errorf("design %s: %w", path, os.ErrNotExist)
	}
	if d.Cutouts == nil {
		d.Cutouts = []model.CutoutSpec{}
	}
	return d, nil
}

// SaveAppConfig persists an AppConfig to the given path as JSON.
func SaveAppConfig(path string, config model.AppConfig) error {
	return writeJSON(path, config)
}

// LoadAppConfig reads an AppConfig from the given path.
// If the file does not exist, it returns DefaultAppConfig with no error.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	if _, err := readJSON(path, &config); err != nil {
		return model.AppConfig{}, err
	}
	if config.RecentDesigns == nil {
		config.RecentDesigns = []string{}
	}
	return config, nil
}
