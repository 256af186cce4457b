package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/piwi3910/TabBox/internal/model"
)

// DefaultProfilesPath returns the default file path for custom profiles.
func DefaultProfilesPath() string {
	return filepath.Join(DefaultConfigDir(), "profiles.json")
}

// SaveCustomProfiles saves custom profiles to a JSON file.
func SaveCustomProfiles(path string, profiles []model.MachineProfile) error {
	return writeJSON(path, profiles)
}

// LoadCustomProfiles loads custom profiles from a JSON file.
// Returns an empty slice if the file does not exist.
func LoadCustomProfiles(path string) ([]model.MachineProfile, error) {
	profiles := []model.MachineProfile{}
	if _, err := readJSON(path, &profiles); err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i].IsBuiltIn = false
	}
	return profiles, nil
}

// InstallCustomProfiles loads the profiles at path into model.CustomProfiles
// so GetProfile can resolve them.
func InstallCustomProfiles(path string) error {
	profiles, err := LoadCustomProfiles(path)
	if err != nil {
		return err
	}
	for _, p := range profiles {
		if err := model.AddCustomProfile(p); err != nil {
			return err
		}
	}
	return nil
}

// ExportProfile exports a single profile to a JSON file for sharing.
func ExportProfile(path string, profile model.MachineProfile) error {
	profile.IsBuiltIn = false
	return writeJSON(path, profile)
}

// ImportProfile imports a single profile from a JSON file.
func ImportProfile(path string) (model.MachineProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.MachineProfile{}, err
	}

	var profile model.MachineProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return model.MachineProfile{}, err
	}

	profile.IsBuiltIn = false
	if profile.Name == "" {
		return model.MachineProfile{}, errors.New("imported profile has no name")
	}
	return profile, nil
}
