package project

import (
	"fmt"
	"time"

	"github.com/piwi3910/TabBox/internal/model"
)

// backupVersion is written into every backup file.
const backupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all
// application data.
type BackupData struct {
	Version   string                 `json:"version"`
	CreatedAt string                 `json:"created_at"`
	Config    model.AppConfig        `json:"config"`
	Profiles  []model.MachineProfile `json:"profiles"`
	Templates model.TemplateStore    `json:"templates"`
}

// ExportAllData writes config, custom profiles and templates to a single
// JSON file.
func ExportAllData(exportPath string, config model.AppConfig, profiles []model.MachineProfile, templates model.TemplateStore) error {
	backup := BackupData{
		Version:   backupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Profiles:  profiles,
		Templates: templates,
	}
	if backup.Profiles == nil {
		backup.Profiles = []model.MachineProfile{}
	}
	if err := writeJSON(exportPath, backup); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup file. The caller applies what it contains.
func ImportAllData(importPath string) (BackupData, error) {
	var backup BackupData
	found, err := readJSON(importPath, &backup)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	if !found {
		return BackupData{}, fmt.Errorf("backup file %s does not exist", importPath)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	if backup.Config.RecentDesigns == nil {
		backup.Config.RecentDesigns = []string{}
	}
	if backup.Profiles == nil {
		backup.Profiles = []model.MachineProfile{}
	}
	if backup.Templates.Templates == nil {
		backup.Templates.Templates = []model.DesignTemplate{}
	}
	for i := range backup.Profiles {
		backup.Profiles[i].IsBuiltIn = false
	}
	return backup, nil
}
