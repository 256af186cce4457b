package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/TabBox/internal/model"
)

func TestSaveAndLoadCustomProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "profiles.json")

	profiles := []model.MachineProfile{
		model.NewCustomProfile("TestProfile1"),
		{Name: "TestProfile2", IsBuiltIn: true, Laser: true},
	}
	if err := SaveCustomProfiles(path, profiles); err != nil {
		t.Fatalf("SaveCustomProfiles: %v", err)
	}

	loaded, err := LoadCustomProfiles(path)
	if err != nil {
		t.Fatalf("LoadCustomProfiles: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(loaded))
	}
	if loaded[0].Name != "TestProfile1" || loaded[1].Name != "TestProfile2" {
		t.Errorf("unexpected names %s, %s", loaded[0].Name, loaded[1].Name)
	}
	if loaded[1].IsBuiltIn {
		t.Error("loaded profile should not be marked as built-in")
	}
	if !loaded[1].Laser {
		t.Error("laser flag lost")
	}
}

func TestLoadCustomProfilesNonExistent(t *testing.T) {
	profiles, err := LoadCustomProfiles(filepath.Join(t.TempDir(), "nonexistent.json"))
	if err != nil {
		t.Fatalf("expected no error for nonexistent file, got: %v", err)
	}
	if len(profiles) != 0 {
		t.Fatalf("expected 0 profiles for nonexistent file, got %d", len(profiles))
	}
}

func TestLoadCustomProfilesInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not valid json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCustomProfiles(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestInstallCustomProfiles(t *testing.T) {
	model.CustomProfiles = nil
	defer func() { model.CustomProfiles = nil }()

	path := filepath.Join(t.TempDir(), "profiles.json")
	p := model.NewCustomProfile("Shop Laser")
	p.Laser = true
	if err := SaveCustomProfiles(path, []model.MachineProfile{p}); err != nil {
		t.Fatal(err)
	}
	if err := InstallCustomProfiles(path); err != nil {
		t.Fatalf("InstallCustomProfiles: %v", err)
	}
	if got := model.GetProfile("Shop Laser"); !got.Laser {
		t.Errorf("expected installed laser profile, got %+v", got)
	}
}

func TestInstallCustomProfilesRejectsBuiltInName(t *testing.T) {
	model.CustomProfiles = nil
	defer func() { model.CustomProfiles = nil }()

	path := filepath.Join(t.TempDir(), "profiles.json")
	if err := SaveCustomProfiles(path, []model.MachineProfile{{Name: "Generic"}}); err != nil {
		t.Fatal(err)
	}
	if err := InstallCustomProfiles(path); err == nil {
		t.Fatal("expected error for built-in name")
	}
}

func TestExportAndImportProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exported.json")

	original := model.NewCustomProfile("ExportedProfile")
	original.IsBuiltIn = true
	original.CommentPrefix = "("
	original.CommentSuffix = ")"

	if err := ExportProfile(path, original); err != nil {
		t.Fatalf("ExportProfile: %v", err)
	}
	imported, err := ImportProfile(path)
	if err != nil {
		t.Fatalf("ImportProfile: %v", err)
	}
	if imported.Name != "ExportedProfile" {
		t.Errorf("expected ExportedProfile, got %s", imported.Name)
	}
	if imported.IsBuiltIn {
		t.Error("imported profile should not be built-in")
	}
	if imported.CommentSuffix != ")" {
		t.Errorf("expected comment suffix ), got %q", imported.CommentSuffix)
	}
}

func TestImportProfileNoName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noname.json")
	if err := os.WriteFile(path, []byte(`{"description":"x"}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportProfile(path); err == nil {
		t.Fatal("expected error for profile without a name")
	}
}
