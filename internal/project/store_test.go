package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/TabBox/internal/model"
)

func newTestDesign() model.Design {
	d := model.NewDesign("PSU", 100, 50, 65, 3, 2)
	d.Cutouts = []model.CutoutSpec{
		{Panel: "upper", Kind: model.CutoutRect, Name: "switch", X1: 5, Y1: 12, X2: 12.8, Y2: 31.05, Corner: model.CornerNW},
		{Panel: "left", Kind: model.CutoutCircle, X1: 10, Y1: 10, X2: 22, Y2: 22, Corner: model.CornerSE, Rotate: 90},
	}
	return d
}

// ─── Designs ───

func TestSaveAndLoadDesign(t *testing.T) {
	path := filepath.Join(t.TempDir(), "designs", "psu"+DesignExt)
	d := newTestDesign()

	require.NoError(t, SaveDesign(path, d))
	loaded, err := LoadDesign(path)
	require.NoError(t, err)
	assert.Equal(t, d, loaded)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"corner": "nw"`)
	assert.Contains(t, string(raw), `"kind": "circle"`)
}

func TestLoadDesignMissingFile(t *testing.T) {
	_, err := LoadDesign(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadDesignRejectsUnknownCorner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	data := []byte(`{"width":10,"height":10,"depth":10,"thickness":1,"cutouts":[{"panel":"top","kind":"rect","corner":"middle"}]}`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err := LoadDesign(path)
	assert.Error(t, err)
}

func TestLoadDesignNilCutouts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"width":10,"height":10,"depth":10,"thickness":1}`), 0644))

	d, err := LoadDesign(path)
	require.NoError(t, err)
	assert.NotNil(t, d.Cutouts)
}

// ─── App config ───

func TestSaveAndLoadAppConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := model.DefaultAppConfig()
	cfg.DefaultThickness = 4.0
	cfg.LogLevel = "debug"
	cfg.RecentDesigns = []string{"/tmp/a.tabbox.json", "/tmp/b.tabbox.json"}

	if err := SaveAppConfig(path, cfg); err != nil {
		t.Fatalf("SaveAppConfig failed: %v", err)
	}
	loaded, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if loaded.DefaultThickness != 4.0 {
		t.Errorf("expected DefaultThickness=4.0, got %f", loaded.DefaultThickness)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("expected LogLevel=debug, got %s", loaded.LogLevel)
	}
	if len(loaded.RecentDesigns) != 2 {
		t.Errorf("expected 2 recent designs, got %d", len(loaded.RecentDesigns))
	}
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if cfg.DefaultProfile != model.DefaultAppConfig().DefaultProfile {
		t.Errorf("expected default profile, got %s", cfg.DefaultProfile)
	}
}

func TestLoadAppConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"default_thickness": 6, "recent_designs": null}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadAppConfig(path)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}
	if cfg.DefaultThickness != 6 {
		t.Errorf("expected thickness 6, got %f", cfg.DefaultThickness)
	}
	if cfg.DefaultScale != 1.0 {
		t.Errorf("expected default scale to survive, got %f", cfg.DefaultScale)
	}
	if cfg.RecentDesigns == nil {
		t.Error("RecentDesigns should not be nil")
	}
}

func TestLoadAppConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAppConfig(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	assert.Equal(t, "config.json", filepath.Base(DefaultConfigPath()))
	assert.Equal(t, ".tabbox", filepath.Base(DefaultConfigDir()))
}
