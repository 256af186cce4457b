package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/TabBox/internal/model"
	"github.com/piwi3910/TabBox/internal/project"
)

// isolated returns flags that keep config, profiles and templates inside a
// temp dir.
func isolated(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	return dir, []string{
		"-config", filepath.Join(dir, "config.json"),
		"-profiles", filepath.Join(dir, "profiles.json"),
		"-templates", filepath.Join(dir, "templates.json"),
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestRunNoArgs(t *testing.T) {
	_, stderr, err := runCLI(t)
	assert.Error(t, err)
	assert.Contains(t, stderr, "usage: tabbox")
}

func TestRunUnknownCommand(t *testing.T) {
	_, _, err := runCLI(t, "frobnicate")
	assert.ErrorContains(t, err, "unknown command")
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestBuildWritesEveryOutput(t *testing.T) {
	dir, flags := isolated(t)
	out := func(name string) string { return filepath.Join(dir, name) }

	args := append([]string{"build"}, flags...)
	args = append(args,
		"-name", "Enclosure", "-w", "100", "-h", "50", "-d", "65", "-t", "3", "-s", "2",
		"-dxf", out("box.dxf"), "-svg", out("box.svg"), "-pdf", out("box.pdf"),
		"-labels", out("labels.pdf"), "-xlsx", out("box.xlsx"), "-gcode", out("box.nc"),
		"-stl", out("box.stl"), "-stl-cells", "60",
		"-save", out("enclosure.tabbox.json"),
	)
	stdout, stderr, err := runCLI(t, args...)
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "Enclosure: 100 x 50 x 65 mm")
	assert.Contains(t, stdout, "width  5 tabs")
	for _, name := range []string{"bottom", "right", "upper", "left", "top", "lower"} {
		assert.Contains(t, stdout, name)
	}

	for _, name := range []string{"box.dxf", "box.svg", "box.pdf", "labels.pdf", "box.xlsx", "box.nc", "box.stl"} {
		info, err := os.Stat(out(name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size(), name)
	}
	assert.Contains(t, stderr, "toolpath")

	saved, err := project.LoadDesign(out("enclosure.tabbox.json"))
	require.NoError(t, err)
	assert.Equal(t, 100.0, saved.Width)

	cfg, err := project.LoadAppConfig(out("config.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{out("enclosure.tabbox.json")}, cfg.RecentDesigns)
}

func TestBuildFromDesignWithOverridesAndCutouts(t *testing.T) {
	dir, flags := isolated(t)
	designPath := filepath.Join(dir, "d.tabbox.json")
	require.NoError(t, project.SaveDesign(designPath, model.NewDesign("Saved", 80, 40, 60, 3, 2)))

	csvPath := filepath.Join(dir, "cutouts.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("panel,kind,name,x1,y1,x2,y2,corner\nbottom,circle,vent,10,10,20,20,sw\n"), 0644))

	gcodePath := filepath.Join(dir, "box.nc")
	args := append([]string{"build"}, flags...)
	args = append(args, "-design", designPath, "-w", "120", "-cutouts", csvPath,
		"-profile", "Grbl Laser", "-gcode", gcodePath)
	stdout, stderr, err := runCLI(t, args...)
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "Saved: 120 x 40 x 60 mm")
	assert.Contains(t, stderr, "cutouts imported")

	code, err := os.ReadFile(gcodePath)
	require.NoError(t, err)
	assert.Contains(t, string(code), "Cutout vent")
	assert.Contains(t, string(code), "M4")
}

func TestBuildTemplateRoundTrip(t *testing.T) {
	_, flags := isolated(t)

	args := append([]string{"build"}, flags...)
	_, stderr, err := runCLI(t, append(args, "-w", "90", "-h", "30", "-d", "40", "-save-template", "Small")...)
	require.NoError(t, err, stderr)

	stdout, stderr, err := runCLI(t, append(args, "-template", "Small")...)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "Small: 90 x 30 x 40 mm")

	_, _, err = runCLI(t, append(args, "-template", "Missing")...)
	assert.ErrorContains(t, err, "no template named")
}

func TestBuildErrors(t *testing.T) {
	_, flags := isolated(t)
	args := append([]string{"build"}, flags...)

	_, _, err := runCLI(t, args...)
	assert.Error(t, err, "no dimensions")

	_, _, err = runCLI(t, append(args, "-w", "5", "-h", "50", "-d", "50")...)
	assert.Error(t, err, "too small for the material")

	_, _, err = runCLI(t, append(args, "-w", "100", "-h", "50", "-d", "50", "-cutouts", "missing.csv")...)
	assert.ErrorContains(t, err, "import missing.csv")

	_, _, err = runCLI(t, append(args, "-w", "100", "-h", "50", "-d", "50", "-cutouts", "x.dxf", "-corner", "middle")...)
	assert.ErrorContains(t, err, "unknown corner")

	_, _, err = runCLI(t, append(args, "-bogus")...)
	assert.Error(t, err)
}

func TestProfiles(t *testing.T) {
	dir := t.TempDir()
	stdout, _, err := runCLI(t, "profiles", "-profiles", filepath.Join(dir, "none.json"))
	require.NoError(t, err)
	assert.Contains(t, stdout, "Grbl Laser")
	assert.Contains(t, stdout, "laser")
	assert.Contains(t, stdout, "built-in")
}

func TestProfilesRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.json")
	shop := model.NewCustomProfile("Shop Router")
	keep := model.NewCustomProfile("Shop Laser")
	require.NoError(t, project.SaveCustomProfiles(path, []model.MachineProfile{shop, keep}))
	t.Cleanup(func() { model.CustomProfiles = nil })

	stdout, _, err := runCLI(t, "profiles", "-profiles", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Shop Router")

	stdout, _, err = runCLI(t, "profiles", "-profiles", path, "-remove", "Shop Router")
	require.NoError(t, err)
	assert.Contains(t, stdout, `removed profile "Shop Router"`)

	left, err := project.LoadCustomProfiles(path)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "Shop Laser", left[0].Name)

	_, _, err = runCLI(t, "profiles", "-profiles", path, "-remove", "Generic")
	assert.ErrorContains(t, err, "built-in")
	_, _, err = runCLI(t, "profiles", "-profiles", path, "-remove", "Shop Router")
	assert.ErrorContains(t, err, "not found")
}

func TestBuildSinglePanelGCode(t *testing.T) {
	dir, flags := isolated(t)
	gcodePath := filepath.Join(dir, "left.nc")
	args := append([]string{"build"}, flags...)
	args = append(args, "-w", "100", "-h", "50", "-d", "65", "-t", "6",
		"-gcode", gcodePath, "-gcode-panel", "left")
	_, stderr, err := runCLI(t, args...)
	require.NoError(t, err, stderr)

	code, err := os.ReadFile(gcodePath)
	require.NoError(t, err)
	assert.Contains(t, string(code), "Panels: left")
	assert.Contains(t, string(code), "Outline left")
	assert.NotContains(t, string(code), "Outline bottom")
	assert.Contains(t, string(code), "Depth: 6.0mm")

	_, _, err = runCLI(t, append(args[:len(args)-1], "side")...)
	assert.ErrorContains(t, err, "unknown panel")
}

func TestBuildRejectsUnknownProfile(t *testing.T) {
	_, flags := isolated(t)
	args := append([]string{"build"}, flags...)
	_, _, err := runCLI(t, append(args, "-w", "100", "-h", "50", "-d", "65", "-profile", "Nope")...)
	assert.ErrorContains(t, err, `unknown profile "Nope"`)
	assert.ErrorContains(t, err, "Generic")
}

func TestBackupAndRestore(t *testing.T) {
	src, srcFlags := isolated(t)
	cfg := model.DefaultAppConfig()
	cfg.DefaultThickness = 6
	require.NoError(t, project.SaveAppConfig(filepath.Join(src, "config.json"), cfg))
	store := model.NewTemplateStore()
	store.Add(model.NewDesignTemplate("Drawer", "", model.NewDesign("Drawer", 200, 80, 300, 6, 2)))
	require.NoError(t, project.SaveTemplates(filepath.Join(src, "templates.json"), store))

	backup := filepath.Join(src, "backup.json")
	stdout, _, err := runCLI(t, append(append([]string{"backup"}, srcFlags...), "-out", backup)...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "backed up 0 profiles and 1 templates"))

	dst, dstFlags := isolated(t)
	stdout, _, err = runCLI(t, append(append([]string{"restore"}, dstFlags...), "-in", backup)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "restored 0 profiles and 1 templates")

	restored, err := project.LoadAppConfig(filepath.Join(dst, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, 6.0, restored.DefaultThickness)
	templates, err := project.LoadTemplates(filepath.Join(dst, "templates.json"))
	require.NoError(t, err)
	require.NotNil(t, templates.FindByName("Drawer"))

	_, _, err = runCLI(t, append(append([]string{"restore"}, dstFlags...), "-in", filepath.Join(dst, "nope.json"))...)
	assert.Error(t, err)
}
