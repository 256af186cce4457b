package export

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportSchedule(t *testing.T) {
	box := newTestBox(t)
	path := filepath.Join(t.TempDir(), "box.xlsx")
	require.NoError(t, ExportSchedule(path, box))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetPanels, SheetCutouts, SheetJoints}, f.GetSheetList())

	panels, err := f.GetRows(SheetPanels)
	require.NoError(t, err)
	require.Len(t, panels, 7)
	assert.Equal(t, "Panel", panels[0][0])
	assert.Equal(t, "bottom", panels[1][0])
	assertCellFloat(t, 106, panels[1][1])
	assertCellFloat(t, 71, panels[1][2])
	assert.Equal(t, "lower", panels[6][0])

	cutouts, err := f.GetRows(SheetCutouts)
	require.NoError(t, err)
	require.Len(t, cutouts, 3)
	assert.Equal(t, []string{"bottom", "vent", "circle"}, cutouts[1][:3])
	assert.Equal(t, []string{"upper", "switch", "rect"}, cutouts[2][:3])

	joints, err := f.GetRows(SheetJoints)
	require.NoError(t, err)
	require.Len(t, joints, 4)
	assert.Equal(t, []string{"depth", "height", "width"}, []string{joints[1][0], joints[2][0], joints[3][0]})
	assert.Equal(t, "5", joints[3][1])
}

func TestExportScheduleNilBox(t *testing.T) {
	assert.Error(t, ExportSchedule(filepath.Join(t.TempDir(), "x.xlsx"), nil))
}

func assertCellFloat(t *testing.T, want float64, cell string) {
	t.Helper()
	got, err := strconv.ParseFloat(cell, 64)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-6)
}
