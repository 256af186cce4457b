package export

import (
	"errors"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/TabBox/internal/engine"
)

// Sheet names of the Excel schedule.
const (
	SheetPanels  = "Panels"
	SheetCutouts = "Cutouts"
	SheetJoints  = "Joints"
)

var (
	panelHeaders  = []any{"Panel", "Width", "Height", "Inner Width", "Inner Height", "EW Tabs", "NS Tabs", "Real Lines", "Cut Length", "Cutouts"}
	cutoutHeaders = []any{"Panel", "Name", "Kind", "Min X", "Min Y", "Max X", "Max Y", "Center X", "Center Y", "Issue"}
	jointHeaders  = []any{"Dimension", "Tabs", "Tab Length", "Derivation"}
)

// ExportSchedule writes the panel, cutout and joint tables to an Excel
// workbook. Coordinates are in layout space.
func ExportSchedule(path string, box *engine.Box) error {
	if box == nil {
		return errors.New("no box to export")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetPanels); err != nil {
		return err
	}
	for _, name := range []string{SheetCutouts, SheetJoints} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("add sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	summaries := Summarize(box)
	panelRows := make([][]any, 0, len(summaries))
	for _, s := range summaries {
		panelRows = append(panelRows, []any{
			s.Name, s.Width, s.Height, s.InnerWidth, s.InnerHeight,
			s.EWTabs, s.NSTabs, s.RealLines, s.CutLength, s.Cutouts,
		})
	}
	if err := writeTable(f, SheetPanels, bold, panelHeaders, panelRows); err != nil {
		return err
	}

	var cutoutRows [][]any
	sides := box.Sides()
	for _, name := range engine.PanelNames {
		side := sides[name]
		issues := map[string]string{}
		for _, is := range side.CheckCutouts() {
			if _, seen := issues[is.Cutout]; !seen {
				issues[is.Cutout] = is.Message
			}
		}
		for i, c := range side.Cutouts() {
			label := c.Name
			if label == "" {
				label = fmt.Sprintf("%s #%d", c.Kind, i+1)
			}
			lo, hi, ctr := c.Min(), c.Max(), c.Center()
			cutoutRows = append(cutoutRows, []any{
				name, label, c.Kind.String(), lo.X, lo.Y, hi.X, hi.Y, ctr.X, ctr.Y, issues[label],
			})
		}
	}
	if err := writeTable(f, SheetCutouts, bold, cutoutHeaders, cutoutRows); err != nil {
		return err
	}

	tabs := box.Tabs()
	dims := make([]string, 0, len(tabs))
	for k := range tabs {
		dims = append(dims, k)
	}
	sort.Strings(dims)
	jointRows := make([][]any, 0, len(dims))
	for _, k := range dims {
		t := tabs[k]
		jointRows = append(jointRows, []any{k, t.Count, t.Length.Dist, t.Length.Label})
	}
	if err := writeTable(f, SheetJoints, bold, jointHeaders, jointRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, headerStyle int, headers []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("%s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+2, err)
		}
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 14)
}
