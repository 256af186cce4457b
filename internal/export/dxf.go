package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"

	"github.com/piwi3910/TabBox/internal/engine"
	"github.com/piwi3910/TabBox/internal/geometry"
	"github.com/piwi3910/TabBox/internal/model"
)

// ConstructionLayer holds construction lines when they are drawn.
const ConstructionLayer = "construction"

// CutoutLayer holds every panel's cutouts.
const CutoutLayer = "cutouts"

var panelColors = []color.ColorNumber{
	color.Red, color.Yellow, color.Green, color.Cyan, color.Blue, color.Magenta,
}

// ExportDXF writes the box layout to a DXF file. Each panel's real lines go
// on a layer named after the panel; cutouts share one layer.
func ExportDXF(path string, box *engine.Box, settings model.OutputSettings) error {
	d := dxf.NewDrawing()
	scale := scaleOf(settings)

	if settings.DrawConstruction {
		if _, err := d.AddLayer(ConstructionLayer, color.White, table.LT_HIDDEN, false); err != nil {
			return fmt.Errorf("add layer %s: %w", ConstructionLayer, err)
		}
	}
	if _, err := d.AddLayer(CutoutLayer, color.White, dxf.DefaultLineType, false); err != nil {
		return fmt.Errorf("add layer %s: %w", CutoutLayer, err)
	}

	sides := box.Sides()
	for i, name := range engine.PanelNames {
		side := sides[name]
		if _, err := d.AddLayer(name, panelColors[i%len(panelColors)], dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("add layer %s: %w", name, err)
		}
		for _, seg := range side.RealLines() {
			if err := dxfLine(d, seg, scale); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}

		if settings.DrawConstruction {
			if err := d.ChangeLayer(ConstructionLayer); err != nil {
				return err
			}
			for _, seg := range side.AllLines() {
				if !seg.Construction {
					continue
				}
				if err := dxfLine(d, seg, scale); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
			}
		}

		if err := d.ChangeLayer(CutoutLayer); err != nil {
			return err
		}
		for _, c := range side.Cutouts() {
			if err := dxfCutout(d, c, scale); err != nil {
				return fmt.Errorf("%s cutout %s: %w", name, c.Name, err)
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save DXF: %w", err)
	}
	return nil
}

func dxfLine(d *drawing.Drawing, seg geometry.Segment, scale float64) error {
	_, err := d.Line(seg.Source.X*scale, seg.Source.Y*scale, 0, seg.Dest.X*scale, seg.Dest.Y*scale, 0)
	return err
}

func dxfCutout(d *drawing.Drawing, c engine.Cutout, scale float64) error {
	if c.Kind == model.CutoutCircle {
		ctr := c.Center()
		_, err := d.Circle(ctr.X*scale, ctr.Y*scale, 0, c.Radius()*scale)
		return err
	}
	lo, hi := c.Min(), c.Max()
	corners := []geometry.Point{lo, {X: hi.X, Y: lo.Y}, hi, {X: lo.X, Y: hi.Y}}
	for i, p := range corners {
		q := corners[(i+1)%len(corners)]
		if err := dxfLine(d, geometry.Segment{Source: p, Dest: q}, scale); err != nil {
			return err
		}
	}
	return nil
}
