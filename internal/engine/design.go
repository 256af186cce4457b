package engine

import (
	"fmt"

	"github.com/piwi3910/TabBox/internal/geometry"
	"github.com/piwi3910/TabBox/internal/model"
)

// Build constructs the box described by a saved design and places its
// cutouts.
func Build(d model.Design) (*Box, error) {
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	box, err := NewBox(BoxParams{
		Width:     d.Width,
		Height:    d.Height,
		Depth:     d.Depth,
		Thickness: d.Thickness,
		Spacing:   d.Spacing,
		Origin:    geometry.Point{X: d.Origin.X, Y: d.Origin.Y},
	})
	if err != nil {
		return nil, err
	}
	for i, c := range d.Cutouts {
		side, ok := box.Side(c.Panel)
		if !ok {
			return nil, fmt.Errorf("cutout %d (%s): %w: unknown panel %q",
				i+1, c.Name, geometry.ErrInvalidArgument, c.Panel)
		}
		if err := side.AddCutout(c); err != nil {
			return nil, fmt.Errorf("cutout %d on %s: %w", i+1, c.Panel, err)
		}
	}
	return box, nil
}

// Issues collects the cutout advisories of every panel, keyed by panel.
func (b *Box) Issues() map[string][]CutoutIssue {
	out := map[string][]CutoutIssue{}
	sides := b.Sides()
	for _, name := range PanelNames {
		if issues := sides[name].CheckCutouts(); len(issues) > 0 {
			out[name] = issues
		}
	}
	return out
}
