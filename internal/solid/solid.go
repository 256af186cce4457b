// Package solid turns box panels into 3D meshes for preview and printing.
// Each panel is its traced outline minus its cutouts, extruded by the
// material thickness and left in its layout position.
package solid

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/piwi3910/TabBox/internal/engine"
	"github.com/piwi3910/TabBox/internal/export"
	"github.com/piwi3910/TabBox/internal/model"
)

// DefaultCells is the marching cubes resolution along a panel's longest side.
const DefaultCells = 200

// Mesh summarises the triangles generated for one panel.
type Mesh struct {
	Panel     string     `json:"panel"`
	Triangles int        `json:"triangles"`
	Min       [3]float64 `json:"min"`
	Max       [3]float64 `json:"max"`
}

// Profile returns the 2D shape of a panel in layout coordinates.
func Profile(side *engine.Side) (sdf.SDF2, error) {
	outline, err := export.TraceOutline(side)
	if err != nil {
		return nil, err
	}
	verts := make([]v2.Vec, len(outline))
	for i, p := range outline {
		verts[i] = v2.Vec{X: p.X, Y: p.Y}
	}
	s, err := sdf.Polygon2D(verts)
	if err != nil {
		return nil, fmt.Errorf("outline polygon: %w", err)
	}

	var holes []sdf.SDF2
	for _, c := range side.Cutouts() {
		h, err := cutoutProfile(c)
		if err != nil {
			return nil, fmt.Errorf("cutout %s: %w", c.Name, err)
		}
		holes = append(holes, h)
	}
	if len(holes) == 0 {
		return s, nil
	}
	return sdf.Difference2D(s, sdf.Union2D(holes...)), nil
}

func cutoutProfile(c engine.Cutout) (sdf.SDF2, error) {
	if c.Kind == model.CutoutCircle {
		circle, err := sdf.Circle2D(c.Radius())
		if err != nil {
			return nil, err
		}
		ctr := c.Center()
		return sdf.Transform2D(circle, sdf.Translate2d(v2.Vec{X: ctr.X, Y: ctr.Y})), nil
	}
	lo, hi := c.Min(), c.Max()
	return sdf.Polygon2D([]v2.Vec{
		{X: lo.X, Y: lo.Y}, {X: hi.X, Y: lo.Y}, {X: hi.X, Y: hi.Y}, {X: lo.X, Y: hi.Y},
	})
}

// Panel extrudes a panel's profile from z=0 to z=thickness.
func Panel(side *engine.Side, thickness float64) (sdf.SDF3, error) {
	if !(thickness > 0) {
		return nil, fmt.Errorf("thickness must be positive, got %g", thickness)
	}
	profile, err := Profile(side)
	if err != nil {
		return nil, err
	}
	s := sdf.Extrude3D(profile, thickness)
	return sdf.Transform3D(s, sdf.Translate3d(v3.Vec{Z: thickness / 2})), nil
}

// PanelTriangles meshes one panel with marching cubes.
func PanelTriangles(side *engine.Side, thickness float64, cells int) ([]*sdf.Triangle3, error) {
	s, err := Panel(side, thickness)
	if err != nil {
		return nil, err
	}
	if cells <= 0 {
		cells = DefaultCells
	}
	return render.ToTriangles(s, render.NewMarchingCubesUniform(cells)), nil
}

// BoxTriangles meshes every panel and returns the combined triangles with
// a per-panel summary in layout order.
func BoxTriangles(box *engine.Box, cells int) ([]*sdf.Triangle3, []Mesh, error) {
	if box == nil {
		return nil, nil, errors.New("no box to mesh")
	}
	var all []*sdf.Triangle3
	meshes := make([]Mesh, 0, len(engine.PanelNames))
	sides := box.Sides()
	for _, name := range engine.PanelNames {
		tris, err := PanelTriangles(sides[name], box.Params.Thickness, cells)
		if err != nil {
			return nil, nil, fmt.Errorf("panel %s: %w", name, err)
		}
		meshes = append(meshes, summarize(name, tris))
		all = append(all, tris...)
	}
	return all, meshes, nil
}

// SaveSTL writes the meshed panels to a binary STL file.
func SaveSTL(path string, box *engine.Box, cells int) ([]Mesh, error) {
	tris, meshes, err := BoxTriangles(box, cells)
	if err != nil {
		return nil, err
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return nil, fmt.Errorf("save STL: %w", err)
	}
	return meshes, nil
}

func summarize(name string, tris []*sdf.Triangle3) Mesh {
	m := Mesh{
		Panel:     name,
		Triangles: len(tris),
		Min:       [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)},
		Max:       [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
	for _, t := range tris {
		for _, v := range t {
			m.Min = [3]float64{math.Min(m.Min[0], v.X), math.Min(m.Min[1], v.Y), math.Min(m.Min[2], v.Z)}
			m.Max = [3]float64{math.Max(m.Max[0], v.X), math.Max(m.Max[1], v.Y), math.Max(m.Max[2], v.Z)}
		}
	}
	if len(tris) == 0 {
		m.Min, m.Max = [3]float64{}, [3]float64{}
	}
	return m
}
