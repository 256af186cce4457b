package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/TabBox/internal/geometry"
	"github.com/piwi3910/TabBox/internal/model"
)

// Cutout is a feature to remove from a panel, in layout coordinates.
// Circles are given by opposite corners of their bounding square.
type Cutout struct {
	Kind    model.CutoutKind `json:"kind"`
	Name    string           `json:"name,omitempty"`
	Corner1 geometry.Point   `json:"corner1"`
	Corner2 geometry.Point   `json:"corner2"`
}

// Min returns the lower-left corner of the cutout's bounding box.
func (c Cutout) Min() geometry.Point {
	return geometry.Point{X: math.Min(c.Corner1.X, c.Corner2.X), Y: math.Min(c.Corner1.Y, c.Corner2.Y)}
}

// Max returns the upper-right corner of the cutout's bounding box.
func (c Cutout) Max() geometry.Point {
	return geometry.Point{X: math.Max(c.Corner1.X, c.Corner2.X), Y: math.Max(c.Corner1.Y, c.Corner2.Y)}
}

// Center returns the middle of the bounding box.
func (c Cutout) Center() geometry.Point {
	return c.Corner1.Midpoint(c.Corner2)
}

// Radius is half the horizontal extent, the convention used when turning a
// bounding square into a circle.
func (c Cutout) Radius() float64 {
	return math.Abs(c.Corner2.X-c.Corner1.X) / 2.0
}

// AddCutout places a cutout given in coordinates relative to one of the
// panel's inner corners. Positive coordinates always point into the panel:
// the y axis is flipped for north corners and the x axis for east corners.
// The corners are then optionally swapped x<->y, moved onto the inner corner
// and rotated about it.
func (s *Side) AddCutout(spec model.CutoutSpec) error {
	if !spec.Kind.Valid() {
		return fmt.Errorf("%w: unknown cutout kind %d", geometry.ErrInvalidArgument, spec.Kind)
	}
	if !spec.Corner.Valid() {
		return fmt.Errorf("%w: unknown corner %d", geometry.ErrInvalidArgument, spec.Corner)
	}

	sx, sy := spec.Corner.AxisSigns()
	c1 := geometry.Point{X: spec.X1 * sx, Y: spec.Y1 * sy}
	c2 := geometry.Point{X: spec.X2 * sx, Y: spec.Y2 * sy}
	if spec.FlipXY {
		c1 = geometry.Point{X: c1.Y, Y: c1.X}
		c2 = geometry.Point{X: c2.Y, Y: c2.X}
	}

	ref := s.Inner(spec.Corner)
	c1 = c1.RelativeTo(ref)
	c2 = c2.RelativeTo(ref)

	var err error
	if c1, err = c1.Rotate(spec.Rotate, ref); err != nil {
		return fmt.Errorf("cutout %q: %w", spec.Name, err)
	}
	if c2, err = c2.Rotate(spec.Rotate, ref); err != nil {
		return fmt.Errorf("cutout %q: %w", spec.Name, err)
	}

	s.cutouts = append(s.cutouts, Cutout{Kind: spec.Kind, Name: spec.Name, Corner1: c1, Corner2: c2})
	return nil
}

// Cutouts returns the cutouts added so far.
func (s *Side) Cutouts() []Cutout {
	out := make([]Cutout, len(s.cutouts))
	copy(out, s.cutouts)
	return out
}

// CutoutIssue describes a cutout that will not come out as drawn.
type CutoutIssue struct {
	Cutout  string `json:"cutout"`
	Message string `json:"message"`
}

// CheckCutouts reports cutouts that leave the inner bounding box or overlap
// each other. It only advises; AddCutout never rejects on these grounds.
func (s *Side) CheckCutouts() []CutoutIssue {
	var issues []CutoutIssue
	sw, ne := s.Inner(model.CornerSW), s.Inner(model.CornerNE)

	for i, c := range s.cutouts {
		lo, hi := c.Min(), c.Max()
		if lo.X < sw.X-tolerance || lo.Y < sw.Y-tolerance || hi.X > ne.X+tolerance || hi.Y > ne.Y+tolerance {
			issues = append(issues, CutoutIssue{
				Cutout:  cutoutName(c, i),
				Message: "extends past the inner bounding box into the joints",
			})
		}
		for j := i + 1; j < len(s.cutouts); j++ {
			o := s.cutouts[j]
			olo, ohi := o.Min(), o.Max()
			if lo.X < ohi.X && olo.X < hi.X && lo.Y < ohi.Y && olo.Y < hi.Y {
				issues = append(issues, CutoutIssue{
					Cutout:  cutoutName(c, i),
					Message: fmt.Sprintf("overlaps %s", cutoutName(o, j)),
				})
			}
		}
	}
	return issues
}

func cutoutName(c Cutout, idx int) string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("%s #%d", c.Kind, idx+1)
}
