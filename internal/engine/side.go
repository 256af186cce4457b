package engine

import (
	"github.com/piwi3910/TabBox/internal/geometry"
	"github.com/piwi3910/TabBox/internal/model"
)

// SideInfo holds the inputs for one panel.
type SideInfo struct {
	SouthWest geometry.Point // southwest corner of the outer bounding box
	IsWide    bool           // panel width reaches the outer bounding box
	IsTall    bool           // panel corner height reaches the outer bounding box

	EWNotchWidth  geometry.Dim // horizontal (south/north) edges
	EWNotchHeight geometry.Dim
	EWNotchCount  int

	NSNotchWidth  geometry.Dim // vertical (east/west) edges
	NSNotchHeight geometry.Dim
	NSNotchCount  int
}

// Side is one panel of the box: four edges closing a rectangle, its outer
// and inner (joint depth inset) bounding boxes, and the cutouts placed on it.
type Side struct {
	Info SideInfo

	South *Edge
	East  *Edge
	North *Edge
	West  *Edge

	arena   *geometry.Arena
	outer   [4]geometry.PointID
	inner   [4]geometry.PointID
	cutouts []Cutout
}

// NewSide builds the four edges of a panel. The east/west edges use the
// same EdgeInfo with the wide/tall flags swapped, and each edge starts where
// the previous one ended.
func NewSide(info SideInfo) (*Side, error) {
	a := geometry.NewArena()
	s := &Side{Info: info, arena: a}

	ns := EdgeInfo{
		IsWide:           info.IsTall,
		IsTall:           info.IsWide,
		NotchWidth:       info.NSNotchWidth,
		NotchHeight:      info.NSNotchHeight,
		NotchHeightOther: info.EWNotchHeight,
		NotchCount:       info.NSNotchCount,
	}
	ew := EdgeInfo{
		IsWide:           info.IsWide,
		IsTall:           info.IsTall,
		NotchWidth:       info.EWNotchWidth,
		NotchHeight:      info.EWNotchHeight,
		NotchHeightOther: info.NSNotchHeight,
		NotchCount:       info.EWNotchCount,
	}

	sw := a.Add(info.SouthWest)
	var err error
	if s.South, err = NewEdge(a, ew, sw, 0); err != nil {
		return nil, err
	}
	if s.East, err = NewEdge(a, ns, s.South.End, 90); err != nil {
		return nil, err
	}
	if s.North, err = NewEdge(a, ew, s.East.End, 180); err != nil {
		return nil, err
	}
	if s.West, err = NewEdge(a, ns, s.North.End, 270); err != nil {
		return nil, err
	}

	s.outer = [4]geometry.PointID{
		model.CornerSW: sw,
		model.CornerSE: s.South.End,
		model.CornerNE: s.East.End,
		model.CornerNW: s.North.End,
	}
	s.inner = [4]geometry.PointID{
		model.CornerSW: s.South.InnerStart,
		model.CornerSE: s.East.InnerStart,
		model.CornerNE: s.North.InnerStart,
		model.CornerNW: s.West.InnerStart,
	}
	return s, nil
}

// Edges returns the edges in south, east, north, west order.
func (s *Side) Edges() [4]*Edge {
	return [4]*Edge{s.South, s.East, s.North, s.West}
}

// AllLines returns every line of the panel, edge by edge.
func (s *Side) AllLines() []geometry.Segment {
	var out []geometry.Segment
	for _, e := range s.Edges() {
		out = append(out, e.Segments()...)
	}
	return out
}

// EdgeLines returns the lines grouped per edge (south, east, north, west).
func (s *Side) EdgeLines() [4][]geometry.Segment {
	var out [4][]geometry.Segment
	for i, e := range s.Edges() {
		out[i] = e.Segments()
	}
	return out
}

// RealLines returns only the lines a cutter should follow.
func (s *Side) RealLines() []geometry.Segment {
	var out []geometry.Segment
	for _, seg := range s.AllLines() {
		if !seg.Construction {
			out = append(out, seg)
		}
	}
	return out
}

// Outer returns a corner of the outer bounding box.
func (s *Side) Outer(c model.Corner) geometry.Point {
	return s.arena.At(s.outer[c])
}

// Inner returns a corner of the inner bounding box.
func (s *Side) Inner(c model.Corner) geometry.Point {
	return s.arena.At(s.inner[c])
}

// Width is the outer width of the panel.
func (s *Side) Width() float64 {
	return s.Outer(model.CornerSE).X - s.Outer(model.CornerSW).X
}

// Height is the outer height of the panel.
func (s *Side) Height() float64 {
	return s.Outer(model.CornerNW).Y - s.Outer(model.CornerSW).Y
}

// Contains reports whether p lies inside the outer bounding box, allowing
// for rounding.
func (s *Side) Contains(p geometry.Point) bool {
	sw, ne := s.Outer(model.CornerSW), s.Outer(model.CornerNE)
	return p.X >= sw.X-tolerance && p.X <= ne.X+tolerance &&
		p.Y >= sw.Y-tolerance && p.Y <= ne.Y+tolerance
}

// tolerance absorbs floating point drift when comparing coordinates.
const tolerance = 1e-9
