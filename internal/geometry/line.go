package geometry

import "math"

// Line joins two arena points. Construction lines carry reference geometry
// (bounding-box corners) and must never be cut or drawn.
type Line struct {
	Source       PointID
	Dest         PointID
	Construction bool
	Length       *Dim
}

// ShiftVertically returns a copy of l moved dy along the y axis. The copy
// gets its own points.
func (l Line) ShiftVertically(a *Arena, dy Dim) Line {
	src := a.At(l.Source)
	dst := a.At(l.Dest)
	return Line{
		Source:       a.Add(Point{X: src.X, Y: src.Y + dy.Signed()}),
		Dest:         a.Add(Point{X: dst.X, Y: dst.Y + dy.Signed()}),
		Construction: l.Construction,
		Length:       l.Length,
	}
}

// ToggleAndShiftVertically shifts the line and inverts its construction flag.
func (l Line) ToggleAndShiftVertically(a *Arena, dy Dim) Line {
	shifted := l.ShiftVertically(a, dy)
	shifted.Construction = !shifted.Construction
	return shifted
}

// PlotKey is the canonical ordering key: source x, dest x, source y, dest y.
func (l Line) PlotKey(a *Arena) [4]float64 {
	src := a.At(l.Source)
	dst := a.At(l.Dest)
	return [4]float64{src.X, dst.X, src.Y, dst.Y}
}

// Resolve reads the line's current coordinates out of the arena.
func (l Line) Resolve(a *Arena) Segment {
	return Segment{
		Source:       a.At(l.Source),
		Dest:         a.At(l.Dest),
		Construction: l.Construction,
		Length:       l.Length,
	}
}

// Segment is a Line with its coordinates resolved, the form handed to
// drawing and cutting consumers.
type Segment struct {
	Source       Point `json:"source"`
	Dest         Point `json:"dest"`
	Construction bool  `json:"construction"`
	Length       *Dim  `json:"length,omitempty"`
}

// Points returns the two endpoints.
func (s Segment) Points() (Point, Point) {
	return s.Source, s.Dest
}

// Len is the Euclidean length.
func (s Segment) Len() float64 {
	return math.Hypot(s.Dest.X-s.Source.X, s.Dest.Y-s.Source.Y)
}

// LessKey orders plot keys lexicographically.
func LessKey(a, b [4]float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
