package engine

import (
	"fmt"
	"sort"

	"github.com/piwi3910/TabBox/internal/geometry"
)

// EdgeInfo holds the inputs for one edge of a panel.
type EdgeInfo struct {
	IsWide bool // edge width reaches the outer bounding box
	IsTall bool // corner height reaches the outer bounding box

	NotchWidth       geometry.Dim // length of each tab/slot segment
	NotchHeight      geometry.Dim // joint depth, the material thickness
	NotchHeightOther geometry.Dim // depth of the perpendicular edges, sizes the corners
	NotchCount       int          // tab/slot pairs between the first and last segment
}

// Edge holds the lines of one side of a panel.
//
// The lines are generated as if this were the south edge drawn left to right,
// with the panel body above it, then rotated counter clockwise about Start.
type Edge struct {
	Info       EdgeInfo
	Start      geometry.PointID // outer left corner, shared with the previous edge
	End        geometry.PointID // outer right corner, start of the next edge
	InnerStart geometry.PointID // inner left corner

	arena *geometry.Arena
	lines []geometry.Line
}

// NewEdge draws an edge from start and rotates it by a multiple of 90 degrees.
func NewEdge(a *geometry.Arena, info EdgeInfo, start geometry.PointID, rotate int) (*Edge, error) {
	if info.NotchCount < 0 {
		return nil, fmt.Errorf("%w: negative notch count %d", geometry.ErrInvalidArgument, info.NotchCount)
	}
	e := &Edge{Info: info, Start: start, arena: a}
	if err := e.create(); err != nil {
		return nil, err
	}
	if err := e.rotate(rotate); err != nil {
		return nil, err
	}
	return e, nil
}

// draw appends the next horizontal segment; every edge segment has a
// positive length so a missing line means bad input.
func (e *Edge) draw(from geometry.PointID, d geometry.Dim, construction bool) (geometry.Line, error) {
	_, line, ok := e.arena.DrawHoriz(from, d, construction)
	if !ok {
		return geometry.Line{}, fmt.Errorf("%w: zero-length edge segment (%s)",
			geometry.ErrInvalidArgument, d.Label)
	}
	return line, nil
}

func (e *Edge) create() error {
	info := e.Info

	// Outer boundary. The corner segments are real only when this edge sits
	// on the outer bounding box on both axes.
	outerExtends := info.IsWide && info.IsTall
	outerLeft, err := e.draw(e.Start, info.NotchHeightOther, !outerExtends)
	if err != nil {
		return err
	}

	next, err := e.draw(outerLeft.Dest, info.NotchWidth, !info.IsTall)
	if err != nil {
		return err
	}
	middle := []geometry.Line{next}
	for i := 0; i < info.NotchCount; i++ {
		if next, err = e.draw(next.Dest, info.NotchWidth, info.IsTall); err != nil {
			return err
		}
		middle = append(middle, next)
		if next, err = e.draw(next.Dest, info.NotchWidth, !info.IsTall); err != nil {
			return err
		}
		middle = append(middle, next)
	}

	outerRight, err := e.draw(next.Dest, info.NotchHeightOther, !outerExtends)
	if err != nil {
		return err
	}
	e.End = outerRight.Dest

	// Inner boundary: the outer one shifted by the joint depth with every
	// middle segment's flag inverted, which is what forms the comb.
	innerExtends := info.IsWide && !info.IsTall
	innerLeft := outerLeft.ShiftVertically(e.arena, info.NotchHeight)
	innerLeft.Construction = !innerExtends
	e.InnerStart = innerLeft.Dest

	innerMiddle := make([]geometry.Line, 0, len(middle))
	for _, line := range middle {
		innerMiddle = append(innerMiddle, line.ToggleAndShiftVertically(e.arena, info.NotchHeight))
	}
	innerRight := outerRight.ShiftVertically(e.arena, info.NotchHeight)
	innerRight.Construction = !innerExtends

	outer := append(append([]geometry.Line{outerLeft}, middle...), outerRight)
	inner := append(append([]geometry.Line{innerLeft}, innerMiddle...), innerRight)

	// Connectors close the gaps between real lines on opposite boundaries.
	connectors := make([]geometry.Line, 0, len(inner)-1)
	for i := 0; i < len(inner)-1; i++ {
		drawGap := (!inner[i].Construction && !outer[i+1].Construction) ||
			(!outer[i].Construction && !inner[i+1].Construction)
		connectors = append(connectors, geometry.Line{
			Source:       inner[i].Dest,
			Dest:         outer[i].Dest,
			Construction: !drawGap,
			Length:       &info.NotchHeight,
		})
	}

	lines := make([]geometry.Line, 0, len(inner)+len(outer)+len(connectors))
	lines = append(lines, inner...)
	lines = append(lines, outer...)
	lines = append(lines, connectors...)
	sort.SliceStable(lines, func(i, j int) bool {
		return geometry.LessKey(lines[i].PlotKey(e.arena), lines[j].PlotKey(e.arena))
	})
	e.lines = lines
	return nil
}

// rotate turns every point of the edge about Start.
func (e *Edge) rotate(degrees int) error {
	ids := make([]geometry.PointID, 0, 2*len(e.lines))
	for _, l := range e.lines {
		ids = append(ids, l.Source, l.Dest)
	}
	return e.arena.RotateInPlace(ids, degrees, e.Start)
}

// Lines returns the edge's lines in plotting order.
func (e *Edge) Lines() []geometry.Line {
	out := make([]geometry.Line, len(e.lines))
	copy(out, e.lines)
	return out
}

// Segments returns the edge's lines with resolved coordinates.
func (e *Edge) Segments() []geometry.Segment {
	out := make([]geometry.Segment, len(e.lines))
	for i, l := range e.lines {
		out[i] = l.Resolve(e.arena)
	}
	return out
}

// RealLineCount counts the lines a cutter has to follow.
func (e *Edge) RealLineCount() int {
	n := 0
	for _, l := range e.lines {
		if !l.Construction {
			n++
		}
	}
	return n
}
