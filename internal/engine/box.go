package engine

import (
	"fmt"
	"math"

	"github.com/piwi3910/TabBox/internal/geometry"
	"github.com/piwi3910/TabBox/internal/model"
)

// Panel names, in layout order.
const (
	PanelBottom = "bottom"
	PanelRight  = "right"
	PanelUpper  = "upper"
	PanelLeft   = "left"
	PanelTop    = "top"
	PanelLower  = "lower"
)

// PanelNames lists the panels in the order they are built.
var PanelNames = []string{PanelBottom, PanelRight, PanelUpper, PanelLeft, PanelTop, PanelLower}

// BoxParams are the inputs of a box. Width, height and depth are inner
// dimensions; every panel gets joints of Thickness on each edge.
type BoxParams struct {
	Width     float64
	Height    float64
	Depth     float64
	Thickness float64
	Spacing   float64 // gap between neighbouring panels in the layout
	Origin    geometry.Point
}

// TabSpec is the solved joint for one box dimension.
type TabSpec struct {
	Count  int          `json:"count"`
	Length geometry.Dim `json:"length"`
}

// Box holds the six panels of a tabbed box laid out as a flat unfolding:
//
//	          [ upper w x h ]
//	[ left ]  [ bottom w x d ]  [ right ]  [ top ]
//	          [ lower w x h ]
//
// Top sits to the right of the right panel so it can be cut identical to the
// bottom. Each panel's wide/tall flags put its joints in the opposite phase
// of every panel it mates with.
type Box struct {
	Params BoxParams

	Width, Height, Depth, Thickness, Spacing geometry.Dim

	Bottom, Right, Upper, Left, Top, Lower *Side

	tabs map[string]TabSpec
}

// NewBox solves the joints and lays out all six panels.
func NewBox(p BoxParams) (*Box, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}
	b := &Box{
		Params:    p,
		Width:     geometry.NewDim(p.Width, "W"),
		Height:    geometry.NewDim(p.Height, "H"),
		Depth:     geometry.NewDim(p.Depth, "D"),
		Thickness: geometry.NewDim(p.Thickness, "THICKNESS"),
		Spacing:   geometry.NewDim(p.Spacing, "SPACING"),
		tabs:      make(map[string]TabSpec, 3),
	}
	if err := b.create(); err != nil {
		return nil, err
	}
	return b, nil
}

func validateParams(p BoxParams) error {
	checks := []struct {
		name string
		v    float64
	}{
		{"width", p.Width}, {"height", p.Height}, {"depth", p.Depth}, {"thickness", p.Thickness},
	}
	for _, c := range checks {
		if !(c.v > 0) || math.IsInf(c.v, 0) {
			return fmt.Errorf("%w: %s must be a positive number, got %g", ErrInvalidConfiguration, c.name, c.v)
		}
	}
	if p.Spacing < 0 || math.IsNaN(p.Spacing) || math.IsInf(p.Spacing, 0) {
		return fmt.Errorf("%w: spacing must not be negative, got %g", ErrInvalidConfiguration, p.Spacing)
	}
	return nil
}

func (b *Box) create() error {
	for _, d := range []struct {
		key string
		dim geometry.Dim
	}{{"width", b.Width}, {"height", b.Height}, {"depth", b.Depth}} {
		n, length, err := CalcTabNumAndLength(d.dim, b.Thickness)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		b.tabs[d.key] = TabSpec{Count: n, Length: length}
	}
	w, h, d := b.tabs["width"], b.tabs["height"], b.tabs["depth"]

	side := func(sw geometry.Point, wide, tall bool, ew, ns TabSpec) (*Side, error) {
		return NewSide(SideInfo{
			SouthWest:     sw,
			IsWide:        wide,
			IsTall:        tall,
			EWNotchWidth:  ew.Length,
			EWNotchHeight: b.Thickness,
			EWNotchCount:  ew.Count,
			NSNotchWidth:  ns.Length,
			NSNotchHeight: b.Thickness,
			NSNotchCount:  ns.Count,
		})
	}

	// Offset for panels placed left of / below the bottom: one h-dimension
	// panel (h plus both joints) and a gap.
	farOffset, err := b.Spacing.Add(b.Height)
	if err != nil {
		return err
	}
	if farOffset, err = farOffset.Add(b.Thickness.Mul(2)); err != nil {
		return err
	}
	farOffset = farOffset.Flip()

	// Bottom is narrow and short so the identical top can drop in as a lid.
	if b.Bottom, err = side(b.Params.Origin, false, false, w, d); err != nil {
		return fmt.Errorf("bottom: %w", err)
	}

	// Right mates the bottom horizontally so it must be wide; it is also tall
	// to oppose upper and lower.
	if b.Right, err = side(offset(b.Bottom.Outer(model.CornerSE), b.Spacing, true), true, true, h, d); err != nil {
		return fmt.Errorf("right: %w", err)
	}

	// Upper fits vertically against the short bottom so it must be tall.
	if b.Upper, err = side(offset(b.Bottom.Outer(model.CornerNW), b.Spacing, false), false, true, w, h); err != nil {
		return fmt.Errorf("upper: %w", err)
	}

	if b.Left, err = side(offset(b.Bottom.Outer(model.CornerSW), farOffset, true), true, true, h, d); err != nil {
		return fmt.Errorf("left: %w", err)
	}

	// Top sits beside the wide right panel so it is narrow, like the bottom.
	if b.Top, err = side(offset(b.Right.Outer(model.CornerSE), b.Spacing, true), false, false, w, d); err != nil {
		return fmt.Errorf("top: %w", err)
	}

	if b.Lower, err = side(offset(b.Bottom.Outer(model.CornerSW), farOffset, false), false, true, w, h); err != nil {
		return fmt.Errorf("lower: %w", err)
	}
	return nil
}

// offset moves p by d along one axis through a scratch arena, so a zero gap
// leaves p untouched.
func offset(p geometry.Point, d geometry.Dim, horizontal bool) geometry.Point {
	a := geometry.NewArena()
	from := a.Add(p)
	var dest geometry.PointID
	if horizontal {
		dest, _, _ = a.DrawHoriz(from, d, true)
	} else {
		dest, _, _ = a.DrawVert(from, d, true)
	}
	return a.At(dest)
}

// Sides maps panel names to panels.
func (b *Box) Sides() map[string]*Side {
	return map[string]*Side{
		PanelBottom: b.Bottom,
		PanelRight:  b.Right,
		PanelUpper:  b.Upper,
		PanelLeft:   b.Left,
		PanelTop:    b.Top,
		PanelLower:  b.Lower,
	}
}

// Side returns a panel by name.
func (b *Box) Side(name string) (*Side, bool) {
	s, ok := b.Sides()[name]
	return s, ok
}

// AllLines returns the lines of all panels in layout order.
func (b *Box) AllLines() []geometry.Segment {
	var out []geometry.Segment
	sides := b.Sides()
	for _, name := range PanelNames {
		out = append(out, sides[name].AllLines()...)
	}
	return out
}

// Tabs returns the solved joint per dimension ("width", "height", "depth").
func (b *Box) Tabs() map[string]TabSpec {
	out := make(map[string]TabSpec, len(b.tabs))
	for k, v := range b.tabs {
		out[k] = v
	}
	return out
}

// Extents returns the bounding box of the whole layout.
func (b *Box) Extents() (min, max geometry.Point) {
	first := true
	for _, s := range b.Sides() {
		sw, ne := s.Outer(model.CornerSW), s.Outer(model.CornerNE)
		if first {
			min, max = sw, ne
			first = false
			continue
		}
		min.X = math.Min(min.X, sw.X)
		min.Y = math.Min(min.Y, sw.Y)
		max.X = math.Max(max.X, ne.X)
		max.Y = math.Max(max.Y, ne.Y)
	}
	return min, max
}
