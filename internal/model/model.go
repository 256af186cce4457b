package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Point2D represents a 2D coordinate in design units (usually mm).
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Corner names a corner of a panel's bounding box.
type Corner int

const (
	CornerSW Corner = iota // south west, the panel origin
	CornerSE
	CornerNE
	CornerNW
)

var cornerNames = [...]string{"sw", "se", "ne", "nw"}

// Valid reports whether c is one of the four corners.
func (c Corner) Valid() bool {
	return c >= CornerSW && c <= CornerNW
}

func (c Corner) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Corner(%d)", int(c))
	}
	return cornerNames[c]
}

// AxisSigns returns the multipliers that turn coordinates measured from
// this corner into layout coordinates, so positive values point into the
// panel.
func (c Corner) AxisSigns() (sx, sy float64) {
	sx, sy = 1, 1
	if c == CornerSE || c == CornerNE {
		sx = -1
	}
	if c == CornerNE || c == CornerNW {
		sy = -1
	}
	return sx, sy
}

// ParseCorner accepts "sw", "se", "ne" or "nw" in any case.
func ParseCorner(s string) (Corner, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, n := range cornerNames {
		if n == key {
			return Corner(i), nil
		}
	}
	return CornerSW, fmt.Errorf("unknown corner %q (want sw, se, ne or nw)", s)
}

func (c Corner) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid corner %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Corner) UnmarshalText(b []byte) error {
	v, err := ParseCorner(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// CutoutKind is the shape of a cutout.
type CutoutKind int

const (
	CutoutCircle CutoutKind = iota // circle inscribed in the bounding square
	CutoutRect
)

func (k CutoutKind) Valid() bool {
	return k == CutoutCircle || k == CutoutRect
}

func (k CutoutKind) String() string {
	switch k {
	case CutoutCircle:
		return "circle"
	case CutoutRect:
		return "rect"
	default:
		return fmt.Sprintf("CutoutKind(%d)", int(k))
	}
}

// ParseCutoutKind accepts "circle" or "rect" ("rectangle" and "hole" are
// also understood).
func ParseCutoutKind(s string) (CutoutKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "circle", "hole":
		return CutoutCircle, nil
	case "rect", "rectangle":
		return CutoutRect, nil
	}
	return CutoutCircle, fmt.Errorf("unknown cutout kind %q (want circle or rect)", s)
}

func (k CutoutKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid cutout kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *CutoutKind) UnmarshalText(b []byte) error {
	v, err := ParseCutoutKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// CutoutSpec places a cutout on a panel. The two corners are measured from
// an inner corner of the panel, positive values pointing into the panel.
type CutoutSpec struct {
	Panel  string     `json:"panel"`
	Kind   CutoutKind `json:"kind"`
	Name   string     `json:"name,omitempty"`
	X1     float64    `json:"x1"`
	Y1     float64    `json:"y1"`
	X2     float64    `json:"x2"`
	Y2     float64    `json:"y2"`
	Corner Corner     `json:"corner"`
	Rotate int        `json:"rotate,omitempty"`  // degrees, multiple of 90
	FlipXY bool       `json:"flip_xy,omitempty"` // swap x and y before placing
}

// Design is a saved box: its inner dimensions, material and cutouts.
type Design struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
	Depth     float64      `json:"depth"`
	Thickness float64      `json:"thickness"`
	Spacing   float64      `json:"spacing"`
	Origin    Point2D      `json:"origin"`
	Cutouts   []CutoutSpec `json:"cutouts"`
	CreatedAt string       `json:"created_at,omitempty"`
}

func NewDesign(name string, w, h, d, thickness, spacing float64) Design {
	return Design{
		ID:        uuid.New().String()[:8],
		Name:      name,
		Width:     w,
		Height:    h,
		Depth:     d,
		Thickness: thickness,
		Spacing:   spacing,
		Cutouts:   []CutoutSpec{},
		CreatedAt: time.Now().Format(time.RFC3339),
	}
}

// Validate checks the dimensions and every cutout. All problems are
// reported together.
func (d Design) Validate() error {
	var errs []error
	for _, f := range []struct {
		name string
		v    float64
	}{{"width", d.Width}, {"height", d.Height}, {"depth", d.Depth}, {"thickness", d.Thickness}} {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %g", f.name, f.v))
		}
	}
	if d.Spacing < 0 || math.IsNaN(d.Spacing) {
		errs = append(errs, fmt.Errorf("spacing must not be negative, got %g", d.Spacing))
	}
	for i, c := range d.Cutouts {
		if c.Panel == "" {
			errs = append(errs, fmt.Errorf("cutout %d: missing panel", i+1))
		}
		if !c.Kind.Valid() {
			errs = append(errs, fmt.Errorf("cutout %d: invalid kind %d", i+1, int(c.Kind)))
		}
		if !c.Corner.Valid() {
			errs = append(errs, fmt.Errorf("cutout %d: invalid corner %d", i+1, int(c.Corner)))
		}
		if c.Rotate%90 != 0 {
			errs = append(errs, fmt.Errorf("cutout %d: rotation %d is not a multiple of 90", i+1, c.Rotate))
		}
		if c.X1 == c.X2 || c.Y1 == c.Y2 {
			errs = append(errs, fmt.Errorf("cutout %d: zero-size bounding box", i+1))
		}
	}
	return errors.Join(errs...)
}

// OutputSettings controls how a box is written out.
type OutputSettings struct {
	Scale            float64 `json:"scale"`             // multiplier applied to every coordinate
	DrawConstruction bool    `json:"draw_construction"` // include construction lines
	CircleSegments   int     `json:"circle_segments"`   // polygon sides for circles in meshes and G-code

	// CNC / laser
	FeedRate     float64 `json:"feed_rate"`     // mm/min
	PlungeRate   float64 `json:"plunge_rate"`   // mm/min
	SpindleSpeed int     `json:"spindle_speed"` // RPM or laser power
	SafeZ        float64 `json:"safe_z"`        // mm
	CutDepth     float64 `json:"cut_depth"`     // total depth, usually the thickness
	PassDepth    float64 `json:"pass_depth"`    // depth per pass
	Passes       int     `json:"passes"`        // laser passes over each path
	Profile      string  `json:"profile"`       // machine profile name
}

func DefaultOutputSettings() OutputSettings {
	return OutputSettings{
		Scale:            1.0,
		DrawConstruction: false,
		CircleSegments:   48,
		FeedRate:         1200.0,
		PlungeRate:       300.0,
		SpindleSpeed:     18000,
		SafeZ:            5.0,
		CutDepth:         3.0,
		PassDepth:        1.5,
		Passes:           1,
		Profile:          "Generic",
	}
}

// ForDesign returns s with the cut depth set to the design's material
// thickness, so router programs cut through the panels.
func (s OutputSettings) ForDesign(d Design) OutputSettings {
	if d.Thickness > 0 {
		s.CutDepth = d.Thickness
	}
	return s
}

// SettingsFor returns the default settings fitted to d.
func SettingsFor(d Design) OutputSettings {
	return DefaultOutputSettings().ForDesign(d)
}
