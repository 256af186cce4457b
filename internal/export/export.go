// Package export renders a built box to files: DXF and SVG drawings, a PDF
// cut sheet, QR-coded panel labels and an Excel schedule.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/piwi3910/TabBox/internal/engine"
	"github.com/piwi3910/TabBox/internal/geometry"
	"github.com/piwi3910/TabBox/internal/model"
)

// ErrOpenOutline is returned when a panel's real lines do not form a single
// closed loop.
var ErrOpenOutline = errors.New("panel outline is not a closed loop")

// pointEps is the snapping grid used to match segment endpoints.
const pointEps = 1e-6

// PanelSummary describes one panel for tables and labels.
type PanelSummary struct {
	Name        string               `json:"name"`
	Width       float64              `json:"width"`
	Height      float64              `json:"height"`
	InnerWidth  float64              `json:"inner_width"`
	InnerHeight float64              `json:"inner_height"`
	EWTabs      int                  `json:"ew_tabs"`
	NSTabs      int                  `json:"ns_tabs"`
	RealLines   int                  `json:"real_lines"`
	CutLength   float64              `json:"cut_length"`
	Cutouts     int                  `json:"cutouts"`
	Issues      []engine.CutoutIssue `json:"issues,omitempty"`
}

// Summarize returns one summary per panel in layout order.
func Summarize(box *engine.Box) []PanelSummary {
	sides := box.Sides()
	out := make([]PanelSummary, 0, len(engine.PanelNames))
	for _, name := range engine.PanelNames {
		s := sides[name]
		lines := s.RealLines()
		sum := PanelSummary{
			Name:        name,
			Width:       s.Width(),
			Height:      s.Height(),
			InnerWidth:  s.Inner(model.CornerNE).X - s.Inner(model.CornerSW).X,
			InnerHeight: s.Inner(model.CornerNE).Y - s.Inner(model.CornerSW).Y,
			EWTabs:      s.Info.EWNotchCount,
			NSTabs:      s.Info.NSNotchCount,
			RealLines:   len(lines),
			Cutouts:     len(s.Cutouts()),
			Issues:      s.CheckCutouts(),
		}
		for _, seg := range lines {
			sum.CutLength += seg.Len()
		}
		for _, c := range s.Cutouts() {
			sum.CutLength += cutoutPerimeter(c)
		}
		out = append(out, sum)
	}
	return out
}

func cutoutPerimeter(c engine.Cutout) float64 {
	if c.Kind == model.CutoutCircle {
		return 2 * math.Pi * c.Radius()
	}
	lo, hi := c.Min(), c.Max()
	return 2 * ((hi.X - lo.X) + (hi.Y - lo.Y))
}

type pointKey [2]int64

func keyOf(p geometry.Point) pointKey {
	return pointKey{int64(math.Round(p.X / pointEps)), int64(math.Round(p.Y / pointEps))}
}

// TraceOutline chains a panel's real lines into one closed polygon,
// counter-clockwise, without the repeated closing point. Collinear
// intermediate vertices are dropped.
func TraceOutline(side *engine.Side) ([]geometry.Point, error) {
	var segs []geometry.Segment
	for _, s := range side.RealLines() {
		if s.Len() > pointEps {
			segs = append(segs, s)
		}
	}
	if len(segs) < 3 {
		return nil, fmt.Errorf("%w: only %d real lines", ErrOpenOutline, len(segs))
	}

	ends := make(map[pointKey][]int, len(segs)*2)
	for i, s := range segs {
		ends[keyOf(s.Source)] = append(ends[keyOf(s.Source)], i)
		ends[keyOf(s.Dest)] = append(ends[keyOf(s.Dest)], i)
	}

	used := make([]bool, len(segs))
	used[0] = true
	start := keyOf(segs[0].Source)
	pts := []geometry.Point{segs[0].Source}
	cur := segs[0].Dest

	for keyOf(cur) != start {
		next := -1
		for _, i := range ends[keyOf(cur)] {
			if !used[i] {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("%w: dead end at %s", ErrOpenOutline, cur)
		}
		used[next] = true
		pts = append(pts, cur)
		if keyOf(segs[next].Source) == keyOf(cur) {
			cur = segs[next].Dest
		} else {
			cur = segs[next].Source
		}
	}
	for i, u := range used {
		if !u {
			return nil, fmt.Errorf("%w: stray line at %s", ErrOpenOutline, segs[i].Source)
		}
	}

	pts = dropCollinear(pts)
	if signedArea(pts) < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	return pts, nil
}

func dropCollinear(pts []geometry.Point) []geometry.Point {
	n := len(pts)
	out := make([]geometry.Point, 0, n)
	for i := 0; i < n; i++ {
		prev, p, next := pts[(i+n-1)%n], pts[i], pts[(i+1)%n]
		cross := (p.X-prev.X)*(next.Y-p.Y) - (p.Y-prev.Y)*(next.X-p.X)
		if math.Abs(cross) > pointEps {
			out = append(out, p)
		}
	}
	return out
}

func signedArea(pts []geometry.Point) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}

// scaleOf returns the drawing scale, treating unset as 1:1.
func scaleOf(settings model.OutputSettings) float64 {
	if settings.Scale <= 0 {
		return 1
	}
	return settings.Scale
}

// panelSegments returns the lines drawn for a panel: real lines, plus
// construction lines when requested.
func panelSegments(side *engine.Side, construction bool) []geometry.Segment {
	if construction {
		return side.AllLines()
	}
	return side.RealLines()
}
