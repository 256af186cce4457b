package export

import (
	"fmt"
	"io"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/piwi3910/TabBox/internal/engine"
	"github.com/piwi3910/TabBox/internal/geometry"
	"github.com/piwi3910/TabBox/internal/model"
)

const (
	svgMargin       = 5.0 // drawing units around the layout
	svgUnitsPerMM   = 100 // viewBox units per drawing unit
	svgCutStyle     = "fill:none;stroke:#000000;stroke-width:10"
	svgBuildStyle   = "fill:none;stroke:#1e78ff;stroke-width:5;stroke-dasharray:40,20"
	svgCutoutStyle  = "fill:none;stroke:#d00000;stroke-width:10"
	svgCaptionStyle = "font-family:sans-serif;font-size:400;fill:#777777"
)

// errWriter remembers the first write error; svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}

// svgFrame maps layout coordinates onto the y-down viewBox grid.
type svgFrame struct {
	min, max geometry.Point
	scale    float64
}

func (f svgFrame) x(v float64) int {
	return int(math.Round(((v-f.min.X)*f.scale + svgMargin) * svgUnitsPerMM))
}

func (f svgFrame) y(v float64) int {
	return int(math.Round(((f.max.Y-v)*f.scale + svgMargin) * svgUnitsPerMM))
}

func (f svgFrame) length(v float64) int {
	return int(math.Round(v * f.scale * svgUnitsPerMM))
}

// WriteSVG draws the box layout as an SVG document sized in millimetres.
// Each panel is a group named after it.
func WriteSVG(w io.Writer, box *engine.Box, settings model.OutputSettings) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	min, max := box.Extents()
	frame := svgFrame{min: min, max: max, scale: scaleOf(settings)}
	widthMM := int(math.Ceil((max.X-min.X)*frame.scale + 2*svgMargin))
	heightMM := int(math.Ceil((max.Y-min.Y)*frame.scale + 2*svgMargin))

	canvas.StartviewUnit(widthMM, heightMM, "mm", 0, 0, widthMM*svgUnitsPerMM, heightMM*svgUnitsPerMM)
	canvas.Title(fmt.Sprintf("Tabbed box %g x %g x %g",
		box.Params.Width, box.Params.Height, box.Params.Depth))

	sides := box.Sides()
	for _, name := range engine.PanelNames {
		side := sides[name]
		canvas.Gid(name)
		for _, seg := range panelSegments(side, settings.DrawConstruction) {
			style := svgCutStyle
			if seg.Construction {
				style = svgBuildStyle
			}
			canvas.Line(frame.x(seg.Source.X), frame.y(seg.Source.Y), frame.x(seg.Dest.X), frame.y(seg.Dest.Y), style)
		}
		for _, c := range side.Cutouts() {
			if c.Kind == model.CutoutCircle {
				ctr := c.Center()
				canvas.Circle(frame.x(ctr.X), frame.y(ctr.Y), frame.length(c.Radius()), svgCutoutStyle)
				continue
			}
			lo, hi := c.Min(), c.Max()
			canvas.Rect(frame.x(lo.X), frame.y(hi.Y), frame.length(hi.X-lo.X), frame.length(hi.Y-lo.Y), svgCutoutStyle)
		}
		ctr := side.Inner(model.CornerSW).Midpoint(side.Inner(model.CornerNE))
		canvas.Text(frame.x(ctr.X), frame.y(ctr.Y), name, svgCaptionStyle+";text-anchor:middle")
		canvas.Gend()
	}
	canvas.End()
	return ew.err
}

// ExportSVG writes the layout to an SVG file.
func ExportSVG(path string, box *engine.Box, settings model.OutputSettings) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create SVG: %w", err)
	}
	if err := WriteSVG(f, box, settings); err != nil {
		_ = f.Close()
		return fmt.Errorf("write SVG: %w", err)
	}
	return f.Close()
}
