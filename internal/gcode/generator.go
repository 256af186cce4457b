package gcode

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/piwi3910/TabBox/internal/engine"
	"github.com/piwi3910/TabBox/internal/export"
	"github.com/piwi3910/TabBox/internal/geometry"
	"github.com/piwi3910/TabBox/internal/model"
)

// minCircleSegments bounds how coarse a circle cutout may be approximated.
const minCircleSegments = 8

// ErrInvalidSettings reports output settings the generator cannot cut with.
var ErrInvalidSettings = errors.New("invalid output settings")

// Generator produces G-code for the panels of a box. Paths follow the drawn
// lines exactly; there is no kerf or tool radius compensation.
type Generator struct {
	Settings model.OutputSettings
	profile  model.MachineProfile
}

func New(settings model.OutputSettings) *Generator {
	return &Generator{
		Settings: settings,
		profile:  model.GetProfile(settings.Profile),
	}
}

// Profile returns the machine profile the generator writes for.
func (g *Generator) Profile() model.MachineProfile {
	return g.profile
}

func (g *Generator) validate() error {
	if g.profile.Laser {
		return nil
	}
	if !(g.Settings.CutDepth > 0) {
		return fmt.Errorf("%w: cut depth must be positive, got %g", ErrInvalidSettings, g.Settings.CutDepth)
	}
	return nil
}

// GenerateBox produces one program cutting every panel in layout order.
func (g *Generator) GenerateBox(box *engine.Box) (string, error) {
	if box == nil {
		return "", errors.New("no box to cut")
	}
	if err := g.validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	g.writeHeader(&b, box, engine.PanelNames)

	sides := box.Sides()
	for i, name := range engine.PanelNames {
		if err := g.writePanel(&b, sides[name], name, i+1); err != nil {
			return "", err
		}
	}

	g.writeFooter(&b)
	return b.String(), nil
}

// GeneratePanel produces a program for a single named panel.
func (g *Generator) GeneratePanel(box *engine.Box, name string) (string, error) {
	if box == nil {
		return "", errors.New("no box to cut")
	}
	side, ok := box.Side(name)
	if !ok {
		return "", fmt.Errorf("unknown panel %q", name)
	}
	if err := g.validate(); err != nil {
		return "", err
	}

	var b strings.Builder
	g.writeHeader(&b, box, []string{name})
	if err := g.writePanel(&b, side, name, 1); err != nil {
		return "", err
	}
	g.writeFooter(&b)
	return b.String(), nil
}

func (g *Generator) writeHeader(b *strings.Builder, box *engine.Box, panels []string) {
	p := g.profile
	bp := box.Params

	b.WriteString(g.comment(fmt.Sprintf("TabBox G-code - box %g x %g x %g mm, material %g mm",
		bp.Width, bp.Height, bp.Depth, bp.Thickness)))
	b.WriteString(g.comment(fmt.Sprintf("Panels: %s", strings.Join(panels, ", "))))
	if p.Laser {
		b.WriteString(g.comment(fmt.Sprintf("Laser power: S%d, Feed: %.0f mm/min, Passes: %d",
			g.Settings.SpindleSpeed, g.Settings.FeedRate, g.laserPasses())))
	} else {
		b.WriteString(g.comment(fmt.Sprintf("Feed: %.0f mm/min, Plunge: %.0f mm/min",
			g.Settings.FeedRate, g.Settings.PlungeRate)))
		b.WriteString(g.comment(fmt.Sprintf("Depth: %.1fmm in %.1fmm passes", g.Settings.CutDepth, g.passDepth())))
	}
	if s := scaleOf(g.Settings); s != 1 {
		b.WriteString(g.comment(fmt.Sprintf("Scale: %g", s)))
	}
	b.WriteString(g.comment(fmt.Sprintf("Profile: %s", p.Name)))
	b.WriteString("\n")

	for _, code := range p.StartCode {
		b.WriteString(code + "\n")
	}

	if p.Laser {
		// The beam is switched per path; make sure it starts off.
		if p.SpindleStop != "" {
			b.WriteString(p.SpindleStop + "\n")
		}
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0)))
		b.WriteString("\n")
		return
	}

	if p.SpindleStart != "" {
		b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Settings.SpindleSpeed))
	}
	b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(0), g.format(0)))
	b.WriteString("\n")
}

func (g *Generator) writeFooter(b *strings.Builder) {
	p := g.profile

	b.WriteString("\n")
	b.WriteString(g.comment("=== Job complete ==="))

	for _, code := range p.EndCode {
		code = strings.ReplaceAll(code, "[SafeZ]", g.format(g.Settings.SafeZ))
		b.WriteString(code + "\n")
	}

	if p.SpindleStop != "" && !containsLine(p.EndCode, p.SpindleStop) {
		b.WriteString(p.SpindleStop + "\n")
	}
}

// writePanel cuts the cutouts first so the panel is still held by the
// surrounding stock, then the outline.
func (g *Generator) writePanel(b *strings.Builder, side *engine.Side, name string, num int) error {
	outline, err := export.TraceOutline(side)
	if err != nil {
		return fmt.Errorf("panel %s: %w", name, err)
	}

	b.WriteString(g.comment(fmt.Sprintf("--- Panel %d: %s, %.1f x %.1f ---",
		num, name, side.Width(), side.Height())))

	for i, c := range side.Cutouts() {
		label := c.Name
		if label == "" {
			label = fmt.Sprintf("%s #%d", c.Kind, i+1)
		}
		b.WriteString(g.comment(fmt.Sprintf("Cutout %s", label)))
		g.cutPath(b, g.cutoutPath(c))
	}

	b.WriteString(g.comment(fmt.Sprintf("Outline %s", name)))
	g.cutPath(b, outline)
	b.WriteString("\n")
	return nil
}

// cutoutPath returns the closed path around a cutout, counter-clockwise.
func (g *Generator) cutoutPath(c engine.Cutout) []geometry.Point {
	if c.Kind == model.CutoutCircle {
		return circlePoints(c.Center(), c.Radius(), g.Settings.CircleSegments)
	}
	lo, hi := c.Min(), c.Max()
	return []geometry.Point{lo, {X: hi.X, Y: lo.Y}, hi, {X: lo.X, Y: hi.Y}}
}

// circlePoints approximates a circle with n points starting at angle zero.
func circlePoints(center geometry.Point, r float64, n int) []geometry.Point {
	if n < minCircleSegments {
		n = minCircleSegments
	}
	pts := make([]geometry.Point, n)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geometry.Point{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	return pts
}

// cutPath traces a closed path and returns to the first point.
func (g *Generator) cutPath(b *strings.Builder, path []geometry.Point) {
	if len(path) < 2 {
		b.WriteString(g.comment("WARNING: path has fewer than 2 points, skipping"))
		return
	}
	if g.profile.Laser {
		g.laserPath(b, path)
		return
	}
	g.routerPath(b, path)
}

func (g *Generator) routerPath(b *strings.Builder, path []geometry.Point) {
	p := g.profile
	passDepth := g.passDepth()
	numPasses := int(math.Ceil(g.Settings.CutDepth/passDepth - 1e-9))
	s := scaleOf(g.Settings)

	for pass := 1; pass <= numPasses; pass++ {
		depth := math.Min(float64(pass)*passDepth, g.Settings.CutDepth)

		b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d, depth=%.2fmm", pass, numPasses, depth)))
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(path[0].X*s), g.format(path[0].Y*s)))
		b.WriteString(fmt.Sprintf("%s Z%s F%s\n", p.FeedMove, g.format(-depth), g.format(g.Settings.PlungeRate)))
		g.traceLoop(b, path, s)
		b.WriteString(fmt.Sprintf("%s Z%s\n", p.RapidMove, g.format(g.Settings.SafeZ)))
	}
}

func (g *Generator) laserPath(b *strings.Builder, path []geometry.Point) {
	p := g.profile
	passes := g.laserPasses()
	s := scaleOf(g.Settings)

	for pass := 1; pass <= passes; pass++ {
		if passes > 1 {
			b.WriteString(g.comment(fmt.Sprintf("Pass %d/%d", pass, passes)))
		}
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.RapidMove, g.format(path[0].X*s), g.format(path[0].Y*s)))
		if p.SpindleStart != "" {
			b.WriteString(fmt.Sprintf(p.SpindleStart+"\n", g.Settings.SpindleSpeed))
		}
		g.traceLoop(b, path, s)
		if p.SpindleStop != "" {
			b.WriteString(p.SpindleStop + "\n")
		}
	}
}

func (g *Generator) traceLoop(b *strings.Builder, path []geometry.Point, s float64) {
	p := g.profile
	for i := 1; i < len(path); i++ {
		if i == 1 {
			b.WriteString(fmt.Sprintf("%s X%s Y%s F%s\n", p.FeedMove,
				g.format(path[i].X*s), g.format(path[i].Y*s), g.format(g.Settings.FeedRate)))
			continue
		}
		b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.FeedMove, g.format(path[i].X*s), g.format(path[i].Y*s)))
	}
	b.WriteString(fmt.Sprintf("%s X%s Y%s\n", p.FeedMove, g.format(path[0].X*s), g.format(path[0].Y*s)))
}

func (g *Generator) passDepth() float64 {
	if g.Settings.PassDepth <= 0 || g.Settings.PassDepth > g.Settings.CutDepth {
		return g.Settings.CutDepth
	}
	return g.Settings.PassDepth
}

func (g *Generator) laserPasses() int {
	if g.Settings.Passes < 1 {
		return 1
	}
	return g.Settings.Passes
}

// comment wraps text in the profile's comment syntax.
func (g *Generator) comment(text string) string {
	return g.profile.CommentPrefix + " " + text + g.profile.CommentSuffix + "\n"
}

// format formats a coordinate according to the profile's decimal places.
func (g *Generator) format(v float64) string {
	format := fmt.Sprintf("%%.%df", g.profile.DecimalPlaces)
	s := fmt.Sprintf(format, v)
	if strings.Trim(s, "-0.") == "" {
		s = strings.TrimPrefix(s, "-")
	}
	return s
}

func scaleOf(settings model.OutputSettings) float64 {
	if settings.Scale <= 0 {
		return 1
	}
	return settings.Scale
}

func containsLine(lines []string, line string) bool {
	for _, l := range lines {
		if strings.TrimSpace(l) == line {
			return true
		}
	}
	return false
}
