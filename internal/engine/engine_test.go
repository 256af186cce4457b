package engine

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/TabBox/internal/geometry"
	"github.com/piwi3910/TabBox/internal/model"
)

const eps = 1e-6

func newTestBox(t *testing.T) *Box {
	t.Helper()
	b, err := NewBox(BoxParams{Width: 100, Height: 50, Depth: 65, Thickness: 3, Spacing: 2})
	require.NoError(t, err)
	return b
}

func newTestEdge(t *testing.T, wide, tall bool, count, rotate int) (*Edge, *geometry.Arena) {
	t.Helper()
	a := geometry.NewArena()
	start := a.Add(geometry.Point{})
	thick := geometry.NewDim(3, "T")
	e, err := NewEdge(a, EdgeInfo{
		IsWide:           wide,
		IsTall:           tall,
		NotchWidth:       geometry.NewDim(10, "N"),
		NotchHeight:      thick,
		NotchHeightOther: thick,
		NotchCount:       count,
	}, start, rotate)
	require.NoError(t, err)
	return e, a
}

func pointKey(p geometry.Point) string {
	round := func(v float64) float64 { return math.Round(v*1e5)/1e5 + 0 }
	return fmt.Sprintf("%.5f,%.5f", round(p.X), round(p.Y))
}

// outerRuns returns the x extents of real horizontal lines lying on y.
func outerRuns(s *Side, y float64) [][2]float64 {
	var runs [][2]float64
	for _, seg := range s.RealLines() {
		if math.Abs(seg.Source.Y-y) > eps || math.Abs(seg.Dest.Y-y) > eps {
			continue
		}
		runs = append(runs, [2]float64{math.Min(seg.Source.X, seg.Dest.X), math.Max(seg.Source.X, seg.Dest.X)})
	}
	return runs
}

// ─── Tab solve ───

func TestCalcTabNumAndLength(t *testing.T) {
	tests := []struct {
		dim, thick float64
		tabs       int
	}{
		{100, 3, 5},
		{50, 3, 3},
		{65, 3, 3},
		{9, 3, 1},
		{300, 3, 15},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%g/%g", tt.dim, tt.thick), func(t *testing.T) {
			n, length, err := CalcTabNumAndLength(geometry.NewDim(tt.dim, "W"), geometry.NewDim(tt.thick, "T"))
			require.NoError(t, err)
			assert.Equal(t, tt.tabs, n)
			assert.InDelta(t, tt.dim/float64(2*tt.tabs+1), length.Dist, eps)
			assert.Equal(t, fmt.Sprintf("(W / %d)", 2*tt.tabs+1), length.Label)
		})
	}
}

func TestCalcTabNumAndLengthProperties(t *testing.T) {
	thick := geometry.NewDim(3, "T")
	for dim := 9.0; dim <= 600; dim += 0.5 {
		n, length, err := CalcTabNumAndLength(geometry.NewDim(dim, ""), thick)
		require.NoError(t, err, "dim %g", dim)
		assert.GreaterOrEqual(t, n, 1, "dim %g", dim)
		assert.Equal(t, 1, n%2, "dim %g: tab count must be odd", dim)
		assert.InDelta(t, dim, length.Dist*float64(2*n+1), eps, "dim %g", dim)
		assert.GreaterOrEqual(t, length.Dist, thick.Dist-eps, "dim %g", dim)
	}
}

func TestCalcTabNumAndLengthRejectsBadInput(t *testing.T) {
	for _, c := range [][2]float64{{8, 3}, {0, 3}, {-5, 3}, {100, 0}} {
		_, _, err := CalcTabNumAndLength(geometry.NewDim(c[0], ""), geometry.NewDim(c[1], ""))
		assert.ErrorIs(t, err, ErrInvalidConfiguration, "%v", c)
	}
}

func TestCalcTabNumAndLengthBoundsTabCount(t *testing.T) {
	cases := [][2]float64{
		{1e300, 1e-300},
		{1e6, 0.001},
		{math.Inf(1), 3},
		{math.NaN(), 3},
		{100, math.NaN()},
	}
	for _, c := range cases {
		_, _, err := CalcTabNumAndLength(geometry.NewDim(c[0], ""), geometry.NewDim(c[1], ""))
		assert.ErrorIs(t, err, ErrInvalidConfiguration, "%v", c)
	}

	n, _, err := CalcTabNumAndLength(geometry.NewDim(6*MaxTabs, ""), geometry.NewDim(1, ""))
	require.NoError(t, err)
	assert.LessOrEqual(t, n, MaxTabs)
}

// ─── Edge ───

func TestEdgeLineCount(t *testing.T) {
	for n := 0; n <= 5; n++ {
		e, _ := newTestEdge(t, true, true, n, 0)
		assert.Len(t, e.Lines(), 6*n+8, "notch count %d", n)
	}
}

func TestEdgeEndpoints(t *testing.T) {
	// 2 corners of 3 plus 5 segments of 10.
	e, a := newTestEdge(t, true, true, 2, 0)
	assert.InDelta(t, 56, a.At(e.End).X, eps)
	assert.InDelta(t, 0, a.At(e.End).Y, eps)
	assert.Equal(t, geometry.Point{X: 3, Y: 3}, a.At(e.InnerStart))

	e, a = newTestEdge(t, true, true, 2, 90)
	assert.InDelta(t, 0, a.At(e.End).X, eps)
	assert.InDelta(t, 56, a.At(e.End).Y, eps)
	assert.InDelta(t, -3, a.At(e.InnerStart).X, eps)
	assert.InDelta(t, 3, a.At(e.InnerStart).Y, eps)
}

func TestEdgeRealLinesWideTall(t *testing.T) {
	const n = 2
	e, _ := newTestEdge(t, true, true, n, 0)

	var outer, inner, connectors int
	for _, s := range e.Segments() {
		if s.Construction {
			continue
		}
		switch {
		case s.Source.X == s.Dest.X:
			connectors++
		case s.Source.Y == 0:
			outer++
		default:
			inner++
		}
	}
	assert.Equal(t, n+3, outer, "outer corners and tabs")
	assert.Equal(t, n, inner, "slots")
	assert.Equal(t, 2*n, connectors)
	assert.Equal(t, 4*n+3, e.RealLineCount())
}

func TestEdgeRotationKeepsShape(t *testing.T) {
	base, _ := newTestEdge(t, false, true, 3, 0)
	want := base.Segments()
	for _, deg := range []int{90, 180, 270, -90, 450} {
		e, _ := newTestEdge(t, false, true, 3, deg)
		got := e.Segments()
		require.Len(t, got, len(want))
		assert.Equal(t, base.RealLineCount(), e.RealLineCount(), "rotation %d", deg)
		for i := range got {
			assert.InDelta(t, want[i].Len(), got[i].Len(), eps, "rotation %d line %d", deg, i)
			assert.Equal(t, want[i].Construction, got[i].Construction)
		}
	}
}

func TestEdgeRejectsBadInput(t *testing.T) {
	a := geometry.NewArena()
	start := a.Add(geometry.Point{})
	_, err := NewEdge(a, EdgeInfo{NotchWidth: geometry.NewDim(1, ""), NotchHeight: geometry.NewDim(1, ""),
		NotchHeightOther: geometry.NewDim(1, ""), NotchCount: -1}, start, 0)
	assert.ErrorIs(t, err, geometry.ErrInvalidArgument)

	_, err = NewEdge(a, EdgeInfo{NotchWidth: geometry.NewDim(1, ""), NotchHeight: geometry.NewDim(1, ""),
		NotchHeightOther: geometry.NewDim(1, ""), NotchCount: 1}, start, 45)
	assert.ErrorIs(t, err, geometry.ErrInvalidArgument)

	_, err = NewEdge(a, EdgeInfo{NotchWidth: geometry.NewDim(0, ""), NotchHeight: geometry.NewDim(1, ""),
		NotchHeightOther: geometry.NewDim(1, ""), NotchCount: 1}, start, 0)
	assert.ErrorIs(t, err, geometry.ErrInvalidArgument)
}

// ─── Side ───

func TestSideCloses(t *testing.T) {
	b := newTestBox(t)
	for name, s := range b.Sides() {
		edges := s.Edges()
		for i := 0; i < 3; i++ {
			assert.Equal(t, edges[i].End, edges[i+1].Start, "%s edge %d", name, i)
		}
		end := s.arena.At(s.West.End)
		sw := s.Outer(model.CornerSW)
		assert.InDelta(t, sw.X, end.X, eps, name)
		assert.InDelta(t, sw.Y, end.Y, eps, name)
	}
}

func TestSideInnerBoxIsInset(t *testing.T) {
	b := newTestBox(t)
	for name, s := range b.Sides() {
		for _, c := range []model.Corner{model.CornerSW, model.CornerSE, model.CornerNE, model.CornerNW} {
			sx, sy := c.AxisSigns()
			outer, inner := s.Outer(c), s.Inner(c)
			assert.InDelta(t, outer.X+3*sx, inner.X, eps, "%s %s", name, c)
			assert.InDelta(t, outer.Y+3*sy, inner.Y, eps, "%s %s", name, c)
		}
	}
}

func TestSideEdgeLines(t *testing.T) {
	b := newTestBox(t)
	for name, s := range b.Sides() {
		groups := s.EdgeLines()
		counts := [4]int{s.Info.EWNotchCount, s.Info.NSNotchCount, s.Info.EWNotchCount, s.Info.NSNotchCount}
		var joined []geometry.Segment
		for i, g := range groups {
			assert.Len(t, g, 6*counts[i]+8, "%s edge %d", name, i)
			joined = append(joined, g...)
		}
		assert.Equal(t, s.AllLines(), joined, name)
	}
}

func TestSideRealLinesFormClosedLoop(t *testing.T) {
	b := newTestBox(t)
	for name, s := range b.Sides() {
		degree := map[string]int{}
		for _, seg := range s.RealLines() {
			degree[pointKey(seg.Source)]++
			degree[pointKey(seg.Dest)]++
		}
		require.NotEmpty(t, degree, name)
		for p, d := range degree {
			assert.Equal(t, 2, d, "%s: vertex %s", name, p)
		}
	}
}

// ─── Box ───

func TestBoxLayout(t *testing.T) {
	b := newTestBox(t)

	tests := []struct {
		name          string
		side          *Side
		sw            geometry.Point
		width, height float64
	}{
		{PanelBottom, b.Bottom, geometry.Point{X: 0, Y: 0}, 106, 71},
		{PanelRight, b.Right, geometry.Point{X: 108, Y: 0}, 56, 71},
		{PanelUpper, b.Upper, geometry.Point{X: 0, Y: 73}, 106, 56},
		{PanelLeft, b.Left, geometry.Point{X: -58, Y: 0}, 56, 71},
		{PanelTop, b.Top, geometry.Point{X: 166, Y: 0}, 106, 71},
		{PanelLower, b.Lower, geometry.Point{X: 0, Y: -58}, 106, 56},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sw := tt.side.Outer(model.CornerSW)
			assert.InDelta(t, tt.sw.X, sw.X, eps)
			assert.InDelta(t, tt.sw.Y, sw.Y, eps)
			assert.InDelta(t, tt.width, tt.side.Width(), eps)
			assert.InDelta(t, tt.height, tt.side.Height(), eps)
		})
	}

	tabs := b.Tabs()
	assert.Equal(t, 5, tabs["width"].Count)
	assert.Equal(t, 3, tabs["height"].Count)
	assert.Equal(t, 3, tabs["depth"].Count)

	min, max := b.Extents()
	assert.InDelta(t, -58, min.X, eps)
	assert.InDelta(t, -58, min.Y, eps)
	assert.InDelta(t, 272, max.X, eps)
	assert.InDelta(t, 129, max.Y, eps)
}

func TestBoxLinesStayInsidePanels(t *testing.T) {
	b := newTestBox(t)
	for name, s := range b.Sides() {
		for _, seg := range s.AllLines() {
			assert.True(t, s.Contains(seg.Source), "%s: %v outside", name, seg.Source)
			assert.True(t, s.Contains(seg.Dest), "%s: %v outside", name, seg.Dest)
			assert.Greater(t, seg.Len(), 0.0, name)
		}
	}
}

func TestBoxTopMatchesBottom(t *testing.T) {
	b := newTestBox(t)
	bottom, top := b.Bottom.AllLines(), b.Top.AllLines()
	require.Len(t, top, len(bottom))

	dx := b.Top.Outer(model.CornerSW).X - b.Bottom.Outer(model.CornerSW).X
	for i := range bottom {
		assert.InDelta(t, bottom[i].Source.X+dx, top[i].Source.X, eps)
		assert.InDelta(t, bottom[i].Source.Y, top[i].Source.Y, eps)
		assert.InDelta(t, bottom[i].Dest.X+dx, top[i].Dest.X, eps)
		assert.InDelta(t, bottom[i].Dest.Y, top[i].Dest.Y, eps)
		assert.Equal(t, bottom[i].Construction, top[i].Construction)
	}
}

func TestBoxAllLinesIsStable(t *testing.T) {
	b := newTestBox(t)
	first := b.AllLines()
	assert.Equal(t, first, b.AllLines())

	var total int
	for _, s := range b.Sides() {
		total += len(s.AllLines())
	}
	assert.Len(t, first, total)
}

func TestBoxMatingEdgesHaveOppositePhase(t *testing.T) {
	b := newTestBox(t)
	assert.NotEqual(t, b.Bottom.Info.IsTall, b.Lower.Info.IsTall)
	assert.NotEqual(t, b.Bottom.Info.IsWide, b.Right.Info.IsWide)
	assert.NotEqual(t, b.Upper.Info.IsWide, b.Right.Info.IsTall)

	// Bottom's south edge mates with the lower panel's north edge: the tabs
	// of one fill the slots of the other along the whole width.
	bottom := outerRuns(b.Bottom, b.Bottom.Outer(model.CornerSW).Y)
	lower := outerRuns(b.Lower, b.Lower.Outer(model.CornerNW).Y)
	assert.Len(t, bottom, 5)
	assert.Len(t, lower, 6)

	var total float64
	for _, r := range append(append([][2]float64{}, bottom...), lower...) {
		total += r[1] - r[0]
	}
	assert.InDelta(t, 100, total, eps)
	for _, r := range bottom {
		for _, o := range lower {
			overlap := math.Min(r[1], o[1]) - math.Max(r[0], o[0])
			assert.LessOrEqual(t, overlap, eps, "bottom %v overlaps lower %v", r, o)
		}
	}
}

func TestNewBoxRejectsBadParams(t *testing.T) {
	tests := []BoxParams{
		{Width: 0, Height: 50, Depth: 65, Thickness: 3},
		{Width: 100, Height: -1, Depth: 65, Thickness: 3},
		{Width: 100, Height: 50, Depth: 65, Thickness: 0},
		{Width: 100, Height: 50, Depth: 65, Thickness: 3, Spacing: -1},
		{Width: math.Inf(1), Height: 50, Depth: 65, Thickness: 3},
		{Width: 100, Height: 50, Depth: 8, Thickness: 3},
	}
	for i, p := range tests {
		_, err := NewBox(p)
		assert.ErrorIs(t, err, ErrInvalidConfiguration, "case %d", i)
	}
}

func TestZeroSpacingPanelsTouch(t *testing.T) {
	b, err := NewBox(BoxParams{Width: 100, Height: 50, Depth: 65, Thickness: 3})
	require.NoError(t, err)
	assert.InDelta(t, b.Bottom.Outer(model.CornerSE).X, b.Right.Outer(model.CornerSW).X, eps)
	assert.InDelta(t, b.Bottom.Outer(model.CornerNW).Y, b.Upper.Outer(model.CornerSW).Y, eps)
}

// ─── Cutouts ───

func TestAddCutoutFromNorthWest(t *testing.T) {
	b := newTestBox(t)
	err := b.Upper.AddCutout(model.CutoutSpec{
		Kind: model.CutoutRect, Name: "switch",
		X1: 5, Y1: 12, X2: 12.8, Y2: 31.05, Corner: model.CornerNW,
	})
	require.NoError(t, err)

	cs := b.Upper.Cutouts()
	require.Len(t, cs, 1)
	assert.InDelta(t, 8, cs[0].Corner1.X, eps)
	assert.InDelta(t, 114, cs[0].Corner1.Y, eps)
	assert.InDelta(t, 15.8, cs[0].Corner2.X, eps)
	assert.InDelta(t, 94.95, cs[0].Corner2.Y, eps)
	assert.Empty(t, b.Upper.CheckCutouts())
}

func TestAddCutoutFromEachCorner(t *testing.T) {
	b := newTestBox(t)
	for _, c := range []model.Corner{model.CornerSW, model.CornerSE, model.CornerNE, model.CornerNW} {
		require.NoError(t, b.Bottom.AddCutout(model.CutoutSpec{
			Kind: model.CutoutCircle, X1: 2, Y1: 2, X2: 8, Y2: 8, Corner: c,
		}))
	}
	cs := b.Bottom.Cutouts()
	require.Len(t, cs, 4)
	for i, c := range cs {
		assert.InDelta(t, 3, c.Radius(), eps, "cutout %d", i)
	}
	assert.Empty(t, b.Bottom.CheckCutouts())
	// The NE circle sits diagonally opposite the SW one.
	sw, ne := cs[0].Center(), cs[2].Center()
	assert.InDelta(t, b.Bottom.Width()-sw.X, ne.X, eps)
	assert.InDelta(t, b.Bottom.Height()-sw.Y, ne.Y, eps)
}

func TestAddCutoutFlipAndRotate(t *testing.T) {
	b := newTestBox(t)
	require.NoError(t, b.Bottom.AddCutout(model.CutoutSpec{
		Kind: model.CutoutRect, X1: 1, Y1: 2, X2: 4, Y2: 10, Corner: model.CornerSW, FlipXY: true,
	}))
	c := b.Bottom.Cutouts()[0]
	assert.Equal(t, geometry.Point{X: 5, Y: 4}, c.Corner1)
	assert.Equal(t, geometry.Point{X: 13, Y: 7}, c.Corner2)

	require.NoError(t, b.Bottom.AddCutout(model.CutoutSpec{
		Kind: model.CutoutRect, X1: 1, Y1: 2, X2: 4, Y2: 10, Corner: model.CornerSE, Rotate: 90,
	}))
	c = b.Bottom.Cutouts()[1]
	// (-1, 2) from the SE inner corner (103, 3), turned a quarter.
	assert.InDelta(t, 101, c.Corner1.X, eps)
	assert.InDelta(t, 2, c.Corner1.Y, eps)

	err := b.Bottom.AddCutout(model.CutoutSpec{Kind: model.CutoutRect, X2: 1, Y2: 1, Rotate: 30})
	assert.ErrorIs(t, err, geometry.ErrInvalidArgument)
	err = b.Bottom.AddCutout(model.CutoutSpec{Kind: model.CutoutKind(5), X2: 1, Y2: 1})
	assert.ErrorIs(t, err, geometry.ErrInvalidArgument)
}

func TestCheckCutouts(t *testing.T) {
	b := newTestBox(t)
	require.NoError(t, b.Right.AddCutout(model.CutoutSpec{Kind: model.CutoutRect, Name: "a", X1: 0, Y1: 0, X2: 10, Y2: 10}))
	require.NoError(t, b.Right.AddCutout(model.CutoutSpec{Kind: model.CutoutRect, Name: "b", X1: 5, Y1: 5, X2: 15, Y2: 15}))
	require.NoError(t, b.Right.AddCutout(model.CutoutSpec{Kind: model.CutoutCircle, X1: -2, Y1: 20, X2: 4, Y2: 26}))

	issues := b.Right.CheckCutouts()
	require.Len(t, issues, 2)
	assert.Equal(t, "a", issues[0].Cutout)
	assert.Contains(t, issues[0].Message, "overlaps b")
	assert.Equal(t, "circle #3", issues[1].Cutout)
	assert.Contains(t, issues[1].Message, "inner bounding box")
}

// ─── Build ───

func TestBuildFromDesign(t *testing.T) {
	d := model.NewDesign("psu", 100, 50, 65, 3, 2)
	d.Origin = model.Point2D{X: 10, Y: 20}
	d.Cutouts = []model.CutoutSpec{
		{Panel: PanelUpper, Kind: model.CutoutRect, X1: 5, Y1: 12, X2: 12.8, Y2: 31.05, Corner: model.CornerNW},
		{Panel: PanelLeft, Kind: model.CutoutCircle, X1: 10, Y1: 10, X2: 22, Y2: 22},
		{Panel: PanelLeft, Kind: model.CutoutCircle, X1: 15, Y1: 15, X2: 27, Y2: 27},
	}
	b, err := Build(d)
	require.NoError(t, err)

	assert.Equal(t, geometry.Point{X: 10, Y: 20}, b.Bottom.Outer(model.CornerSW))
	assert.Len(t, b.Upper.Cutouts(), 1)
	assert.Len(t, b.Left.Cutouts(), 2)

	issues := b.Issues()
	assert.Len(t, issues, 1)
	assert.Len(t, issues[PanelLeft], 1)
}

func TestBuildRejectsBadDesigns(t *testing.T) {
	d := model.NewDesign("bad", 100, 50, 65, 3, 2)
	d.Cutouts = []model.CutoutSpec{{Panel: "roof", Kind: model.CutoutRect, X2: 1, Y2: 1}}
	_, err := Build(d)
	assert.ErrorIs(t, err, geometry.ErrInvalidArgument)

	d = model.NewDesign("bad", 100, 0, 65, 3, 2)
	_, err = Build(d)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
