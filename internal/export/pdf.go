package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/TabBox/internal/engine"
	"github.com/piwi3910/TabBox/internal/geometry"
	"github.com/piwi3910/TabBox/internal/model"
)

// panelColor represents an RGB fill for one panel.
type panelColor struct {
	R, G, B int
}

// panelFills follow the layout order of engine.PanelNames.
var panelFills = []panelColor{
	{R: 222, G: 196, B: 160}, // bottom
	{R: 200, G: 220, B: 190}, // right
	{R: 190, G: 210, B: 235}, // upper
	{R: 200, G: 220, B: 190}, // left
	{R: 222, G: 196, B: 160}, // top
	{R: 190, G: 210, B: 235}, // lower
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF writes a cut sheet: the flat layout of all six panels on the
// first page and a panel schedule on the second.
func ExportPDF(path string, box *engine.Box, settings model.OutputSettings) error {
	if box == nil {
		return errors.New("no box to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.SetTitle(boxTitle(box), false)

	pdf.AddPage()
	renderLayoutPage(pdf, box, settings)

	pdf.AddPage()
	renderSummaryPage(pdf, box, settings)

	return pdf.OutputFileAndClose(path)
}

func boxTitle(box *engine.Box) string {
	p := box.Params
	return fmt.Sprintf("Tabbed Box %g x %g x %g mm", p.Width, p.Height, p.Depth)
}

// pageFrame maps layout coordinates to page millimetres, y down.
type pageFrame struct {
	min, max         geometry.Point
	scale            float64
	offsetX, offsetY float64
}

func (f pageFrame) pt(p geometry.Point) (float64, float64) {
	return f.offsetX + (p.X-f.min.X)*f.scale, f.offsetY + (f.max.Y-p.Y)*f.scale
}

// renderLayoutPage draws every panel, scaled to fit the page.
func renderLayoutPage(pdf *fpdf.Fpdf, box *engine.Box, settings model.OutputSettings) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, boxTitle(box), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Material: %g mm | Spacing: %g mm | Drawing scale: %g",
		box.Params.Thickness, box.Params.Spacing, scaleOf(settings))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	min, max := box.Extents()
	layoutW, layoutH := max.X-min.X, max.Y-min.Y
	scale := math.Min(drawWidth/layoutW, drawHeight/layoutH)
	canvasW, canvasH := layoutW*scale, layoutH*scale

	frame := pageFrame{
		min: min, max: max, scale: scale,
		offsetX: marginLeft + (drawWidth-canvasW)/2,
		offsetY: drawAreaTop,
	}

	sides := box.Sides()
	for i, name := range engine.PanelNames {
		drawPanel(pdf, sides[name], name, panelFills[i%len(panelFills)], frame, settings.DrawConstruction)
	}

	drawDimensionAnnotations(pdf, min, max, frame.offsetX, frame.offsetY, canvasW, canvasH)
	drawPanelLegend(pdf, sides, frame.offsetY+canvasH+6)
}

// drawPanel fills a panel's outline, cuts its cutouts out in white and
// labels it at its centre.
func drawPanel(pdf *fpdf.Fpdf, side *engine.Side, name string, col panelColor, frame pageFrame, construction bool) {
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.SetDrawColor(30, 30, 30)
	pdf.SetLineWidth(0.2)

	if outline, err := TraceOutline(side); err == nil {
		pts := make([]fpdf.PointType, len(outline))
		for i, p := range outline {
			pts[i].X, pts[i].Y = frame.pt(p)
		}
		pdf.Polygon(pts, "FD")
	} else {
		for _, seg := range side.RealLines() {
			x1, y1 := frame.pt(seg.Source)
			x2, y2 := frame.pt(seg.Dest)
			pdf.Line(x1, y1, x2, y2)
		}
	}

	if construction {
		pdf.SetDrawColor(30, 120, 255)
		pdf.SetLineWidth(0.1)
		pdf.SetDashPattern([]float64{1, 1}, 0)
		for _, seg := range side.AllLines() {
			if seg.Construction {
				x1, y1 := frame.pt(seg.Source)
				x2, y2 := frame.pt(seg.Dest)
				pdf.Line(x1, y1, x2, y2)
			}
		}
		pdf.SetDashPattern([]float64{}, 0)
	}

	pdf.SetFillColor(255, 255, 255)
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.2)
	for _, c := range side.Cutouts() {
		if c.Kind == model.CutoutCircle {
			x, y := frame.pt(c.Center())
			pdf.Circle(x, y, c.Radius()*frame.scale, "FD")
			continue
		}
		lo, hi := c.Min(), c.Max()
		x, y := frame.pt(geometry.Point{X: lo.X, Y: hi.Y})
		pdf.Rect(x, y, (hi.X-lo.X)*frame.scale, (hi.Y-lo.Y)*frame.scale, "FD")
	}

	sw, ne := side.Outer(model.CornerSW), side.Outer(model.CornerNE)
	pw, ph := (ne.X-sw.X)*frame.scale, (ne.Y-sw.Y)*frame.scale
	if pw > 15 && ph > 8 {
		pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
		pdf.SetTextColor(0, 0, 0)
		cx, cy := frame.pt(sw.Midpoint(ne))

		labelW := pdf.GetStringWidth(name)
		if labelW < pw-2 {
			pdf.SetXY(cx-labelW/2, cy-4)
			pdf.CellFormat(labelW, 4, name, "", 0, "C", false, 0, "")
		}

		dims := fmt.Sprintf("%.1fx%.1f", side.Width(), side.Height())
		dimsW := pdf.GetStringWidth(dims)
		if ph > 14 && dimsW < pw-2 {
			pdf.SetXY(cx-dimsW/2, cy)
			pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
		}
	}
}

// drawDimensionAnnotations labels the overall layout size outside the drawing.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, min, max geometry.Point, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.1f mm", max.X-min.X)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.1f mm", max.Y-min.Y)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawPanelLegend renders one swatch per panel below the layout.
func drawPanelLegend(pdf *fpdf.Fpdf, sides map[string]*engine.Side, startY float64) {
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Panels:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, name := range engine.PanelNames {
		col := panelFills[i%len(panelFills)]
		side := sides[name]
		label := fmt.Sprintf("%s (%.1fx%.1f)", name, side.Width(), side.Height())
		if n := len(side.Cutouts()); n > 0 {
			label += fmt.Sprintf(" +%d", n)
		}
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the joint table, the panel schedule and any
// cutout advisories.
func renderSummaryPage(pdf *fpdf.Fpdf, box *engine.Box, settings model.OutputSettings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Panel Schedule", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Box", "", 0, "L", false, 0, "")
	y += 9

	p := box.Params
	t := 2 * p.Thickness
	tabs := box.Tabs()
	summaryItems := []struct {
		label string
		value string
	}{
		{"Inner Size", fmt.Sprintf("%g x %g x %g mm", p.Width, p.Height, p.Depth)},
		{"Outer Size", fmt.Sprintf("%g x %g x %g mm", p.Width+t, p.Height+t, p.Depth+t)},
		{"Material Thickness", fmt.Sprintf("%g mm", p.Thickness)},
		{"Width Joint", jointText(tabs["width"])},
		{"Height Joint", jointText(tabs["height"])},
		{"Depth Joint", jointText(tabs["depth"])},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Panels", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{25, 45, 45, 35, 25, 25, 40}
	headers := []string{"Panel", "Outer", "Inner", "Tabs (EW/NS)", "Lines", "Cutouts", "Cut Length"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	summaries := Summarize(box)
	pdf.SetFont("Helvetica", "", 9)
	for i, s := range summaries {
		xPos = marginLeft
		rowData := []string{
			s.Name,
			fmt.Sprintf("%.1f x %.1f mm", s.Width, s.Height),
			fmt.Sprintf("%.1f x %.1f mm", s.InnerWidth, s.InnerHeight),
			fmt.Sprintf("%d / %d", s.EWTabs, s.NSTabs),
			fmt.Sprintf("%d", s.RealLines),
			fmt.Sprintf("%d", s.Cutouts),
			fmt.Sprintf("%.0f mm", s.CutLength),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	var issueLines []string
	for _, s := range summaries {
		for _, is := range s.Issues {
			issueLines = append(issueLines, fmt.Sprintf("- %s: %s %s", s.Name, is.Cutout, is.Message))
		}
	}
	if len(issueLines) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Cutout Problems", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		for _, line := range issueLines {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(200, 5, line, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Output Settings", "", 0, "L", false, 0, "")
	y += 9

	settingsItems := []struct {
		label string
		value string
	}{
		{"Machine Profile", settings.Profile},
		{"Feed Rate", fmt.Sprintf("%.0f mm/min", settings.FeedRate)},
		{"Cut Depth", fmt.Sprintf("%.1f mm", settings.CutDepth)},
		{"Pass Depth", fmt.Sprintf("%.1f mm", settings.PassDepth)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by TabBox - Tabbed Box Maker", "", 0, "C", false, 0, "")
}

func jointText(t engine.TabSpec) string {
	return fmt.Sprintf("%d tabs of %.2f mm", t.Count, t.Length.Dist)
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
