// Package importer reads cutout lists for box panels from CSV, Excel and
// DXF files. Tabular imports detect the delimiter and map columns by
// case-insensitive header names.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/TabBox/internal/engine"
	"github.com/piwi3910/TabBox/internal/model"
)

// ImportResult holds the results of an import operation. Row problems do
// not abort the import; they are collected in Errors and Warnings.
type ImportResult struct {
	Cutouts  []model.CutoutSpec
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
// -1 means the column is absent.
type ColumnMapping struct {
	Panel  int
	Kind   int
	Name   int
	X1     int
	Y1     int
	X2     int
	Y2     int
	Corner int
	Rotate int
	Flip   int
}

// positionalMapping is used when the first row is not a recognised header.
var positionalMapping = ColumnMapping{
	Panel: 0, Kind: 1, Name: 2, X1: 3, Y1: 4, X2: 5, Y2: 6, Corner: 7, Rotate: 8, Flip: 9,
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"panel":  {"panel", "side", "face", "wall"},
	"kind":   {"kind", "type", "shape"},
	"name":   {"name", "label", "description", "desc", "feature"},
	"x1":     {"x1", "x", "x start"},
	"y1":     {"y1", "y", "y start"},
	"x2":     {"x2", "x end"},
	"y2":     {"y2", "y end"},
	"corner": {"corner", "origin", "ref", "reference"},
	"rotate": {"rotate", "rotation", "angle"},
	"flip":   {"flip", "flipxy", "flip xy", "swap xy"},
}

func (m *ColumnMapping) field(role string) *int {
	switch role {
	case "panel":
		return &m.Panel
	case "kind":
		return &m.Kind
	case "name":
		return &m.Name
	case "x1":
		return &m.X1
	case "y1":
		return &m.Y1
	case "x2":
		return &m.X2
	case "y2":
		return &m.Y2
	case "corner":
		return &m.Corner
	case "rotate":
		return &m.Rotate
	case "flip":
		return &m.Flip
	}
	return nil
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}
		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}
	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping and false if no header was found.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{-1, -1, -1, -1, -1, -1, -1, -1, -1, -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if f := mapping.field(role); *f == -1 {
					*f = i
				}
			}
		}
	}
	if !isHeader {
		return positionalMapping, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isKnownPanel(name string) bool {
	for _, p := range engine.PanelNames {
		if p == name {
			return true
		}
	}
	return false
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "", "0", "false", "no", "n", "-":
		return false, true
	case "1", "true", "yes", "y", "x":
		return true, true
	}
	return false, false
}

// parseRow extracts a cutout from a row using the given column mapping.
// Returns the cutout, any error message, and any warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.CutoutSpec, string, string) {
	var spec model.CutoutSpec

	spec.Panel = strings.ToLower(getCell(row, mapping.Panel))
	if spec.Panel == "" {
		return spec, fmt.Sprintf("%s: Missing panel", rowLabel), ""
	}
	if !isKnownPanel(spec.Panel) {
		return spec, fmt.Sprintf("%s: Unknown panel '%s'", rowLabel, spec.Panel), ""
	}

	kind, err := model.ParseCutoutKind(getCell(row, mapping.Kind))
	if err != nil {
		return spec, fmt.Sprintf("%s: %v", rowLabel, err), ""
	}
	spec.Kind = kind
	spec.Name = getCell(row, mapping.Name)

	coords := []struct {
		name string
		idx  int
		dst  *float64
	}{
		{"x1", mapping.X1, &spec.X1}, {"y1", mapping.Y1, &spec.Y1},
		{"x2", mapping.X2, &spec.X2}, {"y2", mapping.Y2, &spec.Y2},
	}
	for _, c := range coords {
		s := getCell(row, c.idx)
		if s == "" {
			return spec, fmt.Sprintf("%s: Missing %s value", rowLabel, c.name), ""
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return spec, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, c.name, s), ""
		}
		*c.dst = v
	}
	if spec.X1 == spec.X2 || spec.Y1 == spec.Y2 {
		return spec, fmt.Sprintf("%s: Cutout has zero width or height", rowLabel), ""
	}

	var warnings []string
	if s := getCell(row, mapping.Corner); s != "" {
		corner, err := model.ParseCorner(s)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Unknown corner '%s', defaulting to sw", s))
		} else {
			spec.Corner = corner
		}
	}
	if s := getCell(row, mapping.Rotate); s != "" {
		deg, err := strconv.Atoi(s)
		if err != nil || deg%90 != 0 {
			return spec, fmt.Sprintf("%s: Rotation '%s' is not a multiple of 90", rowLabel, s), ""
		}
		spec.Rotate = deg
	}
	if s := getCell(row, mapping.Flip); s != "" {
		flip, ok := parseBool(s)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("Unknown flip value '%s', defaulting to no", s))
		}
		spec.FlipXY = flip
	}

	var warning string
	if len(warnings) > 0 {
		warning = rowLabel + ": " + strings.Join(warnings, "; ")
	}
	return spec, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports cutouts from a CSV file, detecting the delimiter and
// mapping columns by header names.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	r := ImportCSVFromReader(bytes.NewReader(data), delimiter)
	r.Warnings = append(result.Warnings, r.Warnings...)
	return r
}

// ImportCSVFromReader imports cutouts from a CSV reader with a known delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1
	csvReader.Comment = '#'

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}
	return importFromRows(records, "Line")
}

// ImportExcel imports cutouts from the first sheet of an Excel workbook.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}
	return importFromRows(rows, "Row")
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string) ImportResult {
	result := ImportResult{}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		for _, role := range []string{"panel", "kind", "x1", "y1", "x2", "y2"} {
			if *mapping.field(role) == -1 {
				missing = append(missing, strings.ToUpper(role[:1])+role[1:])
			}
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) > positionalMapping.X1 {
		// Not a known header but the coordinate column is not numeric either.
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][positionalMapping.X1]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		spec, errMsg, warning := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Cutouts = append(result.Cutouts, spec)
	}
	return result
}

// ImportFile dispatches on the file extension: .csv/.txt, .xlsx/.xlsm, or
// .dxf. DXF shapes are attached to panel and measured from corner.
func ImportFile(path, panel string, corner model.Corner) ImportResult {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".xlsx"), strings.HasSuffix(lower, ".xlsm"):
		return ImportExcel(path)
	case strings.HasSuffix(lower, ".dxf"):
		return ImportDXF(path, panel, corner)
	default:
		return ImportCSV(path)
	}
}
