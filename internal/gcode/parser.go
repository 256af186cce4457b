package gcode

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MoveType represents the type of toolpath movement.
type MoveType int

const (
	MoveRapid   MoveType = iota // G0: rapid positioning (no cutting)
	MoveFeed                    // G1: linear feed in the XY plane
	MovePlunge                  // G1 with Z decreasing only
	MoveRetract                 // Z increasing only, or a rapid upwards
)

func (t MoveType) String() string {
	switch t {
	case MoveRapid:
		return "rapid"
	case MoveFeed:
		return "feed"
	case MovePlunge:
		return "plunge"
	case MoveRetract:
		return "retract"
	default:
		return "unknown"
	}
}

// Move is a single parsed movement. BeamOn reports whether a spindle or
// laser was switched on (M3/M4) when the move ran.
type Move struct {
	Type     MoveType
	FromX    float64
	FromY    float64
	FromZ    float64
	ToX      float64
	ToY      float64
	ToZ      float64
	FeedRate float64
	BeamOn   bool
}

// Length is the straight-line distance travelled.
func (m Move) Length() float64 {
	return math.Sqrt(sq(m.ToX-m.FromX) + sq(m.ToY-m.FromY) + sq(m.ToZ-m.FromZ))
}

func sq(v float64) float64 { return v * v }

var (
	coordRe = regexp.MustCompile(`([XYZF])(-?\d+\.?\d*)`)
	wordRe  = regexp.MustCompile(`^([GM])0*(\d+)\b`)
)

// ParseGCode parses a program into moves. It tracks the absolute position,
// the sticky feed rate and the M3/M4/M5 state, and classifies each G0/G1.
// Comments in ";" and "( )" form are ignored.
func ParseGCode(code string) []Move {
	var moves []Move

	curX, curY, curZ := 0.0, 0.0, 0.0
	curFeed := 0.0
	beam := false

	for _, line := range strings.Split(code, "\n") {
		line = stripComments(line)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		m := wordRe.FindStringSubmatch(upper)
		if m == nil {
			continue
		}
		word := m[1] + m[2]
		switch word {
		case "M3", "M4":
			beam = true
			continue
		case "M5":
			beam = false
			continue
		case "G0", "G1":
		default:
			continue
		}
		isRapid := word == "G0"

		newX, newY, newZ, newFeed := curX, curY, curZ, curFeed
		for _, c := range coordRe.FindAllStringSubmatch(upper, -1) {
			val, err := strconv.ParseFloat(c[2], 64)
			if err != nil {
				continue
			}
			switch c[1] {
			case "X":
				newX = val
			case "Y":
				newY = val
			case "Z":
				newZ = val
			case "F":
				newFeed = val
			}
		}

		moves = append(moves, Move{
			Type:     classifyMove(isRapid, curZ, newZ, curX, curY, newX, newY),
			FromX:    curX,
			FromY:    curY,
			FromZ:    curZ,
			ToX:      newX,
			ToY:      newY,
			ToZ:      newZ,
			FeedRate: newFeed,
			BeamOn:   beam,
		})

		curX, curY, curZ, curFeed = newX, newY, newZ, newFeed
	}

	return moves
}

func stripComments(line string) string {
	if idx := strings.Index(line, ";"); idx >= 0 {
		line = line[:idx]
	}
	for {
		start := strings.Index(line, "(")
		if start < 0 {
			break
		}
		end := strings.Index(line[start:], ")")
		if end < 0 {
			line = line[:start]
			break
		}
		line = line[:start] + line[start+end+1:]
	}
	return strings.TrimSpace(line)
}

// classifyMove determines the MoveType based on movement characteristics.
func classifyMove(isRapid bool, fromZ, toZ, fromX, fromY, toX, toY float64) MoveType {
	zDelta := toZ - fromZ
	hasXY := fromX != toX || fromY != toY

	switch {
	case isRapid:
		if zDelta > 0 {
			return MoveRetract
		}
		return MoveRapid
	case zDelta < -0.001 && !hasXY:
		return MovePlunge
	case zDelta > 0.001 && !hasXY:
		return MoveRetract
	default:
		return MoveFeed
	}
}

// Stats summarises a parsed program.
type Stats struct {
	Moves      int
	Rapids     int
	Feeds      int
	Plunges    int
	Retracts   int
	CutLength  float64 // XY length of feed moves with the beam/spindle on
	RapidDist  float64
	MinX, MinY float64
	MaxX, MaxY float64
	MinZ       float64
}

// Summarize computes Stats over moves. Extents cover cutting moves only.
func Summarize(moves []Move) Stats {
	st := Stats{
		Moves: len(moves),
		MinX:  math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	for _, m := range moves {
		switch m.Type {
		case MoveRapid:
			st.Rapids++
			st.RapidDist += m.Length()
		case MoveFeed:
			st.Feeds++
			if m.BeamOn {
				st.CutLength += math.Hypot(m.ToX-m.FromX, m.ToY-m.FromY)
				st.MinX = math.Min(st.MinX, math.Min(m.FromX, m.ToX))
				st.MinY = math.Min(st.MinY, math.Min(m.FromY, m.ToY))
				st.MaxX = math.Max(st.MaxX, math.Max(m.FromX, m.ToX))
				st.MaxY = math.Max(st.MaxY, math.Max(m.FromY, m.ToY))
			}
		case MovePlunge:
			st.Plunges++
		case MoveRetract:
			st.Retracts++
		}
		st.MinZ = math.Min(st.MinZ, m.ToZ)
	}
	if st.MinX > st.MaxX {
		st.MinX, st.MinY, st.MaxX, st.MaxY = 0, 0, 0, 0
	}
	return st
}
