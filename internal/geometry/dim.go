// Package geometry holds the 2D primitives the box engine is built from:
// labelled distances, points stored in an index-based arena, and lines that
// reference arena points.
package geometry

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument reports a precondition violation such as a rotation that
// is not a multiple of 90 degrees.
var ErrInvalidArgument = errors.New("invalid argument")

// Dim is a distance with an optional label tracing where it came from
// (e.g. "(W / 7)"). The label is informational only.
//
// A flipped Dim keeps its magnitude but is applied in the opposite direction
// when used as a move (see Signed). Dims of different flip state cannot be
// summed.
type Dim struct {
	Dist    float64 `json:"dist"`
	Label   string  `json:"label,omitempty"`
	Flipped bool    `json:"flipped,omitempty"`
}

// NewDim returns a Dim for a raw measurement.
func NewDim(dist float64, label string) Dim {
	return Dim{Dist: dist, Label: label}
}

func (d Dim) String() string {
	return fmt.Sprintf("%g", d.Dist)
}

// Add sums two Dims. The label is kept only if both operands carry one.
func (d Dim) Add(other Dim) (Dim, error) {
	if d.Flipped != other.Flipped {
		return Dim{}, fmt.Errorf("%w: cannot add dims of different flip state (%q, %q)",
			ErrInvalidArgument, d.Label, other.Label)
	}
	label := ""
	if d.Label != "" && other.Label != "" {
		label = d.Label + " + " + other.Label
	}
	return Dim{Dist: d.Dist + other.Dist, Label: label, Flipped: d.Flipped}, nil
}

// AddScalar adds a plain number.
func (d Dim) AddScalar(v float64) Dim {
	label := ""
	if d.Label != "" {
		label = fmt.Sprintf("%s + %g", d.Label, v)
	}
	return Dim{Dist: d.Dist + v, Label: label, Flipped: d.Flipped}
}

// Mul scales the Dim.
func (d Dim) Mul(v float64) Dim {
	label := ""
	if d.Label != "" {
		label = fmt.Sprintf("(%s * %g)", d.Label, v)
	}
	return Dim{Dist: d.Dist * v, Label: label, Flipped: d.Flipped}
}

// Div divides the Dim. Dividing by zero is the caller's problem.
func (d Dim) Div(v float64) Dim {
	label := ""
	if d.Label != "" {
		label = fmt.Sprintf("(%s / %g)", d.Label, v)
	}
	return Dim{Dist: d.Dist / v, Label: label, Flipped: d.Flipped}
}

// Neg negates the value.
func (d Dim) Neg() Dim {
	label := ""
	if d.Label != "" {
		label = fmt.Sprintf("-(%s)", d.Label)
	}
	return Dim{Dist: -d.Dist, Label: label, Flipped: d.Flipped}
}

// Flip toggles the direction marker without touching the value.
func (d Dim) Flip() Dim {
	d.Flipped = !d.Flipped
	return d
}

// Signed is the distance to move when the Dim is used as a delta.
func (d Dim) Signed() float64 {
	if d.Flipped {
		return -d.Dist
	}
	return d.Dist
}
