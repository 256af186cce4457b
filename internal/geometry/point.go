package geometry

import "fmt"

// Point is a coordinate in the x-y plane. X grows to the right, Y grows up.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// RelativeTo offsets p by the vector other.
func (p Point) RelativeTo(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Midpoint returns the point halfway between p and other.
func (p Point) Midpoint(other Point) Point {
	return Point{X: (p.X + other.X) / 2.0, Y: (p.Y + other.Y) / 2.0}
}

// quarterTurns maps a normalized angle to its exact cosine and sine.
var quarterTurns = map[int][2]float64{
	0:   {1, 0},
	90:  {0, 1},
	180: {-1, 0},
	270: {0, -1},
}

// normalizeDegrees reduces a multiple of 90 into [0, 360).
func normalizeDegrees(degrees int) (int, error) {
	if degrees%90 != 0 {
		return 0, fmt.Errorf("%w: rotation of %d degrees is not a multiple of 90",
			ErrInvalidArgument, degrees)
	}
	return ((degrees % 360) + 360) % 360, nil
}

// Rotate turns p counter clockwise around a center. Only multiples of 90
// degrees are supported, which keeps the result free of trig rounding.
func (p Point) Rotate(degrees int, around Point) (Point, error) {
	deg, err := normalizeDegrees(degrees)
	if err != nil {
		return p, err
	}
	cs := quarterTurns[deg]
	cos, sin := cs[0], cs[1]
	dx := p.X - around.X
	dy := p.Y - around.Y
	return Point{
		X: around.X + cos*dx - sin*dy,
		Y: around.Y + sin*dx + cos*dy,
	}, nil
}
