package geometry

import "fmt"

// PointID indexes a point stored in an Arena.
type PointID int

// Arena owns every point of a panel. Lines and edges hold PointIDs, so a
// corner shared by two neighbouring edges is a single entry and an in-place
// rotation updates it for both.
type Arena struct {
	points []Point
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Add stores p and returns its id.
func (a *Arena) Add(p Point) PointID {
	a.points = append(a.points, p)
	return PointID(len(a.points) - 1)
}

// At returns the current coordinates of id.
func (a *Arena) At(id PointID) Point {
	return a.points[id]
}

// Len reports how many points are stored.
func (a *Arena) Len() int {
	return len(a.points)
}

// DrawHoriz creates the point dx away from `from` along the x axis and the
// line joining them. A zero-length move creates nothing: it returns `from`
// and ok=false.
func (a *Arena) DrawHoriz(from PointID, dx Dim, construction bool) (PointID, Line, bool) {
	return a.draw(from, dx, Point{X: 1}, construction)
}

// DrawVert is DrawHoriz along the y axis.
func (a *Arena) DrawVert(from PointID, dy Dim, construction bool) (PointID, Line, bool) {
	return a.draw(from, dy, Point{Y: 1}, construction)
}

func (a *Arena) draw(from PointID, d Dim, axis Point, construction bool) (PointID, Line, bool) {
	delta := d.Signed()
	if delta == 0 {
		return from, Line{}, false
	}
	src := a.At(from)
	dest := a.Add(Point{X: src.X + axis.X*delta, Y: src.Y + axis.Y*delta})
	length := d
	return dest, Line{Source: from, Dest: dest, Construction: construction, Length: &length}, true
}

// RotateInPlace rotates every distinct id once around the point `around`.
func (a *Arena) RotateInPlace(ids []PointID, degrees int, around PointID) error {
	if _, err := normalizeDegrees(degrees); err != nil {
		return err
	}
	center := a.At(around)
	seen := make(map[PointID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if int(id) < 0 || int(id) >= len(a.points) {
			return fmt.Errorf("%w: point %d not in arena", ErrInvalidArgument, id)
		}
		rotated, err := a.points[id].Rotate(degrees, center)
		if err != nil {
			return err
		}
		a.points[id] = rotated
	}
	return nil
}
