package board

import (
	"fmt"
	"math"
)

// Loc is a cell coordinate on the board.
type Loc struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

func (l Loc) String() string {
	return fmt.Sprintf("(%d, %d)", l.X, l.Y)
}

// Add returns the location one step from l in direction d.
func (l Loc) Add(d Direction) Loc {
	return Loc{X: l.X + d.DX, Y: l.Y + d.DY}
}

// Direction is a unit offset between orthogonally adjacent cells.
type Direction struct {
	DX int
	DY int
}

var (
	North = Direction{DX: 0, DY: -1}
	East  = Direction{DX: 1, DY: 0}
	South = Direction{DX: 0, DY: 1}
	West  = Direction{DX: -1, DY: 0}
)

// Directions lists the four orthogonal directions in a fixed order.
var Directions = []Direction{North, East, South, West}

// Dist returns the euclidean distance between two locations.
func Dist(a, b Loc) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

// WDist returns the walking (manhattan) distance between two locations.
func WDist(a, b Loc) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Adjacent reports whether a and b are orthogonal neighbours.
func Adjacent(a, b Loc) bool {
	return WDist(a, b) == 1
}

// Toward returns the neighbour of cur that takes one step closer to dest,
// preferring the horizontal axis on ties. It returns cur when already there.
func Toward(cur, dest Loc) Loc {
	if cur == dest {
		return cur
	}
	dx, dy := dest.X-cur.X, dest.Y-cur.Y
	if abs(dx) < abs(dy) {
		return Loc{X: cur.X, Y: cur.Y + sign(dy)}
	}
	return Loc{X: cur.X + sign(dx), Y: cur.Y}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}
