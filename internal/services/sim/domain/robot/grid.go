package robot

import (
	"fmt"

	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
)

// Grid associates board cells with at most one robot each. It never owns the
// robots it references.
//
// Grid accessors panic on out-of-bounds locations: callers validate input
// with InBounds before touching the grid.
type Grid struct {
	board *board.Map
	cells []*Robot
}

// NewGrid creates an empty grid sized to m.
func NewGrid(m *board.Map) *Grid {
	size := m.Size()
	return &Grid{board: m, cells: make([]*Robot, size*size)}
}

// Map returns the board the grid was built for.
func (g *Grid) Map() *board.Map {
	return g.board
}

// InBounds reports whether loc is addressable.
func (g *Grid) InBounds(loc board.Loc) bool {
	return g.board.InBounds(loc)
}

// Occupant returns the robot at loc, or nil.
func (g *Grid) Occupant(loc board.Loc) *Robot {
	return g.cells[g.index(loc)]
}

// Place points loc at r. Placing over a different robot panics.
func (g *Grid) Place(loc board.Loc, r *Robot) {
	idx := g.index(loc)
	if current := g.cells[idx]; current != nil && current != r {
		panic(fmt.Sprintf("grid: cell %v already holds robot %d", loc, current.ID))
	}
	g.cells[idx] = r
}

// Clear empties loc.
func (g *Grid) Clear(loc board.Loc) {
	g.cells[g.index(loc)] = nil
}

// ClearIf empties loc only when it still references r.
func (g *Grid) ClearIf(loc board.Loc, r *Robot) bool {
	idx := g.index(loc)
	if g.cells[idx] != r {
		return false
	}
	g.cells[idx] = nil
	return true
}

// Robots returns every referenced robot in row-major order.
func (g *Grid) Robots() []*Robot {
	var out []*Robot
	for _, r := range g.cells {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (g *Grid) index(loc board.Loc) int {
	if !g.board.InBounds(loc) {
		panic(fmt.Sprintf("grid: location %v out of bounds", loc))
	}
	return loc.Y*g.board.Size() + loc.X
}
