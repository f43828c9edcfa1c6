// Package engine resolves turns and exposes the editor-facing session API.
//
// A World owns the roster, the grid and the turn counter of one simulation.
// The Resolver runs turns against a World in three phases: decide, apply
// and cleanup. A Session wraps both for editors and caches the last decided
// plan until the world changes.
package engine

import (
	"fmt"
	"sort"

	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/robot"
)

// World is the complete mutable state of one simulation.
type World struct {
	board   *board.Map
	grid    *robot.Grid
	roster  []*robot.Robot
	turn    int
	nextID  int
	version uint64
}

// NewWorld creates an empty world on m, at turn 1.
func NewWorld(m *board.Map) *World {
	return &World{
		board:  m,
		grid:   robot.NewGrid(m),
		turn:   1,
		nextID: 1,
	}
}

// Map returns the board.
func (w *World) Map() *board.Map { return w.board }

// Grid returns the occupancy grid.
func (w *World) Grid() *robot.Grid { return w.grid }

// Turn returns the current turn number.
func (w *World) Turn() int { return w.turn }

// Version changes whenever the roster, the grid or the turn changes.
func (w *World) Version() uint64 { return w.version }

// Robots returns the roster in ascending ID order.
func (w *World) Robots() []*robot.Robot {
	out := make([]*robot.Robot, len(w.roster))
	copy(out, w.roster)
	return out
}

// Robot returns the robot with id, or nil.
func (w *World) Robot(id int) *robot.Robot {
	i := sort.Search(len(w.roster), func(i int) bool { return w.roster[i].ID >= id })
	if i < len(w.roster) && w.roster[i].ID == id {
		return w.roster[i]
	}
	return nil
}

// spawn creates a robot with the next ID and places it. The caller has
// validated loc, team and hp.
func (w *World) spawn(loc board.Loc, team, hp int) *robot.Robot {
	r := robot.New(w.nextID, team, loc, hp, w.grid)
	w.grid.Place(loc, r)
	w.nextID++
	w.roster = append(w.roster, r)
	w.touch()
	return r
}

// remove takes r out of the roster and the grid. The grid cell must still
// reference r.
func (w *World) remove(r *robot.Robot) {
	if !w.grid.ClearIf(r.Loc, r) {
		panic(fmt.Sprintf("engine: robot %d is not at %v", r.ID, r.Loc))
	}
	w.dropFromRoster(r)
	w.touch()
}

// bury drops a dead robot, clearing its cell only if it still references it.
func (w *World) bury(r *robot.Robot) {
	if w.grid.InBounds(r.Loc) {
		w.grid.ClearIf(r.Loc, r)
	}
	w.dropFromRoster(r)
}

func (w *World) dropFromRoster(r *robot.Robot) {
	for i, candidate := range w.roster {
		if candidate == r {
			w.roster = append(w.roster[:i], w.roster[i+1:]...)
			return
		}
	}
}

func (w *World) setTurn(turn int) {
	w.turn = turn
	w.touch()
}

func (w *World) clear() {
	for _, r := range w.roster {
		w.grid.ClearIf(r.Loc, r)
	}
	w.roster = nil
	w.touch()
}

func (w *World) touch() {
	w.version++
}
