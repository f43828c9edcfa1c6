// Package robot holds the combatants and the grid they occupy, along with the
// rules for validating and executing a single action.
package robot

import (
	"fmt"

	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/action"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
)

// Team identifiers. A robot belongs to exactly one of them.
const (
	Team1 = 1
	Team2 = 2
)

// ValidTeam reports whether team names one of the two sides.
func ValidTeam(team int) bool {
	return team == Team1 || team == Team2
}

// Roller draws the random part of damage rolls. *math/rand.Rand satisfies it.
type Roller interface {
	Intn(n int) int
}

// Robot is a combatant. HP may drop to zero or below during a turn; such a
// robot is removed during cleanup.
type Robot struct {
	ID   int
	Team int
	Loc  board.Loc
	HP   int

	grid *Grid
}

// New returns a robot bound to grid. It does not place the robot.
func New(id, team int, loc board.Loc, hp int, grid *Grid) *Robot {
	return &Robot{ID: id, Team: team, Loc: loc, HP: hp, grid: grid}
}

// Grid returns the grid the robot lives on.
func (r *Robot) Grid() *Grid {
	return r.grid
}

// Alive reports whether the robot still has hit points.
func (r *Robot) Alive() bool {
	return r.HP > 0
}

// IsValidAction reports whether a is legal from the robot's current cell.
func (r *Robot) IsValidAction(a action.Action) bool {
	return validFrom(r.grid.Map(), r.Loc, a)
}

func validFrom(m *board.Map, from board.Loc, a action.Action) bool {
	switch a.Kind {
	case action.KindGuard, action.KindSuicide:
		return true
	case action.KindMove, action.KindAttack:
		return board.Adjacent(from, a.Target) && m.Walkable(a.Target)
	default:
		return false
	}
}

// ExecutionError reports an action that could not be carried out. Effects
// applied before the failure are kept.
type ExecutionError struct {
	RobotID int
	Action  action.Action
	Reason  string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("robot %d: execute %s: %s", e.RobotID, e.Action, e.Reason)
}

// Execute applies a to the world. table holds every robot's order for the
// turn and decides who is guarding. A move only updates r.Loc: the caller
// moves the grid reference afterwards.
func (r *Robot) Execute(a action.Action, table action.Table, roll Roller) error {
	if r.grid.Occupant(r.Loc) != r {
		return &ExecutionError{RobotID: r.ID, Action: a, Reason: "robot is not on the grid"}
	}
	if !r.IsValidAction(a) {
		return &ExecutionError{RobotID: r.ID, Action: a, Reason: fmt.Sprintf("not legal from %v", r.Loc)}
	}

	settings := r.grid.Map().Settings()
	switch a.Kind {
	case action.KindMove:
		r.move(a.Target, table, settings)
	case action.KindAttack:
		r.attack(a.Target, table, settings, roll)
	case action.KindSuicide:
		r.suicide(table, settings)
	}
	return nil
}

func (r *Robot) move(target board.Loc, table action.Table, settings board.Settings) {
	occupant := r.grid.Occupant(target)
	if occupant == nil {
		r.Loc = target
		return
	}
	if occupant.Team == r.Team {
		return
	}
	r.HP -= settings.CollisionDamage
	if !table.IsGuarding(occupant.ID) {
		occupant.HP -= settings.CollisionDamage
	}
}

func (r *Robot) attack(target board.Loc, table action.Table, settings board.Settings, roll Roller) {
	victim := r.grid.Occupant(target)
	if victim == nil || victim.Team == r.Team {
		return
	}
	damage := settings.AttackMin + roll.Intn(settings.AttackMax-settings.AttackMin+1)
	if table.IsGuarding(victim.ID) {
		damage /= 2
	}
	victim.HP -= damage
}

func (r *Robot) suicide(table action.Table, settings board.Settings) {
	r.HP = 0
	for _, loc := range r.grid.Map().LocsAround(r.Loc, board.LocInvalid) {
		victim := r.grid.Occupant(loc)
		if victim == nil || victim.Team == r.Team {
			continue
		}
		damage := settings.SuicideDamage
		if table.IsGuarding(victim.ID) {
			damage /= 2
		}
		victim.HP -= damage
	}
}
