package engine

import (
	"context"
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/rgsimulator/internal/platform/errors"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/robot"
)

// Session is the editor's handle on a simulation. Calls must not overlap.
type Session struct {
	world    *World
	resolver *Resolver
	cached   *Plan
}

// NewSession wraps w and res.
func NewSession(w *World, res *Resolver) *Session {
	return &Session{world: w, resolver: res}
}

// World exposes the underlying world for read access.
func (s *Session) World() *World {
	return s.world
}

// Map returns the board.
func (s *Session) Map() *board.Map {
	return s.world.Map()
}

// Turn returns the current turn number.
func (s *Session) Turn() int {
	return s.world.Turn()
}

// SetTurn sets the turn counter within 1..max turns.
func (s *Session) SetTurn(turn int) error {
	maxTurns := s.world.Map().Settings().MaxTurns
	if turn < 1 || turn > maxTurns {
		return apperrors.WithMetadata(apperrors.CodeTurnOutOfRange,
			fmt.Sprintf("turn must be between 1 and %d", maxTurns),
			map[string]string{"turn": strconv.Itoa(turn), "max": strconv.Itoa(maxTurns)})
	}
	s.world.setTurn(turn)
	s.cached = nil
	return nil
}

// Robots returns value copies of the roster in ascending ID order.
func (s *Session) Robots() []RobotState {
	robots := s.world.Robots()
	out := make([]RobotState, 0, len(robots))
	for _, r := range robots {
		out = append(out, stateOf(r))
	}
	return out
}

// RobotAt returns the robot standing on loc.
func (s *Session) RobotAt(loc board.Loc) (RobotState, bool) {
	if !s.world.Grid().InBounds(loc) {
		return RobotState{}, false
	}
	r := s.world.Grid().Occupant(loc)
	if r == nil {
		return RobotState{}, false
	}
	return stateOf(r), true
}

// AddRobot places a new robot for team at loc, replacing any robot already
// there. A nil hp uses the map's default.
func (s *Session) AddRobot(loc board.Loc, team int, hp *int) (RobotState, error) {
	value := s.world.Map().Settings().RobotHP
	if hp != nil {
		value = *hp
	}
	if err := s.validatePlacement(loc, team, value); err != nil {
		return RobotState{}, err
	}

	if existing := s.world.Grid().Occupant(loc); existing != nil {
		s.world.remove(existing)
	}
	r := s.world.spawn(loc, team, value)
	s.cached = nil
	return stateOf(r), nil
}

// RemoveRobot removes the robot standing on loc.
func (s *Session) RemoveRobot(loc board.Loc) error {
	r, err := s.occupant(loc)
	if err != nil {
		return err
	}
	s.world.remove(r)
	s.cached = nil
	return nil
}

// SetHP changes the hit points of the robot standing on loc.
func (s *Session) SetHP(loc board.Loc, hp int) error {
	r, err := s.occupant(loc)
	if err != nil {
		return err
	}
	if err := s.validateHP(hp); err != nil {
		return err
	}
	r.HP = hp
	s.world.touch()
	s.cached = nil
	return nil
}

// Clear removes every robot.
func (s *Session) Clear() {
	s.world.clear()
	s.cached = nil
}

// Preview decides the next turn without changing the world. The plan is
// reused until the world changes.
func (s *Session) Preview(ctx context.Context) Plan {
	if s.cached != nil && s.cached.Version == s.world.Version() {
		return *s.cached
	}
	plan := s.resolver.Decide(ctx, s.world)
	s.cached = &plan
	return plan
}

// Commit runs the next turn, reusing the previewed plan when still valid.
func (s *Session) Commit(ctx context.Context) Report {
	plan := s.Preview(ctx)
	s.cached = nil
	return s.resolver.Apply(ctx, s.world, plan)
}

// CommitPlan runs the next turn with a plan obtained from Preview. A plan
// decided before the world last changed is rejected.
func (s *Session) CommitPlan(ctx context.Context, plan Plan) (Report, error) {
	if plan.Version != s.world.Version() || plan.Turn != s.world.Turn() {
		return Report{}, apperrors.New(apperrors.CodePlanStale, "plan was decided before the world changed")
	}
	s.cached = nil
	return s.resolver.Apply(ctx, s.world, plan), nil
}

func (s *Session) occupant(loc board.Loc) (*robot.Robot, error) {
	if !s.world.Grid().InBounds(loc) {
		return nil, locationError(apperrors.CodeLocationOutOfBounds, "location is off the board", loc)
	}
	r := s.world.Grid().Occupant(loc)
	if r == nil {
		return nil, locationError(apperrors.CodeCellEmpty, "no robot at location", loc)
	}
	return r, nil
}

func (s *Session) validatePlacement(loc board.Loc, team, hp int) error {
	m := s.world.Map()
	if !m.InBounds(loc) {
		return locationError(apperrors.CodeLocationOutOfBounds, "location is off the board", loc)
	}
	if !m.Walkable(loc) {
		return locationError(apperrors.CodeLocationBlocked, "location is an obstacle", loc)
	}
	if !robot.ValidTeam(team) {
		return apperrors.WithMetadata(apperrors.CodeTeamInvalid, "team must be 1 or 2",
			map[string]string{"team": strconv.Itoa(team)})
	}
	return s.validateHP(hp)
}

func (s *Session) validateHP(hp int) error {
	maxHP := s.world.Map().Settings().RobotHP
	if hp < 1 || hp > maxHP {
		return apperrors.WithMetadata(apperrors.CodeHPOutOfRange,
			fmt.Sprintf("hp must be between 1 and %d", maxHP),
			map[string]string{"hp": strconv.Itoa(hp), "max": strconv.Itoa(maxHP)})
	}
	return nil
}

func locationError(code apperrors.Code, message string, loc board.Loc) error {
	return apperrors.WithMetadata(code, message, map[string]string{
		"x": strconv.Itoa(loc.X),
		"y": strconv.Itoa(loc.Y),
	})
}
