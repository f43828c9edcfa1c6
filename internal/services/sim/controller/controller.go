// Package controller wraps the externally supplied robot logic.
//
// The Port is the only place controller code runs. Whatever a controller does
// (return an error, panic, produce an illegal order), the Port turns it into
// a guard order plus a Failure so turn resolution always gets exactly one
// legal action per robot.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/action"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/robot"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/snapshot"
)

// Controller decides one robot's order for the turn.
type Controller interface {
	Decide(ctx context.Context, self snapshot.Self, info snapshot.GameInfo) (action.Action, error)
}

// Func adapts a plain function to Controller.
type Func func(ctx context.Context, self snapshot.Self, info snapshot.GameInfo) (action.Action, error)

// Decide calls f.
func (f Func) Decide(ctx context.Context, self snapshot.Self, info snapshot.GameInfo) (action.Action, error) {
	return f(ctx, self, info)
}

// Guard is a controller that always guards.
type Guard struct{}

// Decide returns guard.
func (Guard) Decide(context.Context, snapshot.Self, snapshot.GameInfo) (action.Action, error) {
	return action.Guard(), nil
}

// FailureKind classifies why a robot's order was replaced by guard.
type FailureKind int

const (
	// FailureController means the controller errored, panicked or returned a
	// value outside the action grammar.
	FailureController FailureKind = iota + 1
	// FailureInvalidAction means the order was well formed but not legal.
	FailureInvalidAction
	// FailureExecution means a legal order failed while being applied.
	FailureExecution
)

func (k FailureKind) String() string {
	switch k {
	case FailureController:
		return "controller_failure"
	case FailureInvalidAction:
		return "invalid_action"
	case FailureExecution:
		return "execution_failure"
	default:
		return "unknown"
	}
}

// Failure describes a recovered problem for one robot.
type Failure struct {
	Kind    FailureKind
	RobotID int
	Team    int
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s for robot %d (team %d): %v", f.Kind, f.RobotID, f.Team, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Outcome is the result of consulting the Port for one robot. Action is always
// legal; Failure is set when it is a substitute guard.
type Outcome struct {
	Action  action.Action
	Failure *Failure
}

// OK reports whether the controller's own order was accepted.
func (o Outcome) OK() bool {
	return o.Failure == nil
}

func accept(a action.Action) Outcome {
	return Outcome{Action: a}
}

func reject(kind FailureKind, self snapshot.Self, err error) Outcome {
	return Outcome{
		Action:  action.Guard(),
		Failure: &Failure{Kind: kind, RobotID: self.RobotID, Team: self.PlayerID, Err: err},
	}
}

// errNoAction is reported when a controller returns the zero action.
var errNoAction = errors.New("controller returned no action")

// Port routes decisions to the controller of each team.
type Port struct {
	controllers map[int]Controller
	logger      *log.Logger
}

// NewPort creates a port. Either controller may be nil: robots of that team
// guard without any call being made.
func NewPort(team1, team2 Controller, logger *log.Logger) *Port {
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	controllers := make(map[int]Controller, 2)
	if team1 != nil {
		controllers[robot.Team1] = team1
	}
	if team2 != nil {
		controllers[robot.Team2] = team2
	}
	return &Port{controllers: controllers, logger: logger}
}

// Has reports whether team has a controller.
func (p *Port) Has(team int) bool {
	_, ok := p.controllers[team]
	return ok
}

// Decide obtains one order for self from its team's controller. validate is
// the robot's capability check against pre-turn state.
func (p *Port) Decide(ctx context.Context, self snapshot.Self, info snapshot.GameInfo, validate func(action.Action) bool) Outcome {
	ctrl, ok := p.controllers[self.PlayerID]
	if !ok {
		return accept(action.Guard())
	}

	out := p.consult(ctx, ctrl, self, info, validate)
	if out.Failure != nil {
		p.logger.Printf("robot %d (team %d): %s: %v; guarding", self.RobotID, self.PlayerID, out.Failure.Kind, out.Failure.Err)
	}
	return out
}

func (p *Port) consult(ctx context.Context, ctrl Controller, self snapshot.Self, info snapshot.GameInfo, validate func(action.Action) bool) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = reject(FailureController, self, fmt.Errorf("controller panic: %v", r))
		}
	}()

	a, err := ctrl.Decide(ctx, self, info)
	if err != nil {
		return reject(FailureController, self, err)
	}
	if a.Kind == action.KindUnknown {
		return reject(FailureController, self, errNoAction)
	}
	if validate != nil && !validate(a) {
		return reject(FailureInvalidAction, self, fmt.Errorf("%s is not legal from %v", a, self.Location))
	}
	return accept(a)
}
