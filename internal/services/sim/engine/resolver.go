package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/louisbranch/rgsimulator/internal/services/sim/controller"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/action"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/robot"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/snapshot"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/rgsimulator/internal/services/sim/engine"

// Config controls turn resolution.
type Config struct {
	// Rand draws damage rolls. Required.
	Rand    robot.Roller
	Logger  *log.Logger
	Verbose bool
}

// Resolver runs turns.
type Resolver struct {
	port    *controller.Port
	rand    robot.Roller
	logger  *log.Logger
	verbose bool
	tracer  trace.Tracer
}

// NewResolver creates a resolver that consults port for decisions.
func NewResolver(port *controller.Port, cfg Config) (*Resolver, error) {
	if port == nil {
		return nil, fmt.Errorf("decision port is required")
	}
	if cfg.Rand == nil {
		return nil, fmt.Errorf("random source is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}
	return &Resolver{
		port:    port,
		rand:    cfg.Rand,
		logger:  logger,
		verbose: cfg.Verbose,
		tracer:  otel.Tracer(tracerName),
	}, nil
}

// Plan is the result of the decide phase: one legal action per living robot.
type Plan struct {
	Turn     int
	Version  uint64
	Actions  action.Table
	Failures []*controller.Failure
}

// RobotState is a value copy of a robot.
type RobotState struct {
	ID   int       `json:"id"`
	Team int       `json:"team"`
	Loc  board.Loc `json:"location"`
	HP   int       `json:"hp"`
}

// RobotResult is a robot's state after a turn together with the order it ran.
type RobotResult struct {
	RobotState
	Action action.Action `json:"action"`
	Died   bool          `json:"died"`
}

// Report describes a completed turn. Turn is the turn number after the
// advance.
type Report struct {
	Turn     int
	Robots   []RobotResult
	Failures []*controller.Failure
}

func stateOf(r *robot.Robot) RobotState {
	return RobotState{ID: r.ID, Team: r.Team, Loc: r.Loc, HP: r.HP}
}

// Decide consults the decision port once for every living robot. It only
// reads w.
func (r *Resolver) Decide(ctx context.Context, w *World) Plan {
	robots := w.Robots()
	ctx, span := r.tracer.Start(ctx, "sim.turn.decide", trace.WithAttributes(
		attribute.Int("sim.turn", w.Turn()),
		attribute.Int("sim.robots", len(robots)),
	))
	defer span.End()

	views := map[int]snapshot.GameInfo{
		robot.Team1: snapshot.Build(w.Turn(), robot.Team1, robots),
		robot.Team2: snapshot.Build(w.Turn(), robot.Team2, robots),
	}

	plan := Plan{
		Turn:    w.Turn(),
		Version: w.Version(),
		Actions: make(action.Table, len(robots)),
	}
	for _, rb := range robots {
		if !rb.Alive() {
			continue
		}
		out := r.port.Decide(ctx, snapshot.SelfOf(rb), views[rb.Team].Clone(), rb.IsValidAction)
		plan.Actions[rb.ID] = out.Action
		if !out.OK() {
			plan.Failures = append(plan.Failures, out.Failure)
		}
		r.logf("turn %d: robot %d (team %d) at %v decides %s", plan.Turn, rb.ID, rb.Team, rb.Loc, out.Action)
	}
	span.SetAttributes(attribute.Int("sim.failures", len(plan.Failures)))
	return plan
}

// Apply executes plan against w, removes the dead and advances the turn.
// Robots missing from the plan guard.
func (r *Resolver) Apply(ctx context.Context, w *World, plan Plan) Report {
	_, span := r.tracer.Start(ctx, "sim.turn.apply", trace.WithAttributes(
		attribute.Int("sim.turn", w.Turn()),
		attribute.Int("sim.actions", len(plan.Actions)),
	))
	defer span.End()

	table := plan.Actions.Clone()
	for _, rb := range w.Robots() {
		if _, ok := table[rb.ID]; !ok {
			table[rb.ID] = action.Guard()
		}
	}
	failures := append([]*controller.Failure(nil), plan.Failures...)

	ids := table.IDs()
	for _, kind := range action.PriorityOrder {
		for _, id := range ids {
			a := table[id]
			if a.Kind != kind {
				continue
			}
			rb := w.Robot(id)
			if rb == nil {
				continue
			}
			if err := r.execute(w, rb, a, table); err != nil {
				table[id] = action.Guard()
				failure := &controller.Failure{Kind: controller.FailureExecution, RobotID: rb.ID, Team: rb.Team, Err: err}
				failures = append(failures, failure)
				r.logger.Printf("robot %d (team %d): %s: %v; guarding", rb.ID, rb.Team, failure.Kind, err)
			}
		}
	}

	report := Report{Failures: failures}
	for _, rb := range w.Robots() {
		report.Robots = append(report.Robots, RobotResult{
			RobotState: stateOf(rb),
			Action:     table[rb.ID],
			Died:       !rb.Alive(),
		})
		if !rb.Alive() {
			w.bury(rb)
			r.logf("turn %d: robot %d (team %d) destroyed at %v", w.Turn(), rb.ID, rb.Team, rb.Loc)
		}
	}
	w.setTurn(w.Turn() + 1)
	report.Turn = w.Turn()
	sort.SliceStable(report.Failures, func(i, j int) bool {
		return report.Failures[i].RobotID < report.Failures[j].RobotID
	})

	span.SetAttributes(attribute.Int("sim.failures", len(report.Failures)))
	return report
}

// execute runs one action and keeps the grid in step with the robot's
// location, even when the action fails part way.
func (r *Resolver) execute(w *World, rb *robot.Robot, a action.Action, table action.Table) (err error) {
	prev := rb.Loc
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("execution panic: %v", p)
		}
		if rb.Loc != prev {
			w.grid.ClearIf(prev, rb)
			w.grid.Place(rb.Loc, rb)
		}
	}()
	return rb.Execute(a, table, r.rand)
}

func (r *Resolver) logf(format string, args ...any) {
	if r.verbose {
		r.logger.Printf(format, args...)
	}
}
