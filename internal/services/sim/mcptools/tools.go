package mcptools

import (
	"context"
	"fmt"
	"sync"

	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
	"github.com/louisbranch/rgsimulator/internal/services/sim/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Sim serialises tool calls against one session.
type Sim struct {
	mu      sync.Mutex
	session *engine.Session
}

// NewSim wraps session for tool handlers.
func NewSim(session *engine.Session) *Sim {
	return &Sim{session: session}
}

func (s *Sim) state() StateResult {
	settings := s.session.Map().Settings()
	robots := s.session.Robots()
	entries := make([]RobotEntry, 0, len(robots))
	for _, r := range robots {
		entries = append(entries, robotEntry(r))
	}
	return StateResult{
		Turn:      s.session.Turn(),
		MaxTurns:  settings.MaxTurns,
		BoardSize: settings.BoardSize,
		Robots:    entries,
	}
}

// StateTool defines the MCP tool schema for reading the session.
func StateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sim_state",
		Description: "Returns the turn number, board size and every robot",
	}
}

// AddRobotTool defines the MCP tool schema for placing robots.
func AddRobotTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sim_add_robot",
		Description: "Places a robot for a team, replacing any robot on that cell",
	}
}

// RemoveRobotTool defines the MCP tool schema for removing robots.
func RemoveRobotTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sim_remove_robot",
		Description: "Removes the robot standing on a cell",
	}
}

// SetHPTool defines the MCP tool schema for editing hit points.
func SetHPTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sim_set_hp",
		Description: "Sets the hit points of the robot standing on a cell",
	}
}

// SetTurnTool defines the MCP tool schema for editing the turn number.
func SetTurnTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sim_set_turn",
		Description: "Sets the current turn number",
	}
}

// ClearTool defines the MCP tool schema for clearing the board.
func ClearTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sim_clear",
		Description: "Removes every robot from the board",
	}
}

// PreviewTurnTool defines the MCP tool schema for previewing a turn.
func PreviewTurnTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sim_preview_turn",
		Description: "Asks every robot's controller for its next action without applying it",
	}
}

// CommitTurnTool defines the MCP tool schema for running a turn.
func CommitTurnTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "sim_commit_turn",
		Description: "Runs the next turn, reusing the previewed actions when nothing changed since",
	}
}

// StateHandler returns the session state.
func StateHandler(sim *Sim) mcp.ToolHandlerFor[StateInput, StateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ StateInput) (*mcp.CallToolResult, StateResult, error) {
		if sim == nil {
			return nil, StateResult{}, fmt.Errorf("simulation is not configured")
		}
		sim.mu.Lock()
		defer sim.mu.Unlock()
		return &mcp.CallToolResult{}, sim.state(), nil
	}
}

// AddRobotHandler places a robot.
func AddRobotHandler(sim *Sim) mcp.ToolHandlerFor[AddRobotInput, RobotResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input AddRobotInput) (*mcp.CallToolResult, RobotResult, error) {
		if sim == nil {
			return nil, RobotResult{}, fmt.Errorf("simulation is not configured")
		}
		sim.mu.Lock()
		defer sim.mu.Unlock()

		r, err := sim.session.AddRobot(board.Loc{X: input.X, Y: input.Y}, input.Team, input.HP)
		if err != nil {
			return nil, RobotResult{}, fmt.Errorf("add robot failed: %w", err)
		}
		return &mcp.CallToolResult{}, RobotResult{Robot: robotEntry(r)}, nil
	}
}

// RemoveRobotHandler removes a robot and returns the resulting state.
func RemoveRobotHandler(sim *Sim) mcp.ToolHandlerFor[LocationInput, StateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input LocationInput) (*mcp.CallToolResult, StateResult, error) {
		if sim == nil {
			return nil, StateResult{}, fmt.Errorf("simulation is not configured")
		}
		sim.mu.Lock()
		defer sim.mu.Unlock()

		if err := sim.session.RemoveRobot(board.Loc{X: input.X, Y: input.Y}); err != nil {
			return nil, StateResult{}, fmt.Errorf("remove robot failed: %w", err)
		}
		return &mcp.CallToolResult{}, sim.state(), nil
	}
}

// SetHPHandler edits a robot's hit points.
func SetHPHandler(sim *Sim) mcp.ToolHandlerFor[SetHPInput, RobotResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetHPInput) (*mcp.CallToolResult, RobotResult, error) {
		if sim == nil {
			return nil, RobotResult{}, fmt.Errorf("simulation is not configured")
		}
		sim.mu.Lock()
		defer sim.mu.Unlock()

		loc := board.Loc{X: input.X, Y: input.Y}
		if err := sim.session.SetHP(loc, input.HP); err != nil {
			return nil, RobotResult{}, fmt.Errorf("set hp failed: %w", err)
		}
		r, _ := sim.session.RobotAt(loc)
		return &mcp.CallToolResult{}, RobotResult{Robot: robotEntry(r)}, nil
	}
}

// SetTurnHandler edits the turn number.
func SetTurnHandler(sim *Sim) mcp.ToolHandlerFor[SetTurnInput, StateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SetTurnInput) (*mcp.CallToolResult, StateResult, error) {
		if sim == nil {
			return nil, StateResult{}, fmt.Errorf("simulation is not configured")
		}
		sim.mu.Lock()
		defer sim.mu.Unlock()

		if err := sim.session.SetTurn(input.Turn); err != nil {
			return nil, StateResult{}, fmt.Errorf("set turn failed: %w", err)
		}
		return &mcp.CallToolResult{}, sim.state(), nil
	}
}

// ClearHandler removes every robot.
func ClearHandler(sim *Sim) mcp.ToolHandlerFor[ClearInput, StateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ClearInput) (*mcp.CallToolResult, StateResult, error) {
		if sim == nil {
			return nil, StateResult{}, fmt.Errorf("simulation is not configured")
		}
		sim.mu.Lock()
		defer sim.mu.Unlock()

		sim.session.Clear()
		return &mcp.CallToolResult{}, sim.state(), nil
	}
}

// PreviewTurnHandler decides the next turn without applying it.
func PreviewTurnHandler(sim *Sim) mcp.ToolHandlerFor[TurnInput, PreviewResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ TurnInput) (*mcp.CallToolResult, PreviewResult, error) {
		if sim == nil {
			return nil, PreviewResult{}, fmt.Errorf("simulation is not configured")
		}
		sim.mu.Lock()
		defer sim.mu.Unlock()

		plan := sim.session.Preview(ctx)
		world := sim.session.World()
		result := PreviewResult{
			Turn:     plan.Turn,
			Actions:  make([]PlannedAction, 0, len(plan.Actions)),
			Failures: failureEntries(plan.Failures),
		}
		for _, id := range plan.Actions.IDs() {
			r := world.Robot(id)
			if r == nil {
				continue
			}
			result.Actions = append(result.Actions, PlannedAction{
				RobotID: id,
				Team:    r.Team,
				X:       r.Loc.X,
				Y:       r.Loc.Y,
				Action:  plan.Actions[id].String(),
			})
		}
		return &mcp.CallToolResult{}, result, nil
	}
}

// CommitTurnHandler runs the next turn.
func CommitTurnHandler(sim *Sim) mcp.ToolHandlerFor[TurnInput, CommitResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ TurnInput) (*mcp.CallToolResult, CommitResult, error) {
		if sim == nil {
			return nil, CommitResult{}, fmt.Errorf("simulation is not configured")
		}
		sim.mu.Lock()
		defer sim.mu.Unlock()

		report := sim.session.Commit(ctx)
		result := CommitResult{
			Turn:     report.Turn,
			Robots:   make([]TurnRobot, 0, len(report.Robots)),
			Failures: failureEntries(report.Failures),
		}
		for _, r := range report.Robots {
			result.Robots = append(result.Robots, TurnRobot{
				RobotEntry: robotEntry(r.RobotState),
				Action:     r.Action.String(),
				Died:       r.Died,
			})
		}
		return &mcp.CallToolResult{}, result, nil
	}
}
