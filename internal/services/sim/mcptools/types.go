package mcptools

import (
	"github.com/louisbranch/rgsimulator/internal/services/sim/controller"
	"github.com/louisbranch/rgsimulator/internal/services/sim/engine"
)

// StateInput represents the MCP tool input for reading the session state.
type StateInput struct{}

// AddRobotInput represents the MCP tool input for placing a robot.
type AddRobotInput struct {
	X    int  `json:"x" jsonschema:"column, 0-based from the left"`
	Y    int  `json:"y" jsonschema:"row, 0-based from the top"`
	Team int  `json:"team" jsonschema:"team number (1 or 2)"`
	HP   *int `json:"hp,omitempty" jsonschema:"hit points (defaults to the map's robot hp)"`
}

// LocationInput represents the MCP tool input addressing one cell.
type LocationInput struct {
	X int `json:"x" jsonschema:"column, 0-based from the left"`
	Y int `json:"y" jsonschema:"row, 0-based from the top"`
}

// SetHPInput represents the MCP tool input for changing a robot's hit points.
type SetHPInput struct {
	X  int `json:"x" jsonschema:"column, 0-based from the left"`
	Y  int `json:"y" jsonschema:"row, 0-based from the top"`
	HP int `json:"hp" jsonschema:"new hit points"`
}

// SetTurnInput represents the MCP tool input for changing the turn number.
type SetTurnInput struct {
	Turn int `json:"turn" jsonschema:"turn number, 1 through the map's max turns"`
}

// ClearInput represents the MCP tool input for removing every robot.
type ClearInput struct{}

// TurnInput represents the MCP tool input for previewing or committing a turn.
type TurnInput struct{}

// RobotEntry describes one robot.
type RobotEntry struct {
	ID   int `json:"id"`
	Team int `json:"team"`
	X    int `json:"x"`
	Y    int `json:"y"`
	HP   int `json:"hp"`
}

// StateResult represents the session state.
type StateResult struct {
	Turn      int          `json:"turn"`
	MaxTurns  int          `json:"max_turns"`
	BoardSize int          `json:"board_size"`
	Robots    []RobotEntry `json:"robots"`
}

// RobotResult represents a single placed robot.
type RobotResult struct {
	Robot RobotEntry `json:"robot"`
}

// FailureEntry describes a recovered controller or execution problem.
type FailureEntry struct {
	RobotID int    `json:"robot_id"`
	Team    int    `json:"team"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// PlannedAction is the order one robot will run.
type PlannedAction struct {
	RobotID int    `json:"robot_id"`
	Team    int    `json:"team"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Action  string `json:"action"`
}

// PreviewResult represents the decided, not yet applied, next turn.
type PreviewResult struct {
	Turn     int             `json:"turn"`
	Actions  []PlannedAction `json:"actions"`
	Failures []FailureEntry  `json:"failures,omitempty"`
}

// TurnRobot is a robot's state after a committed turn.
type TurnRobot struct {
	RobotEntry
	Action string `json:"action"`
	Died   bool   `json:"died"`
}

// CommitResult represents a committed turn. Turn is the new turn number.
type CommitResult struct {
	Turn     int            `json:"turn"`
	Robots   []TurnRobot    `json:"robots"`
	Failures []FailureEntry `json:"failures,omitempty"`
}

func robotEntry(r engine.RobotState) RobotEntry {
	return RobotEntry{ID: r.ID, Team: r.Team, X: r.Loc.X, Y: r.Loc.Y, HP: r.HP}
}

func failureEntries(failures []*controller.Failure) []FailureEntry {
	if len(failures) == 0 {
		return nil
	}
	out := make([]FailureEntry, 0, len(failures))
	for _, f := range failures {
		entry := FailureEntry{RobotID: f.RobotID, Team: f.Team, Kind: f.Kind.String()}
		if f.Err != nil {
			entry.Message = f.Err.Error()
		}
		out = append(out, entry)
	}
	return out
}
