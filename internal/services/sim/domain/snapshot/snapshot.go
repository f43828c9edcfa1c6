// Package snapshot builds the read-only world views handed to controllers.
//
// Every robot is projected onto a fixed set of public fields. The owning
// team additionally sees each of its robots' IDs; the other team never does.
package snapshot

import (
	"sort"

	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/robot"
)

// Robot is the projection of one living robot.
type Robot struct {
	Location board.Loc `json:"location"`
	HP       int       `json:"hp"`
	PlayerID int       `json:"player_id"`
	// RobotID is set only for robots owned by the viewing team.
	RobotID int `json:"robot_id,omitempty"`
}

// Self is the projection of the robot a controller is deciding for.
type Self struct {
	Location board.Loc `json:"location"`
	HP       int       `json:"hp"`
	PlayerID int       `json:"player_id"`
	RobotID  int       `json:"robot_id"`
}

// GameInfo is the world view of one team for one turn.
type GameInfo struct {
	Turn   int     `json:"turn"`
	Robots []Robot `json:"robots"`
}

// Clone returns a copy whose robot list can be modified independently.
func (g GameInfo) Clone() GameInfo {
	robots := make([]Robot, len(g.Robots))
	copy(robots, g.Robots)
	return GameInfo{Turn: g.Turn, Robots: robots}
}

// Build projects the living robots for team. Robots are listed in row-major
// order of their location.
func Build(turn, team int, robots []*robot.Robot) GameInfo {
	info := GameInfo{Turn: turn, Robots: make([]Robot, 0, len(robots))}
	for _, r := range robots {
		if !r.Alive() {
			continue
		}
		view := Robot{Location: r.Loc, HP: r.HP, PlayerID: r.Team}
		if r.Team == team {
			view.RobotID = r.ID
		}
		info.Robots = append(info.Robots, view)
	}
	sort.Slice(info.Robots, func(i, j int) bool {
		a, b := info.Robots[i].Location, info.Robots[j].Location
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return info
}

// SelfOf copies the fields a controller may read about its own robot.
func SelfOf(r *robot.Robot) Self {
	return Self{Location: r.Loc, HP: r.HP, PlayerID: r.Team, RobotID: r.ID}
}
