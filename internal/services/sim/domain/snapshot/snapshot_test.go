package snapshot

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/robot"
)

func robotAt(info GameInfo, loc board.Loc) (Robot, bool) {
	for _, r := range info.Robots {
		if r.Location == loc {
			return r, true
		}
	}
	return Robot{}, false
}

func TestBuildHidesOtherTeamIDs(t *testing.T) {
	g := robot.NewGrid(board.DefaultMap())
	mine := robot.New(7, robot.Team1, board.Loc{X: 9, Y: 9}, 30, g)
	theirs := robot.New(8, robot.Team2, board.Loc{X: 3, Y: 9}, 40, g)
	dead := robot.New(9, robot.Team2, board.Loc{X: 4, Y: 9}, 0, g)

	info := Build(5, robot.Team1, []*robot.Robot{mine, theirs, dead})

	if info.Turn != 5 {
		t.Fatalf("turn = %d, want 5", info.Turn)
	}
	if len(info.Robots) != 2 {
		t.Fatalf("robots = %d, want 2", len(info.Robots))
	}
	if info.Robots[0].Location != theirs.Loc {
		t.Fatalf("first robot = %v, want row-major order", info.Robots[0].Location)
	}

	own, ok := robotAt(info, mine.Loc)
	if !ok || own.RobotID != 7 || own.HP != 30 || own.PlayerID != robot.Team1 {
		t.Fatalf("own view = %+v", own)
	}
	enemy, ok := robotAt(info, theirs.Loc)
	if !ok || enemy.RobotID != 0 {
		t.Fatalf("enemy view = %+v, want hidden robot id", enemy)
	}

	data, err := json.Marshal(enemy)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "robot_id") {
		t.Fatalf("enemy json leaks robot_id: %s", data)
	}
}

func TestSelfOf(t *testing.T) {
	g := robot.NewGrid(board.DefaultMap())
	r := robot.New(3, robot.Team2, board.Loc{X: 2, Y: 8}, 12, g)

	self := SelfOf(r)
	want := Self{Location: board.Loc{X: 2, Y: 8}, HP: 12, PlayerID: robot.Team2, RobotID: 3}
	if self != want {
		t.Fatalf("self = %+v, want %+v", self, want)
	}

	r.HP = 1
	if self.HP != 12 {
		t.Fatal("self must be a copy")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	info := GameInfo{Turn: 1, Robots: []Robot{{HP: 5}}}
	clone := info.Clone()
	clone.Robots[0].HP = 1
	if info.Robots[0].HP != 5 {
		t.Fatal("clone shares robot storage")
	}
}
