package controller

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/action"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/robot"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/snapshot"
)

var testSelf = snapshot.Self{Location: board.Loc{X: 2, Y: 2}, HP: 10, PlayerID: robot.Team1, RobotID: 4}

func allowAll(action.Action) bool { return true }

func TestPortAcceptsLegalAction(t *testing.T) {
	want := action.Move(board.Loc{X: 3, Y: 2})
	port := NewPort(Func(func(context.Context, snapshot.Self, snapshot.GameInfo) (action.Action, error) {
		return want, nil
	}), nil, log.New(io.Discard, "", 0))

	out := port.Decide(context.Background(), testSelf, snapshot.GameInfo{}, allowAll)
	if !out.OK() {
		t.Fatalf("unexpected failure: %v", out.Failure)
	}
	if out.Action != want {
		t.Fatalf("action = %v, want %v", out.Action, want)
	}
}

func TestPortFailuresDegradeToGuard(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name     string
		ctrl     Func
		validate func(action.Action) bool
		wantKind FailureKind
	}{
		{
			name: "error",
			ctrl: func(context.Context, snapshot.Self, snapshot.GameInfo) (action.Action, error) {
				return action.Action{}, boom
			},
			validate: allowAll,
			wantKind: FailureController,
		},
		{
			name: "panic",
			ctrl: func(context.Context, snapshot.Self, snapshot.GameInfo) (action.Action, error) {
				panic("bad robot")
			},
			validate: allowAll,
			wantKind: FailureController,
		},
		{
			name: "zero action",
			ctrl: func(context.Context, snapshot.Self, snapshot.GameInfo) (action.Action, error) {
				return action.Action{}, nil
			},
			validate: allowAll,
			wantKind: FailureController,
		},
		{
			name: "invalid action",
			ctrl: func(context.Context, snapshot.Self, snapshot.GameInfo) (action.Action, error) {
				return action.Move(board.Loc{X: 9, Y: 9}), nil
			},
			validate: func(action.Action) bool { return false },
			wantKind: FailureInvalidAction,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			port := NewPort(tt.ctrl, nil, log.New(&logs, "", 0))

			out := port.Decide(context.Background(), testSelf, snapshot.GameInfo{}, tt.validate)
			if out.Action != action.Guard() {
				t.Fatalf("action = %v, want guard", out.Action)
			}
			if out.Failure == nil || out.Failure.Kind != tt.wantKind {
				t.Fatalf("failure = %v, want kind %v", out.Failure, tt.wantKind)
			}
			if out.Failure.RobotID != 4 || out.Failure.Team != robot.Team1 {
				t.Fatalf("failure robot = %d team = %d", out.Failure.RobotID, out.Failure.Team)
			}
			if !strings.Contains(logs.String(), "robot 4") {
				t.Fatalf("log = %q, want robot id", logs.String())
			}
		})
	}
}

func TestPortFailureUnwrapsCause(t *testing.T) {
	boom := errors.New("boom")
	port := NewPort(Func(func(context.Context, snapshot.Self, snapshot.GameInfo) (action.Action, error) {
		return action.Action{}, boom
	}), nil, log.New(io.Discard, "", 0))

	out := port.Decide(context.Background(), testSelf, snapshot.GameInfo{}, allowAll)
	if !errors.Is(out.Failure, boom) {
		t.Fatalf("failure = %v, want wrapped boom", out.Failure)
	}
}

func TestPortWithoutControllerSkipsCall(t *testing.T) {
	calls := 0
	port := NewPort(Func(func(context.Context, snapshot.Self, snapshot.GameInfo) (action.Action, error) {
		calls++
		return action.Suicide(), nil
	}), nil, log.New(io.Discard, "", 0))

	enemy := testSelf
	enemy.PlayerID = robot.Team2
	out := port.Decide(context.Background(), enemy, snapshot.GameInfo{}, allowAll)

	if out.Action != action.Guard() || !out.OK() {
		t.Fatalf("outcome = %+v, want clean guard", out)
	}
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
	if port.Has(robot.Team2) || !port.Has(robot.Team1) {
		t.Fatal("unexpected controller presence")
	}
}

func TestGuardController(t *testing.T) {
	a, err := Guard{}.Decide(context.Background(), testSelf, snapshot.GameInfo{})
	if err != nil || a != action.Guard() {
		t.Fatalf("Guard.Decide = %v, %v", a, err)
	}
}
