// Package luabot runs robot controllers written in Lua.
//
// A script defines a global function act(robot, game) that returns an order
// in wire form, e.g. {"move", {x, y}} or {"guard"}. Locations are two-element
// arrays {x, y}. The global rg table carries the usual robot game helpers:
// rg.dist, rg.wdist, rg.toward, rg.locs_around, rg.loc_types and
// rg.settings.
package luabot

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/Shopify/go-lua"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/action"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/snapshot"
)

const actFunction = "act"

// Controller evaluates a Lua script once per decision. A Lua state is not
// safe for concurrent use, so calls are serialised.
type Controller struct {
	mu    sync.Mutex
	state *lua.State
	name  string
}

// LoadFile compiles and runs the script at path.
func LoadFile(path string, m *board.Map) (*Controller, error) {
	state := newState(m)
	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua script %s: %w", path, err)
	}
	return initController(state, path)
}

// LoadString compiles and runs source, labelling errors with name.
func LoadString(name, source string, m *board.Map) (*Controller, error) {
	state := newState(m)
	if err := lua.LoadBuffer(state, source, name, ""); err != nil {
		return nil, fmt.Errorf("load lua script %s: %w", name, err)
	}
	return initController(state, name)
}

func newState(m *board.Map) *lua.State {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerHelpers(state, m)
	return state
}

func initController(state *lua.State, name string) (*Controller, error) {
	if err := state.ProtectedCall(0, 0, 0); err != nil {
		return nil, fmt.Errorf("run lua script %s: %w", name, err)
	}
	state.Global(actFunction)
	defer state.Pop(1)
	if !state.IsFunction(-1) {
		return nil, fmt.Errorf("lua script %s does not define %s(robot, game)", name, actFunction)
	}
	return &Controller{state: state, name: name}, nil
}

// Decide calls act(robot, game) and decodes the returned order.
func (c *Controller) Decide(ctx context.Context, self snapshot.Self, info snapshot.GameInfo) (action.Action, error) {
	if err := ctx.Err(); err != nil {
		return action.Action{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.state
	state.SetTop(0)
	state.Global(actFunction)
	pushSelf(state, self)
	pushGame(state, info)
	if err := state.ProtectedCall(2, 1, 0); err != nil {
		state.SetTop(0)
		return action.Action{}, fmt.Errorf("%s: %w", c.name, err)
	}
	defer state.SetTop(0)

	return decodeAction(state, -1)
}

func pushLoc(state *lua.State, loc board.Loc) {
	state.CreateTable(2, 0)
	state.PushInteger(loc.X)
	state.RawSetInt(-2, 1)
	state.PushInteger(loc.Y)
	state.RawSetInt(-2, 2)
}

func pushSelf(state *lua.State, self snapshot.Self) {
	state.NewTable()
	pushLoc(state, self.Location)
	state.SetField(-2, "location")
	state.PushInteger(self.HP)
	state.SetField(-2, "hp")
	state.PushInteger(self.PlayerID)
	state.SetField(-2, "player_id")
	state.PushInteger(self.RobotID)
	state.SetField(-2, "robot_id")
}

func pushGame(state *lua.State, info snapshot.GameInfo) {
	state.NewTable()
	state.PushInteger(info.Turn)
	state.SetField(-2, "turn")
	state.CreateTable(len(info.Robots), 0)
	for i, r := range info.Robots {
		state.NewTable()
		pushLoc(state, r.Location)
		state.SetField(-2, "location")
		state.PushInteger(r.HP)
		state.SetField(-2, "hp")
		state.PushInteger(r.PlayerID)
		state.SetField(-2, "player_id")
		if r.RobotID != 0 {
			state.PushInteger(r.RobotID)
			state.SetField(-2, "robot_id")
		}
		state.RawSetInt(-2, i+1)
	}
	state.SetField(-2, "robots")
}

func decodeAction(state *lua.State, index int) (action.Action, error) {
	parts, ok := luaToGo(state, index).([]any)
	if !ok || len(parts) == 0 {
		return action.Action{}, fmt.Errorf("%w: act must return a list like {\"guard\"}", action.ErrMalformed)
	}
	name, ok := parts[0].(string)
	if !ok {
		return action.Action{}, fmt.Errorf("%w: action name must be a string", action.ErrMalformed)
	}
	kind, ok := action.ParseKind(name)
	if !ok {
		return action.Action{}, fmt.Errorf("%w: unknown kind %q", action.ErrMalformed, name)
	}
	if !kind.HasTarget() {
		return action.Action{Kind: kind}, nil
	}
	if len(parts) != 2 {
		return action.Action{}, fmt.Errorf("%w: %s needs a target", action.ErrMalformed, kind)
	}
	target, ok := parts[1].([]any)
	if !ok || len(target) != 2 {
		return action.Action{}, fmt.Errorf("%w: %s target must be {x, y}", action.ErrMalformed, kind)
	}
	x, okX := target[0].(int)
	y, okY := target[1].(int)
	if !okX || !okY {
		return action.Action{}, fmt.Errorf("%w: %s target must be integers", action.ErrMalformed, kind)
	}
	return action.Action{Kind: kind, Target: board.Loc{X: x, Y: y}}, nil
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		if math.Mod(value, 1) == 0 {
			return int(value)
		}
		return value
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToSlice(state, index)
	default:
		return nil
	}
}

// tableToSlice converts an array-like table. Tables with non-sequential keys
// yield nil.
func tableToSlice(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		idx, ok := state.ToInteger(-2)
		if state.TypeOf(-2) != lua.TypeNumber || !ok || idx <= 0 {
			state.Pop(2)
			return nil
		}
		count++
		if idx > maxIndex {
			maxIndex = idx
		}
		state.Pop(1)
	}
	if maxIndex != count {
		return nil
	}

	result := make([]any, 0, maxIndex)
	for i := 1; i <= maxIndex; i++ {
		state.RawGetInt(index, i)
		result = append(result, luaToGo(state, -1))
		state.Pop(1)
	}
	return result
}
