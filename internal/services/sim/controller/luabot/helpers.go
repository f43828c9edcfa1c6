package luabot

import (
	"github.com/Shopify/go-lua"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
)

// registerHelpers installs the global rg table bound to m.
func registerHelpers(state *lua.State, m *board.Map) {
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{
		{Name: "dist", Function: helperDist},
		{Name: "wdist", Function: helperWDist},
		{Name: "toward", Function: helperToward},
		{Name: "locs_around", Function: func(state *lua.State) int {
			return helperLocsAround(state, m)
		}},
		{Name: "loc_types", Function: func(state *lua.State) int {
			return helperLocTypes(state, m)
		}},
	}, 0)
	pushSettings(state, m.Settings())
	state.SetField(-2, "settings")
	state.SetGlobal("rg")
}

func pushSettings(state *lua.State, s board.Settings) {
	state.NewTable()
	for _, field := range []struct {
		name  string
		value int
	}{
		{name: "board_size", value: s.BoardSize},
		{name: "robot_hp", value: s.RobotHP},
		{name: "collision_damage", value: s.CollisionDamage},
		{name: "suicide_damage", value: s.SuicideDamage},
		{name: "max_turns", value: s.MaxTurns},
	} {
		state.PushInteger(field.value)
		state.SetField(-2, field.name)
	}
	pushLoc(state, board.Loc{X: s.AttackMin, Y: s.AttackMax})
	state.SetField(-2, "attack_range")
}

func checkLoc(state *lua.State, arg int) board.Loc {
	lua.CheckType(state, arg, lua.TypeTable)
	state.RawGetInt(arg, 1)
	x, okX := state.ToInteger(-1)
	state.RawGetInt(arg, 2)
	y, okY := state.ToInteger(-1)
	state.Pop(2)
	if !okX || !okY {
		lua.ArgumentError(state, arg, "location {x, y} expected")
	}
	return board.Loc{X: x, Y: y}
}

func helperDist(state *lua.State) int {
	state.PushNumber(board.Dist(checkLoc(state, 1), checkLoc(state, 2)))
	return 1
}

func helperWDist(state *lua.State) int {
	state.PushInteger(board.WDist(checkLoc(state, 1), checkLoc(state, 2)))
	return 1
}

func helperToward(state *lua.State) int {
	pushLoc(state, board.Toward(checkLoc(state, 1), checkLoc(state, 2)))
	return 1
}

// helperLocsAround implements rg.locs_around(loc [, filter_out]) where
// filter_out is a list of location type names.
func helperLocsAround(state *lua.State, m *board.Map) int {
	loc := checkLoc(state, 1)
	var filterOut []board.LocType
	if state.TypeOf(2) == lua.TypeTable {
		for _, item := range luaStrings(state, 2) {
			if t, ok := board.ParseLocType(item); ok {
				filterOut = append(filterOut, t)
			}
		}
	}
	locs := m.LocsAround(loc, filterOut...)
	state.CreateTable(len(locs), 0)
	for i, around := range locs {
		pushLoc(state, around)
		state.RawSetInt(-2, i+1)
	}
	return 1
}

// helperLocTypes implements rg.loc_types(loc). Spawn cells are also normal.
func helperLocTypes(state *lua.State, m *board.Map) int {
	var names []string
	switch t := m.LocType(checkLoc(state, 1)); t {
	case board.LocSpawn:
		names = []string{board.LocNormal.String(), board.LocSpawn.String()}
	default:
		names = []string{t.String()}
	}
	state.CreateTable(len(names), 0)
	for i, name := range names {
		state.PushString(name)
		state.RawSetInt(-2, i+1)
	}
	return 1
}

func luaStrings(state *lua.State, index int) []string {
	items, _ := luaToGo(state, index).([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
