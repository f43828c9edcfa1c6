// Package board describes the arena: its size, the type of every cell, and the
// combat settings a map declares.
package board

import (
	"sort"
)

// LocType classifies a cell.
type LocType int

const (
	LocNormal LocType = iota
	LocSpawn
	LocObstacle
	LocInvalid
)

func (t LocType) String() string {
	switch t {
	case LocNormal:
		return "normal"
	case LocSpawn:
		return "spawn"
	case LocObstacle:
		return "obstacle"
	default:
		return "invalid"
	}
}

// ParseLocType maps a location type name back to its value.
func ParseLocType(name string) (LocType, bool) {
	for _, t := range []LocType{LocNormal, LocSpawn, LocObstacle, LocInvalid} {
		if t.String() == name {
			return t, true
		}
	}
	return LocInvalid, false
}

// Settings holds the combat parameters of a map.
type Settings struct {
	BoardSize       int
	RobotHP         int
	AttackMin       int
	AttackMax       int
	CollisionDamage int
	SuicideDamage   int
	MaxTurns        int
}

// DefaultSettings returns the standard arena parameters.
func DefaultSettings() Settings {
	return Settings{
		BoardSize:       19,
		RobotHP:         50,
		AttackMin:       8,
		AttackMax:       10,
		CollisionDamage: 5,
		SuicideDamage:   15,
		MaxTurns:        100,
	}
}

// Map is an immutable arena description.
type Map struct {
	settings  Settings
	obstacles map[Loc]struct{}
	spawn     map[Loc]struct{}
}

// NewMap builds a map from settings and explicit obstacle and spawn cells.
// Cells outside the board are ignored.
func NewMap(settings Settings, obstacles, spawn []Loc) *Map {
	m := &Map{
		settings:  settings,
		obstacles: make(map[Loc]struct{}, len(obstacles)),
		spawn:     make(map[Loc]struct{}, len(spawn)),
	}
	for _, loc := range obstacles {
		if m.InBounds(loc) {
			m.obstacles[loc] = struct{}{}
		}
	}
	for _, loc := range spawn {
		if m.InBounds(loc) {
			m.spawn[loc] = struct{}{}
		}
	}
	return m
}

// Settings returns the map's combat parameters.
func (m *Map) Settings() Settings {
	return m.settings
}

// Size returns the side length of the square board.
func (m *Map) Size() int {
	return m.settings.BoardSize
}

// InBounds reports whether loc lies on the board.
func (m *Map) InBounds(loc Loc) bool {
	return loc.X >= 0 && loc.Y >= 0 && loc.X < m.settings.BoardSize && loc.Y < m.settings.BoardSize
}

// LocType returns the type of the cell at loc.
func (m *Map) LocType(loc Loc) LocType {
	if !m.InBounds(loc) {
		return LocInvalid
	}
	if _, ok := m.obstacles[loc]; ok {
		return LocObstacle
	}
	if _, ok := m.spawn[loc]; ok {
		return LocSpawn
	}
	return LocNormal
}

// Walkable reports whether a robot may stand on loc.
func (m *Map) Walkable(loc Loc) bool {
	switch m.LocType(loc) {
	case LocNormal, LocSpawn:
		return true
	default:
		return false
	}
}

// LocsAround returns the orthogonal neighbours of loc whose type is not in
// filterOut.
func (m *Map) LocsAround(loc Loc, filterOut ...LocType) []Loc {
	locs := make([]Loc, 0, len(Directions))
	for _, d := range Directions {
		next := loc.Add(d)
		if containsType(filterOut, m.LocType(next)) {
			continue
		}
		locs = append(locs, next)
	}
	return locs
}

// Obstacles returns the obstacle cells in row-major order.
func (m *Map) Obstacles() []Loc {
	return sortedLocs(m.obstacles)
}

// Spawn returns the spawn cells in row-major order.
func (m *Map) Spawn() []Loc {
	return sortedLocs(m.spawn)
}

func containsType(types []LocType, t LocType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func sortedLocs(set map[Loc]struct{}) []Loc {
	locs := make([]Loc, 0, len(set))
	for loc := range set {
		locs = append(locs, loc)
	}
	sort.Slice(locs, func(i, j int) bool {
		if locs[i].Y != locs[j].Y {
			return locs[i].Y < locs[j].Y
		}
		return locs[i].X < locs[j].X
	})
	return locs
}
