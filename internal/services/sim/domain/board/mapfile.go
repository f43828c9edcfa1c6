package board

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultMapYAML []byte

// mapFile is the YAML shape of a map declaration. Zero-valued settings fall
// back to DefaultSettings.
type mapFile struct {
	BoardSize       int      `yaml:"board_size"`
	RobotHP         int      `yaml:"robot_hp"`
	AttackRange     []int    `yaml:"attack_range"`
	CollisionDamage int      `yaml:"collision_damage"`
	SuicideDamage   int      `yaml:"suicide_damage"`
	MaxTurns        int      `yaml:"max_turns"`
	Layout          []string `yaml:"layout"`
	Obstacles       [][2]int `yaml:"obstacles"`
	Spawn           [][2]int `yaml:"spawn"`
}

// DefaultMap returns the embedded standard arena.
func DefaultMap() *Map {
	m, err := ParseMap(defaultMapYAML)
	if err != nil {
		panic(fmt.Sprintf("parse embedded default map: %v", err))
	}
	return m
}

// LoadMap reads a YAML map declaration from path.
func LoadMap(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map %s: %w", path, err)
	}
	m, err := ParseMap(data)
	if err != nil {
		return nil, fmt.Errorf("parse map %s: %w", path, err)
	}
	return m, nil
}

// ParseMap decodes a YAML map declaration.
func ParseMap(data []byte) (*Map, error) {
	var file mapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode map yaml: %w", err)
	}

	settings, err := file.settings()
	if err != nil {
		return nil, err
	}

	obstacles := pairsToLocs(file.Obstacles)
	spawn := pairsToLocs(file.Spawn)
	if len(file.Layout) > 0 {
		if len(file.Layout) != settings.BoardSize {
			return nil, fmt.Errorf("layout has %d rows, want %d", len(file.Layout), settings.BoardSize)
		}
		for y, row := range file.Layout {
			if len(row) != settings.BoardSize {
				return nil, fmt.Errorf("layout row %d has %d cells, want %d", y, len(row), settings.BoardSize)
			}
			for x, cell := range row {
				loc := Loc{X: x, Y: y}
				switch cell {
				case 'x':
					obstacles = append(obstacles, loc)
				case 's':
					spawn = append(spawn, loc)
				case '.':
				default:
					return nil, fmt.Errorf("layout row %d: unknown cell %q", y, cell)
				}
			}
		}
	}
	return NewMap(settings, obstacles, spawn), nil
}

func (f mapFile) settings() (Settings, error) {
	s := DefaultSettings()
	if f.BoardSize != 0 {
		s.BoardSize = f.BoardSize
	}
	if f.RobotHP != 0 {
		s.RobotHP = f.RobotHP
	}
	if f.CollisionDamage != 0 {
		s.CollisionDamage = f.CollisionDamage
	}
	if f.SuicideDamage != 0 {
		s.SuicideDamage = f.SuicideDamage
	}
	if f.MaxTurns != 0 {
		s.MaxTurns = f.MaxTurns
	}
	switch len(f.AttackRange) {
	case 0:
	case 2:
		s.AttackMin, s.AttackMax = f.AttackRange[0], f.AttackRange[1]
	default:
		return Settings{}, fmt.Errorf("attack_range must have 2 values, got %d", len(f.AttackRange))
	}

	switch {
	case s.BoardSize <= 0:
		return Settings{}, fmt.Errorf("board_size must be positive")
	case s.RobotHP <= 0:
		return Settings{}, fmt.Errorf("robot_hp must be positive")
	case s.MaxTurns <= 0:
		return Settings{}, fmt.Errorf("max_turns must be positive")
	case s.AttackMin < 0 || s.AttackMin > s.AttackMax:
		return Settings{}, fmt.Errorf("attack_range [%d, %d] is invalid", s.AttackMin, s.AttackMax)
	case s.CollisionDamage < 0 || s.SuicideDamage < 0:
		return Settings{}, fmt.Errorf("damage values must not be negative")
	}
	return s, nil
}

func pairsToLocs(pairs [][2]int) []Loc {
	locs := make([]Loc, 0, len(pairs))
	for _, p := range pairs {
		locs = append(locs, Loc{X: p[0], Y: p[1]})
	}
	return locs
}
