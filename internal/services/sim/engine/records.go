package engine

import (
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/rgsimulator/internal/platform/errors"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
)

// Record is the persisted shape of one robot.
type Record struct {
	Team int `json:"team"`
	HP   int `json:"hp"`
	X    int `json:"x"`
	Y    int `json:"y"`
}

// Loc returns the record's location.
func (r Record) Loc() board.Loc {
	return board.Loc{X: r.X, Y: r.Y}
}

// Records serialises the roster in ascending ID order.
func (s *Session) Records() []Record {
	robots := s.world.Robots()
	out := make([]Record, 0, len(robots))
	for _, r := range robots {
		out = append(out, Record{Team: r.Team, HP: r.HP, X: r.Loc.X, Y: r.Loc.Y})
	}
	return out
}

// LoadRecords replaces the roster with records, adding them in order. The
// roster is left untouched when any record is invalid.
func (s *Session) LoadRecords(records []Record) error {
	for i, rec := range records {
		if err := s.validatePlacement(rec.Loc(), rec.Team, rec.HP); err != nil {
			return apperrors.WrapWithMetadata(apperrors.CodeRecipeInvalid, fmt.Sprintf("record %d: %v", i, err),
				map[string]string{"record": strconv.Itoa(i)}, err)
		}
	}

	s.Clear()
	for _, rec := range records {
		hp := rec.HP
		if _, err := s.AddRobot(rec.Loc(), rec.Team, &hp); err != nil {
			return fmt.Errorf("add record robot: %w", err)
		}
	}
	return nil
}
