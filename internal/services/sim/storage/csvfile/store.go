// Package csvfile stores recipes in a CSV file, one recipe per row and one
// robot per cell encoded as player:hp:x:y.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/robot"
	"github.com/louisbranch/rgsimulator/internal/services/sim/engine"
	"github.com/louisbranch/rgsimulator/internal/services/sim/storage"
)

// DefaultPath is the file name used when none is configured.
const DefaultPath = "rgsimulator.csv"

// Store is a file-backed recipe store.
type Store struct {
	mu   sync.Mutex
	path string
}

var _ storage.RecipeStore = (*Store)(nil)

// Open returns a store for path. The file is created on first append.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	return &Store{path: path}, nil
}

// Close is a no-op; the file is opened per call.
func (s *Store) Close() error {
	return nil
}

// AppendRecipe writes recipe as a new row.
func (s *Store) AppendRecipe(ctx context.Context, recipe storage.Recipe) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(recipe) == 0 {
		return 0, storage.ErrEmptyRecipe
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return 0, err
	}

	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open recipe file: %w", err)
	}
	defer file.Close()

	cells := make([]string, 0, len(recipe))
	for _, rec := range recipe {
		cells = append(cells, encodeCell(rec))
	}
	w := csv.NewWriter(file)
	if err := w.Write(cells); err != nil {
		return 0, fmt.Errorf("write recipe: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush recipe: %w", err)
	}
	return len(rows), nil
}

// GetRecipe returns the recipe on row index.
func (s *Store) GetRecipe(ctx context.Context, index int) (storage.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := storage.ValidateIndex(index); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}
	if index >= len(rows) {
		return nil, storage.ErrNotFound
	}

	recipe := make(storage.Recipe, 0, len(rows[index]))
	for col, cell := range rows[index] {
		rec, err := decodeCell(cell)
		if err != nil {
			return nil, fmt.Errorf("recipe %d cell %d: %w: %w", index, col, storage.ErrCorruptRecipe, err)
		}
		recipe = append(recipe, rec)
	}
	return recipe, nil
}

// CountRecipes returns the number of rows.
func (s *Store) CountRecipes(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.readRows()
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *Store) readRows() ([][]string, error) {
	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open recipe file: %w", err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read recipe file: %w", err)
	}
	return rows, nil
}

// Cells carry the player id of the robot: 1 for team 1 and 0 for team 2.
const enemyPlayerID = 0

func encodeCell(rec engine.Record) string {
	player := rec.Team
	if player == robot.Team2 {
		player = enemyPlayerID
	}
	return strings.Join([]string{
		strconv.Itoa(player),
		strconv.Itoa(rec.HP),
		strconv.Itoa(rec.X),
		strconv.Itoa(rec.Y),
	}, ":")
}

func decodeCell(cell string) (engine.Record, error) {
	parts := strings.Split(cell, ":")
	if len(parts) != 4 {
		return engine.Record{}, fmt.Errorf("cell %q: want player:hp:x:y", cell)
	}
	values := make([]int, len(parts))
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return engine.Record{}, fmt.Errorf("cell %q: %w", cell, err)
		}
		values[i] = v
	}
	var team int
	switch values[0] {
	case robot.Team1:
		team = robot.Team1
	case enemyPlayerID:
		team = robot.Team2
	default:
		return engine.Record{}, fmt.Errorf("cell %q: player id must be 0 or 1", cell)
	}
	return engine.Record{Team: team, HP: values[1], X: values[2], Y: values[3]}, nil
}
