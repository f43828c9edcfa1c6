// Package postgres provides a PostgreSQL-backed recipe store. Each recipe is
// one row holding its robots as JSONB.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/louisbranch/rgsimulator/internal/services/sim/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS recipes (
	id SERIAL PRIMARY KEY,
	robots JSONB NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`

// Store persists recipes in PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.RecipeStore = (*Store)(nil)

// Open connects to dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres db: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// AppendRecipe inserts recipe and returns its index.
func (s *Store) AppendRecipe(ctx context.Context, recipe storage.Recipe) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(recipe) == 0 {
		return 0, storage.ErrEmptyRecipe
	}
	robots, err := json.Marshal(recipe)
	if err != nil {
		return 0, fmt.Errorf("marshal recipe: %w", err)
	}

	var index int
	err = s.db.QueryRowContext(ctx, `
	WITH inserted AS (
		INSERT INTO recipes (robots) VALUES ($1) RETURNING id
	)
	SELECT COUNT(*) FROM recipes, inserted WHERE recipes.id < inserted.id
	`, string(robots)).Scan(&index)
	if err != nil {
		return 0, fmt.Errorf("insert recipe: %w", err)
	}
	return index, nil
}

// GetRecipe returns the recipe saved at index.
func (s *Store) GetRecipe(ctx context.Context, index int) (storage.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := storage.ValidateIndex(index); err != nil {
		return nil, err
	}

	var robots []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT robots FROM recipes ORDER BY id LIMIT 1 OFFSET $1`, index,
	).Scan(&robots)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	var recipe storage.Recipe
	if err := json.Unmarshal(robots, &recipe); err != nil {
		return nil, fmt.Errorf("unmarshal recipe %d: %w: %w", index, storage.ErrCorruptRecipe, err)
	}
	return recipe, nil
}

// CountRecipes returns the number of saved recipes.
func (s *Store) CountRecipes(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	return count, nil
}
