// Package sqlite provides a SQLite-backed recipe store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/rgsimulator/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/rgsimulator/internal/services/sim/engine"
	"github.com/louisbranch/rgsimulator/internal/services/sim/storage"
	"github.com/louisbranch/rgsimulator/internal/services/sim/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists recipes in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.RecipeStore = (*Store)(nil)

// Open opens a SQLite recipe store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AppendRecipe inserts recipe and its robots in one transaction.
func (s *Store) AppendRecipe(ctx context.Context, recipe storage.Recipe) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if len(recipe) == 0 {
		return 0, storage.ErrEmptyRecipe
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin append recipe: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO recipes (created_at) VALUES (?)`, time.Now().UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("insert recipe: %w", err)
	}
	recipeID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recipe id: %w", err)
	}
	for position, rec := range recipe {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO recipe_robots (recipe_id, position, team, hp, x, y) VALUES (?, ?, ?, ?, ?, ?)`,
			recipeID, position, rec.Team, rec.HP, rec.X, rec.Y,
		); err != nil {
			return 0, fmt.Errorf("insert recipe robot %d: %w", position, err)
		}
	}

	var index int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes WHERE id < ?`, recipeID).Scan(&index); err != nil {
		return 0, fmt.Errorf("recipe index: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit append recipe: %w", err)
	}
	return index, nil
}

// GetRecipe returns the recipe saved at index.
func (s *Store) GetRecipe(ctx context.Context, index int) (storage.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if err := storage.ValidateIndex(index); err != nil {
		return nil, err
	}

	var recipeID int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id FROM recipes ORDER BY id LIMIT 1 OFFSET ?`, index,
	).Scan(&recipeID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT team, hp, x, y FROM recipe_robots WHERE recipe_id = ? ORDER BY position`, recipeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list recipe robots: %w", err)
	}
	defer rows.Close()

	var recipe storage.Recipe
	for rows.Next() {
		var rec engine.Record
		if err := rows.Scan(&rec.Team, &rec.HP, &rec.X, &rec.Y); err != nil {
			return nil, fmt.Errorf("scan recipe robot: %w", err)
		}
		recipe = append(recipe, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipe robots: %w", err)
	}
	return recipe, nil
}

// CountRecipes returns the number of saved recipes.
func (s *Store) CountRecipes(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var count int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	return count, nil
}
