// Package storage defines persistence contracts for saved rosters.
//
// A recipe is one saved roster. Recipes are append-only and addressed by
// their zero-based position in save order.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/louisbranch/rgsimulator/internal/services/sim/engine"
)

var (
	// ErrNotFound indicates no recipe exists at the requested index.
	ErrNotFound = errors.New("recipe not found")
	// ErrEmptyRecipe indicates an attempt to save a roster with no robots.
	ErrEmptyRecipe = errors.New("recipe has no robots")
	// ErrCorruptRecipe indicates a stored recipe exists but cannot be decoded.
	ErrCorruptRecipe = errors.New("recipe is corrupt")
)

// Recipe is a saved roster.
type Recipe []engine.Record

// RecipeStore persists recipes.
type RecipeStore interface {
	// AppendRecipe saves recipe and returns its index.
	AppendRecipe(ctx context.Context, recipe Recipe) (int, error)
	GetRecipe(ctx context.Context, index int) (Recipe, error)
	CountRecipes(ctx context.Context) (int, error)
	Close() error
}

// ValidateIndex rejects negative indexes with ErrNotFound.
func ValidateIndex(index int) error {
	if index < 0 {
		return fmt.Errorf("index %d: %w", index, ErrNotFound)
	}
	return nil
}
