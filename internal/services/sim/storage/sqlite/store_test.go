package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/louisbranch/rgsimulator/internal/services/sim/engine"
	"github.com/louisbranch/rgsimulator/internal/services/sim/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "recipes.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestAppendGetRecipeRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	recipes := []storage.Recipe{
		{{Team: 1, HP: 50, X: 9, Y: 9}, {Team: 2, HP: 7, X: 10, Y: 9}},
		{{Team: 2, HP: 1, X: 3, Y: 4}},
	}
	for want, recipe := range recipes {
		index, err := store.AppendRecipe(ctx, recipe)
		if err != nil {
			t.Fatalf("append recipe: %v", err)
		}
		if index != want {
			t.Fatalf("index = %d, want %d", index, want)
		}
	}

	count, err := store.CountRecipes(ctx)
	if err != nil || count != 2 {
		t.Fatalf("count = %d, %v; want 2", count, err)
	}

	got, err := store.GetRecipe(ctx, 0)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("recipe len = %d, want 2", len(got))
	}
	if got[0] != (engine.Record{Team: 1, HP: 50, X: 9, Y: 9}) || got[1] != (engine.Record{Team: 2, HP: 7, X: 10, Y: 9}) {
		t.Fatalf("recipe = %+v, want insertion order preserved", got)
	}
}

func TestGetRecipeNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	for _, index := range []int{-1, 0, 5} {
		if _, err := store.GetRecipe(context.Background(), index); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("GetRecipe(%d) error = %v, want ErrNotFound", index, err)
		}
	}
}

func TestAppendRejectsEmptyRecipe(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.AppendRecipe(context.Background(), storage.Recipe{}); !errors.Is(err, storage.ErrEmptyRecipe) {
		t.Fatalf("error = %v, want ErrEmptyRecipe", err)
	}
}

func TestReopenKeepsRecipes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "recipes.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.AppendRecipe(context.Background(), storage.Recipe{{Team: 1, HP: 5, X: 9, Y: 9}}); err != nil {
		t.Fatalf("append recipe: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()
	count, err := reopened.CountRecipes(context.Background())
	if err != nil || count != 1 {
		t.Fatalf("count = %d, %v; want 1", count, err)
	}
}

func TestNilStore(t *testing.T) {
	t.Parallel()

	var store *Store
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
	if _, err := store.CountRecipes(context.Background()); err == nil {
		t.Fatal("expected error for nil store")
	}
}
