package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/louisbranch/rgsimulator/internal/services/sim/engine"
	"github.com/louisbranch/rgsimulator/internal/services/sim/storage"
)

// dsnEnv names a database the tests may freely write to.
const dsnEnv = "RGSIM_TEST_POSTGRES_DSN"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv(dsnEnv)
	if dsn == "" {
		t.Skipf("%s not set", dsnEnv)
	}
	store, err := Open(context.Background(), dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := store.db.Exec(`TRUNCATE recipes RESTART IDENTITY`); err != nil {
		t.Fatalf("truncate recipes: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected empty dsn error")
	}
}

func TestAppendGetRecipeRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for want, recipe := range []storage.Recipe{
		{{Team: 1, HP: 50, X: 9, Y: 9}, {Team: 2, HP: 7, X: 10, Y: 9}},
		{{Team: 2, HP: 1, X: 3, Y: 4}},
	} {
		index, err := store.AppendRecipe(ctx, recipe)
		if err != nil {
			t.Fatalf("append recipe: %v", err)
		}
		if index != want {
			t.Fatalf("index = %d, want %d", index, want)
		}
	}

	got, err := store.GetRecipe(ctx, 1)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if len(got) != 1 || got[0] != (engine.Record{Team: 2, HP: 1, X: 3, Y: 4}) {
		t.Fatalf("recipe = %+v", got)
	}
	count, err := store.CountRecipes(ctx)
	if err != nil || count != 2 {
		t.Fatalf("count = %d, %v; want 2", count, err)
	}
	if _, err := store.GetRecipe(ctx, 2); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestAppendRejectsEmptyRecipe(t *testing.T) {
	store := &Store{}
	if _, err := store.AppendRecipe(context.Background(), nil); !errors.Is(err, storage.ErrEmptyRecipe) {
		t.Fatalf("error = %v, want ErrEmptyRecipe", err)
	}
}
