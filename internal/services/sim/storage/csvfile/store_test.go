package csvfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/louisbranch/rgsimulator/internal/services/sim/engine"
	"github.com/louisbranch/rgsimulator/internal/services/sim/storage"
)

func openTempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(" "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestAppendAndGetRoundTrip(t *testing.T) {
	t.Parallel()

	store, path := openTempStore(t)
	ctx := context.Background()
	first := storage.Recipe{{Team: 1, HP: 50, X: 9, Y: 9}, {Team: 2, HP: 7, X: 10, Y: 9}}
	second := storage.Recipe{{Team: 2, HP: 1, X: 3, Y: 4}}

	for want, recipe := range []storage.Recipe{first, second} {
		index, err := store.AppendRecipe(ctx, recipe)
		if err != nil {
			t.Fatalf("append recipe: %v", err)
		}
		if index != want {
			t.Fatalf("index = %d, want %d", index, want)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if got, want := string(data), "1:50:9:9,0:7:10:9\n0:1:3:4\n"; got != want {
		t.Fatalf("file = %q, want %q", got, want)
	}

	count, err := store.CountRecipes(ctx)
	if err != nil || count != 2 {
		t.Fatalf("count = %d, %v; want 2", count, err)
	}
	got, err := store.GetRecipe(ctx, 0)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	if len(got) != 2 || got[1] != (engine.Record{Team: 2, HP: 7, X: 10, Y: 9}) {
		t.Fatalf("recipe = %+v", got)
	}
}

func TestMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	count, err := store.CountRecipes(context.Background())
	if err != nil || count != 0 {
		t.Fatalf("count = %d, %v; want 0", count, err)
	}
	if _, err := store.GetRecipe(context.Background(), 0); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if _, err := store.GetRecipe(context.Background(), -1); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestAppendRejectsEmptyRecipe(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	if _, err := store.AppendRecipe(context.Background(), nil); !errors.Is(err, storage.ErrEmptyRecipe) {
		t.Fatalf("error = %v, want ErrEmptyRecipe", err)
	}
}

func TestGetRecipeRejectsCorruptCell(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		data string
	}{
		{name: "short cell", data: "1:50:9\n"},
		{name: "not a number", data: "1:x:9:9\n"},
		{name: "unknown player id", data: "2:50:9:9\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store, path := openTempStore(t)
			if err := os.WriteFile(path, []byte(tc.data), 0o600); err != nil {
				t.Fatalf("write file: %v", err)
			}
			if _, err := store.GetRecipe(context.Background(), 0); !errors.Is(err, storage.ErrCorruptRecipe) {
				t.Fatalf("error = %v, want ErrCorruptRecipe", err)
			}
		})
	}
}

func TestGetRecipeReadsEnemyPlayerID(t *testing.T) {
	t.Parallel()

	store, path := openTempStore(t)
	if err := os.WriteFile(path, []byte("0:50:3:3,1:12:4:4\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err := store.GetRecipe(context.Background(), 0)
	if err != nil {
		t.Fatalf("get recipe: %v", err)
	}
	want := storage.Recipe{{Team: 2, HP: 50, X: 3, Y: 3}, {Team: 1, HP: 12, X: 4, Y: 4}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("recipe = %+v, want %+v", got, want)
	}
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()

	store, _ := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.CountRecipes(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
