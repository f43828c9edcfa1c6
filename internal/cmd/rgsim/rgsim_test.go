package rgsim

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/louisbranch/rgsimulator/internal/services/sim/controller"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
)

const walker = `
function act(robot, game)
  return {"move", {robot.location[1] + 1, robot.location[2]}}
end
`

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("rgsim", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Mode != modeConsole {
		t.Fatalf("expected console mode, got %q", cfg.Mode)
	}
	if cfg.Store != "rgsimulator.csv" {
		t.Fatalf("expected default store, got %q", cfg.Store)
	}
	if cfg.RemoteTimeout != 2*time.Second {
		t.Fatalf("expected 2s remote timeout, got %v", cfg.RemoteTimeout)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("RGSIM_MODE", "MCP")
	t.Setenv("RGSIM_TEAM2", "env.lua")
	fs := flag.NewFlagSet("rgsim", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-seed", "7", "-store", "none", "bot.lua"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Mode != modeMCP {
		t.Fatalf("expected mcp mode, got %q", cfg.Mode)
	}
	if cfg.Seed != 7 || cfg.Store != "none" {
		t.Fatalf("unexpected flags: %+v", cfg)
	}
	if cfg.Team1 != "bot.lua" || cfg.Team2 != "env.lua" {
		t.Fatalf("unexpected controllers: %q %q", cfg.Team1, cfg.Team2)
	}
}

func TestParseConfigRejectsExtraArgs(t *testing.T) {
	fs := flag.NewFlagSet("rgsim", flag.ContinueOnError)
	if _, err := ParseConfig(fs, []string{"a.lua", "b.lua", "c.lua"}); err == nil {
		t.Fatal("expected error for three controllers")
	}
}

func TestRunUnsupportedMode(t *testing.T) {
	err := Run(context.Background(), Config{Mode: "websocket"}, nil, nil, nil)
	if err == nil {
		t.Fatal("expected error for unsupported mode")
	}
	if !strings.Contains(err.Error(), "not supported") {
		t.Errorf("expected 'not supported' in error, got: %v", err)
	}
}

func TestRunConsole(t *testing.T) {
	dir := t.TempDir()
	botPath := filepath.Join(dir, "walker.lua")
	if err := os.WriteFile(botPath, []byte(walker), 0o600); err != nil {
		t.Fatalf("write bot: %v", err)
	}
	storePath := filepath.Join(dir, "recipes.csv")

	cfg := Config{
		Team1: botPath,
		Store: storePath,
		Mode:  modeConsole,
		Seed:  1,
	}
	in := strings.NewReader("add 5 9\npreview\ncommit\nsave\nquit\n")
	out := &bytes.Buffer{}
	if err := Run(context.Background(), cfg, in, out, nil); err != nil {
		t.Fatalf("run: %v", err)
	}

	text := out.String()
	if !strings.Contains(text, "move 6 9") {
		t.Errorf("expected the lua bot to move east, got %q", text)
	}
	if !strings.Contains(text, "saved recipe 0") {
		t.Errorf("expected a saved recipe, got %q", text)
	}
	data, err := os.ReadFile(storePath)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if got := strings.TrimSpace(string(data)); got != "1:50:6:9" {
		t.Errorf("expected recipe row 1:50:6:9, got %q", got)
	}
}

func TestRunRejectsMissingMap(t *testing.T) {
	cfg := Config{Mode: modeConsole, Map: filepath.Join(t.TempDir(), "missing.yaml")}
	if err := Run(context.Background(), cfg, strings.NewReader(""), nil, nil); err == nil {
		t.Fatal("expected error for missing map")
	}
}

func TestNewController(t *testing.T) {
	ctx := context.Background()
	m := board.DefaultMap()

	ctrl, closer, err := newController(ctx, Config{}, "", m)
	if err != nil || ctrl != nil || closer != nil {
		t.Fatalf("expected no controller for empty spec, got %v %v %v", ctrl, closer, err)
	}

	ctrl, _, err = newController(ctx, Config{}, "guard", m)
	if err != nil {
		t.Fatalf("guard controller: %v", err)
	}
	if _, ok := ctrl.(controller.Guard); !ok {
		t.Fatalf("expected guard controller, got %T", ctrl)
	}

	if _, _, err := newController(ctx, Config{}, "gemini:gemini-2.0-flash", m); err == nil {
		t.Fatal("expected gemini controller to require an api key")
	}
	if _, _, err := newController(ctx, Config{}, filepath.Join(t.TempDir(), "missing.lua"), m); err == nil {
		t.Fatal("expected error for missing lua file")
	}
	if _, _, err := newController(ctx, Config{RemoteTimeout: 100 * time.Millisecond}, "ws://127.0.0.1:1/bot", m); err == nil {
		t.Fatal("expected error for unreachable remote controller")
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := openStore(ctx, "none")
	if err != nil || store != nil {
		t.Fatalf("expected disabled store, got %v %v", store, err)
	}

	for _, dsn := range []string{
		filepath.Join(dir, "recipes.csv"),
		"sqlite:" + filepath.Join(dir, "recipes.db"),
	} {
		store, err := openStore(ctx, dsn)
		if err != nil {
			t.Fatalf("open %q: %v", dsn, err)
		}
		count, err := store.CountRecipes(ctx)
		if err != nil {
			t.Fatalf("count %q: %v", dsn, err)
		}
		if count != 0 {
			t.Errorf("expected empty store for %q, got %d", dsn, count)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close %q: %v", dsn, err)
		}
	}
}
