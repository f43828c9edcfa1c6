// Package rgsim parses simulator flags and wires the session to the console
// or MCP front end.
package rgsim

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	platformcmd "github.com/louisbranch/rgsimulator/internal/platform/cmd"
	"github.com/louisbranch/rgsimulator/internal/platform/random"
	"github.com/louisbranch/rgsimulator/internal/services/sim/controller"
	"github.com/louisbranch/rgsimulator/internal/services/sim/controller/llm"
	"github.com/louisbranch/rgsimulator/internal/services/sim/controller/luabot"
	"github.com/louisbranch/rgsimulator/internal/services/sim/controller/remote"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/robot"
	"github.com/louisbranch/rgsimulator/internal/services/sim/editor"
	"github.com/louisbranch/rgsimulator/internal/services/sim/engine"
	"github.com/louisbranch/rgsimulator/internal/services/sim/mcptools"
	"github.com/louisbranch/rgsimulator/internal/services/sim/storage"
	"github.com/louisbranch/rgsimulator/internal/services/sim/storage/csvfile"
	"github.com/louisbranch/rgsimulator/internal/services/sim/storage/postgres"
	"github.com/louisbranch/rgsimulator/internal/services/sim/storage/sqlite"
)

const (
	modeConsole = "console"
	modeMCP     = "mcp"
)

// Config holds simulator command configuration.
type Config struct {
	Map           string        `env:"MAP"`
	Team1         string        `env:"TEAM1"`
	Team2         string        `env:"TEAM2"`
	Store         string        `env:"STORE"          envDefault:"rgsimulator.csv"`
	Mode          string        `env:"MODE"           envDefault:"console"`
	Seed          int64         `env:"SEED"`
	RemoteTimeout time.Duration `env:"REMOTE_TIMEOUT" envDefault:"2s"`
	GeminiAPIKey  string        `env:"GEMINI_API_KEY"`
	GeminiModel   string        `env:"GEMINI_MODEL"   envDefault:"gemini-2.0-flash"`
	Verbose       bool          `env:"VERBOSE"`
}

// ParseConfig parses environment and flags into a Config. Up to two
// positional arguments name the team 1 and team 2 controllers.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := platformcmd.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Map, "map", cfg.Map, "path to a YAML map file (default: built-in map)")
	fs.StringVar(&cfg.Team1, "team1", cfg.Team1, "team 1 controller: lua file, ws:// URL, gemini[:model] or guard")
	fs.StringVar(&cfg.Team2, "team2", cfg.Team2, "team 2 controller (empty: team 2 always guards)")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "recipe store: csv path, sqlite:<path>, postgres:// DSN or none")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "front end: console or mcp")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "damage roll seed (0 picks one)")
	fs.DurationVar(&cfg.RemoteTimeout, "remote-timeout", cfg.RemoteTimeout, "reply deadline for remote controllers")
	fs.StringVar(&cfg.GeminiModel, "gemini-model", cfg.GeminiModel, "default Gemini model")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable verbose logging")
	if err := platformcmd.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if fs.NArg() > 2 {
		return Config{}, fmt.Errorf("expected at most two controllers, got %d arguments", fs.NArg())
	}
	if fs.NArg() > 0 {
		cfg.Team1 = fs.Arg(0)
	}
	if fs.NArg() > 1 {
		cfg.Team2 = fs.Arg(1)
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	return cfg, nil
}

// Run builds the session and serves the configured front end until it ends.
func Run(ctx context.Context, cfg Config, in io.Reader, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}
	if cfg.Mode != modeConsole && cfg.Mode != modeMCP {
		return fmt.Errorf("mode %q is not supported", cfg.Mode)
	}
	logger := log.New(errOut, "", 0)

	m, err := loadMap(cfg.Map)
	if err != nil {
		return err
	}

	rng, seed, err := random.NewRand(cfg.Seed)
	if err != nil {
		return err
	}
	if cfg.Verbose {
		logger.Printf("damage seed %d", seed)
	}

	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Printf("close: %v", err)
			}
		}
	}()

	team1, closer, err := newController(ctx, cfg, cfg.Team1, m)
	if err != nil {
		return fmt.Errorf("team 1 controller: %w", err)
	}
	if closer != nil {
		closers = append(closers, closer)
	}
	team2, closer, err := newController(ctx, cfg, cfg.Team2, m)
	if err != nil {
		return fmt.Errorf("team 2 controller: %w", err)
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	port := controller.NewPort(team1, team2, logger)
	if cfg.Verbose {
		for _, team := range []int{robot.Team1, robot.Team2} {
			if !port.Has(team) {
				logger.Printf("team %d has no controller; its robots guard", team)
			}
		}
	}
	resolver, err := engine.NewResolver(port, engine.Config{
		Rand:    rng,
		Logger:  logger,
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return err
	}
	session := engine.NewSession(engine.NewWorld(m), resolver)

	if cfg.Mode == modeMCP {
		return mcptools.Serve(ctx, mcptools.NewServer(mcptools.NewSim(session)))
	}

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	if store != nil {
		closers = append(closers, store)
	}
	if in == nil {
		return errors.New("console input is required")
	}
	return editor.New(session, store, out).Run(ctx, in)
}

func loadMap(path string) (*board.Map, error) {
	if strings.TrimSpace(path) == "" {
		return board.DefaultMap(), nil
	}
	m, err := board.LoadMap(path)
	if err != nil {
		return nil, fmt.Errorf("load map: %w", err)
	}
	return m, nil
}

// newController builds the controller named by spec. An empty spec yields a
// nil controller so the team guards without being consulted.
func newController(ctx context.Context, cfg Config, spec string, m *board.Map) (controller.Controller, io.Closer, error) {
	spec = strings.TrimSpace(spec)
	switch {
	case spec == "":
		return nil, nil, nil
	case spec == "guard":
		return controller.Guard{}, nil, nil
	case strings.HasPrefix(spec, "ws://"), strings.HasPrefix(spec, "wss://"):
		ctrl, err := remote.Dial(ctx, spec, cfg.RemoteTimeout)
		if err != nil {
			return nil, nil, err
		}
		return ctrl, ctrl, nil
	case spec == "gemini", strings.HasPrefix(spec, "gemini:"):
		if cfg.GeminiAPIKey == "" {
			return nil, nil, errors.New("gemini controller requires RGSIM_GEMINI_API_KEY")
		}
		model := cfg.GeminiModel
		if name := strings.TrimPrefix(spec, "gemini:"); name != spec && name != "" {
			model = name
		}
		ctrl, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, model, m)
		if err != nil {
			return nil, nil, err
		}
		return ctrl, nil, nil
	default:
		ctrl, err := luabot.LoadFile(spec, m)
		if err != nil {
			return nil, nil, err
		}
		return ctrl, nil, nil
	}
}

// openStore opens the recipe store named by dsn. "none" or an empty dsn
// disables recipes.
func openStore(ctx context.Context, dsn string) (storage.RecipeStore, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "", dsn == "none":
		return nil, nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		store, err := postgres.Open(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres recipes: %w", err)
		}
		return store, nil
	case strings.HasPrefix(dsn, "sqlite:"):
		store, err := sqlite.Open(strings.TrimPrefix(dsn, "sqlite:"))
		if err != nil {
			return nil, fmt.Errorf("open sqlite recipes: %w", err)
		}
		return store, nil
	default:
		store, err := csvfile.Open(dsn)
		if err != nil {
			return nil, fmt.Errorf("open csv recipes: %w", err)
		}
		return store, nil
	}
}
