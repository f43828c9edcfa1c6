// Package editor provides a line-oriented console for setting up scenarios
// and stepping through turns.
package editor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/rgsimulator/internal/platform/errors"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/robot"
	"github.com/louisbranch/rgsimulator/internal/services/sim/engine"
	"github.com/louisbranch/rgsimulator/internal/services/sim/storage"
)

// errQuit ends the command loop.
var errQuit = errors.New("quit")

// Console executes editor commands against a session.
type Console struct {
	session *engine.Session
	store   storage.RecipeStore
	out     io.Writer

	// lastRecipe is the index of the most recently loaded recipe; each load
	// fetches the one after it.
	lastRecipe int
}

// New returns a console. store may be nil, which disables save and load.
func New(session *engine.Session, store storage.RecipeStore, out io.Writer) *Console {
	return &Console{session: session, store: store, out: out, lastRecipe: -1}
}

// Run reads commands from in until EOF, quit, or ctx is done. Command errors
// are printed and do not stop the loop.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	c.printf("rgsim turn %d. Type help for commands.\n", c.session.Turn())
	for {
		c.printf("> ")
		if !scanner.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		err := c.Exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			c.printf("%s\n", describe(err))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

// Exec runs one command line.
func (c *Console) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "add":
		return c.add(args, robot.Team1)
	case "enemy":
		return c.add(args, robot.Team2)
	case "remove", "rm":
		loc, _, err := parseLoc(args, 0)
		if err != nil {
			return err
		}
		if err := c.session.RemoveRobot(loc); err != nil {
			return err
		}
		c.printf("removed robot at %v\n", loc)
	case "hp":
		loc, rest, err := parseLoc(args, 1)
		if err != nil {
			return err
		}
		hp, err := parseInt("hp", rest[0])
		if err != nil {
			return err
		}
		if err := c.session.SetHP(loc, hp); err != nil {
			return err
		}
		c.printf("robot at %v now has %d hp\n", loc, hp)
	case "turn":
		if len(args) == 0 {
			c.printf("turn %d\n", c.session.Turn())
			return nil
		}
		turn, err := parseInt("turn", args[0])
		if err != nil {
			return err
		}
		if err := c.session.SetTurn(turn); err != nil {
			return err
		}
		c.printf("turn %d\n", turn)
	case "clear":
		c.session.Clear()
		c.printf("cleared\n")
	case "show":
		c.show()
	case "preview", "actions":
		c.preview(c.session.Preview(ctx))
	case "commit", "step":
		c.report(c.session.Commit(ctx))
	case "save":
		return c.save(ctx)
	case "load":
		return c.load(ctx)
	case "help", "?":
		c.printf("%s", helpText)
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q; type help", name)
	}
	return nil
}

const helpText = `commands:
  add <x> <y> [hp]     place a team 1 robot
  enemy <x> <y> [hp]   place a team 2 robot
  remove <x> <y>       remove the robot at x y
  hp <x> <y> <hp>      set a robot's hit points
  turn [n]             show or set the turn number
  clear                remove every robot
  show                 print the board and roster
  preview              decide the next turn without applying it
  commit               run the next turn
  save                 append the roster to the recipe store
  load                 load the next saved recipe
  quit                 leave
`

func (c *Console) add(args []string, team int) error {
	loc, rest, err := parseLocOptional(args)
	if err != nil {
		return err
	}
	var hp *int
	if len(rest) > 0 {
		value, err := parseInt("hp", rest[0])
		if err != nil {
			return err
		}
		hp = &value
	}
	r, err := c.session.AddRobot(loc, team, hp)
	if err != nil {
		return err
	}
	c.printf("robot %d (team %d) at %v with %d hp\n", r.ID, r.Team, r.Loc, r.HP)
	return nil
}

func (c *Console) save(ctx context.Context) error {
	if c.store == nil {
		return errors.New("no recipe store configured")
	}
	index, err := c.store.AppendRecipe(ctx, storage.Recipe(c.session.Records()))
	if err != nil {
		return fmt.Errorf("save recipe: %w", err)
	}
	c.printf("saved recipe %d\n", index)
	return nil
}

func (c *Console) load(ctx context.Context) error {
	if c.store == nil {
		return errors.New("no recipe store configured")
	}
	next := c.lastRecipe + 1
	recipe, err := c.store.GetRecipe(ctx, next)
	if errors.Is(err, storage.ErrNotFound) {
		c.printf("no more recipes\n")
		return nil
	}
	if err != nil && !errors.Is(err, storage.ErrCorruptRecipe) {
		return fmt.Errorf("load recipe: %w", err)
	}
	// The row exists, so the cursor moves past it even if it cannot be loaded.
	c.lastRecipe = next
	if err != nil {
		return fmt.Errorf("load recipe: %w", err)
	}
	if err := c.session.LoadRecords(recipe); err != nil {
		return fmt.Errorf("load recipe %d: %w", next, err)
	}
	c.printf("loaded recipe %d (%d robots)\n", next, len(recipe))
	return nil
}

func (c *Console) show() {
	m := c.session.Map()
	c.printf("turn %d\n", c.session.Turn())
	for y := 0; y < m.Size(); y++ {
		var row strings.Builder
		for x := 0; x < m.Size(); x++ {
			loc := board.Loc{X: x, Y: y}
			if r, ok := c.session.RobotAt(loc); ok {
				row.WriteString(strconv.Itoa(r.Team))
				continue
			}
			switch m.LocType(loc) {
			case board.LocObstacle:
				row.WriteByte('#')
			case board.LocSpawn:
				row.WriteByte(',')
			default:
				row.WriteByte('.')
			}
		}
		c.printf("%s\n", row.String())
	}
	for _, r := range c.session.Robots() {
		c.printf("robot %d team %d at %v hp %d\n", r.ID, r.Team, r.Loc, r.HP)
	}
}

func (c *Console) preview(plan engine.Plan) {
	c.printf("turn %d plan:\n", plan.Turn)
	for _, id := range plan.Actions.IDs() {
		r := c.session.World().Robot(id)
		if r == nil {
			continue
		}
		c.printf("  robot %d (team %d) at %v: %s\n", id, r.Team, r.Loc, plan.Actions[id])
	}
	for _, f := range plan.Failures {
		c.printf("  ! %v\n", f)
	}
}

func (c *Console) report(report engine.Report) {
	c.printf("now at turn %d\n", report.Turn)
	for _, r := range report.Robots {
		status := ""
		if r.Died {
			status = " (destroyed)"
		}
		c.printf("  robot %d (team %d) %s -> %v hp %d%s\n", r.ID, r.Team, r.Action, r.Loc, r.HP, status)
	}
	for _, f := range report.Failures {
		c.printf("  ! %v\n", f)
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func describe(err error) string {
	if code := apperrors.GetCode(err); code.UserFacing() {
		return fmt.Sprintf("error [%s]: %s", code, apperrors.UserMessage(err, ""))
	}
	return fmt.Sprintf("error: %v", err)
}

// parseLoc reads x y followed by exactly extra more arguments.
func parseLoc(args []string, extra int) (board.Loc, []string, error) {
	if len(args) != 2+extra {
		return board.Loc{}, nil, fmt.Errorf("expected %d arguments, got %d", 2+extra, len(args))
	}
	return parseXY(args)
}

// parseLocOptional reads x y followed by at most one more argument.
func parseLocOptional(args []string) (board.Loc, []string, error) {
	if len(args) < 2 || len(args) > 3 {
		return board.Loc{}, nil, fmt.Errorf("expected x y [hp], got %d arguments", len(args))
	}
	return parseXY(args)
}

func parseXY(args []string) (board.Loc, []string, error) {
	x, err := parseInt("x", args[0])
	if err != nil {
		return board.Loc{}, nil, err
	}
	y, err := parseInt("y", args[1])
	if err != nil {
		return board.Loc{}, nil, err
	}
	return board.Loc{X: x, Y: y}, args[2:], nil
}

func parseInt(name, value string) (int, error) {
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", name, value)
	}
	return v, nil
}
