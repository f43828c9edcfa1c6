// Package action defines the orders a robot can issue in a turn and their
// wire and text encodings.
package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
)

// ErrMalformed reports an action that does not fit the action grammar.
var ErrMalformed = errors.New("malformed action")

// Kind identifies an action. The zero value is not a valid action.
type Kind int

const (
	KindUnknown Kind = iota
	KindMove
	KindAttack
	KindSuicide
	KindGuard
)

func (k Kind) String() string {
	switch k {
	case KindMove:
		return "move"
	case KindAttack:
		return "attack"
	case KindSuicide:
		return "suicide"
	case KindGuard:
		return "guard"
	default:
		return "unknown"
	}
}

// ParseKind maps an action name to its kind.
func ParseKind(name string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "move":
		return KindMove, true
	case "attack":
		return KindAttack, true
	case "suicide":
		return KindSuicide, true
	case "guard":
		return KindGuard, true
	default:
		return KindUnknown, false
	}
}

// HasTarget reports whether actions of this kind carry a target cell.
func (k Kind) HasTarget() bool {
	return k == KindMove || k == KindAttack
}

// PriorityOrder is the order in which action classes are applied in a turn.
// Guards are never executed.
var PriorityOrder = []Kind{KindMove, KindAttack, KindSuicide}

// Action is a single order for one robot.
type Action struct {
	Kind   Kind
	Target board.Loc
}

// Move returns an order to step into target.
func Move(target board.Loc) Action { return Action{Kind: KindMove, Target: target} }

// Attack returns an order to strike target.
func Attack(target board.Loc) Action { return Action{Kind: KindAttack, Target: target} }

// Suicide returns an order to self-destruct.
func Suicide() Action { return Action{Kind: KindSuicide} }

// Guard returns the no-op order that halves incoming damage.
func Guard() Action { return Action{Kind: KindGuard} }

// IsGuard reports whether a is a guard order.
func (a Action) IsGuard() bool {
	return a.Kind == KindGuard
}

// String renders the text form, e.g. "move 3 4" or "guard".
func (a Action) String() string {
	if a.Kind.HasTarget() {
		return fmt.Sprintf("%s %d %d", a.Kind, a.Target.X, a.Target.Y)
	}
	return a.Kind.String()
}

// ParseText parses the text form produced by String. Commas and brackets are
// tolerated so "move (3, 4)" is accepted too.
func ParseText(text string) (Action, error) {
	cleaned := strings.NewReplacer(",", " ", "(", " ", ")", " ", "[", " ", "]", " ").Replace(text)
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return Action{}, fmt.Errorf("%w: empty", ErrMalformed)
	}
	kind, ok := ParseKind(fields[0])
	if !ok {
		return Action{}, fmt.Errorf("%w: unknown kind %q", ErrMalformed, fields[0])
	}
	if !kind.HasTarget() {
		if len(fields) != 1 {
			return Action{}, fmt.Errorf("%w: %s takes no target", ErrMalformed, kind)
		}
		return Action{Kind: kind}, nil
	}
	if len(fields) != 3 {
		return Action{}, fmt.Errorf("%w: %s needs x and y", ErrMalformed, kind)
	}
	x, errX := strconv.Atoi(fields[1])
	y, errY := strconv.Atoi(fields[2])
	if errX != nil || errY != nil {
		return Action{}, fmt.Errorf("%w: %s target must be integers", ErrMalformed, kind)
	}
	return Action{Kind: kind, Target: board.Loc{X: x, Y: y}}, nil
}

// MarshalJSON encodes the wire form: ["move",[x,y]] or ["guard"].
func (a Action) MarshalJSON() ([]byte, error) {
	if a.Kind == KindUnknown {
		return nil, fmt.Errorf("%w: unknown kind", ErrMalformed)
	}
	if a.Kind.HasTarget() {
		return json.Marshal([]any{a.Kind.String(), [2]int{a.Target.X, a.Target.Y}})
	}
	return json.Marshal([]any{a.Kind.String()})
}

// UnmarshalJSON decodes the wire form.
func (a *Action) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(parts) == 0 {
		return fmt.Errorf("%w: empty", ErrMalformed)
	}
	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return fmt.Errorf("%w: kind must be a string", ErrMalformed)
	}
	kind, ok := ParseKind(name)
	if !ok {
		return fmt.Errorf("%w: unknown kind %q", ErrMalformed, name)
	}
	if !kind.HasTarget() {
		if len(parts) != 1 {
			return fmt.Errorf("%w: %s takes no target", ErrMalformed, kind)
		}
		*a = Action{Kind: kind}
		return nil
	}
	if len(parts) != 2 {
		return fmt.Errorf("%w: %s needs a target", ErrMalformed, kind)
	}
	var target []int
	if err := json.Unmarshal(parts[1], &target); err != nil || len(target) != 2 {
		return fmt.Errorf("%w: %s target must be [x, y]", ErrMalformed, kind)
	}
	*a = Action{Kind: kind, Target: board.Loc{X: target[0], Y: target[1]}}
	return nil
}

// Table maps robot IDs to the action each robot resolved to this turn.
type Table map[int]Action

// IDs returns the robot IDs in ascending order.
func (t Table) IDs() []int {
	ids := make([]int, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Clone returns an independent copy of the table.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for id, a := range t {
		out[id] = a
	}
	return out
}

// IsGuarding reports whether robot id guards this turn.
func (t Table) IsGuarding(id int) bool {
	a, ok := t[id]
	return ok && a.IsGuard()
}
