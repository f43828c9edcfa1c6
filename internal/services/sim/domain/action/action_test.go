package action

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/louisbranch/rgsimulator/internal/services/sim/domain/board"
)

func TestParseText(t *testing.T) {
	tests := []struct {
		text string
		want Action
	}{
		{text: "move 3 4", want: Move(board.Loc{X: 3, Y: 4})},
		{text: "  ATTACK (5, 6) ", want: Attack(board.Loc{X: 5, Y: 6})},
		{text: "guard", want: Guard()},
		{text: "suicide\n", want: Suicide()},
	}
	for _, tt := range tests {
		got, err := ParseText(tt.text)
		if err != nil {
			t.Fatalf("ParseText(%q): %v", tt.text, err)
		}
		if got != tt.want {
			t.Fatalf("ParseText(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParseTextMalformed(t *testing.T) {
	for _, text := range []string{"", "dance", "move 1", "move a b", "guard 1 2"} {
		if _, err := ParseText(text); !errors.Is(err, ErrMalformed) {
			t.Fatalf("ParseText(%q) error = %v, want ErrMalformed", text, err)
		}
	}
}

func TestStringRoundTripsThroughParseText(t *testing.T) {
	a := Attack(board.Loc{X: 7, Y: 8})
	if got := a.String(); got != "attack 7 8" {
		t.Fatalf("String = %q, want %q", got, "attack 7 8")
	}
	parsed, err := ParseText(a.String())
	if err != nil || parsed != a {
		t.Fatalf("ParseText(String()) = %v, %v", parsed, err)
	}
}

func TestWireForm(t *testing.T) {
	data, err := json.Marshal(Move(board.Loc{X: 1, Y: 2}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["move",[1,2]]` {
		t.Fatalf("wire = %s, want [\"move\",[1,2]]", data)
	}
	data, err = json.Marshal(Guard())
	if err != nil {
		t.Fatalf("marshal guard: %v", err)
	}
	if string(data) != `["guard"]` {
		t.Fatalf("wire = %s, want [\"guard\"]", data)
	}
	if _, err := json.Marshal(Action{}); err == nil {
		t.Fatal("expected error for unknown kind")
	}

	var decoded Action
	if err := json.Unmarshal([]byte(`["attack",[4,5]]`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != Attack(board.Loc{X: 4, Y: 5}) {
		t.Fatalf("decoded = %v", decoded)
	}
}

func TestWireFormMalformed(t *testing.T) {
	for _, data := range []string{`{}`, `[]`, `[1]`, `["jump"]`, `["move"]`, `["move",[1]]`, `["guard",[1,2]]`} {
		var a Action
		if err := json.Unmarshal([]byte(data), &a); err == nil {
			t.Fatalf("Unmarshal(%s) expected error", data)
		}
	}
}

func TestTable(t *testing.T) {
	table := Table{3: Guard(), 1: Suicide(), 2: Move(board.Loc{X: 1, Y: 1})}
	ids := table.IDs()
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("IDs = %v, want [1 2 3]", ids)
	}
	if !table.IsGuarding(3) || table.IsGuarding(1) || table.IsGuarding(99) {
		t.Fatal("unexpected guarding result")
	}

	clone := table.Clone()
	clone[1] = Guard()
	if table[1] != Suicide() {
		t.Fatal("clone shares storage with original")
	}
}
