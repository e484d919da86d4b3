package main

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"gridwalk.ai/internal/observerproto"
)

func TestBootstrapURL(t *testing.T) {
	cases := map[string]string{
		"ws://127.0.0.1:8080/v1/observer/ws": "http://127.0.0.1:8080/v1/observer/bootstrap",
		"wss://example.com/v1/observer/ws":   "https://example.com/v1/observer/bootstrap",
	}
	for in, want := range cases {
		got, err := bootstrapURL(in)
		if err != nil || got != want {
			t.Fatalf("%s: got %q err=%v want %q", in, got, err, want)
		}
	}
	if _, err := bootstrapURL("ftp://x/ws"); err == nil {
		t.Fatalf("expected scheme error")
	}
}

type recordCanvas struct {
	cells map[[2]int]tcell.Style
	runes map[[2]int]rune
	shown int
}

func newRecordCanvas() *recordCanvas {
	return &recordCanvas{cells: map[[2]int]tcell.Style{}, runes: map[[2]int]rune{}}
}

func (c *recordCanvas) Clear() {
	c.cells = map[[2]int]tcell.Style{}
	c.runes = map[[2]int]rune{}
}

func (c *recordCanvas) SetContent(x, y int, r rune, _ []rune, style tcell.Style) {
	c.cells[[2]int{x, y}] = style
	c.runes[[2]int{x, y}] = r
}

func (c *recordCanvas) Show() { c.shown++ }

func TestView_DrawsAgentsAsSquares(t *testing.T) {
	c := newRecordCanvas()
	v := &view{}
	v.applyBootstrap(observerproto.BootstrapResponse{
		WorldID:     "arena_1",
		ArenaParams: observerproto.ArenaParams{Height: 4, Width: 4},
		Agents: []observerproto.AgentState{
			{ID: "A1", Pos: [2]int{0, 0}},
			{ID: "A2", Pos: [2]int{2, 3}},
		},
	})
	v.draw(c)

	for _, xy := range [][2]int{{0, 0}, {1, 0}, {3 * cellCols, 2}, {3*cellCols + 1, 2}} {
		if c.cells[xy] != styleAgent {
			t.Fatalf("cell %v not drawn as agent", xy)
		}
	}
	if c.cells[[2]int{1 * cellCols, 1}] != styleBackground {
		t.Fatalf("empty cell not drawn as background")
	}
	if c.shown != 1 {
		t.Fatalf("Show called %d times", c.shown)
	}

	v.applyTick(observerproto.TickMsg{
		Tick:   5,
		Agents: []observerproto.AgentState{{ID: "A1", Pos: [2]int{0, 1}}},
		Outcomes: []observerproto.OutcomeState{
			{AgentID: "A1", To: [2]int{0, 1}, Result: "APPLIED"},
		},
	})
	v.draw(c)
	if c.cells[[2]int{0, 0}] != styleBackground || c.cells[[2]int{cellCols, 0}] != styleAgent {
		t.Fatalf("agent did not move on redraw")
	}

	v.color = true
	if v.agentStyle(1) == v.agentStyle(0) {
		t.Fatalf("palette should differ per agent")
	}
	if v.agentStyle(len(palette)) != v.agentStyle(0) {
		t.Fatalf("palette should cycle")
	}
}
