package worldtest

import (
	"testing"

	"gridwalk.ai/internal/sim/arbiter"
	"gridwalk.ai/internal/sim/grid"
)

func TestScenario_FourByFourContestedMove(t *testing.T) {
	h := NewHarness(t, arenaConfig(4, 4, grid.Cell{X: 0, Y: 0}, grid.Cell{X: 0, Y: 1}))

	e := h.Move(
		Move{AgentID: "A1", To: grid.Cell{X: 0, Y: 1}},
		Move{AgentID: "A2", To: grid.Cell{X: 0, Y: 2}},
	)
	if e.Outcomes[0].Kind != arbiter.RejectedTargetOccupied || e.Outcomes[1].Kind != arbiter.Applied {
		t.Fatalf("outcomes: %+v", e.Outcomes)
	}
	if h.Pos("A1") != (grid.Cell{X: 0, Y: 0}) || h.Pos("A2") != (grid.Cell{X: 0, Y: 2}) {
		t.Fatalf("positions: A1=%+v A2=%+v", h.Pos("A1"), h.Pos("A2"))
	}
	occ := h.W.DebugOccupied()
	if len(occ) != 2 || occ[0] != (grid.Cell{X: 0, Y: 0}) || occ[1] != (grid.Cell{X: 0, Y: 2}) {
		t.Fatalf("occupied: %+v", occ)
	}
	h.AssertConsistent()
}

func TestScenario_OneByOneArena(t *testing.T) {
	h := NewHarness(t, arenaConfig(1, 1, grid.Cell{X: 0, Y: 0}))

	e := h.Move(Move{AgentID: "A1", To: grid.Cell{X: 0, Y: 0}})
	if e.Outcomes[0].Kind != arbiter.Applied || e.Outcomes[0].Pos != (grid.Cell{X: 0, Y: 0}) {
		t.Fatalf("null move: %+v", e.Outcomes[0])
	}
	for _, to := range []grid.Cell{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}} {
		e := h.Move(Move{AgentID: "A1", To: to})
		if e.Outcomes[0].Kind != arbiter.RejectedOutOfBounds {
			t.Fatalf("move to %+v: %+v", to, e.Outcomes[0])
		}
	}
	// Random walk can never leave the only cell.
	h.StepFor(50)
	if h.Pos("A1") != (grid.Cell{X: 0, Y: 0}) {
		t.Fatalf("agent left the arena: %+v", h.Pos("A1"))
	}
}

func TestRandomWalk_KeepsInvariants(t *testing.T) {
	// Crowded arena so conflicts actually happen.
	h := NewHarness(t, arenaConfig(3, 3,
		grid.Cell{X: 0, Y: 0}, grid.Cell{X: 0, Y: 1}, grid.Cell{X: 1, Y: 0},
		grid.Cell{X: 1, Y: 1}, grid.Cell{X: 2, Y: 2},
	))
	h.StepFor(300)

	st := h.W.Stats()
	if st.Intents != 300*5 {
		t.Fatalf("intents=%d", st.Intents)
	}
	if st.TargetOccupied == 0 || st.OutOfBounds == 0 || st.Noops == 0 || st.Applied == 0 {
		t.Fatalf("expected every outcome kind over 300 ticks: %+v", st)
	}
	if st.SourceEmpty != 0 || h.W.Repairs() != 0 {
		t.Fatalf("unexpected desync: %+v repairs=%d", st, h.W.Repairs())
	}
	for _, e := range h.Entries() {
		for i, o := range e.Outcomes {
			in := e.Intents[i]
			if !o.Moved() && o.Pos != in.From {
				t.Fatalf("tick %d: rejected outcome moved agent: %+v", e.Tick, o)
			}
		}
	}
}
