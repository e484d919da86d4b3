package worldtest

import (
	"testing"

	"gridwalk.ai/internal/persistence/snapshot"
	"gridwalk.ai/internal/sim/arbiter"
	"gridwalk.ai/internal/sim/grid"
	world "gridwalk.ai/internal/sim/world"
)

// Harness is a small black-box test helper for driving a world via exported APIs:
// - Step()/StepFor() advance via StepOnce()
// - Move() feeds explicit intents via StepWith()
// - Entries() keeps every tick log entry, as the server's tick logger would
// - AssertConsistent() checks occupancy against agent positions
//
// It intentionally avoids touching world internals so tests can live outside the world package.
type Harness struct {
	T *testing.T
	W *world.World

	entries []world.TickLogEntry
}

func NewHarness(t *testing.T, cfg world.WorldConfig) *Harness {
	t.Helper()
	w, err := world.New(cfg)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return NewHarnessWithWorld(t, w)
}

// NewHarnessWithWorld is like NewHarness, but uses an already-constructed world instance.
// This is useful for snapshot round-trip tests where the snapshot is imported first.
func NewHarnessWithWorld(t *testing.T, w *world.World) *Harness {
	t.Helper()
	if w == nil {
		t.Fatalf("NewHarnessWithWorld: nil world")
	}
	h := &Harness{T: t, W: w}
	w.SetTickLogger(h)
	return h
}

// WriteTick implements world.TickLogger.
func (h *Harness) WriteTick(e world.TickLogEntry) error {
	h.entries = append(h.entries, e)
	return nil
}

func (h *Harness) Entries() []world.TickLogEntry { return h.entries }

func (h *Harness) LastEntry() world.TickLogEntry {
	h.T.Helper()
	if len(h.entries) == 0 {
		h.T.Fatalf("no ticks recorded")
	}
	return h.entries[len(h.entries)-1]
}

func (h *Harness) Step() (uint64, string) {
	h.T.Helper()
	tick, digest := h.W.StepOnce()
	h.AssertConsistent()
	return tick, digest
}

func (h *Harness) StepFor(n int) {
	h.T.Helper()
	for i := 0; i < n; i++ {
		h.Step()
	}
}

// Move steps one tick with explicit targets; From is filled in by the world.
func (h *Harness) Move(moves ...Move) world.TickLogEntry {
	h.T.Helper()
	intents := make([]arbiter.Intent, 0, len(moves))
	for _, m := range moves {
		intents = append(intents, arbiter.Intent{AgentID: m.AgentID, To: m.To})
	}
	return h.W.StepWith(intents)
}

type Move struct {
	AgentID string
	To      grid.Cell
}

func (h *Harness) Pos(agentID string) grid.Cell {
	h.T.Helper()
	for _, a := range h.W.Agents() {
		if a.ID == agentID {
			return a.Pos
		}
	}
	h.T.Fatalf("unknown agent %s", agentID)
	return grid.Cell{}
}

// AssertConsistent checks uniqueness and conservation: every agent stands on
// a Taken cell, no two agents share one, and nothing else is Taken.
func (h *Harness) AssertConsistent() {
	h.T.Helper()
	agents := h.W.Agents()
	seen := make(map[grid.Cell]string, len(agents))
	for _, a := range agents {
		if other, ok := seen[a.Pos]; ok {
			h.T.Fatalf("agents %s and %s share (%d,%d)", other, a.ID, a.Pos.X, a.Pos.Y)
		}
		seen[a.Pos] = a.ID
		if !h.W.DebugIsTaken(a.Pos) {
			h.T.Fatalf("agent %s at (%d,%d) but cell is empty", a.ID, a.Pos.X, a.Pos.Y)
		}
	}
	if got := len(h.W.DebugOccupied()); got != len(agents) {
		h.T.Fatalf("taken cells=%d agents=%d", got, len(agents))
	}
}

func (h *Harness) ExportSnapshot() snapshot.SnapshotV1 {
	return h.W.ExportSnapshot(h.W.CurrentTick() - 1)
}
