package world

import (
	"fmt"

	"gridwalk.ai/internal/persistence/snapshot"
	"gridwalk.ai/internal/sim/arbiter"
	simenc "gridwalk.ai/internal/sim/encoding"
	"gridwalk.ai/internal/sim/grid"
)

// ImportSnapshot replaces the current in-memory world state with the snapshot.
// It sets the world's tick to snapshotTick+1 (the next tick to simulate).
//
// This must be called only when the world is stopped or from the world loop goroutine.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if s.Header.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version: %d", s.Header.Version)
	}
	if w.cfg.Seed != s.Seed {
		return fmt.Errorf("snapshot seed mismatch: cfg=%d snap=%d", w.cfg.Seed, s.Seed)
	}
	if w.cfg.Height != s.Height || w.cfg.Width != s.Width {
		return fmt.Errorf("snapshot arena mismatch: cfg=%dx%d snap=%dx%d", w.cfg.Height, w.cfg.Width, s.Height, s.Width)
	}

	g := grid.New(s.Height, s.Width)
	agents := make(map[string]*Agent, len(s.Agents))
	order := make([]string, 0, len(s.Agents))
	for _, a := range s.Agents {
		pos := grid.Cell{X: a.Pos[0], Y: a.Pos[1]}
		if a.ID == "" || agents[a.ID] != nil {
			return fmt.Errorf("snapshot agent id %q empty or duplicated", a.ID)
		}
		if !g.InBounds(pos) {
			return fmt.Errorf("snapshot agent %s at (%d,%d) out of bounds", a.ID, pos.X, pos.Y)
		}
		if g.Occupy(pos) != grid.Success {
			return fmt.Errorf("snapshot agent %s overlaps another agent at (%d,%d)", a.ID, pos.X, pos.Y)
		}
		agents[a.ID] = &Agent{ID: a.ID, Name: a.Name, Pos: pos}
		order = append(order, a.ID)
	}

	flags, err := simenc.DecodeRLEN(s.Occupancy, s.Height*s.Width)
	if err != nil {
		return fmt.Errorf("snapshot occupancy: %w", err)
	}
	want := g.Flags()
	for i := range flags {
		if flags[i] != want[i] {
			return fmt.Errorf("snapshot occupancy disagrees with agent positions at index %d", i)
		}
	}

	// Operational parameters: snapshot is authoritative when present.
	if s.SnapshotEveryTicks > 0 {
		w.cfg.SnapshotEveryTicks = s.SnapshotEveryTicks
	}
	if s.TickDurationMs > 0 {
		w.cfg.TickDurationMs = s.TickDurationMs
	}

	w.grid = g
	w.agents = agents
	w.order = order
	w.repairs = s.Stats.Repairs
	w.arb.RestoreStats(arbiter.Stats{
		Intents:        s.Stats.Intents,
		Applied:        s.Stats.Applied,
		Noops:          s.Stats.Noops,
		OutOfBounds:    s.Stats.OutOfBounds,
		TargetOccupied: s.Stats.TargetOccupied,
		SourceEmpty:    s.Stats.SourceEmpty,
	})
	w.nextAgentNum.Store(s.Counters.NextAgent)
	w.tick.Store(s.Header.Tick + 1)
	w.metrics.Store(WorldMetrics{Tick: s.Header.Tick + 1, Agents: len(order), Taken: g.TakenCount(), Repairs: w.repairs, Stats: w.arb.Stats()})
	return nil
}
