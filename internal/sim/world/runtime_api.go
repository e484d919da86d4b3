package world

import (
	"context"
	"fmt"

	"gridwalk.ai/internal/observerproto"
	"gridwalk.ai/internal/persistence/snapshot"
	"gridwalk.ai/internal/sim/arbiter"
	"gridwalk.ai/internal/sim/grid"
)

func (w *World) SetTickLogger(l TickLogger) { w.tickLogger = l }

func (w *World) SetDiagLogger(l DiagLogger) { w.diagLogger = l }

// SetDiagnostics routes arbiter rejections and repair lines to d. Pass a nil
// interface, not a typed nil pointer, to silence them.
func (w *World) SetDiagnostics(d arbiter.Diagnostics) {
	w.diag = d
	w.arb.SetDiagnostics(d)
}

func (w *World) SetSnapshotSink(ch chan<- snapshot.SnapshotV1) { w.snapshotSink = ch }

// SetSourceFactory replaces the per-tick random source. Tests use it to force directions.
func (w *World) SetSourceFactory(f SourceFactory) {
	if f == nil {
		f = TickSource
	}
	w.sourceFactory = f
}

func (w *World) ObserverJoin() chan<- ObserverJoinRequest           { return w.observerJoin }
func (w *World) ObserverSubscribe() chan<- ObserverSubscribeRequest { return w.observerSub }
func (w *World) ObserverLeave() chan<- string                       { return w.observerLeave }

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) Config() WorldConfig {
	if w == nil {
		return WorldConfig{}
	}
	cfg := w.cfg
	cfg.Placements = append([]Placement(nil), w.cfg.Placements...)
	return cfg
}

// RequestBootstrap asks the world loop for a consistent view of the arena.
// It blocks until the loop answers or ctx is done.
func (w *World) RequestBootstrap(ctx context.Context) (observerproto.BootstrapResponse, error) {
	req := bootstrapReq{resp: make(chan observerproto.BootstrapResponse, 1)}
	select {
	case w.bootstrap <- req:
	case <-ctx.Done():
		return observerproto.BootstrapResponse{}, ctx.Err()
	}
	select {
	case resp := <-req.resp:
		return resp, nil
	case <-ctx.Done():
		return observerproto.BootstrapResponse{}, ctx.Err()
	}
}

func (w *World) buildBootstrap() observerproto.BootstrapResponse {
	return observerproto.BootstrapResponse{
		ProtocolVersion: observerproto.Version,
		WorldID:         w.cfg.ID,
		Tick:            w.tick.Load(),
		ArenaParams: observerproto.ArenaParams{
			Height:         w.cfg.Height,
			Width:          w.cfg.Width,
			TickDurationMs: w.cfg.TickDurationMs,
			Seed:           w.cfg.Seed,
		},
		Agents:    w.agentStates(),
		Occupancy: w.occupancy(),
	}
}

// ---- Debug/Test Helpers ----
//
// These helpers let black-box tests in sibling packages (e.g. internal/sim/worldtest)
// set up and inspect state without reaching into world internals.
//
// They are NOT safe to call concurrently with Run(). Use them only in tests that drive
// the world via StepOnce()/StepWith(), from a single goroutine.

// Agents returns a copy of every agent in creation order.
func (w *World) Agents() []Agent {
	out := make([]Agent, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, *w.agents[id])
	}
	return out
}

func (w *World) DebugOccupied() []grid.Cell { return w.grid.Cells() }

func (w *World) DebugIsTaken(c grid.Cell) bool { return w.grid.IsTaken(c) }

// DebugVacate clears a cell without touching agent positions, leaving the
// grid out of sync with the agents on purpose.
func (w *World) DebugVacate(c grid.Cell) error {
	if !w.grid.InBounds(c) {
		return fmt.Errorf("cell (%d,%d) out of bounds", c.X, c.Y)
	}
	if w.grid.Vacate(c) != grid.Success {
		return fmt.Errorf("cell (%d,%d) already empty", c.X, c.Y)
	}
	return nil
}

func (w *World) DebugStateDigest() string { return w.stateDigest(w.tick.Load()) }

func (w *World) Stats() arbiter.Stats { return w.arb.Stats() }

func (w *World) Repairs() uint64 { return w.repairs }
