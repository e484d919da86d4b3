package world

import (
	"fmt"
	"time"

	"gridwalk.ai/internal/sim/arbiter"
	"gridwalk.ai/internal/sim/grid"
)

func (w *World) stepInternal(intents []arbiter.Intent) TickLogEntry {
	stepStart := time.Now()
	nowTick := w.tick.Load()

	intents = w.sanitizeIntents(intents)
	outcomes := w.arb.Resolve(w.grid, intents)

	prev := make(map[string]grid.Cell, len(intents))
	desync := false
	for i, o := range outcomes {
		a := w.agents[o.AgentID]
		prev[a.ID] = a.Pos
		a.Pos = o.Pos
		if o.Kind == arbiter.RejectedSourceAlreadyEmpty {
			desync = true
		}
		if o.Kind != arbiter.Applied {
			w.writeDiag(nowTick, intents[i], o)
		}
	}
	// A grid that lost a cell under a stationary agent never yields
	// RejectedSourceAlreadyEmpty, so the taken count is checked as well.
	if !desync && w.grid.TakenCount() != len(w.order) {
		w.report("desync: tick=%d taken=%d agents=%d", nowTick, w.grid.TakenCount(), len(w.order))
		desync = true
	}
	if desync {
		w.repairGrid(nowTick, prev)
	}

	digest := w.stateDigest(nowTick)
	entry := TickLogEntry{Tick: nowTick, Intents: intents, Outcomes: outcomes, Digest: digest, Repaired: desync}
	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(entry)
	}

	w.stepObservers(nowTick, digest, intents, outcomes, desync)

	// Snapshot every N ticks, starting after tick 0.
	if w.snapshotSink != nil && nowTick != 0 && w.cfg.SnapshotEveryTicks > 0 {
		if nowTick%uint64(w.cfg.SnapshotEveryTicks) == 0 {
			snap := w.ExportSnapshot(nowTick)
			select {
			case w.snapshotSink <- snap:
			default:
				// Drop snapshot if sink is backed up.
			}
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)

	w.metrics.Store(WorldMetrics{
		Tick:      nextTick,
		Agents:    len(w.order),
		Observers: len(w.observers),
		Taken:     w.grid.TakenCount(),
		Repairs:   w.repairs,
		Stats:     w.arb.Stats(),
		QueueDepths: QueueDepths{
			ObserverJoin:  len(w.observerJoin),
			ObserverSub:   len(w.observerSub),
			ObserverLeave: len(w.observerLeave),
			Bootstrap:     len(w.bootstrap),
		},
		StepMS: stepMS,
	})
	return entry
}

// sanitizeIntents keeps the first intent per known agent and pins From to the
// stored position, so the arbiter only ever sees the driver's view.
func (w *World) sanitizeIntents(in []arbiter.Intent) []arbiter.Intent {
	out := make([]arbiter.Intent, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, it := range in {
		a := w.agents[it.AgentID]
		if a == nil || seen[it.AgentID] {
			continue
		}
		seen[it.AgentID] = true
		it.From = a.Pos
		out = append(out, it)
	}
	return out
}

func (w *World) writeDiag(tick uint64, in arbiter.Intent, o arbiter.Outcome) {
	if w.diagLogger == nil {
		return
	}
	var msg string
	switch o.Kind {
	case arbiter.RejectedOutOfBounds:
		msg = "move action denied: target out of bounds"
	case arbiter.RejectedTargetOccupied:
		msg = "move action denied: target occupied"
	case arbiter.RejectedSourceAlreadyEmpty:
		msg = "source cell already empty; grid out of sync with agent positions"
	}
	_ = w.diagLogger.WriteDiag(DiagEntry{
		Tick:    tick,
		AgentID: o.AgentID,
		Kind:    o.Kind,
		Code:    o.Kind.Code(),
		From:    in.From,
		To:      in.To,
		Message: msg,
	})
}

// repairGrid rebuilds occupancy from agent positions. An agent that ends up
// sharing a cell with an earlier agent goes back to where it started the
// tick when that cell is free.
func (w *World) repairGrid(tick uint64, prev map[string]grid.Cell) {
	w.repairs++
	cells := make([]grid.Cell, 0, len(w.order))
	for _, id := range w.order {
		cells = append(cells, w.agents[id].Pos)
	}
	w.grid.Rebuild(cells)

	seen := make(map[grid.Cell]bool, len(w.order))
	var collided []string
	for _, id := range w.order {
		p := w.agents[id].Pos
		if seen[p] {
			collided = append(collided, id)
			continue
		}
		seen[p] = true
	}

	unresolved := 0
	for _, id := range collided {
		a := w.agents[id]
		back, ok := prev[id]
		if ok && back != a.Pos && w.grid.InBounds(back) && w.grid.Occupy(back) == grid.Success {
			a.Pos = back
			continue
		}
		unresolved++
		w.report("repair: agent=%s shares (%d,%d) and cannot move back", id, a.Pos.X, a.Pos.Y)
	}
	w.report("repair: tick=%d rebuilt grid from %d agents, %d collisions, %d unresolved", tick, len(w.order), len(collided), unresolved)
	if w.diagLogger != nil {
		_ = w.diagLogger.WriteDiag(DiagEntry{
			Tick:    tick,
			Kind:    arbiter.RejectedSourceAlreadyEmpty,
			Code:    arbiter.RejectedSourceAlreadyEmpty.Code(),
			Message: fmt.Sprintf("repair: collisions=%d unresolved=%d", len(collided), unresolved),
		})
	}
}

func (w *World) report(format string, args ...any) {
	if w.diag == nil {
		return
	}
	w.diag.Printf(format, args...)
}
