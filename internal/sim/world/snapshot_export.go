package world

import (
	"gridwalk.ai/internal/persistence/snapshot"
	simenc "gridwalk.ai/internal/sim/encoding"
)

// ExportSnapshot captures the state after nowTick has been processed.
func (w *World) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	agents := make([]snapshot.AgentV1, 0, len(w.order))
	for _, id := range w.order {
		a := w.agents[id]
		agents = append(agents, snapshot.AgentV1{ID: a.ID, Name: a.Name, Pos: [2]int{a.Pos.X, a.Pos.Y}})
	}
	st := w.arb.Stats()
	return snapshot.SnapshotV1{
		Header:             snapshot.Header{Version: snapshot.Version, WorldID: w.cfg.ID, Tick: nowTick},
		Seed:               w.cfg.Seed,
		TickDurationMs:     w.cfg.TickDurationMs,
		Height:             w.cfg.Height,
		Width:              w.cfg.Width,
		SnapshotEveryTicks: w.cfg.SnapshotEveryTicks,
		Agents:             agents,
		Occupancy:          simenc.EncodeRLE(w.grid.Flags()),
		Stats: snapshot.StatsV1{
			Intents:        st.Intents,
			Applied:        st.Applied,
			Noops:          st.Noops,
			OutOfBounds:    st.OutOfBounds,
			TargetOccupied: st.TargetOccupied,
			SourceEmpty:    st.SourceEmpty,
			Repairs:        w.repairs,
		},
		Counters: snapshot.CountersV1{NextAgent: w.nextAgentNum.Load()},
	}
}
