package main

import (
	"fmt"
	"net/http"

	"gridwalk.ai/internal/sim/world"
)

func metricsHandler(w *world.World, idx runtimeIndex) http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")

		worldID := w.ID()
		m := w.Metrics()
		tick := w.CurrentTick()
		if m.Tick != 0 {
			tick = m.Tick
		}

		// Minimal Prometheus exposition format.
		fmt.Fprintf(rw, "# HELP gridwalk_world_tick Current world tick.\n")
		fmt.Fprintf(rw, "# TYPE gridwalk_world_tick gauge\n")
		fmt.Fprintf(rw, "gridwalk_world_tick{world=%q} %d\n", worldID, tick)

		fmt.Fprintf(rw, "# HELP gridwalk_world_agents Current number of agents.\n")
		fmt.Fprintf(rw, "# TYPE gridwalk_world_agents gauge\n")
		fmt.Fprintf(rw, "gridwalk_world_agents{world=%q} %d\n", worldID, m.Agents)

		fmt.Fprintf(rw, "# HELP gridwalk_world_taken_cells Cells currently marked Taken.\n")
		fmt.Fprintf(rw, "# TYPE gridwalk_world_taken_cells gauge\n")
		fmt.Fprintf(rw, "gridwalk_world_taken_cells{world=%q} %d\n", worldID, m.Taken)

		fmt.Fprintf(rw, "# HELP gridwalk_world_observers Connected observer sessions.\n")
		fmt.Fprintf(rw, "# TYPE gridwalk_world_observers gauge\n")
		fmt.Fprintf(rw, "gridwalk_world_observers{world=%q} %d\n", worldID, m.Observers)

		fmt.Fprintf(rw, "# HELP gridwalk_move_outcomes_total Arbitrated move intents by result.\n")
		fmt.Fprintf(rw, "# TYPE gridwalk_move_outcomes_total counter\n")
		fmt.Fprintf(rw, "gridwalk_move_outcomes_total{world=%q,result=%q} %d\n", worldID, "applied", m.Stats.Applied)
		fmt.Fprintf(rw, "gridwalk_move_outcomes_total{world=%q,result=%q} %d\n", worldID, "noop", m.Stats.Noops)
		fmt.Fprintf(rw, "gridwalk_move_outcomes_total{world=%q,result=%q} %d\n", worldID, "out_of_bounds", m.Stats.OutOfBounds)
		fmt.Fprintf(rw, "gridwalk_move_outcomes_total{world=%q,result=%q} %d\n", worldID, "target_occupied", m.Stats.TargetOccupied)
		fmt.Fprintf(rw, "gridwalk_move_outcomes_total{world=%q,result=%q} %d\n", worldID, "source_already_empty", m.Stats.SourceEmpty)

		fmt.Fprintf(rw, "# HELP gridwalk_grid_repairs_total Occupancy rebuilds after a desync.\n")
		fmt.Fprintf(rw, "# TYPE gridwalk_grid_repairs_total counter\n")
		fmt.Fprintf(rw, "gridwalk_grid_repairs_total{world=%q} %d\n", worldID, m.Repairs)

		fmt.Fprintf(rw, "# HELP gridwalk_world_queue_depth Channel backlog depth.\n")
		fmt.Fprintf(rw, "# TYPE gridwalk_world_queue_depth gauge\n")
		fmt.Fprintf(rw, "gridwalk_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "observer_join", m.QueueDepths.ObserverJoin)
		fmt.Fprintf(rw, "gridwalk_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "observer_sub", m.QueueDepths.ObserverSub)
		fmt.Fprintf(rw, "gridwalk_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "observer_leave", m.QueueDepths.ObserverLeave)
		fmt.Fprintf(rw, "gridwalk_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "bootstrap", m.QueueDepths.Bootstrap)

		fmt.Fprintf(rw, "# HELP gridwalk_world_step_ms Last tick step duration in milliseconds.\n")
		fmt.Fprintf(rw, "# TYPE gridwalk_world_step_ms gauge\n")
		fmt.Fprintf(rw, "gridwalk_world_step_ms{world=%q} %.3f\n", worldID, m.StepMS)

		if idx == nil {
			return
		}
		s := idx.Stats()
		fmt.Fprintf(rw, "# HELP gridwalk_index_queue_depth Index writer queue depth.\n")
		fmt.Fprintf(rw, "# TYPE gridwalk_index_queue_depth gauge\n")
		fmt.Fprintf(rw, "gridwalk_index_queue_depth{world=%q} %d\n", worldID, s.QueueDepth)
		fmt.Fprintf(rw, "# HELP gridwalk_index_dropped_total Index writes dropped under backpressure.\n")
		fmt.Fprintf(rw, "# TYPE gridwalk_index_dropped_total counter\n")
		fmt.Fprintf(rw, "gridwalk_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "tick", s.DropTickTotal)
		fmt.Fprintf(rw, "gridwalk_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "diag", s.DropDiagTotal)
		fmt.Fprintf(rw, "gridwalk_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "snapshot", s.DropSnapshotTotal)
	}
}
