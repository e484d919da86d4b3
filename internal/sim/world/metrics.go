package world

import "gridwalk.ai/internal/sim/arbiter"

// WorldMetrics is a thread-safe read-only view of key world runtime signals.
// It is updated from the world loop goroutine and read from HTTP handlers/tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Agents    int    `json:"agents"`
	Observers int    `json:"observers"`
	Taken     int    `json:"taken"`
	Repairs   uint64 `json:"repairs"`

	Stats arbiter.Stats `json:"stats"`

	QueueDepths QueueDepths `json:"queue_depths"`

	StepMS float64 `json:"step_ms"`
}

type QueueDepths struct {
	ObserverJoin  int `json:"observer_join"`
	ObserverSub   int `json:"observer_sub"`
	ObserverLeave int `json:"observer_leave"`
	Bootstrap     int `json:"bootstrap"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}
