package world

import (
	"fmt"
	"sync/atomic"

	"gridwalk.ai/internal/persistence/snapshot"
	"gridwalk.ai/internal/sim/arbiter"
	"gridwalk.ai/internal/sim/grid"
)

// World is a single-threaded authoritative simulation.
// All state must be accessed only from the world loop goroutine.
type World struct {
	cfg WorldConfig

	tick atomic.Uint64

	grid *grid.Grid
	arb  *arbiter.Arbiter

	agents map[string]*Agent
	order  []string

	nextAgentNum atomic.Uint64
	repairs      uint64

	sourceFactory SourceFactory

	// Optional sinks (may be nil). Implemented in internal/persistence/*.
	diag       arbiter.Diagnostics
	tickLogger TickLogger
	diagLogger DiagLogger

	// Optional snapshot sink (may be nil). Snapshot writing should be off-thread.
	snapshotSink chan<- snapshot.SnapshotV1

	observers     map[string]*observerClient
	observerJoin  chan ObserverJoinRequest
	observerSub   chan ObserverSubscribeRequest
	observerLeave chan string
	bootstrap     chan bootstrapReq

	stop chan struct{}

	metrics atomic.Value // WorldMetrics
}

// New builds a world with every placement claimed on an empty grid. Placements
// outside the arena or on an already claimed cell are configuration errors.
func New(cfg WorldConfig) (*World, error) {
	cfg.applyDefaults()
	g := grid.New(cfg.Height, cfg.Width)
	if cfg.Height*cfg.Width < len(cfg.Placements) {
		return nil, fmt.Errorf("%d agents exceed arena capacity %d", len(cfg.Placements), cfg.Height*cfg.Width)
	}

	w := &World{
		cfg:           cfg,
		grid:          g,
		arb:           arbiter.New(nil),
		agents:        map[string]*Agent{},
		sourceFactory: TickSource,
		observers:     map[string]*observerClient{},
		observerJoin:  make(chan ObserverJoinRequest, 16),
		observerSub:   make(chan ObserverSubscribeRequest, 64),
		observerLeave: make(chan string, 16),
		bootstrap:     make(chan bootstrapReq, 16),
		stop:          make(chan struct{}),
	}
	for i, p := range cfg.Placements {
		if !g.InBounds(p.Pos) {
			return nil, fmt.Errorf("placement %d (%d,%d) outside %dx%d arena", i, p.Pos.X, p.Pos.Y, cfg.Height, cfg.Width)
		}
		if g.Occupy(p.Pos) != grid.Success {
			return nil, fmt.Errorf("placement %d (%d,%d) overlaps another agent", i, p.Pos.X, p.Pos.Y)
		}
		w.addAgent(p.Name, p.Pos)
	}
	w.metrics.Store(WorldMetrics{Agents: len(w.order), Taken: g.TakenCount()})
	return w, nil
}

func (w *World) addAgent(name string, pos grid.Cell) *Agent {
	id := fmt.Sprintf("A%d", w.nextAgentNum.Add(1))
	a := &Agent{ID: id, Name: name, Pos: pos}
	w.agents[id] = a
	w.order = append(w.order, id)
	return a
}

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}
