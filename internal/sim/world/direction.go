package world

import (
	"math/rand"

	"gridwalk.ai/internal/sim/arbiter"
	"gridwalk.ai/internal/sim/grid"
)

// Source is the injected random source. *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

// SourceFactory returns the random source used to draw directions for a tick.
type SourceFactory func(seed int64, tick uint64) Source

type Direction int

const (
	Stay Direction = iota
	PlusX
	MinusX
	PlusY
	MinusY
)

var directions = [...]Direction{Stay, PlusX, MinusX, PlusY, MinusY}

func (d Direction) String() string {
	switch d {
	case Stay:
		return "STAY"
	case PlusX:
		return "+X"
	case MinusX:
		return "-X"
	case PlusY:
		return "+Y"
	case MinusY:
		return "-Y"
	default:
		return "UNKNOWN"
	}
}

func (d Direction) Delta() grid.Cell {
	switch d {
	case PlusX:
		return grid.Cell{X: 1}
	case MinusX:
		return grid.Cell{X: -1}
	case PlusY:
		return grid.Cell{Y: 1}
	case MinusY:
		return grid.Cell{Y: -1}
	default:
		return grid.Cell{}
	}
}

// RandomDirection draws uniformly over the five directions.
func RandomDirection(src Source) Direction {
	return directions[src.Intn(len(directions))]
}

// TickSource seeds a fresh generator from (seed, tick), so a world resumed
// from a snapshot draws the same directions as one that never stopped.
func TickSource(seed int64, tick uint64) Source {
	return rand.New(rand.NewSource(seed ^ int64(tick*0x9E3779B97F4A7C15)))
}

// NextIntents draws one intent per agent in creation order. Targets are not
// bounds-checked here; the arbiter rejects them.
func (w *World) NextIntents(tick uint64) []arbiter.Intent {
	src := w.sourceFactory(w.cfg.Seed, tick)
	out := make([]arbiter.Intent, 0, len(w.order))
	for _, id := range w.order {
		a := w.agents[id]
		d := RandomDirection(src)
		out = append(out, arbiter.Intent{AgentID: id, From: a.Pos, To: a.Pos.Add(d.Delta())})
	}
	return out
}
