package world

import (
	"fmt"

	"gridwalk.ai/internal/sim/grid"
	"gridwalk.ai/internal/sim/tuning"
)

type WorldConfig struct {
	ID             string
	Seed           int64
	Height         int
	Width          int
	TickDurationMs int

	// Agents are created in this order; arbitration order follows it.
	Placements []Placement

	SnapshotEveryTicks int
}

type Placement struct {
	Name string
	Pos  grid.Cell
}

func (c *WorldConfig) applyDefaults() {
	if c.ID == "" {
		c.ID = "arena_1"
	}
	if c.Height <= 0 {
		c.Height = grid.DefaultHeight
	}
	if c.Width <= 0 {
		c.Width = grid.DefaultWidth
	}
	if c.TickDurationMs <= 0 {
		c.TickDurationMs = 500
	}
	if c.SnapshotEveryTicks < 0 {
		c.SnapshotEveryTicks = 0
	}
	for i := range c.Placements {
		if c.Placements[i].Name == "" {
			c.Placements[i].Name = fmt.Sprintf("agent-%d", i+1)
		}
	}
}

// ConfigFromTuning maps a loaded tuning file onto a world config.
func ConfigFromTuning(t tuning.Tuning) WorldConfig {
	cfg := WorldConfig{
		ID:                 t.WorldID,
		Seed:               t.Seed,
		Height:             t.Arena.Height,
		Width:              t.Arena.Width,
		TickDurationMs:     t.TickDurationMs,
		SnapshotEveryTicks: t.SnapshotEveryTicks,
		Placements:         make([]Placement, 0, len(t.Placements)),
	}
	for _, p := range t.Placements {
		cfg.Placements = append(cfg.Placements, Placement{Name: p.Name, Pos: grid.Cell{X: p.X, Y: p.Y}})
	}
	return cfg
}
