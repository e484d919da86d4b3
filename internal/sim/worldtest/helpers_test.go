package worldtest

import (
	"gridwalk.ai/internal/sim/grid"
	world "gridwalk.ai/internal/sim/world"
)

func arenaConfig(h, w int, cells ...grid.Cell) world.WorldConfig {
	cfg := world.WorldConfig{ID: "test", Seed: 42, Height: h, Width: w, TickDurationMs: 50}
	for _, c := range cells {
		cfg.Placements = append(cfg.Placements, world.Placement{Pos: c})
	}
	return cfg
}

func defaultConfig() world.WorldConfig {
	return arenaConfig(32, 32,
		grid.Cell{X: 0, Y: 0},
		grid.Cell{X: 5, Y: 5},
		grid.Cell{X: 10, Y: 10},
		grid.Cell{X: 15, Y: 15},
	)
}
