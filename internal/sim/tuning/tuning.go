package tuning

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	WorldID        string `yaml:"world_id"`
	Seed           int64  `yaml:"seed"`
	Arena          Arena  `yaml:"arena"`
	TickDurationMs int    `yaml:"tick_duration_ms"`

	AgentCount int         `yaml:"agent_count"`
	Placements []Placement `yaml:"placements"`

	SnapshotEveryTicks int  `yaml:"snapshot_every_ticks"`
	Diagnostics        bool `yaml:"diagnostics"`
}

type Arena struct {
	Height int `yaml:"height"`
	Width  int `yaml:"width"`
}

type Placement struct {
	Name string `yaml:"name,omitempty"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion: "1.0",
		WorldID:         "arena_1",
		Seed:            1337,
		Arena:           Arena{Height: 32, Width: 32},
		TickDurationMs:  500,
		AgentCount:      4,
		Placements: []Placement{
			{X: 0, Y: 0},
			{X: 5, Y: 5},
			{X: 10, Y: 10},
			{X: 15, Y: 15},
		},
		SnapshotEveryTicks: 600,
		Diagnostics:        true,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	// Derived from placements unless the file sets it.
	t.AgentCount = 0
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Normalize fills zero values and derives AgentCount from Placements when unset.
func (t *Tuning) Normalize() {
	t.WorldID = strings.TrimSpace(t.WorldID)
	if t.WorldID == "" {
		t.WorldID = "arena_1"
	}
	if t.Arena.Height <= 0 {
		t.Arena.Height = 32
	}
	if t.Arena.Width <= 0 {
		t.Arena.Width = 32
	}
	if t.TickDurationMs <= 0 {
		t.TickDurationMs = 500
	}
	if t.AgentCount <= 0 {
		t.AgentCount = len(t.Placements)
	}
	if t.SnapshotEveryTicks < 0 {
		t.SnapshotEveryTicks = 0
	}
	for i := range t.Placements {
		if strings.TrimSpace(t.Placements[i].Name) == "" {
			t.Placements[i].Name = fmt.Sprintf("agent-%d", i+1)
		}
	}
}

// Validate rejects configurations the world cannot start from. Overlapping
// placements are caught here and again by the world when it claims cells.
func (t Tuning) Validate() error {
	if t.AgentCount != len(t.Placements) {
		return fmt.Errorf("agent_count=%d but %d placements given", t.AgentCount, len(t.Placements))
	}
	if t.AgentCount > t.Arena.Height*t.Arena.Width {
		return fmt.Errorf("agent_count=%d exceeds arena capacity %d", t.AgentCount, t.Arena.Height*t.Arena.Width)
	}
	seen := make(map[[2]int]int, len(t.Placements))
	for i, p := range t.Placements {
		if p.X < 0 || p.X >= t.Arena.Height || p.Y < 0 || p.Y >= t.Arena.Width {
			return fmt.Errorf("placement %d (%d,%d) outside %dx%d arena", i, p.X, p.Y, t.Arena.Height, t.Arena.Width)
		}
		k := [2]int{p.X, p.Y}
		if j, ok := seen[k]; ok {
			return fmt.Errorf("placements %d and %d overlap at (%d,%d)", j, i, p.X, p.Y)
		}
		seen[k] = i
	}
	return nil
}
