package arbiter

import (
	"fmt"

	"gridwalk.ai/internal/protocol"
	"gridwalk.ai/internal/sim/grid"
)

// Intent is one agent's proposed relocation for the current tick.
// From == To means the agent stays put.
type Intent struct {
	AgentID string    `json:"agent_id"`
	From    grid.Cell `json:"from"`
	To      grid.Cell `json:"to"`
}

func (in Intent) IsNoop() bool { return in.From == in.To }

type Kind int

const (
	Applied Kind = iota
	RejectedOutOfBounds
	RejectedTargetOccupied
	// RejectedSourceAlreadyEmpty means the target was claimed but the source
	// cell was already Empty: the driver's positions and the grid disagree.
	RejectedSourceAlreadyEmpty
)

func (k Kind) String() string {
	switch k {
	case Applied:
		return "APPLIED"
	case RejectedOutOfBounds:
		return "OUT_OF_BOUNDS"
	case RejectedTargetOccupied:
		return "TARGET_OCCUPIED"
	case RejectedSourceAlreadyEmpty:
		return "SOURCE_ALREADY_EMPTY"
	default:
		return "UNKNOWN"
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	for _, c := range []Kind{Applied, RejectedOutOfBounds, RejectedTargetOccupied, RejectedSourceAlreadyEmpty} {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown outcome kind %q", b)
}

// Code maps the kind onto the protocol error codes. Applied has no code.
func (k Kind) Code() string {
	switch k {
	case RejectedOutOfBounds:
		return protocol.ErrInvalidTarget
	case RejectedTargetOccupied:
		return protocol.ErrConflict
	case RejectedSourceAlreadyEmpty:
		return protocol.ErrInternal
	default:
		return ""
	}
}

// Outcome is the arbitration result for one Intent. Pos is the position the
// driver must store for the agent afterwards.
type Outcome struct {
	AgentID string    `json:"agent_id"`
	Kind    Kind      `json:"kind"`
	Pos     grid.Cell `json:"pos"`
}

// Moved reports whether the target cell was claimed for the agent.
func (o Outcome) Moved() bool {
	return o.Kind == Applied || o.Kind == RejectedSourceAlreadyEmpty
}

// Diagnostics receives one human-readable line per rejected or anomalous
// outcome. *log.Logger satisfies it.
type Diagnostics interface {
	Printf(format string, args ...any)
}

type Stats struct {
	Intents        uint64 `json:"intents"`
	Applied        uint64 `json:"applied"`
	Noops          uint64 `json:"noops"`
	OutOfBounds    uint64 `json:"out_of_bounds"`
	TargetOccupied uint64 `json:"target_occupied"`
	SourceEmpty    uint64 `json:"source_empty"`
}

func (s *Stats) Add(in Intent, o Outcome) {
	s.Intents++
	switch o.Kind {
	case Applied:
		if in.IsNoop() {
			s.Noops++
		} else {
			s.Applied++
		}
	case RejectedOutOfBounds:
		s.OutOfBounds++
	case RejectedTargetOccupied:
		s.TargetOccupied++
	case RejectedSourceAlreadyEmpty:
		s.SourceEmpty++
	}
}

// Resolve arbitrates intents against g strictly in slice order and returns one
// Outcome per intent, in the same order. Each intent's grid mutation completes
// before the next one starts, so an earlier agent wins a contested cell.
func Resolve(g *grid.Grid, intents []Intent, diag Diagnostics) []Outcome {
	out := make([]Outcome, 0, len(intents))
	for _, in := range intents {
		out = append(out, resolveOne(g, in, diag))
	}
	return out
}

func resolveOne(g *grid.Grid, in Intent, diag Diagnostics) Outcome {
	if in.IsNoop() {
		return Outcome{AgentID: in.AgentID, Kind: Applied, Pos: in.From}
	}
	if !g.InBounds(in.To) {
		report(diag, "move action denied: agent=%s to=(%d,%d) out of bounds", in.AgentID, in.To.X, in.To.Y)
		return Outcome{AgentID: in.AgentID, Kind: RejectedOutOfBounds, Pos: in.From}
	}

	// Claim before release: a cell freed by this move can't be double-claimed.
	if g.Occupy(in.To) == grid.Conflict {
		report(diag, "move action denied: agent=%s to=(%d,%d) occupied", in.AgentID, in.To.X, in.To.Y)
		return Outcome{AgentID: in.AgentID, Kind: RejectedTargetOccupied, Pos: in.From}
	}
	if g.Vacate(in.From) == grid.AlreadyEmpty {
		report(diag, "invariant violation: agent=%s source (%d,%d) already empty; keeping claim on (%d,%d)",
			in.AgentID, in.From.X, in.From.Y, in.To.X, in.To.Y)
		return Outcome{AgentID: in.AgentID, Kind: RejectedSourceAlreadyEmpty, Pos: in.To}
	}
	return Outcome{AgentID: in.AgentID, Kind: Applied, Pos: in.To}
}

func report(diag Diagnostics, format string, args ...any) {
	if diag == nil {
		return
	}
	diag.Printf(format, args...)
}

// Arbiter wraps Resolve with a fixed diagnostics sink and running counters.
type Arbiter struct {
	diag  Diagnostics
	stats Stats
}

func New(diag Diagnostics) *Arbiter {
	return &Arbiter{diag: diag}
}

func (a *Arbiter) Resolve(g *grid.Grid, intents []Intent) []Outcome {
	out := Resolve(g, intents, a.diag)
	for i := range out {
		a.stats.Add(intents[i], out[i])
	}
	return out
}

func (a *Arbiter) Stats() Stats { return a.stats }

func (a *Arbiter) RestoreStats(s Stats) { a.stats = s }

// SetDiagnostics replaces the sink. A nil value discards.
func (a *Arbiter) SetDiagnostics(diag Diagnostics) { a.diag = diag }
