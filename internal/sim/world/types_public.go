package world

import (
	"gridwalk.ai/internal/observerproto"
	"gridwalk.ai/internal/sim/arbiter"
	"gridwalk.ai/internal/sim/grid"
)

type Agent struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Pos  grid.Cell `json:"pos"`
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type DiagLogger interface {
	WriteDiag(entry DiagEntry) error
}

// TickLogEntry is everything needed to replay one tick: the sanitized intents
// in arbitration order, their outcomes and the resulting digest.
type TickLogEntry struct {
	Tick     uint64            `json:"tick"`
	Intents  []arbiter.Intent  `json:"intents"`
	Outcomes []arbiter.Outcome `json:"outcomes"`
	Digest   string            `json:"digest"`
	Repaired bool              `json:"repaired,omitempty"`
}

type DiagEntry struct {
	Tick    uint64       `json:"tick"`
	AgentID string       `json:"agent_id,omitempty"`
	Kind    arbiter.Kind `json:"kind"`
	Code    string       `json:"code,omitempty"`
	From    grid.Cell    `json:"from"`
	To      grid.Cell    `json:"to"`
	Message string       `json:"message"`
}

// ObserverJoinRequest registers a read-only observer session. TickOut
// receives one serialized TICK frame per tick and is closed on leave.
type ObserverJoinRequest struct {
	SessionID string
	TickOut   chan []byte

	Outcomes  bool
	Occupancy bool
}

type ObserverSubscribeRequest struct {
	SessionID string

	Outcomes  bool
	Occupancy bool
}

type bootstrapReq struct {
	resp chan observerproto.BootstrapResponse
}
