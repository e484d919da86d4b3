package observerproto

import "gridwalk.ai/internal/protocol"

// Version is the observer protocol version.
const Version = protocol.Version

// Client -> Server. First message on the observer WS connection, and can be re-sent to update settings.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// Outcomes asks for per-intent outcomes in every TICK frame.
	Outcomes bool `json:"outcomes,omitempty"`
	// Occupancy asks for the RLE occupancy bitmap in every TICK frame.
	Occupancy bool `json:"occupancy,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string       `json:"protocol_version"`
	WorldID         string       `json:"world_id"`
	Tick            uint64       `json:"tick"`
	ArenaParams     ArenaParams  `json:"arena_params"`
	Agents          []AgentState `json:"agents"`
	Occupancy       Occupancy    `json:"occupancy"`
}

type ArenaParams struct {
	Height         int   `json:"height"`
	Width          int   `json:"width"`
	TickDurationMs int   `json:"tick_duration_ms"`
	Seed           int64 `json:"seed"`
}

// Occupancy carries the grid flags in index order (x*width+y), 0 empty, 1 taken.
type Occupancy struct {
	Encoding string `json:"encoding"`
	Data     string `json:"data"`
	Taken    int    `json:"taken"`
}

// Server -> Client. Sent every tick.
type TickMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Digest          string `json:"digest"`

	Agents    []AgentState   `json:"agents"`
	Outcomes  []OutcomeState `json:"outcomes,omitempty"`
	Occupancy *Occupancy     `json:"occupancy,omitempty"`
	Repaired  bool           `json:"repaired,omitempty"`
}

type AgentState struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Pos  [2]int `json:"pos"`
}

type OutcomeState struct {
	AgentID string `json:"agent_id"`
	From    [2]int `json:"from"`
	To      [2]int `json:"to"`
	Result  string `json:"result"`
	Code    string `json:"code,omitempty"`
	Pos     [2]int `json:"pos"`
}
