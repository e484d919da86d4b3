package observerproto_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"gridwalk.ai/internal/observerproto"
	"gridwalk.ai/internal/protocol"
)

func compile(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

func asAny(t *testing.T, v any) any {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func TestSchemas_ValidateSamples(t *testing.T) {
	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	subscribeSchema := compile(t, "subscribe.schema.json")
	bootstrapSchema := compile(t, "bootstrap.schema.json")
	tickSchema := compile(t, "tick.schema.json")

	validate(subscribeSchema, asAny(t, observerproto.SubscribeMsg{
		Type:            protocol.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
		Outcomes:        true,
	}))

	validate(bootstrapSchema, asAny(t, observerproto.BootstrapResponse{
		ProtocolVersion: observerproto.Version,
		WorldID:         "arena_1",
		Tick:            3,
		ArenaParams:     observerproto.ArenaParams{Height: 32, Width: 32, TickDurationMs: 500, Seed: 1337},
		Agents: []observerproto.AgentState{
			{ID: "A1", Name: "agent-1", Pos: [2]int{0, 0}},
			{ID: "A2", Name: "agent-2", Pos: [2]int{5, 5}},
		},
		Occupancy: observerproto.Occupancy{Encoding: "RLE", Data: "AQEA", Taken: 2},
	}))

	var tick any
	_ = json.Unmarshal([]byte(`{
	  "type":"TICK",
	  "protocol_version":"1.0",
	  "tick":7,
	  "digest":"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
	  "agents":[{"id":"A1","name":"agent-1","pos":[0,1]}],
	  "outcomes":[
	    {"agent_id":"A1","from":[0,0],"to":[0,1],"result":"APPLIED","pos":[0,1]},
	    {"agent_id":"A2","from":[5,5],"to":[5,-1],"result":"OUT_OF_BOUNDS","code":"E_INVALID_TARGET","pos":[5,5]}
	  ]
	}`), &tick)
	validate(tickSchema, tick)
}

func TestSchemas_RejectBadSamples(t *testing.T) {
	tickSchema := compile(t, "tick.schema.json")
	var bad any
	_ = json.Unmarshal([]byte(`{
	  "type":"TICK",
	  "protocol_version":"1.0",
	  "tick":7,
	  "digest":"nothex",
	  "agents":[{"id":"A1","name":"agent-1","pos":[0,1,2]}]
	}`), &bad)
	if err := tickSchema.Validate(bad); err == nil {
		t.Fatalf("expected validation error")
	}

	subscribeSchema := compile(t, "subscribe.schema.json")
	var sub any
	_ = json.Unmarshal([]byte(`{"type":"HELLO","protocol_version":"1.0"}`), &sub)
	if err := subscribeSchema.Validate(sub); err == nil {
		t.Fatalf("expected SUBSCRIBE type to be enforced")
	}
}
