package observer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"gridwalk.ai/internal/observerproto"
	"gridwalk.ai/internal/protocol"
	"gridwalk.ai/internal/sim/grid"
	"gridwalk.ai/internal/sim/world"
)

func startWorld(t *testing.T) (*world.World, *httptest.Server) {
	t.Helper()
	w, err := world.New(world.WorldConfig{
		ID:             "test",
		Seed:           7,
		Height:         8,
		Width:          8,
		TickDurationMs: 10,
		Placements: []world.Placement{
			{Name: "a", Pos: grid.Cell{X: 0, Y: 0}},
			{Name: "b", Pos: grid.Cell{X: 5, Y: 5}},
		},
	})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	srv := NewServer(w, nil)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/observer/bootstrap", srv.BootstrapHandler())
	mux.HandleFunc("/v1/observer/ws", srv.WSHandler())
	ts := httptest.NewServer(mux)

	t.Cleanup(func() {
		ts.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Errorf("world.Run did not exit")
		}
	})
	return w, ts
}

func TestBootstrapHandler(t *testing.T) {
	_, ts := startWorld(t)

	resp, err := http.Get(ts.URL + "/v1/observer/bootstrap")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	var b observerproto.BootstrapResponse
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b.WorldID != "test" || b.ArenaParams.Height != 8 || len(b.Agents) != 2 || b.Occupancy.Taken != 2 {
		t.Fatalf("bootstrap: %+v", b)
	}

	post, err := http.Post(ts.URL+"/v1/observer/bootstrap", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("post status=%d", post.StatusCode)
	}
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/observer/ws"
}

func TestWSHandler_StreamsTicksAfterSubscribe(t *testing.T) {
	_, ts := startWorld(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(observerproto.SubscribeMsg{
		Type:            protocol.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
		Outcomes:        true,
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var last uint64
	for i := 0; i < 3; i++ {
		var msg observerproto.TickMsg
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read frame %d: %v", i, err)
		}
		if msg.Type != protocol.TypeTick || len(msg.Agents) != 2 || len(msg.Outcomes) != 2 {
			t.Fatalf("frame %d: %+v", i, msg)
		}
		if i > 0 && msg.Tick <= last {
			t.Fatalf("ticks not increasing: %d after %d", msg.Tick, last)
		}
		last = msg.Tick
	}
}

func TestWSHandler_RejectsMissingSubscribe(t *testing.T) {
	_, ts := startWorld(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"HELLO","protocol_version":"1.0"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation close, got %v", err)
	}
	var ce *websocket.CloseError
	if !errors.As(err, &ce) || !strings.HasPrefix(ce.Text, protocol.ErrProtoBadRequest) {
		t.Fatalf("close reason should carry %s, got %v", protocol.ErrProtoBadRequest, err)
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:5000": true,
		"[::1]:80":       true,
		"10.0.0.2:5000":  false,
		"garbage":        false,
	}
	for addr, want := range cases {
		if got := isLoopbackRemote(addr); got != want {
			t.Fatalf("%s: got %v want %v", addr, got, want)
		}
	}
}

func TestWSHandler_SendsByeWhenWorldStops(t *testing.T) {
	w, ts := startWorld(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if err := conn.WriteJSON(observerproto.SubscribeMsg{Type: protocol.TypeSubscribe, ProtocolVersion: observerproto.Version}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var first observerproto.TickMsg
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("first frame: %v", err)
	}
	w.Stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("stream closed without BYE: %v", err)
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if base.Type == protocol.TypeBye {
			return
		}
	}
}
