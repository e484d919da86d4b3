package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/gorilla/websocket"

	"gridwalk.ai/internal/observerproto"
	"gridwalk.ai/internal/protocol"
)

// tail is a headless observer: one log line per TICK frame.
func main() {
	var (
		url       = flag.String("url", "ws://127.0.0.1:8080/v1/observer/ws", "observer ws url")
		outcomes  = flag.Bool("outcomes", true, "request per-intent outcomes and log denied moves")
		occupancy = flag.Bool("occupancy", false, "request the RLE occupancy bitmap")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[tail] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sub := observerproto.SubscribeMsg{
		Type:            protocol.TypeSubscribe,
		ProtocolVersion: protocol.Version,
		Outcomes:        *outcomes,
		Occupancy:       *occupancy,
	}
	if err := conn.WriteJSON(sub); err != nil {
		logger.Fatalf("send SUBSCRIBE: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.Close()
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeTick:
			var t observerproto.TickMsg
			if err := json.Unmarshal(msg, &t); err != nil {
				continue
			}
			logger.Print(formatTick(&t))
		case protocol.TypeBye:
			logger.Printf("BYE")
			return
		}
	}
}

func formatTick(t *observerproto.TickMsg) string {
	digest := t.Digest
	if len(digest) > 12 {
		digest = digest[:12]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "TICK %d digest=%s agents=%d", t.Tick, digest, len(t.Agents))
	if len(t.Outcomes) > 0 {
		denied := 0
		for _, o := range t.Outcomes {
			if o.Code != "" {
				denied++
			}
		}
		fmt.Fprintf(&b, " denied=%d", denied)
	}
	if t.Occupancy != nil {
		fmt.Fprintf(&b, " taken=%d", t.Occupancy.Taken)
	}
	if t.Repaired {
		b.WriteString(" repaired")
	}
	return b.String()
}
