package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"

	"gridwalk.ai/internal/observerproto"
	"gridwalk.ai/internal/protocol"
)

func main() {
	var (
		wsURL    = flag.String("url", "ws://127.0.0.1:8080/v1/observer/ws", "observer websocket url")
		color    = flag.Bool("color", false, "give each agent its own color instead of gray")
		outcomes = flag.Bool("outcomes", true, "show denied moves under the arena")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[viewer] ", log.LstdFlags|log.Lmicroseconds)

	boot, err := fetchBootstrap(*wsURL)
	if err != nil {
		logger.Fatalf("bootstrap: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*wsURL, nil)
	if err != nil {
		logger.Fatalf("dial %s: %v", *wsURL, err)
	}
	defer conn.Close()
	if err := conn.WriteJSON(observerproto.SubscribeMsg{
		Type:            protocol.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
		Outcomes:        *outcomes,
	}); err != nil {
		logger.Fatalf("subscribe: %v", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		logger.Fatalf("screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		logger.Fatalf("screen init: %v", err)
	}
	defer screen.Fini()

	v := &view{color: *color}
	v.applyBootstrap(boot)

	frames := make(chan observerproto.TickMsg, 4)
	readErr := make(chan error, 1)
	go func() {
		for {
			var m observerproto.TickMsg
			if err := conn.ReadJSON(&m); err != nil {
				readErr <- err
				return
			}
			if m.Type != protocol.TypeTick {
				continue
			}
			frames <- m
		}
	}()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	v.draw(screen)
	for {
		select {
		case m := <-frames:
			v.applyTick(m)
			v.draw(screen)
		case err := <-readErr:
			v.status = fmt.Sprintf("disconnected: %v (press q)", err)
			v.draw(screen)
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
					return
				}
			case *tcell.EventResize:
				screen.Sync()
				v.draw(screen)
			}
		}
	}
}

// bootstrapURL maps ws[s]://host/.../ws onto http[s]://host/.../bootstrap.
func bootstrapURL(wsURL string) (string, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "ws":
		u.Scheme = "http"
	case "wss":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/ws") + "/bootstrap"
	return u.String(), nil
}

func fetchBootstrap(wsURL string) (observerproto.BootstrapResponse, error) {
	var out observerproto.BootstrapResponse
	bu, err := bootstrapURL(wsURL)
	if err != nil {
		return out, err
	}
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(bu)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return out, fmt.Errorf("GET %s: %s", bu, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decode bootstrap: %w", err)
	}
	return out, nil
}
