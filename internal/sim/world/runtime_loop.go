package world

import (
	"context"
	"time"

	"gridwalk.ai/internal/sim/arbiter"
)

// Run drives the tick loop until ctx is cancelled or Stop is called. A tick
// that has started always completes before either is observed.
func (w *World) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(w.cfg.TickDurationMs) * time.Millisecond)
	defer ticker.Stop()
	defer w.closeObservers()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.observerJoin:
			w.handleObserverJoin(req)
		case req := <-w.observerSub:
			w.handleObserverSubscribe(req)
		case id := <-w.observerLeave:
			w.handleObserverLeave(id)
		case req := <-w.bootstrap:
			req.resp <- w.buildBootstrap()
		case <-ticker.C:
			nowTick := w.tick.Load()
			w.stepInternal(w.NextIntents(nowTick))
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances the world by a single tick using the same ordering semantics as the server.
// It is primarily intended for deterministic replays/tests.
func (w *World) StepOnce() (tick uint64, digest string) {
	tick = w.tick.Load()
	return tick, w.stepInternal(w.NextIntents(tick)).Digest
}

// StepWith advances one tick with the given intents instead of drawing them.
// cmd/replay feeds recorded intents through it.
func (w *World) StepWith(intents []arbiter.Intent) TickLogEntry {
	return w.stepInternal(intents)
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
