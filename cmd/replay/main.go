package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	persistlog "gridwalk.ai/internal/persistence/log"
	"gridwalk.ai/internal/persistence/snapshot"
	"gridwalk.ai/internal/sim/tuning"
	"gridwalk.ai/internal/sim/world"
)

var errStop = errors.New("stop")

func main() {
	var (
		snapPath   = flag.String("snapshot", "", "path to .snap.zst (optional; without it replay starts from tick 0 of -tuning)")
		eventsDir  = flag.String("events", "", "events dir containing events-*.jsonl.zst")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "tuning used for a fresh replay (ignored with -snapshot)")
		fromTick   = flag.Uint64("from_tick", 0, "start verifying from tick (inclusive, optional)")
		toTick     = flag.Uint64("to_tick", 0, "stop at tick (inclusive, optional)")
	)
	flag.Parse()

	w, err := buildWorld(*snapPath, *tuningPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *eventsDir == "" {
		return
	}

	startTick := w.CurrentTick()
	verifyFrom := *fromTick
	if verifyFrom < startTick {
		verifyFrom = startTick
	}

	files, err := persistlog.ListFiles(*eventsDir, "events")
	if err != nil {
		fmt.Fprintln(os.Stderr, "list events:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no events files found in", *eventsDir)
		os.Exit(1)
	}

	var checked uint64
	for _, path := range files {
		err := replayFile(w, path, startTick, verifyFrom, *toTick, &checked)
		if errors.Is(err, errStop) {
			break
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "replay:", err)
			os.Exit(1)
		}
	}
	fmt.Printf("replay ok: checked=%d ticks (start tick=%d)\n", checked, startTick)
}

func buildWorld(snapPath, tuningPath string) (*world.World, error) {
	if snapPath == "" {
		tune, err := tuning.Load(tuningPath)
		if err != nil {
			return nil, fmt.Errorf("load tuning: %w", err)
		}
		w, err := world.New(world.ConfigFromTuning(tune))
		if err != nil {
			return nil, fmt.Errorf("world: %w", err)
		}
		fmt.Printf("fresh world=%s arena=%dx%d agents=%d seed=%d\n", tune.WorldID, tune.Arena.Height, tune.Arena.Width, len(tune.Placements), tune.Seed)
		return w, nil
	}

	snap, err := snapshot.ReadSnapshot(snapPath)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	fmt.Printf("snapshot v%d world=%s tick=%d seed=%d arena=%dx%d agents=%d\n",
		snap.Header.Version, snap.Header.WorldID, snap.Header.Tick, snap.Seed, snap.Height, snap.Width, len(snap.Agents))

	w, err := world.New(world.WorldConfig{
		ID:             snap.Header.WorldID,
		Seed:           snap.Seed,
		Height:         snap.Height,
		Width:          snap.Width,
		TickDurationMs: snap.TickDurationMs,
	})
	if err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}
	if err := w.ImportSnapshot(snap); err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}
	return w, nil
}

func replayFile(w *world.World, path string, startTick, verifyFrom, toTick uint64, checked *uint64) error {
	return persistlog.ReadTickLog(path, func(entry world.TickLogEntry) error {
		if entry.Tick < startTick {
			return nil
		}
		if toTick != 0 && entry.Tick > toTick {
			return errStop
		}
		if entry.Tick != w.CurrentTick() {
			return fmt.Errorf("tick mismatch: want=%d got=%d (file=%s)", w.CurrentTick(), entry.Tick, filepath.Base(path))
		}

		got := w.StepWith(entry.Intents)
		if got.Tick >= verifyFrom {
			*checked++
			if got.Digest != entry.Digest {
				return fmt.Errorf("digest mismatch at tick %d: got=%s want=%s", got.Tick, got.Digest, entry.Digest)
			}
		}
		return nil
	})
}
