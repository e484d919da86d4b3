package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gridwalk.ai/internal/persistence/snapshot"
	"gridwalk.ai/internal/sim/world"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "inspect":
			inspectCmd(os.Args[2:])
			return
		case "db":
			dbCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (optional)")
	_ = fs.Parse(args)

	base := filepath.Join(*dataDir, "worlds")
	if *worldID != "" {
		base = filepath.Join(base, *worldID)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		fmt.Println(e.Name())
	}
}

// inspectCmd loads a snapshot into a fresh world, which runs the same
// consistency checks as a server resume, and prints its summary.
func inspectCmd(args []string) {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -snapshot)")
	snapPath := fs.String("snapshot", "", "snapshot path (optional; defaults to latest)")
	agents := fs.Bool("agents", false, "also print every agent position")
	_ = fs.Parse(args)

	path := strings.TrimSpace(*snapPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -snapshot")
			os.Exit(2)
		}
		path = snapshot.Latest(filepath.Join(*dataDir, "worlds", *worldID, "snapshots"))
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "no snapshot found; provide -snapshot or run server until it writes one")
		os.Exit(2)
	}
	if err := inspectSnapshot(os.Stdout, path, *agents); err != nil {
		fmt.Fprintln(os.Stderr, "inspect:", err)
		os.Exit(1)
	}
}

func inspectSnapshot(out io.Writer, path string, withAgents bool) error {
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	w, err := world.New(world.WorldConfig{
		ID:             snap.Header.WorldID,
		Seed:           snap.Seed,
		Height:         snap.Height,
		Width:          snap.Width,
		TickDurationMs: snap.TickDurationMs,
	})
	if err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if err := w.ImportSnapshot(snap); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	st := snap.Stats
	fmt.Fprintf(out, "snapshot=%s world=%s tick=%d seed=%d arena=%dx%d agents=%d taken=%d digest=%s\n",
		filepath.Base(path), snap.Header.WorldID, snap.Header.Tick, snap.Seed, snap.Height, snap.Width,
		len(snap.Agents), len(w.DebugOccupied()), w.DebugStateDigest())
	fmt.Fprintf(out, "stats intents=%d applied=%d noops=%d out_of_bounds=%d target_occupied=%d source_empty=%d repairs=%d\n",
		st.Intents, st.Applied, st.Noops, st.OutOfBounds, st.TargetOccupied, st.SourceEmpty, st.Repairs)
	if withAgents {
		for _, a := range snap.Agents {
			fmt.Fprintf(out, "%s %s (%d,%d)\n", a.ID, a.Name, a.Pos[0], a.Pos[1])
		}
	}
	return nil
}
