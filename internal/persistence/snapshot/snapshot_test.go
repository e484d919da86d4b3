package snapshot

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestWriteReadSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshots", FileName(42))

	snap := SnapshotV1{
		Header:         Header{Version: Version, WorldID: "arena_1", Tick: 42},
		Seed:           1337,
		TickDurationMs: 500,
		Height:         4,
		Width:          4,
		Agents: []AgentV1{
			{ID: "A1", Name: "agent-1", Pos: [2]int{0, 0}},
			{ID: "A2", Name: "agent-2", Pos: [2]int{0, 2}},
		},
		Occupancy: "AQEAAQEBAA0=",
		Stats:     StatsV1{Intents: 10, Applied: 4, TargetOccupied: 1},
		Counters:  CountersV1{NextAgent: 2},
	}
	if err := WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, snap) {
		t.Fatalf("snapshot mismatch:\n got %+v\nwant %+v", got, snap)
	}

	h, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if h != snap.Header {
		t.Fatalf("header: got %+v want %+v", h, snap.Header)
	}
}

func TestReadSnapshot_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName(1))
	if err := WriteSnapshot(path, SnapshotV1{Header: Header{Version: 9, Tick: 1}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadSnapshot(path); err == nil {
		t.Fatalf("expected version error")
	}
}

func TestLatest(t *testing.T) {
	dir := t.TempDir()
	if got := Latest(dir); got != "" {
		t.Fatalf("empty dir: got %q", got)
	}
	for _, name := range []string{"9.snap.zst", "120.snap.zst", "30.snap.zst", "notes.txt", "x.snap.zst"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if got, want := Latest(dir), filepath.Join(dir, "120.snap.zst"); got != want {
		t.Fatalf("latest: got %q want %q", got, want)
	}
	if got := Latest(filepath.Join(dir, "missing")); got != "" {
		t.Fatalf("missing dir: got %q", got)
	}
}
