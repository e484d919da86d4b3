package indexdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	"gridwalk.ai/internal/persistence/snapshot"
	"gridwalk.ai/internal/sim/arbiter"
	"gridwalk.ai/internal/sim/grid"
	"gridwalk.ai/internal/sim/tuning"
	"gridwalk.ai/internal/sim/world"
)

func TestSQLiteIndex_WritesTicksOutcomesAndSnapshots(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "index", "world.sqlite")

	idx, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := idx.SetMeta("run_id", "run-1"); err != nil {
		t.Fatalf("set meta: %v", err)
	}
	if err := idx.UpsertTuning(tuning.Defaults()); err != nil {
		t.Fatalf("upsert tuning: %v", err)
	}
	if v, err := idx.Meta("run_id"); err != nil || v != "run-1" {
		t.Fatalf("meta run_id=%q err=%v", v, err)
	}

	_ = idx.WriteTick(world.TickLogEntry{
		Tick: 5,
		Intents: []arbiter.Intent{
			{AgentID: "A1", From: grid.Cell{X: 0, Y: 0}, To: grid.Cell{X: 0, Y: 1}},
			{AgentID: "A2", From: grid.Cell{X: 0, Y: 2}, To: grid.Cell{X: 0, Y: 1}},
		},
		Outcomes: []arbiter.Outcome{
			{AgentID: "A1", Kind: arbiter.Applied, Pos: grid.Cell{X: 0, Y: 1}},
			{AgentID: "A2", Kind: arbiter.RejectedTargetOccupied, Pos: grid.Cell{X: 0, Y: 2}},
		},
		Digest: "abc",
	})
	_ = idx.WriteDiag(world.DiagEntry{Tick: 5, AgentID: "A2", Kind: arbiter.RejectedTargetOccupied, Code: "E_CONFLICT", Message: "occupied"})
	idx.RecordSnapshot("/tmp/5.snap.zst", snapshot.SnapshotV1{
		Header: snapshot.Header{Version: snapshot.Version, Tick: 5},
		Seed:   7, Height: 4, Width: 4,
		Agents: []snapshot.AgentV1{{ID: "A1"}, {ID: "A2"}},
	})
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	var digest string
	var applied, rejected int
	if err := db.QueryRow(`SELECT digest, applied, rejected FROM ticks WHERE tick=5`).Scan(&digest, &applied, &rejected); err != nil {
		t.Fatalf("query ticks: %v", err)
	}
	if digest != "abc" || applied != 1 || rejected != 1 {
		t.Fatalf("tick row: digest=%s applied=%d rejected=%d", digest, applied, rejected)
	}

	var result, code string
	if err := db.QueryRow(`SELECT result, code FROM outcomes WHERE tick=5 AND agent_id='A2'`).Scan(&result, &code); err != nil {
		t.Fatalf("query outcomes: %v", err)
	}
	if result != "TARGET_OCCUPIED" || code != "E_CONFLICT" {
		t.Fatalf("outcome row: %s %s", result, code)
	}

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM diags`).Scan(&n); err != nil || n != 1 {
		t.Fatalf("diags count=%d err=%v", n, err)
	}
	var agents, width int
	if err := db.QueryRow(`SELECT agents, width FROM snapshots WHERE tick=5`).Scan(&agents, &width); err != nil {
		t.Fatalf("query snapshots: %v", err)
	}
	if agents != 2 || width != 4 {
		t.Fatalf("snapshot row: agents=%d width=%d", agents, width)
	}
	var version string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key='schema_version'`).Scan(&version); err != nil || version != SchemaVersion {
		t.Fatalf("schema_version=%q err=%v", version, err)
	}
}

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqTick, tick: world.TickLogEntry{Tick: 1}}

	_ = s.WriteTick(world.TickLogEntry{Tick: 2})
	_ = s.WriteDiag(world.DiagEntry{Tick: 2})
	s.RecordSnapshot("/tmp/2.snap.zst", snapshot.SnapshotV1{})

	st := s.Stats()
	if st.DropTickTotal != 1 || st.DropDiagTotal != 1 || st.DropSnapshotTotal != 1 {
		t.Fatalf("drop stats: %+v", st)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("expected error")
	}
}
