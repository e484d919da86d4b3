package world

import (
	"testing"

	"gridwalk.ai/internal/sim/grid"
)

func TestSnapshotExportImport_DigestMatches(t *testing.T) {
	cfg := testConfig(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 1, Y: 1}, grid.Cell{X: 3, Y: 0})
	w1, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 25; i++ {
		w1.StepOnce()
	}
	snapTick := w1.CurrentTick() - 1
	snap := w1.ExportSnapshot(snapTick)

	w2, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w2.ImportSnapshot(snap); err != nil {
		t.Fatalf("import: %v", err)
	}
	if w2.CurrentTick() != snapTick+1 {
		t.Fatalf("tick after import: %d", w2.CurrentTick())
	}
	if w1.DebugStateDigest() != w2.DebugStateDigest() {
		t.Fatalf("digest mismatch after import")
	}
	if w1.Stats() != w2.Stats() {
		t.Fatalf("stats mismatch: %+v vs %+v", w1.Stats(), w2.Stats())
	}

	// Both continue identically.
	for i := 0; i < 25; i++ {
		t1, d1 := w1.StepOnce()
		t2, d2 := w2.StepOnce()
		if t1 != t2 || d1 != d2 {
			t.Fatalf("diverged at %d/%d", t1, t2)
		}
	}
}

func TestImportSnapshot_RejectsInconsistentState(t *testing.T) {
	cfg := testConfig(grid.Cell{X: 0, Y: 0}, grid.Cell{X: 1, Y: 1})
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	good := w.ExportSnapshot(0)

	overlap := good
	overlap.Agents = append(overlap.Agents[:0:0], good.Agents...)
	overlap.Agents[1].Pos = overlap.Agents[0].Pos
	if err := w.ImportSnapshot(overlap); err == nil {
		t.Fatalf("expected overlap error")
	}

	badSeed := good
	badSeed.Seed++
	if err := w.ImportSnapshot(badSeed); err == nil {
		t.Fatalf("expected seed mismatch")
	}

	other, err := New(testConfig(grid.Cell{X: 2, Y: 2}, grid.Cell{X: 1, Y: 1}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	badOcc := good
	badOcc.Occupancy = other.ExportSnapshot(0).Occupancy
	if err := w.ImportSnapshot(badOcc); err == nil {
		t.Fatalf("expected occupancy mismatch")
	}

	if err := w.ImportSnapshot(good); err != nil {
		t.Fatalf("good snapshot: %v", err)
	}
}
