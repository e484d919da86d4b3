package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gridwalk.ai/internal/persistence/indexdb"
	"gridwalk.ai/internal/persistence/snapshot"
	"gridwalk.ai/internal/sim/tuning"
	"gridwalk.ai/internal/sim/world"
)

type runtimeIndex interface {
	world.TickLogger
	world.DiagLogger
	Close() error
	SetMeta(key, value string) error
	UpsertTuning(tune tuning.Tuning) error
	RecordSnapshot(path string, snap snapshot.SnapshotV1)
	Stats() indexdb.Stats
}

func openRuntimeIndex(worldDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("GW_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		dbPath := filepath.Join(worldDir, "index", "world.sqlite")
		idx, err := indexdb.OpenSQLite(dbPath)
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unsupported GW_INDEX_BACKEND: %s", backend)
	}
}

type multiTickLogger struct {
	a world.TickLogger
	b world.TickLogger
}

func (m multiTickLogger) WriteTick(entry world.TickLogEntry) error {
	if m.a != nil {
		_ = m.a.WriteTick(entry)
	}
	if m.b != nil {
		_ = m.b.WriteTick(entry)
	}
	return nil
}

type multiDiagLogger struct {
	a world.DiagLogger
	b world.DiagLogger
}

func (m multiDiagLogger) WriteDiag(entry world.DiagEntry) error {
	if m.a != nil {
		_ = m.a.WriteDiag(entry)
	}
	if m.b != nil {
		_ = m.b.WriteDiag(entry)
	}
	return nil
}
