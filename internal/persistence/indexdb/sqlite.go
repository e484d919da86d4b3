package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"gridwalk.ai/internal/persistence/snapshot"
	"gridwalk.ai/internal/sim/arbiter"
	"gridwalk.ai/internal/sim/tuning"
	"gridwalk.ai/internal/sim/world"
)

const SchemaVersion = "1"

// SQLiteIndex is a best-effort read model over the tick stream. The JSONL
// logs stay the source of truth; writes are dropped when the queue is full.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropTick     atomic.Uint64
	dropDiag     atomic.Uint64
	dropSnapshot atomic.Uint64
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqDiag
	reqSnapshot
)

type req struct {
	kind reqKind

	tick     world.TickLogEntry
	diag     world.DiagEntry
	snapshot snapshotRow
}

type snapshotRow struct {
	Tick   uint64
	Path   string
	Seed   int64
	Height int
	Width  int
	Agents int
}

type Stats struct {
	QueueDepth    int `json:"queue_depth"`
	QueueCapacity int `json:"queue_capacity"`

	DropTickTotal     uint64 `json:"drop_tick_total"`
	DropDiagTotal     uint64 `json:"drop_diag_total"`
	DropSnapshotTotal uint64 `json:"drop_snapshot_total"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tuning (
			digest TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			intents INTEGER NOT NULL,
			applied INTEGER NOT NULL,
			rejected INTEGER NOT NULL,
			repaired INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			agent_id TEXT NOT NULL,
			from_x INTEGER NOT NULL,
			from_y INTEGER NOT NULL,
			to_x INTEGER NOT NULL,
			to_y INTEGER NOT NULL,
			result TEXT NOT NULL,
			code TEXT,
			pos_x INTEGER NOT NULL,
			pos_y INTEGER NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_agent_tick ON outcomes(agent_id, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_result_tick ON outcomes(result, tick);`,
		`CREATE TABLE IF NOT EXISTS diags (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			agent_id TEXT,
			kind TEXT NOT NULL,
			code TEXT,
			message TEXT NOT NULL,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			tick INTEGER PRIMARY KEY,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			height INTEGER NOT NULL,
			width INTEGER NOT NULL,
			agents INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:        len(s.ch),
		QueueCapacity:     cap(s.ch),
		DropTickTotal:     s.dropTick.Load(),
		DropDiagTotal:     s.dropDiag.Load(),
		DropSnapshotTotal: s.dropSnapshot.Load(),
	}
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, tick: entry}:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
		s.dropTick.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) WriteDiag(entry world.DiagEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqDiag, diag: entry}:
	default:
		s.dropDiag.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) RecordSnapshot(path string, snap snapshot.SnapshotV1) {
	if s == nil || s.closed.Load() {
		return
	}
	r := snapshotRow{
		Tick:   snap.Header.Tick,
		Path:   path,
		Seed:   snap.Seed,
		Height: snap.Height,
		Width:  snap.Width,
		Agents: len(snap.Agents),
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: r}:
	default:
		s.dropSnapshot.Add(1)
	}
}

// SetMeta writes a meta row synchronously. Call it before the first WriteTick:
// the writer goroutine holds the only connection while a batch is open.
func (s *SQLiteIndex) SetMeta(key, value string) error {
	if s == nil {
		return nil
	}
	_, err := s.db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES(?,?)`, key, value)
	return err
}

func (s *SQLiteIndex) Meta(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key=?`, key).Scan(&v)
	return v, err
}

// UpsertTuning stores the tuning values actually applied, keyed by digest.
// Same ordering rule as SetMeta.
func (s *SQLiteIndex) UpsertTuning(tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(tune)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(b)
	digest := hex.EncodeToString(sum[:])
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version',?)`, SchemaVersion); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('tuning_digest',?)`, digest); err != nil {
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO tuning(digest,json,updated_at) VALUES(?,?,?)`, digest, string(b), now); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	// Prepared statements (on db; executed within tx).
	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,digest,intents,applied,rejected,repaired,raw_json) VALUES(?,?,?,?,?,?,?)`)
	insertOutcome, _ := s.db.Prepare(`INSERT OR REPLACE INTO outcomes(tick,seq,agent_id,from_x,from_y,to_x,to_y,result,code,pos_x,pos_y) VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	insertDiag, _ := s.db.Prepare(`INSERT OR REPLACE INTO diags(tick,seq,agent_id,kind,code,message,raw_json) VALUES(?,?,?,?,?,?,?)`)
	insertSnapshot, _ := s.db.Prepare(`INSERT OR REPLACE INTO snapshots(tick,path,seed,height,width,agents) VALUES(?,?,?,?,?,?)`)
	defer func() {
		for _, st := range []*sql.Stmt{insertTick, insertOutcome, insertDiag, insertSnapshot} {
			if st != nil {
				_ = st.Close()
			}
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second

		lastDiagTick uint64
		diagSeq      int
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqTick:
			t := r.tick
			applied, rejected := 0, 0
			for _, o := range t.Outcomes {
				if o.Kind == arbiter.Applied {
					applied++
				} else {
					rejected++
				}
			}
			b, _ := json.Marshal(t)
			if insertTick != nil {
				if _, err := tx.Stmt(insertTick).Exec(
					int64(t.Tick),
					t.Digest,
					len(t.Intents),
					applied,
					rejected,
					boolInt(t.Repaired),
					string(b),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
			for i, o := range t.Outcomes {
				if insertOutcome == nil || i >= len(t.Intents) {
					break
				}
				in := t.Intents[i]
				if _, err := tx.Stmt(insertOutcome).Exec(
					int64(t.Tick), i, o.AgentID,
					in.From.X, in.From.Y, in.To.X, in.To.Y,
					o.Kind.String(), o.Kind.Code(),
					o.Pos.X, o.Pos.Y,
				); err != nil {
					rollback()
					break
				}
				opCount++
			}

		case reqDiag:
			d := r.diag
			if d.Tick != lastDiagTick {
				lastDiagTick = d.Tick
				diagSeq = 0
			}
			seq := diagSeq
			diagSeq++
			raw, _ := json.Marshal(d)
			if insertDiag != nil {
				if _, err := tx.Stmt(insertDiag).Exec(
					int64(d.Tick), seq, d.AgentID, d.Kind.String(), d.Code, d.Message, string(raw),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqSnapshot:
			sn := r.snapshot
			if insertSnapshot != nil {
				if _, err := tx.Stmt(insertSnapshot).Exec(
					int64(sn.Tick), sn.Path, sn.Seed, sn.Height, sn.Width, sn.Agents,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		flushIfNeeded()
	}

	commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
