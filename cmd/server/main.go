package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	persistlog "gridwalk.ai/internal/persistence/log"
	"gridwalk.ai/internal/persistence/snapshot"
	"gridwalk.ai/internal/sim/tuning"
	"gridwalk.ai/internal/sim/world"
	"gridwalk.ai/internal/transport/observer"
)

func main() {
	var (
		addr       = flag.String("addr", "127.0.0.1:8080", "http listen address")
		worldID    = flag.String("world", "", "world id (default: tuning world_id)")
		seed       = flag.Int64("seed", 0, "override tuning seed (used only when starting a fresh world)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite index (ticks, outcomes, diagnostics, snapshot metadata)")

		snapPath   = flag.String("snapshot", "", "path to snapshot to load (optional)")
		loadLatest = flag.Bool("load_latest_snapshot", true, "load latest snapshot from data dir if present (when -snapshot is empty)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if id := strings.TrimSpace(*worldID); id != "" {
		tune.WorldID = id
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	worldDir := filepath.Join(*dataDir, "worlds", tune.WorldID)
	_ = os.MkdirAll(worldDir, 0o755)

	snapshotToLoad := strings.TrimSpace(*snapPath)
	if snapshotToLoad == "" && *loadLatest {
		snapshotToLoad = snapshot.Latest(filepath.Join(worldDir, "snapshots"))
	}

	cfg := world.ConfigFromTuning(tune)
	var snap *snapshot.SnapshotV1
	if snapshotToLoad != "" {
		s, err := snapshot.ReadSnapshot(snapshotToLoad)
		if err != nil {
			logger.Fatalf("read snapshot: %v", err)
		}
		if s.Header.WorldID != "" && s.Header.WorldID != tune.WorldID {
			logger.Fatalf("snapshot world id mismatch: tuning=%s snap=%s", tune.WorldID, s.Header.WorldID)
		}
		// The snapshot owns the arena; placements come from its agents.
		cfg.Seed = s.Seed
		cfg.Height = s.Height
		cfg.Width = s.Width
		cfg.Placements = nil
		snap = &s
	}

	w, err := world.New(cfg)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}
	if snap != nil {
		if err := w.ImportSnapshot(*snap); err != nil {
			logger.Fatalf("import snapshot: %v", err)
		}
		logger.Printf("resumed from snapshot=%s tick=%d", filepath.Base(snapshotToLoad), w.CurrentTick())
	} else {
		logger.Printf("fresh world=%s arena=%dx%d agents=%d seed=%d", cfg.ID, cfg.Height, cfg.Width, len(cfg.Placements), cfg.Seed)
	}

	if tune.Diagnostics {
		w.SetDiagnostics(log.New(os.Stdout, "[arbiter] ", log.LstdFlags|log.Lmicroseconds))
	}

	// Optional: read-model index backend (does not affect sim determinism).
	idx, err := openRuntimeIndex(worldDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	runID := uuid.NewString()
	if idx != nil {
		defer idx.Close()
		if err := idx.SetMeta("run_id", runID); err != nil {
			logger.Printf("index backend: set run id: %v", err)
		}
		if err := idx.SetMeta("world_id", tune.WorldID); err != nil {
			logger.Printf("index backend: set world id: %v", err)
		}
		if err := idx.UpsertTuning(tune); err != nil {
			logger.Printf("index backend: upsert tuning: %v", err)
		}
	}
	logger.Printf("run id %s", runID)

	tickLog := persistlog.NewTickLogger(worldDir)
	diagLog := persistlog.NewDiagLogger(worldDir)
	defer tickLog.Close()
	defer diagLog.Close()
	if idx != nil {
		w.SetTickLogger(multiTickLogger{a: tickLog, b: idx})
		w.SetDiagLogger(multiDiagLogger{a: diagLog, b: idx})
	} else {
		w.SetTickLogger(tickLog)
		w.SetDiagLogger(diagLog)
	}

	ctx, cancel := signalContext()
	defer cancel()

	// Snapshot writer.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	writeSnap := func(s snapshot.SnapshotV1) {
		path := filepath.Join(worldDir, "snapshots", snapshot.FileName(s.Header.Tick))
		if err := snapshot.WriteSnapshot(path, s); err != nil {
			logger.Printf("snapshot write: %v", err)
			return
		}
		if idx != nil {
			idx.RecordSnapshot(path, s)
		}
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-snapCh:
				writeSnap(s)
			}
		}
	}()

	worldDone := make(chan struct{})
	go func() {
		defer close(worldDone)
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", metricsHandler(w, idx))
	mux.HandleFunc("/v1/metrics", func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		resp := struct {
			WorldID string             `json:"world_id"`
			RunID   string             `json:"run_id"`
			Tick    uint64             `json:"tick"`
			Metrics world.WorldMetrics `json:"metrics"`
		}{
			WorldID: w.ID(),
			RunID:   runID,
			Tick:    w.CurrentTick(),
			Metrics: w.Metrics(),
		}
		_ = json.NewEncoder(rw).Encode(resp)
	})

	obsSrv := observer.NewServer(w, logger)
	mux.HandleFunc("/v1/observer/bootstrap", obsSrv.BootstrapHandler())
	mux.HandleFunc("/v1/observer/ws", obsSrv.WSHandler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}

	// Final snapshot once the loop has stopped and no tick is in flight.
	<-worldDone
	if t := w.CurrentTick(); t > 0 {
		writeSnap(w.ExportSnapshot(t - 1))
		logger.Printf("final snapshot tick=%d", t-1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
