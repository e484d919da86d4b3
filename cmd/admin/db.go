package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

type dbQuery struct {
	Tick    uint64
	Limit   int
	AgentID string
}

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	worldID := fs.String("world", "", "world id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	tick := fs.Uint64("tick", 0, "tick filter for outcomes (optional; defaults to latest indexed tick)")
	limit := fs.Int("limit", 20, "result limit")
	agentID := fs.String("agent", "", "agent_id filter (outcomes, diags)")
	_ = fs.Parse(args)

	q := "snapshots"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*worldID) == "" {
			fmt.Fprintln(os.Stderr, "missing -world or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "worlds", *worldID, "index", "world.sqlite")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer db.Close()

	err = runQuery(os.Stdout, db, q, dbQuery{Tick: *tick, Limit: *limit, AgentID: strings.TrimSpace(*agentID)})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if strings.HasPrefix(err.Error(), "unknown query") {
			fmt.Fprintln(os.Stderr, "usage: admin db [-data ./data] [-world WORLD|-db PATH] [-tick T] [-agent ID] snapshots|meta|ticks|outcomes|diags")
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func runQuery(out io.Writer, db *sql.DB, q string, opt dbQuery) error {
	if opt.Limit <= 0 {
		opt.Limit = 20
	}
	switch q {
	case "snapshots":
		rows, err := db.Query(`SELECT tick,path,seed,height,width,agents FROM snapshots ORDER BY tick DESC LIMIT ?`, opt.Limit)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Tick   int64  `json:"tick"`
				Path   string `json:"path"`
				Seed   int64  `json:"seed"`
				Height int    `json:"height"`
				Width  int    `json:"width"`
				Agents int    `json:"agents"`
			}
			if err := rows.Scan(&r.Tick, &r.Path, &r.Seed, &r.Height, &r.Width, &r.Agents); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			printJSON(out, r)
		}
		return rows.Err()

	case "meta":
		rows, err := db.Query(`SELECT key,value FROM meta ORDER BY key`)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Key   string `json:"key"`
				Value string `json:"value"`
			}
			if err := rows.Scan(&r.Key, &r.Value); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			printJSON(out, r)
		}
		return rows.Err()

	case "ticks":
		rows, err := db.Query(`SELECT tick,digest,intents,applied,rejected,repaired FROM ticks ORDER BY tick DESC LIMIT ?`, opt.Limit)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Tick     int64  `json:"tick"`
				Digest   string `json:"digest"`
				Intents  int    `json:"intents"`
				Applied  int    `json:"applied"`
				Rejected int    `json:"rejected"`
				Repaired bool   `json:"repaired"`
			}
			if err := rows.Scan(&r.Tick, &r.Digest, &r.Intents, &r.Applied, &r.Rejected, &r.Repaired); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			printJSON(out, r)
		}
		return rows.Err()

	case "outcomes":
		if opt.Tick == 0 {
			lt, err := latestTick(db)
			if err != nil {
				return fmt.Errorf("latest tick: %w", err)
			}
			opt.Tick = lt
		}
		query := `SELECT seq,agent_id,from_x,from_y,to_x,to_y,result,COALESCE(code,''),pos_x,pos_y FROM outcomes WHERE tick=? ORDER BY seq`
		args := []any{opt.Tick}
		if opt.AgentID != "" {
			query = `SELECT seq,agent_id,from_x,from_y,to_x,to_y,result,COALESCE(code,''),pos_x,pos_y FROM outcomes WHERE tick=? AND agent_id=? ORDER BY seq`
			args = append(args, opt.AgentID)
		}
		rows, err := db.Query(query, args...)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Tick    uint64 `json:"tick"`
				Seq     int    `json:"seq"`
				AgentID string `json:"agent_id"`
				From    [2]int `json:"from"`
				To      [2]int `json:"to"`
				Result  string `json:"result"`
				Code    string `json:"code,omitempty"`
				Pos     [2]int `json:"pos"`
			}
			if err := rows.Scan(&r.Seq, &r.AgentID, &r.From[0], &r.From[1], &r.To[0], &r.To[1], &r.Result, &r.Code, &r.Pos[0], &r.Pos[1]); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			r.Tick = opt.Tick
			printJSON(out, r)
		}
		return rows.Err()

	case "diags":
		query := `SELECT tick,COALESCE(agent_id,''),kind,COALESCE(code,''),message FROM diags ORDER BY tick DESC, seq DESC LIMIT ?`
		args := []any{opt.Limit}
		if opt.AgentID != "" {
			query = `SELECT tick,COALESCE(agent_id,''),kind,COALESCE(code,''),message FROM diags WHERE agent_id=? ORDER BY tick DESC, seq DESC LIMIT ?`
			args = []any{opt.AgentID, opt.Limit}
		}
		rows, err := db.Query(query, args...)
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			var r struct {
				Tick    int64  `json:"tick"`
				AgentID string `json:"agent_id,omitempty"`
				Kind    string `json:"kind"`
				Code    string `json:"code,omitempty"`
				Message string `json:"message"`
			}
			if err := rows.Scan(&r.Tick, &r.AgentID, &r.Kind, &r.Code, &r.Message); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			printJSON(out, r)
		}
		return rows.Err()

	default:
		return fmt.Errorf("unknown query: %s", q)
	}
}

func latestTick(db *sql.DB) (uint64, error) {
	var t int64
	if err := db.QueryRow(`SELECT COALESCE(MAX(tick),0) FROM ticks`).Scan(&t); err != nil {
		return 0, err
	}
	if t < 0 {
		return 0, nil
	}
	return uint64(t), nil
}

func printJSON(out io.Writer, v any) {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
