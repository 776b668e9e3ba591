package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/h-e19/ipd-tournament-simulator/internal/results"
	"github.com/h-e19/ipd-tournament-simulator/internal/tournament"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	started_at    TEXT NOT NULL,
	duration_ms   INTEGER NOT NULL,
	seed          INTEGER NOT NULL,
	rounds        INTEGER NOT NULL,
	discount      REAL NOT NULL,
	winner        TEXT,
	players_json  TEXT NOT NULL,
	document_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS standings (
	id     INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	rank   INTEGER NOT NULL,
	player TEXT NOT NULL,
	total  REAL NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// SQLite archives runs in a single database file.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database file and runs migrations.
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// SaveRun inserts the run row and its standings atomically. The seed is
// stored bit-for-bit as a signed integer.
func (s *SQLite) SaveRun(ctx context.Context, res *tournament.Result, doc *results.Document) error {
	playersJSON, err := json.Marshal(res.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at, duration_ms, seed, rounds, discount, winner, players_json, document_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID, res.StartedAt.UTC().Format(time.RFC3339Nano), res.Duration.Milliseconds(),
		int64(res.Seed), res.Rules.Rounds, res.Rules.Discount,
		winnerOf(res.Standings), string(playersJSON), string(docJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, st := range res.Standings {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO standings (run_id, rank, player, total) VALUES (?, ?, ?, ?)`,
			res.RunID, st.Rank, st.Player, st.Total,
		)
		if err != nil {
			return fmt.Errorf("insert standing: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetRun retrieves one archived run with its document and standings.
func (s *SQLite) GetRun(ctx context.Context, runID string) (*Run, error) {
	var (
		run         Run
		startedStr  string
		durationMS  int64
		seed        int64
		winner      sql.NullString
		playersJSON string
		docJSON     string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, started_at, duration_ms, seed, rounds, discount, winner, players_json, document_json
		 FROM runs WHERE run_id = ?`, runID,
	).Scan(&run.RunID, &startedStr, &durationMS, &seed, &run.Rounds, &run.Discount,
		&winner, &playersJSON, &docJSON)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}

	run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Seed = uint64(seed)
	if winner.Valid {
		run.Winner = winner.String
	}
	if err := json.Unmarshal([]byte(playersJSON), &run.Players); err != nil {
		return nil, fmt.Errorf("unmarshal players: %w", err)
	}
	run.Document = &results.Document{}
	if err := json.Unmarshal([]byte(docJSON), run.Document); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT rank, player, total FROM standings WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("get standings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var st tournament.Standing
		if err := rows.Scan(&st.Rank, &st.Player, &st.Total); err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		run.Standings = append(run.Standings, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLite) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, started_at, winner, players_json FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var (
			sum         RunSummary
			startedStr  string
			winner      sql.NullString
			playersJSON string
		)
		if err := rows.Scan(&sum.RunID, &startedStr, &winner, &playersJSON); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		sum.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
		if winner.Valid {
			sum.Winner = winner.String
		}
		var players []string
		if err := json.Unmarshal([]byte(playersJSON), &players); err != nil {
			return nil, fmt.Errorf("unmarshal players: %w", err)
		}
		sum.Players = len(players)
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}
