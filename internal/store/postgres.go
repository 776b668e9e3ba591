package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/h-e19/ipd-tournament-simulator/internal/results"
	"github.com/h-e19/ipd-tournament-simulator/internal/tournament"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	started_at    TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT NOT NULL,
	seed          BIGINT NOT NULL,
	rounds        INTEGER NOT NULL,
	discount      DOUBLE PRECISION NOT NULL,
	winner        TEXT NOT NULL DEFAULT '',
	players_json  TEXT NOT NULL,
	document_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS standings (
	id     BIGSERIAL PRIMARY KEY,
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	rank   INTEGER NOT NULL,
	player TEXT NOT NULL,
	total  DOUBLE PRECISION NOT NULL
);
`

// Postgres archives runs in a shared PostgreSQL database.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects a pool and runs migrations.
func NewPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// SaveRun inserts the run row and its standings atomically.
func (p *Postgres) SaveRun(ctx context.Context, res *tournament.Result, doc *results.Document) error {
	playersJSON, err := json.Marshal(res.Players)
	if err != nil {
		return fmt.Errorf("marshal players: %w", err)
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO runs (run_id, started_at, duration_ms, seed, rounds, discount, winner, players_json, document_json)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		res.RunID, res.StartedAt.UTC(), res.Duration.Milliseconds(),
		int64(res.Seed), res.Rules.Rounds, res.Rules.Discount,
		winnerOf(res.Standings), string(playersJSON), string(docJSON),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, st := range res.Standings {
		_, err = tx.Exec(ctx,
			`INSERT INTO standings (run_id, rank, player, total) VALUES ($1, $2, $3, $4)`,
			res.RunID, st.Rank, st.Player, st.Total,
		)
		if err != nil {
			return fmt.Errorf("insert standing: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetRun retrieves one archived run with its document and standings.
func (p *Postgres) GetRun(ctx context.Context, runID string) (*Run, error) {
	var (
		run         Run
		startedAt   time.Time
		durationMS  int64
		seed        int64
		playersJSON string
		docJSON     string
	)
	err := p.pool.QueryRow(ctx,
		`SELECT run_id, started_at, duration_ms, seed, rounds, discount, winner, players_json, document_json
		 FROM runs WHERE run_id = $1`, runID,
	).Scan(&run.RunID, &startedAt, &durationMS, &seed, &run.Rounds, &run.Discount,
		&run.Winner, &playersJSON, &docJSON)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", runID, err)
	}

	run.StartedAt = startedAt
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Seed = uint64(seed)
	if err := json.Unmarshal([]byte(playersJSON), &run.Players); err != nil {
		return nil, fmt.Errorf("unmarshal players: %w", err)
	}
	run.Document = &results.Document{}
	if err := json.Unmarshal([]byte(docJSON), run.Document); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}

	rows, err := p.pool.Query(ctx,
		`SELECT rank, player, total FROM standings WHERE run_id = $1 ORDER BY rank`, runID)
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
func (p *Postgres) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT run_id, started_at, winner, players_json FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var summaries []RunSummary
	for rows.Next() {
		var (
			sum         RunSummary
			playersJSON string
		)
		if err := rows.Scan(&sum.RunID, &sum.StartedAt, &sum.Winner, &playersJSON); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
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
