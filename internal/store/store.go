// Package store archives finished tournament runs. Two backends implement
// the same interface: an embedded SQLite file for standalone use and a
// PostgreSQL pool for shared deployments. Both keep the full score document
// alongside queryable run metadata and standings.
package store

import (
	"context"
	"strings"
	"time"

	"github.com/h-e19/ipd-tournament-simulator/internal/results"
	"github.com/h-e19/ipd-tournament-simulator/internal/tournament"
)

// Run is one archived tournament with its full score document.
type Run struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Seed      uint64
	Rounds    int
	Discount  float64
	Players   []string
	Winner    string
	Standings []tournament.Standing
	Document  *results.Document
}

// RunSummary is the listing row for archived runs.
type RunSummary struct {
	RunID     string
	StartedAt time.Time
	Players   int
	Winner    string
}

// Store archives and retrieves tournament runs.
type Store interface {
	SaveRun(ctx context.Context, res *tournament.Result, doc *results.Document) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	Close() error
}

// Open selects a backend from the target: postgres:// and postgresql:// URLs
// get a connection pool, anything else is treated as a SQLite path.
func Open(ctx context.Context, target string) (Store, error) {
	if strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://") {
		return NewPostgres(ctx, target)
	}
	return NewSQLite(target)
}

// winnerOf returns the top-ranked player, or "" for an empty ranking.
func winnerOf(standings []tournament.Standing) string {
	if len(standings) == 0 {
		return ""
	}
	return standings[0].Player
}
