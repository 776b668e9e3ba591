// Package leaderboard publishes tournament standings to Redis so dashboards
// and other services can read rankings without touching the archive
// database. Each run gets a sorted set of totals and a score document with a
// bounded lifetime; a shared list tracks the most recent runs.
package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/h-e19/ipd-tournament-simulator/internal/results"
	"github.com/h-e19/ipd-tournament-simulator/internal/tournament"
)

const (
	keyPrefix     = "ipd:"
	recentRunsKey = keyPrefix + "runs"
	defaultTTL    = 24 * time.Hour
	recentRunsMax = 100
)

// standingsKey is the per-run sorted set of player totals.
func standingsKey(runID string) string {
	return keyPrefix + "standings:" + runID
}

// documentKey is the per-run serialized score document.
func documentKey(runID string) string {
	return keyPrefix + "run:" + runID
}

// Publisher writes run outcomes to Redis.
type Publisher struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects a client from a redis:// URL.
func New(url string) (*Publisher, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return &Publisher{client: redis.NewClient(opts), ttl: defaultTTL}, nil
}

// Close releases the client.
func (p *Publisher) Close() error {
	return p.client.Close()
}

// Publish writes the run's standings, its score document, and a recent-runs
// entry in one pipeline. Standings never expire; the document does.
func (p *Publisher) Publish(ctx context.Context, res *tournament.Result, doc *results.Document) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	members := make([]redis.Z, len(res.Standings))
	for i, st := range res.Standings {
		members[i] = redis.Z{Score: st.Total, Member: st.Player}
	}

	pipe := p.client.TxPipeline()
	pipe.ZAdd(ctx, standingsKey(res.RunID), members...)
	pipe.Set(ctx, documentKey(res.RunID), docJSON, p.ttl)
	pipe.LPush(ctx, recentRunsKey, res.RunID)
	pipe.LTrim(ctx, recentRunsKey, 0, recentRunsMax-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish run %s: %w", res.RunID, err)
	}
	return nil
}

// Top reads the n best players of a run, best first.
func (p *Publisher) Top(ctx context.Context, runID string, n int64) ([]tournament.Standing, error) {
	zs, err := p.client.ZRevRangeWithScores(ctx, standingsKey(runID), 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read standings %s: %w", runID, err)
	}
	standings := make([]tournament.Standing, len(zs))
	for i, z := range zs {
		player, _ := z.Member.(string)
		standings[i] = tournament.Standing{Rank: i + 1, Player: player, Total: z.Score}
	}
	return standings, nil
}

// Document reads back a published score document, if it has not expired.
func (p *Publisher) Document(ctx context.Context, runID string) (*results.Document, error) {
	data, err := p.client.Get(ctx, documentKey(runID)).Bytes()
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", runID, err)
	}
	var doc results.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document %s: %w", runID, err)
	}
	return &doc, nil
}

// RecentRuns lists the latest published run IDs, newest first.
func (p *Publisher) RecentRuns(ctx context.Context, n int64) ([]string, error) {
	ids, err := p.client.LRange(ctx, recentRunsKey, 0, n-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	return ids, nil
}
