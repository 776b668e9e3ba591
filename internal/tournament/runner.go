// Package tournament runs round-robin iterated prisoner's dilemma
// tournaments: every unordered pair of agents plays all six modes once, and
// the outcomes are assembled into a results board, per-player totals, and
// standings.
//
// Pairs are distributed over a worker pool. Every pair's matches are seeded
// from the tournament seed and the pair's ordinal, so a run is reproducible
// regardless of worker count or scheduling order.
package tournament

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/h-e19/ipd-tournament-simulator/engine"
)

// Options configures a tournament run. The zero value picks the default
// rules, default payoffs, seed 0, and one worker per CPU.
type Options struct {
	Rules   engine.Rules
	Payoffs *engine.PayoffModel
	Seed    uint64
	Workers int

	// OnPairDone, when set, is invoked once per completed pairing in
	// completion order, which varies with scheduling. Results themselves are
	// always assembled in pair-ordinal order.
	OnPairDone func(PairResult)
}

// PairResult holds the six match outcomes of one unordered pairing.
// Player1 corresponds to the lower roster index I.
type PairResult struct {
	Ordinal int    `json:"ordinal"`
	I       int    `json:"i"`
	J       int    `json:"j"`
	Player1 string `json:"player1"`
	Player2 string `json:"player2"`

	Matches [engine.NumModes]engine.MatchResult `json:"matches"`
}

// ScoreGrid is the n x n results board. Cell (i, j) holds player i's
// weighted per-round scores against player j, one slice per mode; (i, j) and
// (j, i) are the two sides of the same pairing. Diagonal cells are nil.
type ScoreGrid [][][][]float64

// Standing is one row of the final ranking.
type Standing struct {
	Rank   int     `json:"rank"`
	Player string  `json:"player"`
	Total  float64 `json:"total"`
}

// Result is the complete outcome of one tournament run.
type Result struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Seed      uint64

	Players []string
	Rules   engine.Rules
	Payoffs *engine.PayoffModel

	Pairs     []PairResult
	Board     ScoreGrid
	Standings []Standing
}

// Runner executes round-robin tournaments over a fixed roster.
type Runner struct {
	agents  []*engine.Agent
	rules   engine.Rules
	payoffs *engine.PayoffModel
	seed    uint64
	workers int

	onPairDone func(PairResult)
}

// New validates the roster and options. At least two uniquely named agents
// are required.
func New(agents []*engine.Agent, opts Options) (*Runner, error) {
	if len(agents) < 2 {
		return nil, &engine.ConfigError{Reason: fmt.Sprintf("need at least 2 agents, got %d", len(agents))}
	}
	seen := make(map[string]bool, len(agents))
	for i, a := range agents {
		if a == nil {
			return nil, &engine.ConfigError{Reason: fmt.Sprintf("agent %d is nil", i)}
		}
		if seen[a.Name] {
			return nil, &engine.ConfigError{Reason: fmt.Sprintf("duplicate agent name %q", a.Name)}
		}
		seen[a.Name] = true
	}

	rules := opts.Rules
	if rules == (engine.Rules{}) {
		rules = engine.DefaultRules()
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	payoffs := opts.Payoffs
	if payoffs == nil {
		payoffs = engine.DefaultPayoffs()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Runner{
		agents:     agents,
		rules:      rules,
		payoffs:    payoffs,
		seed:       opts.Seed,
		workers:    workers,
		onPairDone: opts.OnPairDone,
	}, nil
}

// pairJob identifies one unordered pairing for the worker pool.
type pairJob struct {
	ordinal int
	i, j    int
}

// pairOutcome carries a finished pairing or its failure back to the
// collector.
type pairOutcome struct {
	result PairResult
	err    error
}

// Run plays every pairing and assembles the full result. The context cancels
// between pairings; a strategy contract violation aborts the run with the
// offending match's error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	n := len(r.agents)
	jobs := makePairJobs(n)

	log.Infof("tournament start: %d players, %d pairings, %d workers, seed %d", n, len(jobs), r.workers, r.seed)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workQueue := make(chan pairJob, len(jobs))
	resultQueue := make(chan pairOutcome, len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job, ok := <-workQueue:
					if !ok {
						return
					}
					out := r.playPair(job)
					select {
					case resultQueue <- out:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	for _, job := range jobs {
		workQueue <- job
	}
	close(workQueue)

	go func() {
		wg.Wait()
		close(resultQueue)
	}()

	pairs := make([]PairResult, len(jobs))
	var firstErr error
	done := 0
	for out := range resultQueue {
		if out.err != nil {
			if firstErr == nil {
				firstErr = out.err
				cancel()
			}
			continue
		}
		pairs[out.result.Ordinal] = out.result
		done++
		log.Debugf("pairing %d/%d done: %s vs %s", done, len(jobs), out.result.Player1, out.result.Player2)
		if r.onPairDone != nil {
			r.onPairDone(out.result)
		}
	}
	if firstErr != nil {
		return nil, fmt.Errorf("run tournament: %w", firstErr)
	}
	if done != len(jobs) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run tournament: %w", err)
		}
		return nil, fmt.Errorf("run tournament: %d of %d pairings finished", done, len(jobs))
	}

	res := &Result{
		RunID:     uuid.New().String(),
		StartedAt: started,
		Duration:  time.Since(started),
		Seed:      r.seed,
		Players:   r.playerNames(),
		Rules:     r.rules,
		Payoffs:   r.payoffs,
		Pairs:     pairs,
	}
	res.Board = buildBoard(n, pairs)
	res.Standings = buildStandings(res.Players, res.Board)

	log.Infof("tournament %s finished in %s", res.RunID, res.Duration.Round(time.Millisecond))
	return res, nil
}

// playPair runs all six modes of one pairing. Pair seeds are spaced by
// NumModes so no two matches in a run share a seed.
func (r *Runner) playPair(job pairJob) pairOutcome {
	p1, p2 := r.agents[job.i], r.agents[job.j]
	seed := r.seed + uint64(job.ordinal)*engine.NumModes
	matches, err := engine.PlayPair(p1, p2, r.rules, r.payoffs, seed)
	if err != nil {
		return pairOutcome{err: fmt.Errorf("%s vs %s: %w", p1.Name, p2.Name, err)}
	}
	return pairOutcome{result: PairResult{
		Ordinal: job.ordinal,
		I:       job.i,
		J:       job.j,
		Player1: p1.Name,
		Player2: p2.Name,
		Matches: matches,
	}}
}

// makePairJobs enumerates the unordered pairings in roster order.
func makePairJobs(n int) []pairJob {
	var jobs []pairJob
	ordinal := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			jobs = append(jobs, pairJob{ordinal: ordinal, i: i, j: j})
			ordinal++
		}
	}
	return jobs
}

// playerNames returns the roster names in order.
func (r *Runner) playerNames() []string {
	names := make([]string, len(r.agents))
	for i, a := range r.agents {
		names[i] = a.Name
	}
	return names
}

// buildBoard mirrors each pairing's scores into both cells of the grid.
func buildBoard(n int, pairs []PairResult) ScoreGrid {
	board := make(ScoreGrid, n)
	for i := range board {
		board[i] = make([][][]float64, n)
	}
	for _, p := range pairs {
		side1 := make([][]float64, engine.NumModes)
		side2 := make([][]float64, engine.NumModes)
		for m, match := range p.Matches {
			side1[m] = match.ScoresP1
			side2[m] = match.ScoresP2
		}
		board[p.I][p.J] = side1
		board[p.J][p.I] = side2
	}
	return board
}

// buildStandings totals every player's weighted scores across all opponents
// and modes, ranking by total descending with names breaking ties.
func buildStandings(players []string, board ScoreGrid) []Standing {
	standings := make([]Standing, len(players))
	for i, name := range players {
		total := 0.0
		for j := range players {
			if i == j {
				continue
			}
			for _, scores := range board[i][j] {
				for _, s := range scores {
					total += s
				}
			}
		}
		standings[i] = Standing{Player: name, Total: total}
	}
	sort.Slice(standings, func(a, b int) bool {
		if standings[a].Total != standings[b].Total {
			return standings[a].Total > standings[b].Total
		}
		return standings[a].Player < standings[b].Player
	})
	for i := range standings {
		standings[i].Rank = i + 1
	}
	return standings
}
