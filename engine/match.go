// Package engine implements the iterated prisoner's dilemma match rules:
// six game modes over fixed 2x2 payoff matrices, simultaneous moves, and
// per-round payoff weighting.
//
// The package is self-contained and allocation-light: a match runs on flat
// value state with an inline xorshift64 RNG, making it cheap to replay and
// safe to execute concurrently. Orchestration, persistence, and logging live
// in the layers above.
package engine

import (
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Match lifecycle
// ---------------------------------------------------------------------------

// matchPhase tracks where a match is in its lifecycle.
type matchPhase uint8

const (
	phaseInit           matchPhase = iota // constructed, nothing played
	phasePlaying                          // rounds in progress
	phaseFixedDone                        // reached the configured round count
	phaseStochasticDone                   // continuation draw failed
)

// MatchResult holds one mode's outcome: the weighted per-round payoffs of
// both players. ScoresP1 and ScoresP2 always have equal length, one entry
// per round actually played.
type MatchResult struct {
	Mode     Mode      `json:"mode"`
	ScoresP1 []float64 `json:"scores_p1"`
	ScoresP2 []float64 `json:"scores_p2"`
}

// match is the per-evaluation state: phase, histories, scores, the RNG for
// continuation draws, and the two decision functions built for this match.
type match struct {
	mode    Mode
	rules   Rules
	payoffs *PayoffModel
	phase   matchPhase
	rng     uint64

	p1, p2           *Agent
	blind1, blind2   BlindFunc
	mem1, mem2       MemoryFunc
	hist1, hist2     []Move
	scores1, scores2 []float64
}

// ---------------------------------------------------------------------------
// Seeding
// ---------------------------------------------------------------------------

// mix64 is a splitmix64 step used to derive independent seeds for pairs,
// modes, and strategy state from one base seed.
func mix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// nextRand advances the xorshift64 state and returns it.
func (m *match) nextRand() uint64 {
	x := m.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	m.rng = x
	return x
}

// randFloat returns a uniform value in [0, 1).
func (m *match) randFloat() float64 {
	return float64(m.nextRand()>>11) / float64(1<<53)
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// PlayMatch runs one mode between two agents and returns both players'
// weighted per-round payoff sequences. Identical inputs and seed replay the
// identical match.
func PlayMatch(p1, p2 *Agent, mode Mode, rules Rules, payoffs *PayoffModel, seed uint64) (MatchResult, error) {
	if p1 == nil || p2 == nil {
		return MatchResult{}, &ConfigError{Reason: "both agents must be non-nil"}
	}
	if payoffs == nil {
		return MatchResult{}, &ConfigError{Reason: "payoff model must not be nil"}
	}
	if mode >= NumModes {
		return MatchResult{}, &ConfigError{Reason: fmt.Sprintf("unknown mode %d", uint8(mode))}
	}
	if err := rules.Validate(); err != nil {
		return MatchResult{}, err
	}
	return newMatch(p1, p2, mode, rules, payoffs, seed).run()
}

// PlayPair runs all six modes between two agents. Each mode's seed is
// derived from the pair seed, so the stochastic modes draw independent
// streams while the whole pairing stays reproducible.
func PlayPair(p1, p2 *Agent, rules Rules, payoffs *PayoffModel, seed uint64) ([NumModes]MatchResult, error) {
	var out [NumModes]MatchResult
	for mode := Mode(0); mode < NumModes; mode++ {
		res, err := PlayMatch(p1, p2, mode, rules, payoffs, mix64(seed+uint64(mode)))
		if err != nil {
			return out, err
		}
		out[mode] = res
	}
	return out, nil
}

// newMatch builds the per-match state and runs both strategy factories.
// Strategy seeds and the continuation stream are derived separately so a
// strategy's own draws can never shift the termination draws.
func newMatch(p1, p2 *Agent, mode Mode, rules Rules, payoffs *PayoffModel, seed uint64) *match {
	m := &match{
		mode:    mode,
		rules:   rules,
		payoffs: payoffs,
		phase:   phaseInit,
		rng:     mix64(seed),
		p1:      p1,
		p2:      p2,
	}
	if m.rng == 0 {
		m.rng = 1 // xorshift can't start at 0
	}
	s1 := mix64(seed + 1)
	s2 := mix64(seed + 2)
	if mode.MemoryAware() {
		m.mem1 = p1.strategy(mode).newMemory(s1)
		m.mem2 = p2.strategy(mode).newMemory(s2)
	} else {
		m.blind1 = p1.strategy(mode).newBlind(s1)
		m.blind2 = p2.strategy(mode).newBlind(s2)
	}
	return m
}

// ---------------------------------------------------------------------------
// Round loop
// ---------------------------------------------------------------------------

// run plays rounds until the mode's termination rule fires. Round 0 is
// always played; stochastic modes draw the continuation check before each
// later round, fixed modes stop after the configured count.
func (m *match) run() (MatchResult, error) {
	disc := m.rules.effectiveDiscount(m.mode)
	m.phase = phasePlaying
	for r := 0; m.phase == phasePlaying; r++ {
		if m.mode.Stochastic() && r > 0 && m.randFloat() > disc {
			m.phase = phaseStochasticDone
			break
		}
		mv1, mv2 := m.decide(disc)
		if !mv1.Valid() {
			return MatchResult{}, &ContractError{Agent: m.p1.Name, Mode: m.mode, Round: r, Got: mv1}
		}
		if !mv2.Valid() {
			return MatchResult{}, &ContractError{Agent: m.p2.Name, Mode: m.mode, Round: r, Got: mv2}
		}
		pay1, pay2 := m.payoffs.Lookup(mv1, mv2)
		weight := 1.0
		if m.mode.Discounted() {
			weight = math.Pow(disc, float64(r))
		}
		m.scores1 = append(m.scores1, pay1*weight)
		m.scores2 = append(m.scores2, pay2*weight)
		m.hist1 = append(m.hist1, mv1)
		m.hist2 = append(m.hist2, mv2)
		if !m.mode.Stochastic() && r+1 >= m.rules.Rounds {
			m.phase = phaseFixedDone
		}
	}
	return MatchResult{Mode: m.mode, ScoresP1: m.scores1, ScoresP2: m.scores2}, nil
}

// decide collects both moves simultaneously: each memory strategy sees the
// histories as they stood before this round, with its opponent's moves first
// and its own second.
func (m *match) decide(disc float64) (Move, Move) {
	if m.mode.MemoryAware() {
		return m.mem1(m.hist2, m.hist1, disc, m.payoffs), m.mem2(m.hist1, m.hist2, disc, m.payoffs)
	}
	return m.blind1(disc, m.payoffs), m.blind2(disc, m.payoffs)
}
