package engine

import "fmt"

// StrategyKind tags the calling convention of one strategy slot. The zero
// value marks an unset slot and is rejected at agent construction.
type StrategyKind uint8

const (
	StrategyBlind  StrategyKind = iota + 1 // decides from discount and payoffs only
	StrategyMemory                         // additionally sees both move histories
)

// String returns the kind's name for error messages.
func (k StrategyKind) String() string {
	switch k {
	case StrategyBlind:
		return "blind"
	case StrategyMemory:
		return "memory"
	}
	return fmt.Sprintf("StrategyKind(%d)", uint8(k))
}

// BlindFunc decides a move with no access to match history.
type BlindFunc func(discount float64, payoffs *PayoffModel) Move

// MemoryFunc decides a move from both players' past moves. opp[i] and
// self[i] are the two moves of round i; the slices always have equal length
// and must be treated as read-only.
type MemoryFunc func(opp, self []Move, discount float64, payoffs *PayoffModel) Move

// Strategy is one agent slot: a kind tag plus a builder for the matching
// decision function. Builders run exactly once per match with a seed derived
// from the match seed, so strategies that carry state (predictors, RNGs)
// never leak it between matches and replay identically for identical seeds.
type Strategy struct {
	Kind      StrategyKind
	newBlind  func(seed uint64) BlindFunc
	newMemory func(seed uint64) MemoryFunc
}

// Blind wraps a stateless history-free decision function.
func Blind(fn BlindFunc) Strategy {
	return Strategy{Kind: StrategyBlind, newBlind: func(uint64) BlindFunc { return fn }}
}

// Memory wraps a stateless history-aware decision function.
func Memory(fn MemoryFunc) Strategy {
	return Strategy{Kind: StrategyMemory, newMemory: func(uint64) MemoryFunc { return fn }}
}

// BlindFactory wraps a builder that constructs a fresh decision function for
// each match. The seed is the only randomness the built function should use.
func BlindFactory(build func(seed uint64) BlindFunc) Strategy {
	return Strategy{Kind: StrategyBlind, newBlind: build}
}

// MemoryFactory is the history-aware counterpart of BlindFactory.
func MemoryFactory(build func(seed uint64) MemoryFunc) Strategy {
	return Strategy{Kind: StrategyMemory, newMemory: build}
}

// Agent is a named tournament entrant carrying one strategy per mode.
// Agents are immutable after construction and safe to share across
// concurrent matches; all mutable state lives in the per-match functions
// their factories build.
type Agent struct {
	Name  string
	slots [NumModes]Strategy
}

// NewAgent validates that exactly NumModes strategies are supplied and that
// each slot's kind matches its mode: blind modes take blind strategies,
// memory modes take memory strategies.
func NewAgent(name string, slots []Strategy) (*Agent, error) {
	if name == "" {
		return nil, &ConfigError{Reason: "agent name must not be empty"}
	}
	if len(slots) != NumModes {
		return nil, &ConfigError{Reason: fmt.Sprintf("agent %q: need %d strategies, got %d", name, NumModes, len(slots))}
	}
	a := &Agent{Name: name}
	for i, s := range slots {
		mode := Mode(i)
		want := StrategyBlind
		if mode.MemoryAware() {
			want = StrategyMemory
		}
		switch {
		case s.Kind == 0:
			return nil, &ConfigError{Reason: fmt.Sprintf("agent %q: mode %d strategy is unset", name, i)}
		case s.Kind != want:
			return nil, &ConfigError{Reason: fmt.Sprintf("agent %q: mode %d needs a %s strategy, got %s", name, i, want, s.Kind)}
		case want == StrategyBlind && s.newBlind == nil,
			want == StrategyMemory && s.newMemory == nil:
			return nil, &ConfigError{Reason: fmt.Sprintf("agent %q: mode %d strategy has no decision function", name, i)}
		}
		a.slots[i] = s
	}
	return a, nil
}

// strategy returns the slot assigned to a mode.
func (a *Agent) strategy(mode Mode) Strategy {
	return a.slots[mode]
}
