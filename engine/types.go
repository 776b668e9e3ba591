package engine

import "fmt"

// Move constants, the two actions available in every round.
const (
	Cooperate Move = 0
	Defect    Move = 1
)

// Move is a single round action: 0 = cooperate, 1 = defect.
type Move uint8

// Valid reports whether the move is inside the {0, 1} action domain.
func (m Move) Valid() bool { return m == Cooperate || m == Defect }

// Game mode constants. Memory-aware modes are the odd indices; the even
// indices are their blind counterparts.
const (
	ModeBlind            Mode = 0 // fixed rounds, no history access
	ModeMemory           Mode = 1 // fixed rounds, history access
	ModeDiscountedBlind  Mode = 2 // fixed rounds, payoffs weighted by d^r
	ModeDiscountedMemory Mode = 3 // fixed rounds, weighted, history access
	ModeStochasticBlind  Mode = 4 // random termination with probability 1-d
	ModeStochasticMemory Mode = 5 // random termination, history access
)

// NumModes is the number of game modes every agent must cover.
const NumModes = 6

// Mode selects one of the six fixed rule variants.
type Mode uint8

// MemoryAware reports whether strategies in this mode receive move histories.
func (m Mode) MemoryAware() bool { return m&1 == 1 }

// Discounted reports whether per-round payoffs are weighted by discount^round.
func (m Mode) Discounted() bool { return m == ModeDiscountedBlind || m == ModeDiscountedMemory }

// Stochastic reports whether match length is governed by a continuation draw
// instead of a fixed round count.
func (m Mode) Stochastic() bool { return m == ModeStochasticBlind || m == ModeStochasticMemory }

// String returns the mode's display name.
func (m Mode) String() string {
	switch m {
	case ModeBlind:
		return "Blind Iterative"
	case ModeMemory:
		return "Memory Iterative"
	case ModeDiscountedBlind:
		return "Discounted Blind"
	case ModeDiscountedMemory:
		return "Discounted Memory"
	case ModeStochasticBlind:
		return "Stochastic Blind"
	case ModeStochasticMemory:
		return "Stochastic Memory"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ---------------------------------------------------------------------------
// Error types
// ---------------------------------------------------------------------------

// ConfigError reports an invalid agent, payoff, or rules configuration,
// surfaced at construction time.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "invalid configuration: " + e.Reason }

// ContractError reports a strategy returning a move outside the {0, 1}
// action domain. The match is aborted rather than clamping the value.
type ContractError struct {
	Agent string
	Mode  Mode
	Round int
	Got   Move
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("agent %q mode %d round %d: strategy returned %d, want 0 or 1",
		e.Agent, uint8(e.Mode), e.Round, uint8(e.Got))
}
