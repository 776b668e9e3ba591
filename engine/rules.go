package engine

import "fmt"

// Rules holds the match parameters shared by all six modes. Rounds bounds
// the fixed-length modes; Discount is the weight base for the discounted
// modes and the continuation probability for the stochastic modes.
type Rules struct {
	Rounds   int
	Discount float64
}

// DefaultRules returns the standard tournament configuration: five rounds
// and a 0.95 discount.
func DefaultRules() Rules {
	return Rules{Rounds: 5, Discount: 0.95}
}

// Validate reports a ConfigError for parameters outside their domain.
// A discount of exactly 1.0 is legal but makes the stochastic modes never
// terminate, matching the continuation probability semantics.
func (r Rules) Validate() error {
	if r.Rounds < 1 {
		return &ConfigError{Reason: fmt.Sprintf("rounds must be at least 1, got %d", r.Rounds)}
	}
	if r.Discount < 0 || r.Discount > 1 {
		return &ConfigError{Reason: fmt.Sprintf("discount must be in [0, 1], got %g", r.Discount)}
	}
	return nil
}

// effectiveDiscount returns the discount a mode actually sees: the plain
// iterative modes always run with 1.0 regardless of configuration.
func (r Rules) effectiveDiscount(mode Mode) float64 {
	if mode == ModeBlind || mode == ModeMemory {
		return 1.0
	}
	return r.Discount
}
