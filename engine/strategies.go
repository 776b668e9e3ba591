package engine

// Predictor tuning for the adaptive player: suffix window depth, and the
// observed-round count below which it mirrors instead of predicting.
const (
	pstDepth      = 5
	pstMinHistory = 20
)

// ---------------------------------------------------------------------------
// Decision functions
// ---------------------------------------------------------------------------

func cooperateBlind(float64, *PayoffModel) Move { return Cooperate }
func defectBlind(float64, *PayoffModel) Move    { return Defect }

func cooperateMemory([]Move, []Move, float64, *PayoffModel) Move { return Cooperate }
func defectMemory([]Move, []Move, float64, *PayoffModel) Move    { return Defect }

// titForTat cooperates on the first round, then repeats the opponent's
// previous move.
func titForTat(opp, _ []Move, _ float64, _ *PayoffModel) Move {
	if len(opp) == 0 {
		return Cooperate
	}
	return opp[len(opp)-1]
}

// adaptiveMemory builds the predictor-backed strategy: mirror the opponent
// until pstMinHistory rounds are on record, then play the suffix tree's
// forecast of the opponent's next move. The tree is created on first use.
func adaptiveMemory() MemoryFunc {
	var pst *Predictor
	return func(opp, self []Move, _ float64, _ *PayoffModel) Move {
		if len(opp) < pstMinHistory {
			if len(opp) == 0 {
				return Cooperate
			}
			return opp[len(opp)-1]
		}
		if pst == nil {
			pst = NewPredictor(pstDepth)
		}
		return pst.Predict(opp, self)
	}
}

// ---------------------------------------------------------------------------
// Strategy randomness
// ---------------------------------------------------------------------------

// strategyRNG is a tiny xorshift64 for randomized strategies. Decision
// functions take no RNG parameter, so the state lives in the closure built
// for each match.
type strategyRNG struct {
	state uint64
}

func newStrategyRNG(seed uint64) *strategyRNG {
	if seed == 0 {
		seed = 1 // xorshift can't start at 0
	}
	return &strategyRNG{state: seed}
}

func (r *strategyRNG) next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	r.state = x
	return x
}

// coin returns Cooperate or Defect with equal probability.
func (r *strategyRNG) coin() Move {
	return Move(r.next() >> 63)
}

// ---------------------------------------------------------------------------
// Built-in roster
// ---------------------------------------------------------------------------

// mustAgent panics on a construction error. The built-in slot sets below are
// statically correct, so a panic here is a programming bug.
func mustAgent(name string, slots []Strategy) *Agent {
	a, err := NewAgent(name, slots)
	if err != nil {
		panic(err)
	}
	return a
}

// uniformSlots fills the six mode slots from one blind and one memory
// function.
func uniformSlots(b BlindFunc, m MemoryFunc) []Strategy {
	return []Strategy{Blind(b), Memory(m), Blind(b), Memory(m), Blind(b), Memory(m)}
}

// CooperateBot cooperates unconditionally in every mode.
func CooperateBot() *Agent {
	return mustAgent("CooperateBot", uniformSlots(cooperateBlind, cooperateMemory))
}

// DefectBot defects unconditionally in every mode.
func DefectBot() *Agent {
	return mustAgent("DefectBot", uniformSlots(defectBlind, defectMemory))
}

// TitForTat cooperates in the blind modes and mirrors the opponent's last
// move in the memory modes, cooperating first.
func TitForTat() *Agent {
	return mustAgent("TFT", uniformSlots(cooperateBlind, titForTat))
}

// RandomBot flips a fair coin in every mode. The coin is seeded per match,
// so a fixed tournament seed replays the same flips.
func RandomBot() *Agent {
	blind := BlindFactory(func(seed uint64) BlindFunc {
		rng := newStrategyRNG(seed)
		return func(float64, *PayoffModel) Move { return rng.coin() }
	})
	memory := MemoryFactory(func(seed uint64) MemoryFunc {
		rng := newStrategyRNG(seed)
		return func([]Move, []Move, float64, *PayoffModel) Move { return rng.coin() }
	})
	return mustAgent("RandomBot", []Strategy{blind, memory, blind, memory, blind, memory})
}

// Challenger defects in the blind modes and runs the suffix-predictor
// strategy in the memory modes. Each match gets a fresh predictor.
func Challenger() *Agent {
	mem := MemoryFactory(func(uint64) MemoryFunc { return adaptiveMemory() })
	return mustAgent("Challenger", []Strategy{Blind(defectBlind), mem, Blind(defectBlind), mem, Blind(defectBlind), mem})
}

// DefaultRoster returns the standard five-agent lineup.
func DefaultRoster() []*Agent {
	return []*Agent{CooperateBot(), DefectBot(), TitForTat(), RandomBot(), Challenger()}
}
