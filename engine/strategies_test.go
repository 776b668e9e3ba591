package engine

import (
	"reflect"
	"testing"
)

// TestDefaultRosterShape verifies the lineup's names, order, and slot kinds.
func TestDefaultRosterShape(t *testing.T) {
	roster := DefaultRoster()
	wantNames := []string{"CooperateBot", "DefectBot", "TFT", "RandomBot", "Challenger"}
	if len(roster) != len(wantNames) {
		t.Fatalf("roster size = %d, want %d", len(roster), len(wantNames))
	}
	for i, a := range roster {
		if a.Name != wantNames[i] {
			t.Errorf("roster[%d].Name = %q, want %q", i, a.Name, wantNames[i])
		}
		for mode := Mode(0); mode < NumModes; mode++ {
			want := StrategyBlind
			if mode.MemoryAware() {
				want = StrategyMemory
			}
			if got := a.strategy(mode).Kind; got != want {
				t.Errorf("%s mode %d kind = %v, want %v", a.Name, uint8(mode), got, want)
			}
		}
	}
}

// TestTitForTat verifies the mirror rule and the opening cooperation.
func TestTitForTat(t *testing.T) {
	tests := []struct {
		opp  []Move
		want Move
	}{
		{nil, Cooperate},
		{[]Move{Cooperate}, Cooperate},
		{[]Move{Defect}, Defect},
		{[]Move{Cooperate, Defect}, Defect},
		{[]Move{Defect, Cooperate}, Cooperate},
	}
	for _, tt := range tests {
		self := repeat(Cooperate, len(tt.opp))
		if got := titForTat(tt.opp, self, 0.95, DefaultPayoffs()); got != tt.want {
			t.Errorf("titForTat(%v) = %d, want %d", tt.opp, uint8(got), uint8(tt.want))
		}
	}
}

// TestAdaptiveMemoryMirrorPhase verifies behavior below the prediction
// threshold: cooperate on an empty history, otherwise mirror.
func TestAdaptiveMemoryMirrorPhase(t *testing.T) {
	fn := adaptiveMemory()
	if got := fn(nil, nil, 0.95, DefaultPayoffs()); got != Cooperate {
		t.Errorf("empty history: got %d, want %d", uint8(got), uint8(Cooperate))
	}
	opp := repeat(Defect, pstMinHistory-1)
	self := repeat(Cooperate, pstMinHistory-1)
	if got := fn(opp, self, 0.95, DefaultPayoffs()); got != Defect {
		t.Errorf("mirror phase: got %d, want %d", uint8(got), uint8(Defect))
	}
	opp[len(opp)-1] = Cooperate
	if got := fn(opp, self, 0.95, DefaultPayoffs()); got != Cooperate {
		t.Errorf("mirror phase: got %d, want %d", uint8(got), uint8(Cooperate))
	}
}

// TestAdaptiveMemoryPredictPhase verifies the predictor takes over at the
// threshold and tracks a constant opponent.
func TestAdaptiveMemoryPredictPhase(t *testing.T) {
	fn := adaptiveMemory()
	self := repeat(Cooperate, pstMinHistory+3)

	if got := fn(repeat(Defect, pstMinHistory+3), self, 0.95, DefaultPayoffs()); got != Defect {
		t.Errorf("constant defector: got %d, want %d", uint8(got), uint8(Defect))
	}

	fn = adaptiveMemory()
	if got := fn(repeat(Cooperate, pstMinHistory+3), self, 0.95, DefaultPayoffs()); got != Cooperate {
		t.Errorf("constant cooperator: got %d, want %d", uint8(got), uint8(Cooperate))
	}
}

// TestAdaptiveMemoryFreshPerBuild verifies each build starts with an empty
// predictor: what one instance learned never leaks into another.
func TestAdaptiveMemoryFreshPerBuild(t *testing.T) {
	opp := repeat(Defect, pstMinHistory+3)
	self := repeat(Cooperate, pstMinHistory+3)

	first := adaptiveMemory()
	first(opp, self, 0.95, DefaultPayoffs())

	second := adaptiveMemory()
	short := repeat(Defect, 3)
	if got := second(short, repeat(Cooperate, 3), 0.95, DefaultPayoffs()); got != Defect {
		t.Errorf("fresh instance should mirror, got %d", uint8(got))
	}
}

// TestStrategyRNGDeterministic verifies identical seeds flip identical coins
// and seed 0 is corrected.
func TestStrategyRNGDeterministic(t *testing.T) {
	r1 := newStrategyRNG(99)
	r2 := newStrategyRNG(99)
	for i := 0; i < 64; i++ {
		if r1.coin() != r2.coin() {
			t.Fatalf("flip %d diverged for identical seeds", i)
		}
	}
	if z := newStrategyRNG(0); z.state != 1 {
		t.Errorf("seed 0 state = %d, want 1", z.state)
	}
}

// TestStrategyRNGCoinBalance verifies the coin is roughly fair over a fixed
// stream.
func TestStrategyRNGCoinBalance(t *testing.T) {
	r := newStrategyRNG(123)
	defects := 0
	for i := 0; i < 1000; i++ {
		if r.coin() == Defect {
			defects++
		}
	}
	if defects < 400 || defects > 600 {
		t.Errorf("defect count = %d over 1000 flips, want roughly half", defects)
	}
}

// TestRandomBotReplay verifies RandomBot's flips come from the match seed.
func TestRandomBotReplay(t *testing.T) {
	rules := Rules{Rounds: 20, Discount: 0.95}
	r1, err := PlayMatch(RandomBot(), RandomBot(), ModeBlind, rules, DefaultPayoffs(), 321)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	r2, err := PlayMatch(RandomBot(), RandomBot(), ModeBlind, rules, DefaultPayoffs(), 321)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !reflect.DeepEqual(r1, r2) {
		t.Error("same seed diverged across fresh RandomBot instances")
	}
}

// TestChallengerBlindModes verifies the blind slots always defect.
func TestChallengerBlindModes(t *testing.T) {
	rules := Rules{Rounds: 5, Discount: 0.95}
	res, err := PlayMatch(Challenger(), CooperateBot(), ModeBlind, rules, DefaultPayoffs(), 6)
	if err != nil {
		t.Fatalf("PlayMatch: %v", err)
	}
	for i := range res.ScoresP1 {
		if res.ScoresP1[i] != 5 || res.ScoresP2[i] != 0 {
			t.Errorf("round %d: scores (%g,%g), want (5,0)", i, res.ScoresP1[i], res.ScoresP2[i])
		}
	}
}

// TestCooperateDefectBots verifies the constant bots from both seats.
func TestCooperateDefectBots(t *testing.T) {
	rules := Rules{Rounds: 3, Discount: 0.95}
	for _, mode := range []Mode{ModeBlind, ModeMemory} {
		res, err := PlayMatch(DefectBot(), CooperateBot(), mode, rules, DefaultPayoffs(), 8)
		if err != nil {
			t.Fatalf("mode %d: %v", uint8(mode), err)
		}
		for i := range res.ScoresP1 {
			if res.ScoresP1[i] != 5 || res.ScoresP2[i] != 0 {
				t.Errorf("mode %d round %d: scores (%g,%g), want (5,0)", uint8(mode), i, res.ScoresP1[i], res.ScoresP2[i])
			}
		}
	}
}
