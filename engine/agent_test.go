package engine

import (
	"errors"
	"testing"
)

// helper: sixSlots returns a valid slot set matching all mode conventions.
func sixSlots() []Strategy {
	return uniformSlots(cooperateBlind, cooperateMemory)
}

// TestNewAgentValid verifies construction with a full, matching slot set.
func TestNewAgentValid(t *testing.T) {
	a, err := NewAgent("Tester", sixSlots())
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	if a.Name != "Tester" {
		t.Errorf("Name = %q, want %q", a.Name, "Tester")
	}
	for mode := Mode(0); mode < NumModes; mode++ {
		s := a.strategy(mode)
		want := StrategyBlind
		if mode.MemoryAware() {
			want = StrategyMemory
		}
		if s.Kind != want {
			t.Errorf("mode %d strategy kind = %v, want %v", uint8(mode), s.Kind, want)
		}
	}
}

// TestNewAgentRejectsBadSetups verifies every construction error path.
func TestNewAgentRejectsBadSetups(t *testing.T) {
	valid := sixSlots()

	short := valid[:5]
	long := append(append([]Strategy{}, valid...), Blind(cooperateBlind))

	unset := append([]Strategy{}, valid...)
	unset[2] = Strategy{}

	memInBlind := append([]Strategy{}, valid...)
	memInBlind[0] = Memory(cooperateMemory)

	blindInMem := append([]Strategy{}, valid...)
	blindInMem[1] = Blind(cooperateBlind)

	noFunc := append([]Strategy{}, valid...)
	noFunc[4] = Strategy{Kind: StrategyBlind}

	tests := []struct {
		name  string
		agent string
		slots []Strategy
	}{
		{"empty name", "", valid},
		{"five slots", "A", short},
		{"seven slots", "A", long},
		{"nil slots", "A", nil},
		{"unset slot", "A", unset},
		{"memory strategy in blind slot", "A", memInBlind},
		{"blind strategy in memory slot", "A", blindInMem},
		{"slot without decision function", "A", noFunc},
	}
	for _, tt := range tests {
		_, err := NewAgent(tt.agent, tt.slots)
		if err == nil {
			t.Errorf("%s: NewAgent accepted invalid setup", tt.name)
			continue
		}
		var ce *ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("%s: error is %T, want *ConfigError", tt.name, err)
		}
	}
}

// TestStrategyConstructors verifies the kind tags of the four wrappers.
func TestStrategyConstructors(t *testing.T) {
	if s := Blind(cooperateBlind); s.Kind != StrategyBlind || s.newBlind == nil {
		t.Error("Blind() produced a malformed strategy")
	}
	if s := Memory(cooperateMemory); s.Kind != StrategyMemory || s.newMemory == nil {
		t.Error("Memory() produced a malformed strategy")
	}
	if s := BlindFactory(func(uint64) BlindFunc { return cooperateBlind }); s.Kind != StrategyBlind {
		t.Error("BlindFactory() produced a malformed strategy")
	}
	if s := MemoryFactory(func(uint64) MemoryFunc { return cooperateMemory }); s.Kind != StrategyMemory {
		t.Error("MemoryFactory() produced a malformed strategy")
	}
}

// TestStatelessWrappersIgnoreSeed verifies Blind/Memory hand back the same
// function regardless of seed.
func TestStatelessWrappersIgnoreSeed(t *testing.T) {
	s := Blind(defectBlind)
	f1 := s.newBlind(1)
	f2 := s.newBlind(999)
	if f1(0.5, DefaultPayoffs()) != f2(0.5, DefaultPayoffs()) {
		t.Error("stateless blind wrapper varied with seed")
	}
}
