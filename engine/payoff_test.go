package engine

import (
	"errors"
	"testing"
)

// TestNewPayoffModelShape verifies that any non-2x2 input is rejected.
func TestNewPayoffModelShape(t *testing.T) {
	good := [][]float64{{3, 0}, {5, 1}}
	bad := [][][]float64{
		nil,
		{},
		{{3, 0}},
		{{3, 0}, {5, 1}, {0, 0}},
		{{3}, {5, 1}},
		{{3, 0}, {5, 1, 2}},
		{{3, 0}, nil},
	}
	for i, m := range bad {
		if _, err := NewPayoffModel(m, good); err == nil {
			t.Errorf("case %d: NewPayoffModel(bad, good) accepted malformed player 1 matrix", i)
		}
		if _, err := NewPayoffModel(good, m); err == nil {
			t.Errorf("case %d: NewPayoffModel(good, bad) accepted malformed player 2 matrix", i)
		}
	}

	_, err := NewPayoffModel(nil, good)
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Errorf("shape error is %T, want *ConfigError", err)
	}

	if _, err := NewPayoffModel(good, good); err != nil {
		t.Errorf("NewPayoffModel(good, good) = %v, want nil error", err)
	}
}

// TestLookupConvention verifies both matrices are indexed by player 1's move
// first, using deliberately asymmetric values.
func TestLookupConvention(t *testing.T) {
	pm, err := NewPayoffModel(
		[][]float64{{1, 2}, {3, 4}},
		[][]float64{{10, 20}, {30, 40}},
	)
	if err != nil {
		t.Fatalf("NewPayoffModel: %v", err)
	}
	tests := []struct {
		move1, move2 Move
		want1, want2 float64
	}{
		{Cooperate, Cooperate, 1, 10},
		{Cooperate, Defect, 2, 20},
		{Defect, Cooperate, 3, 30},
		{Defect, Defect, 4, 40},
	}
	for _, tt := range tests {
		got1, got2 := pm.Lookup(tt.move1, tt.move2)
		if got1 != tt.want1 || got2 != tt.want2 {
			t.Errorf("Lookup(%d,%d) = (%g,%g), want (%g,%g)",
				uint8(tt.move1), uint8(tt.move2), got1, got2, tt.want1, tt.want2)
		}
	}
}

// TestDefaultPayoffs verifies the classic prisoner's dilemma values and that
// player 2's matrix is the transpose of player 1's.
func TestDefaultPayoffs(t *testing.T) {
	pm := DefaultPayoffs()
	tests := []struct {
		move1, move2 Move
		want1, want2 float64
	}{
		{Cooperate, Cooperate, 3, 3}, // mutual cooperation
		{Cooperate, Defect, 0, 5},    // sucker vs temptation
		{Defect, Cooperate, 5, 0},    // temptation vs sucker
		{Defect, Defect, 1, 1},       // mutual defection
	}
	for _, tt := range tests {
		got1, got2 := pm.Lookup(tt.move1, tt.move2)
		if got1 != tt.want1 || got2 != tt.want2 {
			t.Errorf("Lookup(%d,%d) = (%g,%g), want (%g,%g)",
				uint8(tt.move1), uint8(tt.move2), got1, got2, tt.want1, tt.want2)
		}
	}
}

// TestMatrixCopies verifies Matrix1/Matrix2 return copies, not views.
func TestMatrixCopies(t *testing.T) {
	pm := DefaultPayoffs()
	m := pm.Matrix1()
	m[0][0] = 99
	if got, _ := pm.Lookup(Cooperate, Cooperate); got != 3 {
		t.Errorf("Lookup(0,0) = %g after mutating Matrix1 copy, want 3", got)
	}
	m2 := pm.Matrix2()
	m2[1][1] = -7
	if _, got := pm.Lookup(Defect, Defect); got != 1 {
		t.Errorf("Lookup(1,1) = %g after mutating Matrix2 copy, want 1", got)
	}
}
