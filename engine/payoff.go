package engine

import "fmt"

// PayoffModel holds the two 2x2 payoff matrices of a tournament. Both
// lookups are indexed by player 1's move first: the payoff to player 1 for
// moves (a, b) is Matrix1[a][b] and the payoff to player 2 is Matrix2[a][b].
// A symmetric game therefore supplies Matrix2 as the transpose of Matrix1.
//
// The model is immutable after construction and shared by every match of a
// tournament.
type PayoffModel struct {
	m1 [2][2]float64
	m2 [2][2]float64
}

// NewPayoffModel validates the shape of both matrices and copies them into
// an immutable model. Any entry count other than 2x2 is a ConfigError.
func NewPayoffModel(player1, player2 [][]float64) (*PayoffModel, error) {
	var pm PayoffModel
	if err := copyMatrix(&pm.m1, "player 1", player1); err != nil {
		return nil, err
	}
	if err := copyMatrix(&pm.m2, "player 2", player2); err != nil {
		return nil, err
	}
	return &pm, nil
}

// copyMatrix checks one source matrix for 2x2 shape and copies it.
func copyMatrix(dst *[2][2]float64, label string, src [][]float64) error {
	if len(src) != 2 {
		return &ConfigError{Reason: fmt.Sprintf("%s payoff matrix must have 2 rows, got %d", label, len(src))}
	}
	for i, row := range src {
		if len(row) != 2 {
			return &ConfigError{Reason: fmt.Sprintf("%s payoff matrix row %d must have 2 entries, got %d", label, i, len(row))}
		}
		dst[i][0], dst[i][1] = row[0], row[1]
	}
	return nil
}

// DefaultPayoffs returns the classic prisoner's dilemma values:
// [[3,0],[5,1]] for player 1 and its transpose [[3,5],[0,1]] for player 2.
func DefaultPayoffs() *PayoffModel {
	return &PayoffModel{
		m1: [2][2]float64{{3, 0}, {5, 1}},
		m2: [2][2]float64{{3, 5}, {0, 1}},
	}
}

// Lookup returns the payoffs to player 1 and player 2 for one pair of moves.
// Both moves must already be validated.
func (p *PayoffModel) Lookup(move1, move2 Move) (float64, float64) {
	return p.m1[move1][move2], p.m2[move1][move2]
}

// Matrix1 returns a copy of player 1's matrix for serialization.
func (p *PayoffModel) Matrix1() [][]float64 {
	return [][]float64{{p.m1[0][0], p.m1[0][1]}, {p.m1[1][0], p.m1[1][1]}}
}

// Matrix2 returns a copy of player 2's matrix for serialization.
func (p *PayoffModel) Matrix2() [][]float64 {
	return [][]float64{{p.m2[0][0], p.m2[0][1]}, {p.m2[1][0], p.m2[1][1]}}
}
