package results

import (
	"fmt"
	"io"

	"github.com/h-e19/ipd-tournament-simulator/engine"
)

// WriteReport prints the pairing summary: one block per ordered pair of
// distinct players, with each mode's score totals from the row player's
// side first.
func WriteReport(w io.Writer, doc *Document) error {
	totals, err := doc.totals()
	if err != nil {
		return err
	}
	n := len(doc.Players)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if _, err := fmt.Fprintf(w, "%s vs %s:\n", doc.Players[i], doc.Players[j]); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			for m := 0; m < engine.NumModes; m++ {
				_, err := fmt.Fprintf(w, "  Mode %d (%s): %.2f - %.2f\n",
					m, engine.Mode(m), totals[i][j][m], totals[j][i][m])
				if err != nil {
					return fmt.Errorf("write report: %w", err)
				}
			}
		}
	}
	return nil
}

// totals sums each pairing's per-round scores into an n x n x modes grid
// addressed by roster index.
func (d *Document) totals() ([][][]float64, error) {
	index := make(map[string]int, len(d.Players))
	for i, name := range d.Players {
		index[name] = i
	}

	n := len(d.Players)
	grid := make([][][]float64, n)
	for i := range grid {
		grid[i] = make([][]float64, n)
		for j := range grid[i] {
			grid[i][j] = make([]float64, engine.NumModes)
		}
	}

	for _, pair := range d.Results {
		i, ok := index[pair.Player1]
		if !ok {
			return nil, fmt.Errorf("results reference unknown player %q", pair.Player1)
		}
		j, ok := index[pair.Player2]
		if !ok {
			return nil, fmt.Errorf("results reference unknown player %q", pair.Player2)
		}
		for _, ms := range pair.Modes {
			if ms.Mode < 0 || ms.Mode >= engine.NumModes {
				return nil, fmt.Errorf("pair %s vs %s carries unknown mode %d", pair.Player1, pair.Player2, ms.Mode)
			}
			grid[i][j][ms.Mode] = sum(ms.ScoresP1)
			grid[j][i][ms.Mode] = sum(ms.ScoresP2)
		}
	}
	return grid, nil
}

func sum(xs []float64) float64 {
	total := 0.0
	for _, x := range xs {
		total += x
	}
	return total
}
