package results

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h-e19/ipd-tournament-simulator/engine"
)

// twoPlayerDoc builds a fixture with distinct totals per mode and side:
// player 1 totals m+0.5, player 2 totals 2m.
func twoPlayerDoc() *Document {
	pair := PairScores{Player1: "Alpha", Player2: "Beta"}
	for m := 0; m < engine.NumModes; m++ {
		pair.Modes = append(pair.Modes, ModeScores{
			Mode:     m,
			ScoresP1: []float64{float64(m), 0.5},
			ScoresP2: []float64{float64(2 * m)},
		})
	}
	return &Document{
		Players:       []string{"Alpha", "Beta"},
		Discount:      0.95,
		PayoffPlayer1: [][]float64{{3, 0}, {5, 1}},
		PayoffPlayer2: [][]float64{{3, 5}, {0, 1}},
		Results:       []PairScores{pair},
	}
}

// TestWriteReportGolden verifies the exact rendering: both orderings of the
// pairing, mode labels, and two-decimal totals.
func TestWriteReportGolden(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteReport(&sb, twoPlayerDoc()))

	want := `Alpha vs Beta:
  Mode 0 (Blind Iterative): 0.50 - 0.00
  Mode 1 (Memory Iterative): 1.50 - 2.00
  Mode 2 (Discounted Blind): 2.50 - 4.00
  Mode 3 (Discounted Memory): 3.50 - 6.00
  Mode 4 (Stochastic Blind): 4.50 - 8.00
  Mode 5 (Stochastic Memory): 5.50 - 10.00
Beta vs Alpha:
  Mode 0 (Blind Iterative): 0.00 - 0.50
  Mode 1 (Memory Iterative): 2.00 - 1.50
  Mode 2 (Discounted Blind): 4.00 - 2.50
  Mode 3 (Discounted Memory): 6.00 - 3.50
  Mode 4 (Stochastic Blind): 8.00 - 4.50
  Mode 5 (Stochastic Memory): 10.00 - 5.50
`
	assert.Equal(t, want, sb.String())
}

// TestWriteReportBlockOrder verifies every ordered pair of distinct players
// gets a block, in roster order.
func TestWriteReportBlockOrder(t *testing.T) {
	doc := New(runSmallTournament(t))

	var sb strings.Builder
	require.NoError(t, WriteReport(&sb, doc))

	var headers []string
	for _, line := range strings.Split(sb.String(), "\n") {
		if strings.HasSuffix(line, ":") && !strings.HasPrefix(line, " ") {
			headers = append(headers, strings.TrimSuffix(line, ":"))
		}
	}
	want := []string{
		"CooperateBot vs DefectBot",
		"CooperateBot vs TFT",
		"DefectBot vs CooperateBot",
		"DefectBot vs TFT",
		"TFT vs CooperateBot",
		"TFT vs DefectBot",
	}
	assert.Equal(t, want, headers)

	lines := strings.Count(sb.String(), "\n")
	assert.Equal(t, 6*(1+engine.NumModes), lines, "each block is a header plus one line per mode")
}

// TestWriteReportEmptyRoster verifies a single-player document renders
// nothing.
func TestWriteReportEmptyRoster(t *testing.T) {
	doc := &Document{Players: []string{"Solo"}}
	var sb strings.Builder
	require.NoError(t, WriteReport(&sb, doc))
	assert.Empty(t, sb.String())
}

// TestWriteReportUnknownPlayer verifies mismatched player names surface an
// error instead of a silent zero row.
func TestWriteReportUnknownPlayer(t *testing.T) {
	doc := twoPlayerDoc()
	doc.Results[0].Player2 = "Ghost"
	var sb strings.Builder
	require.Error(t, WriteReport(&sb, doc))
}
