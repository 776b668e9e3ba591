// Package results converts finished tournaments into their two output
// surfaces: the JSON score document and the human-readable pairing report.
// The document layout is stable so archived runs stay loadable.
package results

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/h-e19/ipd-tournament-simulator/engine"
	"github.com/h-e19/ipd-tournament-simulator/internal/tournament"
)

// DefaultFilename is where the command-line runner writes scores unless told
// otherwise.
const DefaultFilename = "tournament_scores.json"

// Document is the serialized form of one tournament. Field order matters:
// it is the order keys appear in the output file.
type Document struct {
	Players       []string     `json:"players"`
	Discount      float64      `json:"discount"`
	PayoffPlayer1 [][]float64  `json:"payoff_player1"`
	PayoffPlayer2 [][]float64  `json:"payoff_player2"`
	Results       []PairScores `json:"results"`
}

// PairScores holds one unordered pairing's scores, lower roster index first.
type PairScores struct {
	Player1 string       `json:"player1"`
	Player2 string       `json:"player2"`
	Modes   []ModeScores `json:"modes"`
}

// ModeScores holds the weighted per-round scores of both players in one mode.
type ModeScores struct {
	Mode     int       `json:"mode"`
	ScoresP1 []float64 `json:"scores_p1"`
	ScoresP2 []float64 `json:"scores_p2"`
}

// New flattens a runner result into its document form.
func New(res *tournament.Result) *Document {
	doc := &Document{
		Players:       res.Players,
		Discount:      res.Rules.Discount,
		PayoffPlayer1: res.Payoffs.Matrix1(),
		PayoffPlayer2: res.Payoffs.Matrix2(),
		Results:       make([]PairScores, 0, len(res.Pairs)),
	}
	for _, p := range res.Pairs {
		pair := PairScores{
			Player1: p.Player1,
			Player2: p.Player2,
			Modes:   make([]ModeScores, engine.NumModes),
		}
		for m, match := range p.Matches {
			pair.Modes[m] = ModeScores{
				Mode:     m,
				ScoresP1: match.ScoresP1,
				ScoresP2: match.ScoresP2,
			}
		}
		doc.Results = append(doc.Results, pair)
	}
	return doc
}

// Marshal renders the document with two-space indentation.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}
	return data, nil
}

// Encode writes the marshaled document to w.
func (d *Document) Encode(w io.Writer) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// Save writes the document to path. Computation always finishes before this
// runs, so an IO failure here never costs the scores in memory.
func (d *Document) Save(path string) error {
	data, err := d.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}

// Load reads a previously saved document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &doc, nil
}
