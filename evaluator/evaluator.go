// Package evaluator is the boundary to the policy/value network. The search
// only depends on the Evaluator interface.
package evaluator

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"gomoku/game"
)

type Prediction struct {
	Policy [game.NumCells]float32 // Prior per cell, row-major
	Value  float32                // Expected outcome for the side to move, in [-1, 1]
}

// Evaluator infers a move prior and a value from encoded planes.
type Evaluator interface {
	Infer(planes *game.Planes) (Prediction, error)
}

// Sanitize turns a raw prediction into a usable one for b: NaN, infinite and
// negative priors are dropped, occupied cells are masked, and the remainder is
// normalised to sum to 1. When nothing is left the prior is uniform over the
// empty cells. The value is clamped to [-1, 1] and NaN becomes 0. The second
// result reports whether anything had to be repaired beyond masking and
// normalising.
func Sanitize(pred Prediction, b *game.Board) (Prediction, bool) {
	var out Prediction
	repaired := false

	priors := make([]float64, game.NumCells)
	for i, p := range pred.Policy {
		v := float64(p)
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			repaired = true
			continue
		}
		if b.IsEmpty(game.PositionAt(i)) {
			priors[i] = v
		}
	}

	if sum := floats.Sum(priors); sum > 0 && !math.IsInf(sum, 0) {
		floats.Scale(1/sum, priors)
	} else if empties := b.EmptyCount(); empties > 0 {
		repaired = true
		uniform := 1 / float64(empties)
		for i := range priors {
			if b.IsEmpty(game.PositionAt(i)) {
				priors[i] = uniform
			}
		}
	}
	for i, p := range priors {
		out.Policy[i] = float32(p)
	}

	value := float64(pred.Value)
	switch {
	case math.IsNaN(value):
		value = 0
		repaired = true
	case value > 1:
		value = 1
		repaired = true
	case value < -1:
		value = -1
		repaired = true
	}
	out.Value = float32(value)

	return out, repaired
}
