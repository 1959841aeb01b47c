package evaluator

import "gomoku/game"

// Uniform gives every cell the same prior and a neutral value. Sanitize masks
// the occupied cells afterwards.
type Uniform struct{}

func NewUniform() Uniform {
	return Uniform{}
}

func (Uniform) Infer(*game.Planes) (Prediction, error) {
	var pred Prediction
	for i := range pred.Policy {
		pred.Policy[i] = 1.0 / game.NumCells
	}
	return pred, nil
}
