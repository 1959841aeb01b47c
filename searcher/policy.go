package searcher

import "math"

// Hyperparameters for MCTS

const DefaultCpuct = 1.5 // Exploration constant

const Win = 1.0   // Value of a winning outcome
const Loss = -Win // Value of a losing outcome (negate from opponent perspective)
const Draw = 0.0

type puct struct {
	numerator float64
}

func newPUCT(cpuct float64, N float64) *puct {
	// A parent is visited at least once before its children are selected, but
	// tolerate 0 so the first selection still follows the priors
	return &puct{numerator: cpuct * math.Sqrt(math.Max(N, 1))}
}

func (p puct) evaluate(w float64, n float64, prior float64) float64 {
	// PUCT = Q + c*P*sqrt(N)/(1+n), Q = 0 for an unvisited child
	q := 0.0
	if n > 0 {
		q = w / n
	}
	return q + p.numerator*prior/(1+n)
}
