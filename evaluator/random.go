package evaluator

import (
	"sync"

	"golang.org/x/exp/rand"

	"gomoku/game"
)

// Random returns noisy priors and values, like an untrained network. It is
// seeded so self-play runs can be reproduced.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Infer(*game.Planes) (Prediction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pred Prediction
	for i := range pred.Policy {
		pred.Policy[i] = r.rng.Float32()
	}
	pred.Value = r.rng.Float32()*2 - 1
	return pred, nil
}
