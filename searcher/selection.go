package searcher

import (
	"fmt"
	"math"
	"strings"
)

// Selection decides how the move is chosen from the root visit counts.
type Selection int

const (
	// MaxVisits plays the most visited move. Used for competitive play.
	MaxVisits Selection = iota
	// Proportional samples a move with probability N^(1/temperature). Used in
	// self-play so label games do not repeat.
	Proportional
)

func ParseSelection(s string) (Selection, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "max", "maxvisits", "max-visits":
		return MaxVisits, nil
	case "proportional", "sample":
		return Proportional, nil
	}
	return MaxVisits, fmt.Errorf("unknown selection policy %q", s)
}

func (s Selection) String() string {
	if s == Proportional {
		return "proportional"
	}
	return "max-visits"
}

// pick returns the ordinal of the chosen root child.
func (t *Tree) pick(counts []float64) int {
	if t.selection == Proportional {
		if ordinal, ok := t.sample(adjustTemperature(counts, t.temperature)); ok {
			return ordinal
		}
	}
	return t.findMax(counts)
}

// findMax breaks ties by prior, then by ordinal.
func (t *Tree) findMax(counts []float64) int {
	best := 0
	for i := 1; i < len(counts); i++ {
		if counts[i] > counts[best] ||
			(counts[i] == counts[best] && t.root.children[i].prior > t.root.children[best].prior) {
			best = i
		}
	}
	return best
}

func adjustTemperature(counts []float64, temperature float64) []float64 {
	exponent := 1.0 / temperature
	sum := 0.0
	adjusted := make([]float64, len(counts))
	for i, visits := range counts {
		prob := math.Pow(visits, exponent)
		sum += prob
		adjusted[i] = prob
	}
	if sum == 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
		return nil
	}
	for i := range adjusted {
		adjusted[i] /= sum
	}
	return adjusted
}

func (t *Tree) sample(probs []float64) (int, bool) {
	if len(probs) == 0 {
		return 0, false
	}
	sampled := t.rng.Float64()
	cumulative := 0.0
	last := -1
	for i, prob := range probs {
		if prob == 0 {
			continue
		}
		last = i
		cumulative += prob
		if sampled < cumulative {
			return i, true
		}
	}
	return last, last >= 0 // Rounding left a sliver past the last move
}
