package searcher

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestParseSelection(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Selection
	}{
		{"", MaxVisits},
		{"max-visits", MaxVisits},
		{"MaxVisits", MaxVisits},
		{"proportional", Proportional},
		{" sample ", Proportional},
	} {
		got, err := ParseSelection(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}

	_, err := ParseSelection("greedy")
	require.Error(t, err)
}

func TestPick(t *testing.T) {
	children := func(priors ...float64) []*node {
		nodes := make([]*node, len(priors))
		for i, p := range priors {
			nodes[i] = &node{prior: p}
		}
		return nodes
	}

	t.Run("max visits picks the most visited child", func(t *testing.T) {
		tree := &Tree{root: &node{children: children(0.3, 0.3, 0.4)}}

		require.Equal(t, 1, tree.pick([]float64{3, 10, 2}))
	})

	t.Run("ties are broken by prior", func(t *testing.T) {
		tree := &Tree{root: &node{children: children(0.1, 0.6, 0.3)}}

		require.Equal(t, 1, tree.pick([]float64{0, 0, 0}))
		require.Equal(t, 2, tree.pick([]float64{1, 0, 1}))
	})

	t.Run("proportional never picks an unvisited child", func(t *testing.T) {
		tree := &Tree{
			root:        &node{children: children(0.25, 0.25, 0.25, 0.25)},
			selection:   Proportional,
			temperature: 1,
			rng:         rand.New(rand.NewSource(5)),
		}

		seen := map[int]int{}
		for i := 0; i < 200; i++ {
			seen[tree.pick([]float64{0, 5, 0, 5})]++
		}

		require.Zero(t, seen[0])
		require.Zero(t, seen[2])
		require.Positive(t, seen[1])
		require.Positive(t, seen[3])
	})

	t.Run("proportional falls back to max visits without visits", func(t *testing.T) {
		tree := &Tree{
			root:        &node{children: children(0.2, 0.8)},
			selection:   Proportional,
			temperature: 1,
			rng:         rand.New(rand.NewSource(5)),
		}

		require.Equal(t, 1, tree.pick([]float64{0, 0}))
	})
}

func TestAdjustTemperature(t *testing.T) {
	t.Run("temperature one is proportional to visits", func(t *testing.T) {
		got := adjustTemperature([]float64{1, 3}, 1)

		require.InDeltaSlice(t, []float64{0.25, 0.75}, got, 1e-9)
	})

	t.Run("low temperature sharpens", func(t *testing.T) {
		got := adjustTemperature([]float64{1, 3}, 0.5)

		require.InDeltaSlice(t, []float64{0.1, 0.9}, got, 1e-9)
	})
}
