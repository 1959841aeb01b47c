package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gomoku/evaluator"
	"gomoku/game"
	"gomoku/labels"
	"gomoku/searcher"
)

func newTrees(board game.Board, toMove game.Player, simulations int) (*searcher.Tree, *searcher.Tree) {
	first := searcher.NewTree(game.PlayerOne, board, toMove, evaluator.NewRandom(1),
		searcher.WithSimulations(simulations), searcher.WithSelection(searcher.Proportional, 1), searcher.WithSeed(1), searcher.WithMetrics())
	second := searcher.NewTree(game.PlayerTwo, board, toMove, evaluator.NewRandom(2),
		searcher.WithSimulations(simulations), searcher.WithSelection(searcher.Proportional, 1), searcher.WithSeed(2), searcher.WithMetrics())
	return first, second
}

func TestLocalEngine(t *testing.T) {
	t.Run("panics on swapped trees", func(t *testing.T) {
		first, second := newTrees(game.NewBoard(), game.PlayerOne, 5)

		require.Panics(t, func() {
			LocalEngine(second, first)
		})
	})

	t.Run("panics on diverging boards", func(t *testing.T) {
		b := game.NewBoard()
		first, _ := newTrees(b, game.PlayerOne, 5)
		require.NoError(t, b.Place(game.Position{Row: 0, Col: 0}, game.PlayerOne))
		_, second := newTrees(b, game.PlayerTwo, 5)

		require.Panics(t, func() {
			LocalEngine(first, second)
		})
	})
}

func TestLocalRun(t *testing.T) {
	t.Run("stops at max moves and labels a draw", func(t *testing.T) {
		first, second := newTrees(game.NewBoard(), game.PlayerOne, 20)
		recorder := labels.NewRecorder()
		e := LocalEngine(first, second, WithRecorder(recorder), WithMaxMoves(6))

		winner, gameMetric, moveMetrics, err := e.Run()

		require.NoError(t, err)
		require.Empty(t, winner)
		require.Equal(t, 6, gameMetric.TotalMoves)
		require.Len(t, moveMetrics, 6)
		final := e.Board()
		require.Equal(t, 6, final.Stones())
		for i, mm := range moveMetrics {
			require.Equal(t, i%2, mm.Player, "Players should alternate")
			require.Equal(t, 20, mm.Simulations)
		}
		require.Len(t, e.Records(), 6)
		for _, record := range e.Records() {
			require.Zero(t, record.Outcome)
		}
	})

	t.Run("finishes a won game and labels by winner", func(t *testing.T) {
		b := game.NewBoard()
		for col := 0; col < 4; col++ {
			require.NoError(t, b.Place(game.Position{Row: 5, Col: col}, game.PlayerOne))
		}
		for col := 10; col < 13; col++ {
			require.NoError(t, b.Place(game.Position{Row: 15, Col: col}, game.PlayerTwo))
		}
		require.NoError(t, b.Place(game.Position{Row: 1, Col: 1}, game.PlayerTwo))
		first := searcher.NewTree(game.PlayerOne, b, game.PlayerOne, evaluator.NewUniform(), searcher.WithSimulations(600))
		second := searcher.NewTree(game.PlayerTwo, b, game.PlayerOne, evaluator.NewUniform(), searcher.WithSimulations(600))
		recorder := labels.NewRecorder()
		e := LocalEngine(first, second, WithRecorder(recorder))

		winner, gameMetric, _, err := e.Run()

		require.NoError(t, err)
		require.Equal(t, "player1", winner)
		require.Equal(t, "player1", gameMetric.Winner)
		require.Equal(t, 1, gameMetric.TotalMoves)
		final := e.Board()
		require.Equal(t, game.StoneOne, final.Get(game.Position{Row: 5, Col: 4}))
		records := e.Records()
		require.Len(t, records, 1)
		require.Equal(t, float32(1), records[0].Outcome)
	})

	t.Run("full board is a draw without a move", func(t *testing.T) {
		b := game.NewBoard()
		for r := 0; r < game.Size; r++ {
			for c := 0; c < game.Size; c++ {
				require.NoError(t, b.Place(game.Position{Row: r, Col: c}, game.Player(((c+2*r)%4)/2)))
			}
		}
		first, second := newTrees(b, game.PlayerOne, 5)
		e := LocalEngine(first, second)

		winner, gameMetric, moveMetrics, err := e.Run()

		require.NoError(t, err)
		require.Empty(t, winner)
		require.Zero(t, gameMetric.TotalMoves)
		require.Empty(t, moveMetrics)
	})
}
