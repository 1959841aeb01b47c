package engine

import "gomoku/experiments/metrics"

// MaxMoves caps a game at one move per cell.
const MaxMoves = 361

type Engine interface {
	// Run plays a game till there's a winner, the board is full or a max number
	// of moves is reached. winner is empty on a draw.
	Run() (winner string, gameMetric metrics.GameMetric, moveMetrics []metrics.MoveMetric, err error)
}
