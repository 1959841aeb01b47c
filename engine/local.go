package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"gomoku/experiments/metrics"
	"gomoku/game"
	"gomoku/labels"
	"gomoku/searcher"
)

// Local plays both sides in process. Each player keeps its own tree; after a
// move the mover's tree has already advanced and the observer's tree follows
// with UpdateTurn, so no node is ever shared between the two.
type Local struct {
	board    game.Board
	trees    [2]*searcher.Tree
	recorder *labels.Recorder
	maxMoves int
	records  []labels.Record
}

type Option func(e *Local)

// WithRecorder collects a training label for every ply.
func WithRecorder(recorder *labels.Recorder) Option {
	return func(e *Local) {
		e.recorder = recorder
	}
}

func WithMaxMoves(maxMoves int) Option {
	return func(e *Local) {
		if maxMoves > 0 && maxMoves < MaxMoves {
			e.maxMoves = maxMoves
		}
	}
}

// LocalEngine pairs the trees of player one and player two. Both must start
// from the same board with the same side to move.
func LocalEngine(first, second *searcher.Tree, options ...Option) *Local {
	if first.Player() != game.PlayerOne || second.Player() != game.PlayerTwo {
		panic("trees must belong to player one and player two")
	}
	if first.Board() != second.Board() || first.ToMove() != second.ToMove() {
		panic("trees must start from the same position")
	}

	e := &Local{
		board:    first.Board(),
		trees:    [2]*searcher.Tree{first, second},
		maxMoves: MaxMoves,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *Local) Run() (string, metrics.GameMetric, []metrics.MoveMetric, error) {
	toMove := e.trees[0].ToMove()
	gameMetric := metrics.GameMetric{
		StartingPlayer: int(toMove),
		StartTime:      time.Now(),
	}
	var moveMetrics []metrics.MoveMetric

	log.Info().Msgf("%s is starting", toMove)

	winner, decided, draw := game.PlayerOne, false, false
	for step := 1; step <= e.maxMoves; step++ {
		if e.board.Full() {
			draw = true
			break
		}
		mover, observer := e.trees[toMove], e.trees[toMove.Opponent()]

		result, err := mover.Turn(e.board)
		if err != nil {
			return "", gameMetric, moveMetrics, fmt.Errorf("%s failed to move at step %d: %w", toMove, step, err)
		}
		if err := observer.UpdateTurn(e.board, result.Position); err != nil {
			return "", gameMetric, moveMetrics, fmt.Errorf("%s failed to follow %s at step %d: %w", toMove.Opponent(), result.Position, step, err)
		}

		if e.recorder != nil {
			e.recorder.Add(e.board, result.Policy, toMove)
		}
		moveMetrics = append(moveMetrics, metrics.MoveMetric{
			Step:         step,
			Player:       int(toMove),
			Position:     result.Position.String(),
			SearchMetric: result.Metric,
		})
		e.board = result.Board
		gameMetric.TotalMoves = step

		log.Debug().Msgf("step %d: %s played %s", step, toMove, result.Position)

		if result.GameOver {
			winner, decided, draw = toMove, !result.Draw, result.Draw
			break
		}
		toMove = toMove.Opponent()
	}

	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)

	if e.recorder != nil {
		e.records = e.recorder.Finalize(winner, !decided)
	}

	if !decided {
		if draw {
			log.Info().Msgf("game drawn after %d moves", gameMetric.TotalMoves)
		} else {
			log.Info().Msgf("stopped after %d moves (no winner yet)", gameMetric.TotalMoves)
		}
		return "", gameMetric, moveMetrics, nil
	}
	gameMetric.Winner = winner.String()
	log.Info().Msgf("%s won after %d moves", winner, gameMetric.TotalMoves)
	return winner.String(), gameMetric, moveMetrics, nil
}

// Board returns the position at the end of the game so far.
func (e *Local) Board() game.Board {
	return e.board
}

// Records returns the finalized labels of the last Run.
func (e *Local) Records() []labels.Record {
	return e.records
}
