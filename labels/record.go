// Package labels collects the (position, search policy, outcome) triples a
// self-play game produces for training the evaluator.
package labels

import (
	"gomoku/game"
)

// Record is one training example. Board holds 0 for empty, 1 and 2 for the
// stones of player one and two. Outcome is set by Finalize from the point of
// view of Player.
type Record struct {
	Board   [game.NumCells]int8    `json:"board"`
	Policy  [game.NumCells]float32 `json:"policy"`
	Player  int8                   `json:"player"`
	Outcome float32                `json:"outcome"`
}

// Recorder accumulates the plies of one game.
type Recorder struct {
	records []Record
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Add records the position before player's move and the search policy for it.
func (r *Recorder) Add(board game.Board, policy [game.NumCells]float32, player game.Player) {
	record := Record{Policy: policy, Player: int8(player)}
	for i, stone := range board.Cells() {
		record.Board[i] = int8(stone)
	}
	r.records = append(r.records, record)
}

func (r *Recorder) Len() int {
	return len(r.records)
}

// Finalize labels every ply +1 when its player won, -1 when it lost and 0 on
// a draw, then hands the records over and resets the recorder.
func (r *Recorder) Finalize(winner game.Player, draw bool) []Record {
	records := r.records
	for i := range records {
		switch {
		case draw:
			records[i].Outcome = 0
		case game.Player(records[i].Player) == winner:
			records[i].Outcome = 1
		default:
			records[i].Outcome = -1
		}
	}
	r.records = nil
	return records
}
