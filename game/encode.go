package game

const NumPlanes = 3

// Planes is the evaluator input: plane 0 holds the stones of the side to move,
// plane 1 the opponent's stones and plane 2 is all ones when PlayerTwo is to
// move. Values are 0 or 1.
type Planes [NumPlanes][Size][Size]float32

func Encode(b *Board, toMove Player) *Planes {
	var planes Planes
	own, other := toMove.Stone(), toMove.Opponent().Stone()
	for i, s := range b.cells {
		row, col := i/Size, i%Size
		switch s {
		case own:
			planes[0][row][col] = 1
		case other:
			planes[1][row][col] = 1
		}
		if toMove == PlayerTwo {
			planes[2][row][col] = 1
		}
	}
	return &planes
}

// NHWC flattens the planes channel-last, the layout of a (1, 19, 19, 3) input.
func (p *Planes) NHWC() []float32 {
	out := make([]float32, 0, NumPlanes*NumCells)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			for c := 0; c < NumPlanes; c++ {
				out = append(out, p[c][row][col])
			}
		}
	}
	return out
}
