package game

import (
	"fmt"
	"strings"
)

// Board is the physical 19x19 position. It is a value type: assigning or
// passing a Board copies it, so speculative play never touches the caller's
// board.
type Board struct {
	cells  [NumCells]Stone
	stones int
}

func NewBoard() Board {
	return Board{}
}

func (b *Board) Get(pos Position) Stone {
	return b.cells[pos.Index()]
}

func (b *Board) IsEmpty(pos Position) bool {
	return b.cells[pos.Index()] == Empty
}

// Place puts a stone of player at pos.
func (b *Board) Place(pos Position, player Player) error {
	if !pos.Valid() {
		return fmt.Errorf("%w: row %d col %d", ErrInvalidPosition, pos.Row, pos.Col)
	}
	if b.cells[pos.Index()] != Empty {
		return fmt.Errorf("%w: %s", ErrOccupied, pos)
	}
	b.cells[pos.Index()] = player.Stone()
	b.stones++
	return nil
}

// Remove clears pos. It is the undo of a speculative Place.
func (b *Board) Remove(pos Position) {
	if b.cells[pos.Index()] != Empty {
		b.cells[pos.Index()] = Empty
		b.stones--
	}
}

func (b *Board) Stones() int {
	return b.stones
}

func (b *Board) EmptyCount() int {
	return NumCells - b.stones
}

func (b *Board) Full() bool {
	return b.stones == NumCells
}

// EmptyCells lists the empty cells in row-major order. The i-th entry is the
// cell whose ordinal is i.
func (b *Board) EmptyCells() []Position {
	cells := make([]Position, 0, b.EmptyCount())
	for i, s := range b.cells {
		if s == Empty {
			cells = append(cells, PositionAt(i))
		}
	}
	return cells
}

// Ordinal returns the number of empty cells strictly before pos in row-major
// order. For an empty pos it is the index of pos in EmptyCells. Cells before
// pos are unaffected by a stone placed at pos, so the ordinal is the same on
// the board before and after that move.
func (b *Board) Ordinal(pos Position) (int, error) {
	if !pos.Valid() {
		return 0, fmt.Errorf("%w: row %d col %d", ErrInvalidPosition, pos.Row, pos.Col)
	}
	ordinal := 0
	for _, s := range b.cells[:pos.Index()] {
		if s == Empty {
			ordinal++
		}
	}
	return ordinal, nil
}

// Cells returns a copy of the occupancy grid in row-major order.
func (b *Board) Cells() [NumCells]Stone {
	return b.cells
}

func (b Board) String() string {
	var sb strings.Builder
	sb.Grow(NumCells*2 + Size)
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			switch b.cells[row*Size+col] {
			case StoneOne:
				sb.WriteByte('x')
			case StoneTwo:
				sb.WriteByte('o')
			default:
				sb.WriteByte('.')
			}
			if col < Size-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
