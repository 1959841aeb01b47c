package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Position addresses a cell by row and column, both in [0, Size).
type Position struct {
	Row int
	Col int
}

func PositionAt(index int) Position {
	return Position{Row: index / Size, Col: index % Size}
}

func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

// Index is the row-major cell index of p
func (p Position) Index() int {
	return p.Row*Size + p.Col
}

// String formats p as protocol coordinates, column first.
func (p Position) String() string {
	return strconv.Itoa(p.Col) + "," + strconv.Itoa(p.Row)
}

// ParsePosition parses protocol coordinates "x,y" where x is the column and y
// the row, both zero-based.
func ParsePosition(s string) (Position, error) {
	fields := strings.Split(strings.TrimSpace(s), ",")
	if len(fields) != 2 {
		return Position{}, fmt.Errorf("%w: %q is not x,y", ErrInvalidPosition, s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return Position{}, fmt.Errorf("%w: column %q: %v", ErrInvalidPosition, fields[0], err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return Position{}, fmt.Errorf("%w: row %q: %v", ErrInvalidPosition, fields[1], err)
	}
	pos := Position{Row: y, Col: x}
	if !pos.Valid() {
		return Position{}, fmt.Errorf("%w: %d,%d is outside the board", ErrInvalidPosition, x, y)
	}
	return pos, nil
}
