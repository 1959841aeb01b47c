package game

import "errors"

const (
	Size      = 19
	NumCells  = Size * Size
	WinLength = 5
)

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrOccupied        = errors.New("cell is occupied")
)

type Player int8

const (
	PlayerOne Player = iota
	PlayerTwo
)

func (p Player) Opponent() Player {
	return p ^ 1
}

func (p Player) Stone() Stone {
	return Stone(p + 1)
}

func (p Player) String() string {
	switch p {
	case PlayerOne:
		return "player1"
	case PlayerTwo:
		return "player2"
	default:
		return "unknown"
	}
}

// Stone is the occupancy of a single cell
type Stone int8

const (
	Empty Stone = iota
	StoneOne
	StoneTwo
)

// Owner returns the player a stone belongs to, false for an empty cell.
func (s Stone) Owner() (Player, bool) {
	if s == Empty {
		return 0, false
	}
	return Player(s - 1), true
}
