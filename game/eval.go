package game

// Axes scanned for a run: horizontal, vertical, diagonal, anti-diagonal.
var axes = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// Wins reports whether the stone of player at pos is part of an unbroken run
// of at least WinLength stones along any axis. The caller places the stone
// first (speculatively if needed). At most WinLength-1 cells are scanned in
// each direction, so a call looks at no more than 9 cells per axis.
func Wins(b *Board, player Player, pos Position) bool {
	if !pos.Valid() {
		return false
	}
	if b.cells[pos.Index()] != player.Stone() {
		return false
	}
	return completesRun(b, player.Stone(), pos)
}

// completesRun does not read pos itself, so it answers for an empty pos as if
// stone were already there.
func completesRun(b *Board, stone Stone, pos Position) bool {
	for _, axis := range axes {
		run := 1 + count(b, stone, pos, axis[0], axis[1]) + count(b, stone, pos, -axis[0], -axis[1])
		if run >= WinLength {
			return true
		}
	}
	return false
}

// count returns the contiguous stones extending from pos (exclusive) in one
// direction, capped at WinLength-1.
func count(b *Board, stone Stone, pos Position, dr, dc int) int {
	n := 0
	row, col := pos.Row+dr, pos.Col+dc
	for n < WinLength-1 && row >= 0 && row < Size && col >= 0 && col < Size {
		if b.cells[row*Size+col] != stone {
			break
		}
		n++
		row += dr
		col += dc
	}
	return n
}

// WinsIfPlaced reports whether placing a stone of player at the empty cell pos
// would win. b is not modified.
func WinsIfPlaced(b *Board, player Player, pos Position) bool {
	if !pos.Valid() || b.cells[pos.Index()] != Empty {
		return false
	}
	return completesRun(b, player.Stone(), pos)
}

// WinningCells lists every empty cell that would complete a run for player.
func WinningCells(b *Board, player Player) []Position {
	var cells []Position
	for _, pos := range b.EmptyCells() {
		if WinsIfPlaced(b, player, pos) {
			cells = append(cells, pos)
		}
	}
	return cells
}
