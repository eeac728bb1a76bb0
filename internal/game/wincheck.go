package game

// CheckWin reports whether the stone just placed at (row, col) completes a
// line of at least WinLength stones of the given color. Only the four axes
// through the placed stone are scanned, at most WinLength-1 steps each way,
// so the check is O(1) per move rather than a full-board pass.
func CheckWin(b Board, row, col int, color Color) bool {
	dirs := [][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for _, d := range dirs {
		count := 1
		for i := 1; i < WinLength; i++ {
			r, c := row+d[0]*i, col+d[1]*i
			if !b.InBounds(r, c) || b[r][c] != color {
				break
			}
			count++
		}
		for i := 1; i < WinLength; i++ {
			r, c := row-d[0]*i, col-d[1]*i
			if !b.InBounds(r, c) || b[r][c] != color {
				break
			}
			count++
		}
		if count >= WinLength {
			return true
		}
	}
	return false
}
