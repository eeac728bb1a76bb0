package game

// Color identifies a stone or a player side. The empty string means an
// empty cell.
type Color string

const (
	Empty Color = ""
	Black Color = "black"
	White Color = "white"
)

const (
	// DefaultBoardSize is the standard gomoku board.
	DefaultBoardSize = 15
	// WinLength is the number of contiguous stones required to win.
	WinLength = 5
)

// Valid reports whether c is a playable side.
func (c Color) Valid() bool {
	return c == Black || c == White
}

// Opponent returns the other side.
func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

// Board is a square grid of cells. Board values are owned by exactly one
// room; the engine itself holds no state.
type Board [][]Color

func NewBoard(size int) Board {
	if size <= 0 {
		size = DefaultBoardSize
	}
	b := make(Board, size)
	for i := range b {
		b[i] = make([]Color, size)
	}
	return b
}

func (b Board) Size() int {
	return len(b)
}

func (b Board) InBounds(row, col int) bool {
	return row >= 0 && row < len(b) && col >= 0 && col < len(b)
}

// Clone returns a deep copy, used for undo snapshots.
func (b Board) Clone() Board {
	c := make(Board, len(b))
	for i, row := range b {
		c[i] = make([]Color, len(row))
		copy(c[i], row)
	}
	return c
}

// IsLegal reports whether a stone may be placed at (row, col): the
// coordinates are in range and the cell is empty.
func IsLegal(b Board, row, col int) bool {
	return b.InBounds(row, col) && b[row][col] == Empty
}

// CheckDraw reports whether every cell is occupied. Callers check it only
// after CheckWin came back false for the move that filled the last cell.
func CheckDraw(b Board) bool {
	for _, row := range b {
		for _, c := range row {
			if c == Empty {
				return false
			}
		}
	}
	return true
}
