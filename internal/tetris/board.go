// Package tetris implements the falling-block board, its heuristic board
// evaluator, the two-ply placement bot and the simulation driver that plays
// complete games for the optimizer.
package tetris

import "fmt"

// Board dimensions.
const (
	Width  = 10
	Height = 20
)

// Board is the fixed-size playfield. A zero cell is empty; any other value
// is the tag of the piece that locked there. Cells change only through Apply
// and ClearLines.
type Board struct {
	cells [Height][Width]uint8
}

// Cell returns the value at (row, col). Out-of-range coordinates read as empty.
func (b *Board) Cell(row, col int) uint8 {
	if row < 0 || row >= Height || col < 0 || col >= Width {
		return 0
	}
	return b.cells[row][col]
}

// Fits reports whether kind k under rotation r can occupy the mask anchored
// at (row, col): every solid cell must be inside the board and empty.
func (b *Board) Fits(k Kind, r, row, col int) bool {
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			if !occupied(k, r, x, y) {
				continue
			}
			ar, ac := row+x, col+y
			if ar < 0 || ar >= Height || ac < 0 || ac >= Width {
				return false
			}
			if b.cells[ar][ac] != 0 {
				return false
			}
		}
	}
	return true
}

// FitsPiece is Fits for a whole piece instance.
func (b *Board) FitsPiece(p Piece) bool {
	return b.Fits(p.Kind, p.Rotation, p.Row, p.Col)
}

// Apply writes value into every solid cell of p. Zero removes the piece,
// anything else locks it. The caller must have checked Fits; a cell outside
// the board panics.
func (b *Board) Apply(p Piece, value uint8) {
	p.cells(func(row, col int) {
		if row < 0 || row >= Height || col < 0 || col >= Width {
			panic(fmt.Sprintf("tetris: piece %s writes outside the board at (%d, %d)", p, row, col))
		}
		b.cells[row][col] = value
	})
}

// Lock writes p into the board with its kind tag.
func (b *Board) Lock(p Piece) {
	b.Apply(p, p.Kind.Tag())
}

// Remove clears the cells of p.
func (b *Board) Remove(p Piece) {
	b.Apply(p, 0)
}

// withPlaced locks p for the duration of fn. The piece is removed even if
// fn panics.
func (b *Board) withPlaced(p Piece, fn func()) {
	b.Lock(p)
	defer b.Remove(p)
	fn()
}

// RowFilled reports whether every column of row is occupied.
func (b *Board) RowFilled(row int) bool {
	for col := 0; col < Width; col++ {
		if b.cells[row][col] == 0 {
			return false
		}
	}
	return true
}

// ClearLines removes filled rows among the four rows spanned by p and
// returns how many were removed. Rows outside that span are not inspected.
// Rows above the cleared block shift down and the vacated top rows empty.
func (b *Board) ClearLines(p Piece) int {
	found, lowest := 0, 0
	for i := 3; i >= 0; i-- {
		row := p.Row + i
		if row < 0 || row >= Height {
			continue
		}
		if !b.RowFilled(row) {
			continue
		}
		if found == 0 {
			lowest = row
		}
		found++
	}
	if found == 0 {
		return 0
	}

	for row := lowest; row >= found; row-- {
		b.cells[row] = b.cells[row-found]
	}
	for row := 0; row < found; row++ {
		b.cells[row] = [Width]uint8{}
	}
	return found
}

// Empty reports whether no cell is occupied.
func (b *Board) Empty() bool {
	for row := range b.cells {
		for col := range b.cells[row] {
			if b.cells[row][col] != 0 {
				return false
			}
		}
	}
	return true
}
