package tetris

import (
	"fmt"

	"github.com/vovakirdan/tetris-ga/internal/core"
)

// Kind identifies one of the seven tetromino shapes.
type Kind uint8

// Kinds in table order. The order is part of the tuned behavior: the
// piece stream draws kinds by index.
const (
	KindS Kind = iota
	KindT
	KindZ
	KindL
	KindO
	KindJ
	KindI
)

// KindCount is the number of distinct piece kinds.
const KindCount = 7

// Spawn position of every new piece.
const (
	SpawnRow = 0
	SpawnCol = 5
)

// masks holds the 0-rotation 4x4 occupancy of each kind, row-major.
var masks = [KindCount][16]uint8{
	{0, 1, 0, 0, 0, 1, 1, 0, 0, 0, 1, 0, 0, 0, 0, 0}, // S
	{0, 0, 1, 0, 0, 1, 1, 0, 0, 0, 1, 0, 0, 0, 0, 0}, // T
	{0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 0, 0, 0, 0, 0}, // Z
	{0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 1, 0, 0, 0, 0, 0}, // L
	{0, 0, 0, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 0, 0, 0}, // O
	{0, 0, 1, 0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 0, 0, 0}, // J
	{0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0}, // I
}

var kindNames = [KindCount]string{"S", "T", "Z", "L", "O", "J", "I"}

var kindColors = [KindCount]core.Color{
	core.ColorGreen,
	core.ColorMagenta,
	core.ColorRed,
	core.ColorOrange,
	core.ColorYellow,
	core.ColorBlue,
	core.ColorCyan,
}

// String returns the conventional letter of the kind.
func (k Kind) String() string {
	if k >= KindCount {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Valid reports whether k names one of the seven kinds.
func (k Kind) Valid() bool {
	return k < KindCount
}

// Tag is the non-zero board value of a locked cell of this kind.
func (k Kind) Tag() uint8 {
	return uint8(k) + 1
}

// Color is the display color of this kind.
func (k Kind) Color() core.Color {
	if k >= KindCount {
		return core.ColorDefault
	}
	return kindColors[k]
}

// Rotations returns how many rotation quadrants the search must try.
// Kinds with 180-degree symmetry need 2, the square needs 1.
func (k Kind) Rotations() int {
	switch k {
	case KindS, KindZ, KindI:
		return 2
	case KindO:
		return 1
	default:
		return 4
	}
}

// KindForTag maps a board cell value back to its kind.
func KindForTag(tag uint8) (Kind, bool) {
	if tag == 0 || tag > KindCount {
		return 0, false
	}
	return Kind(tag - 1), true
}

// RotatedIndex maps local mask coordinates (x = row, y = column, both in
// 0..3) under rotation quadrant r to an index into the 0-rotation mask.
// Any r outside 0..3 is a programming error.
func RotatedIndex(x, y, r int) int {
	switch r {
	case 0:
		return x*4 + y
	case 1:
		return 12 + x - 4*y
	case 2:
		return 15 - 4*x - y
	case 3:
		return 3 - x + 4*y
	default:
		panic(fmt.Sprintf("tetris: invalid rotation quadrant %d at local (%d, %d)", r, x, y))
	}
}

// occupied reports whether local cell (x, y) of kind k under rotation r is solid.
func occupied(k Kind, r, x, y int) bool {
	return masks[k][RotatedIndex(x, y, r)] != 0
}

// Piece is a placed instance of a kind: rotation quadrant plus the board
// position of its 4x4 mask's top-left corner.
type Piece struct {
	Kind     Kind
	Rotation int
	Row      int
	Col      int
}

// Spawn returns a piece of kind k at the spawn position.
func Spawn(k Kind) Piece {
	return Piece{Kind: k, Rotation: 0, Row: SpawnRow, Col: SpawnCol}
}

// String formats the piece for diagnostics.
func (p Piece) String() string {
	return fmt.Sprintf("%s/r%d@(%d,%d)", p.Kind, p.Rotation, p.Row, p.Col)
}

// cells calls fn with the absolute board coordinates of every solid cell.
func (p Piece) cells(fn func(row, col int)) {
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			if occupied(p.Kind, p.Rotation, x, y) {
				fn(p.Row+x, p.Col+y)
			}
		}
	}
}
