package tetris

import "github.com/vovakirdan/tetris-ga/internal/core"

// columnSlack is how far left of column 0 and right of the last column the
// search anchors a mask. Masks have empty margins, so negative anchors can
// still fit.
const columnSlack = 2

// Plan is the bot's decision for the active piece.
type Plan struct {
	Target Piece  // Placement the bot steers toward
	Score  uint64 // Best second-ply fitness found
	Found  bool   // Whether any placement scored above zero
	Ready  bool   // Whether the search ran for the active piece
}

// Action returns the single move that brings cur closer to the target:
// rotation first, then column, then down.
func (p Plan) Action(cur Piece) core.Action {
	switch {
	case cur.Rotation != p.Target.Rotation:
		return core.ActionRotate
	case cur.Col < p.Target.Col:
		return core.ActionRight
	case cur.Col > p.Target.Col:
		return core.ActionLeft
	default:
		return core.ActionDown
	}
}

// drops calls fn with every hard-dropped placement of kind k, trying each
// symmetry-reduced rotation and each column in the slack range. startRow is
// where the piece must fit before it drops.
func drops(b *Board, k Kind, startRow int, fn func(Piece)) {
	for r := 0; r < k.Rotations(); r++ {
		for col := -columnSlack; col <= Width+columnSlack; col++ {
			if !b.Fits(k, r, startRow, col) {
				continue
			}
			row := startRow
			for b.Fits(k, r, row+1, col) {
				row++
			}
			fn(Piece{Kind: k, Rotation: r, Row: row, Col: col})
		}
	}
}

// Search runs the two-ply placement search for cur with next as the known
// follow-up kind. The board is mutated while searching and restored before
// Search returns. The first-ply placement whose best continuation scores
// highest wins; ties keep the earliest. With no scoring placement the target
// stays at cur, which steers the piece straight down.
func Search(b *Board, cur Piece, next Kind, w Weights) Plan {
	plan := Plan{Target: cur, Ready: true}

	drops(b, cur.Kind, cur.Row, func(first Piece) {
		b.withPlaced(first, func() {
			drops(b, next, SpawnRow, func(second Piece) {
				b.withPlaced(second, func() {
					if f := Fitness(b, w); f > plan.Score {
						plan.Score = f
						plan.Target = first
						plan.Found = true
					}
				})
			})
		})
	})

	return plan
}
