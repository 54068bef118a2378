package tetris

import "github.com/vovakirdan/tetris-ga/internal/core"

// Game is one board being played: the locked cells, the falling piece, the
// kind that spawns after it and the bot's cached plan for the falling piece.
type Game struct {
	board   Board
	current Piece
	next    Kind
	plan    Plan
	score   uint64
	pieces  int
	lines   int
}

// NewGame starts an empty board with first falling and next queued.
func NewGame(first, next Kind) *Game {
	return &Game{
		current: Spawn(first),
		next:    next,
	}
}

// Board returns a copy of the locked cells.
func (g *Game) Board() Board { return g.board }

// Current returns the falling piece.
func (g *Game) Current() Piece { return g.current }

// Next returns the kind that spawns after the current piece locks.
func (g *Game) Next() Kind { return g.next }

// Plan returns the bot's plan for the current piece.
func (g *Game) Plan() Plan { return g.plan }

// Score returns the accumulated score.
func (g *Game) Score() uint64 { return g.score }

// Pieces returns how many pieces have locked.
func (g *Game) Pieces() int { return g.pieces }

// Lines returns how many lines have been cleared.
func (g *Game) Lines() int { return g.lines }

func (g *Game) shift(dRot, dRow, dCol int) bool {
	p := g.current
	p.Rotation = (p.Rotation + dRot) % 4
	p.Row += dRow
	p.Col += dCol
	if !g.board.FitsPiece(p) {
		return false
	}
	g.current = p
	return true
}

// MoveLeft shifts the falling piece one column left if it fits.
func (g *Game) MoveLeft() bool { return g.shift(0, 0, -1) }

// MoveRight shifts the falling piece one column right if it fits.
func (g *Game) MoveRight() bool { return g.shift(0, 0, 1) }

// MoveDown drops the falling piece one row if it fits.
func (g *Game) MoveDown() bool { return g.shift(0, 1, 0) }

// Rotate advances the falling piece one rotation quadrant if it fits.
func (g *Game) Rotate() bool { return g.shift(1, 0, 0) }

// Apply performs a move intent and reports whether the piece moved.
// Non-move intents are no-ops.
func (g *Game) Apply(a core.Action) bool {
	switch a {
	case core.ActionLeft:
		return g.MoveLeft()
	case core.ActionRight:
		return g.MoveRight()
	case core.ActionDown:
		return g.MoveDown()
	case core.ActionRotate:
		return g.Rotate()
	default:
		return false
	}
}

// ClearLines clears filled rows within the falling piece's span and adds
// ten points per row.
func (g *Game) ClearLines() int {
	n := g.board.ClearLines(g.current)
	g.score += uint64(n) * 10
	g.lines += n
	return n
}

// Settle locks the falling piece and spawns the queued kind, queueing drawn
// behind it. If the queued kind does not fit at the spawn position the game
// is over and Settle returns false with the board left as locked. Otherwise
// the lock scores one point and filled lines in the locked piece's span
// are cleared before the spawn.
func (g *Game) Settle(drawn Kind) (cleared int, ok bool) {
	g.board.Lock(g.current)
	g.pieces++

	spawn := Spawn(g.next)
	if !g.board.FitsPiece(spawn) {
		return 0, false
	}

	g.score++
	cleared = g.ClearLines()

	g.current = spawn
	g.next = drawn
	g.plan = Plan{}
	return cleared, true
}

// BotAction returns the bot's next move for the falling piece. The
// placement search runs once per piece and is cached until the next spawn.
func (g *Game) BotAction(w Weights) core.Action {
	if !g.plan.Ready {
		g.plan = Search(&g.board, g.current, g.next, w)
	}
	return g.plan.Action(g.current)
}
