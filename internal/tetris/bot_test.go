package tetris

import (
	"testing"

	"github.com/vovakirdan/tetris-ga/internal/core"
)

var testWeights = Weights{1497, 1605, 225, 142, 1095, 718}

func TestPlanAction(t *testing.T) {
	target := Piece{Kind: KindT, Rotation: 2, Row: 15, Col: 3}
	plan := Plan{Target: target, Ready: true}

	tests := []struct {
		name string
		cur  Piece
		want core.Action
	}{
		{"rotation differs", Piece{Kind: KindT, Rotation: 1, Col: 3}, core.ActionRotate},
		{"rotation wins over column", Piece{Kind: KindT, Rotation: 0, Col: 7}, core.ActionRotate},
		{"target to the right", Piece{Kind: KindT, Rotation: 2, Col: 1}, core.ActionRight},
		{"target to the left", Piece{Kind: KindT, Rotation: 2, Col: 5}, core.ActionLeft},
		{"aligned drops", Piece{Kind: KindT, Rotation: 2, Col: 3}, core.ActionDown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := plan.Action(tc.cur); got != tc.want {
				t.Errorf("Action(%s) = %v, want %v", tc.cur, got, tc.want)
			}
		})
	}
}

func TestSearchRestoresBoard(t *testing.T) {
	var b Board
	b.cells[19][0], b.cells[19][1], b.cells[18][0] = 1, 2, 3
	before := b

	plan := Search(&b, Spawn(KindT), KindL, testWeights)

	if b != before {
		t.Error("Search must leave the board exactly as it found it")
	}
	if !plan.Ready || !plan.Found {
		t.Errorf("Search() = %+v, want a ready plan with a placement", plan)
	}
}

func TestSearchFillsTheWell(t *testing.T) {
	var b Board
	for row := 16; row < Height; row++ {
		for col := 0; col < Width-1; col++ {
			b.cells[row][col] = 1
		}
	}

	plan := Search(&b, Spawn(KindI), KindO, testWeights)

	want := Piece{Kind: KindI, Rotation: 0, Row: 16, Col: Width - 2}
	if plan.Target != want {
		t.Errorf("Search() target = %s, want %s", plan.Target, want)
	}
}

// onePly is the greedy search: the placement whose own board scores best,
// ignoring the next kind.
func onePly(b *Board, cur Piece, w Weights) Piece {
	best, bestScore := cur, uint64(0)
	drops(b, cur.Kind, cur.Row, func(p Piece) {
		b.withPlaced(p, func() {
			if f := Fitness(b, w); f > bestScore {
				best, bestScore = p, f
			}
		})
	})
	return best
}

func TestSearchChoice(t *testing.T) {
	// Rows 16..19 are full except column 0.
	var well Board
	for row := 16; row < Height; row++ {
		for col := 1; col < Width; col++ {
			well.cells[row][col] = 1
		}
	}

	tests := []struct {
		name       string
		board      Board
		cur        Kind
		next       Kind
		w          Weights
		want       Piece
		wantOnePly Piece
	}{
		{
			name:       "ties keep the first placement",
			cur:        KindT,
			next:       KindO,
			w:          Weights{},
			want:       Piece{Kind: KindT, Rotation: 0, Row: 17, Col: -1},
			wantOnePly: Piece{Kind: KindT, Rotation: 0, Row: 17, Col: -1},
		},
		{
			name:       "next piece keeps the well open",
			board:      well,
			cur:        KindO,
			next:       KindI,
			w:          Weights{0, 0, 0, 0, 0, 1},
			want:       Piece{Kind: KindO, Rotation: 0, Row: 13, Col: 0},
			wantOnePly: Piece{Kind: KindO, Rotation: 0, Row: 13, Col: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.board
			plan := Search(&b, Spawn(tt.cur), tt.next, tt.w)
			if !plan.Found {
				t.Fatalf("Search() found nothing: %+v", plan)
			}
			if plan.Target != tt.want {
				t.Errorf("Search() target = %s, want %s", plan.Target, tt.want)
			}
			if got := onePly(&b, Spawn(tt.cur), tt.w); got != tt.wantOnePly {
				t.Errorf("one-ply target = %s, want %s", got, tt.wantOnePly)
			}
		})
	}
}

func TestSearchTargetsSettledPlacement(t *testing.T) {
	var b Board
	plan := Search(&b, Spawn(KindO), KindO, testWeights)

	p := plan.Target
	if !b.FitsPiece(p) {
		t.Fatalf("target %s does not fit", p)
	}
	if b.Fits(p.Kind, p.Rotation, p.Row+1, p.Col) {
		t.Errorf("target %s is not hard-dropped", p)
	}
	if p.Rotation >= p.Kind.Rotations() {
		t.Errorf("target rotation %d outside the reduced set", p.Rotation)
	}
}

func TestSearchWithNoRoomKeepsCurrent(t *testing.T) {
	var b Board
	for row := 0; row < Height; row++ {
		for col := 0; col < Width; col++ {
			b.cells[row][col] = 1
		}
	}
	cur := Spawn(KindJ)

	plan := Search(&b, cur, KindS, testWeights)

	if plan.Found {
		t.Error("Search on a full board should find nothing")
	}
	if plan.Target != cur {
		t.Errorf("target = %s, want the current piece %s", plan.Target, cur)
	}
	if got := plan.Action(cur); got != core.ActionDown {
		t.Errorf("Action() = %v, want Down", got)
	}
}

func TestBotActionCachesPlan(t *testing.T) {
	g := NewGame(KindT, KindI)

	first := g.BotAction(testWeights)
	plan := g.Plan()
	if !plan.Ready {
		t.Fatal("BotAction should run the search")
	}

	// Corrupting the board must not change the cached plan.
	g.board.cells[19][0] = 1
	second := g.BotAction(testWeights)
	if g.Plan() != plan || second != first {
		t.Error("BotAction should reuse the cached plan for the same piece")
	}
}
