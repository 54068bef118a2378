package tetris

import (
	"math"
	"math/rand"
	"testing"
)

func TestMeasureEmptyBoard(t *testing.T) {
	var b Board
	if m := Measure(&b); m != (Metrics{}) {
		t.Errorf("Measure(empty) = %+v, want all zero", m)
	}
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *Board)
		want  Metrics
	}{
		{
			name:  "single block above a hole",
			setup: func(b *Board) { b.cells[18][0] = 1 },
			want: Metrics{
				HoleFactor: 19,
				Bumpiness:  2,
				MaxHeight:  2,
				Continuity: 18,
				Filledness: 18,
			},
		},
		{
			name:  "last column height is not measured",
			setup: func(b *Board) { b.cells[19][9] = 1 },
			want: Metrics{
				Filledness: 19,
			},
		},
		{
			name:  "continuity stops at first gap",
			setup: func(b *Board) { b.cells[19][0], b.cells[19][1], b.cells[19][3] = 1, 1, 1 },
			want: Metrics{
				Bumpiness:  3,
				MaxHeight:  1,
				Continuity: 4 * 19,
				Filledness: 9 * 19,
			},
		},
		{
			name:  "full bottom row",
			setup: func(b *Board) { fillRow(b, 19) },
			want: Metrics{
				Bumpiness:   1,
				MaxHeight:   1,
				Continuity:  100 * 19,
				Filledness:  100 * 19,
				FilledLines: 100,
			},
		},
		{
			name: "two full rows",
			setup: func(b *Board) {
				fillRow(b, 18)
				fillRow(b, 19)
			},
			want: Metrics{
				Bumpiness:   2,
				MaxHeight:   2,
				Continuity:  100 * (18 + 19),
				Filledness:  100 * (18 + 19),
				FilledLines: 400,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var b Board
			tc.setup(&b)
			if got := Measure(&b); got != tc.want {
				t.Errorf("Measure() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestMetricsBoundedOnRandomBoards(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		var b Board
		for row := 0; row < Height; row++ {
			for col := 0; col < Width; col++ {
				if rng.Intn(3) == 0 {
					b.cells[row][col] = uint8(rng.Intn(KindCount) + 1)
				}
			}
		}
		m := Measure(&b)
		if m.MaxHeight > Height {
			t.Fatalf("MaxHeight = %d exceeds board height", m.MaxHeight)
		}
		if m.Bumpiness > uint64(Height*(Width-1)) {
			t.Fatalf("Bumpiness = %d exceeds its bound", m.Bumpiness)
		}
	}
}

func TestFitness(t *testing.T) {
	var b Board
	b.cells[18][0] = 1

	w := Weights{1, 1, 1, 50, 1, 1}
	// 10*19^2 + 2500*2 + 20*2 - 1*18 - 50*18
	want := fitnessBase - 7732
	if got := Fitness(&b, w); got != want {
		t.Errorf("Fitness() = %d, want %d", got, want)
	}
}

func TestFitnessEmptyBoardIsBase(t *testing.T) {
	var b Board
	w := Weights{1497, 1605, 225, 142, 1095, 718}
	if got := Fitness(&b, w); got != fitnessBase {
		t.Errorf("Fitness(empty) = %d, want %d", got, fitnessBase)
	}
}

func TestFitnessClampsAtZero(t *testing.T) {
	var b Board
	b.cells[10][4] = 1 // rows below are holes

	tests := []struct {
		name string
		w    Weights
	}{
		{"huge hole weight", Weights{math.MaxUint64, 0, 0, 0, 0, 0}},
		{"huge bumpiness weight", Weights{0, math.MaxUint64, 0, 0, 0, 0}},
		{"large hole weight", Weights{1 << 50, 0, 0, 0, 0, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Fitness(&b, tc.w); got != 0 {
				t.Errorf("Fitness() = %d, want 0", got)
			}
		})
	}
}

func TestFitnessSaturatesHigh(t *testing.T) {
	var b Board
	fillRow(&b, 19)

	w := Weights{0, 0, 0, 0, 0, math.MaxUint64}
	if got := Fitness(&b, w); got != math.MaxUint64 {
		t.Errorf("Fitness() = %d, want MaxUint64", got)
	}
}

func TestSaturatingHelpers(t *testing.T) {
	if got := subSat(5, 7); got != 0 {
		t.Errorf("subSat(5, 7) = %d, want 0", got)
	}
	if got := addSat(math.MaxUint64-1, 5); got != math.MaxUint64 {
		t.Errorf("addSat overflow = %d, want MaxUint64", got)
	}
	if got := mulSat(1<<40, 1<<40); got != math.MaxUint64 {
		t.Errorf("mulSat overflow = %d, want MaxUint64", got)
	}
	if got := scaled(-3, 10); got != 0 {
		t.Errorf("scaled(-3, 10) = %d, want 0", got)
	}
	if got := scaled(2.5, 3); got != 7 {
		t.Errorf("scaled(2.5, 3) = %d, want 7", got)
	}
}
