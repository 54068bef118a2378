package tetris

import (
	"math"
	"math/bits"
)

// WeightCount is the number of heuristic terms.
const WeightCount = 6

// Weights scales the six evaluator terms, in order: hole factor,
// bumpiness, max height, line continuity, line filledness, filled lines.
type Weights [WeightCount]uint64

// Term indexes into Weights.
const (
	TermHoles = iota
	TermBumpiness
	TermMaxHeight
	TermContinuity
	TermFilledness
	TermFilledLines
)

// fitnessBase is the starting value every board evaluation adjusts.
const fitnessBase uint64 = 1_000_000_000_000_000_000

// Metrics holds the raw board-quality terms.
type Metrics struct {
	HoleFactor  uint64
	Bumpiness   uint64
	MaxHeight   uint64
	Continuity  uint64
	Filledness  uint64
	FilledLines uint64 // (full rows * 10)^2
}

// Measure computes every term in one place.
func Measure(b *Board) Metrics {
	bump, height := Bumpiness(b)
	return Metrics{
		HoleFactor:  HoleFactor(b),
		Bumpiness:   bump,
		MaxHeight:   height,
		Continuity:  LineContinuity(b),
		Filledness:  LineFilledness(b),
		FilledLines: FilledLines(b),
	}
}

// HoleFactor sums, per column, the row index of every empty cell below the
// column's topmost occupied cell.
func HoleFactor(b *Board) uint64 {
	var total uint64
	for col := 0; col < Width; col++ {
		row := 0
		for row < Height && b.cells[row][col] == 0 {
			row++
		}
		for ; row < Height; row++ {
			if b.cells[row][col] == 0 {
				total += uint64(row)
			}
		}
	}
	return total
}

// Bumpiness returns the sum of absolute height differences between adjacent
// columns and the maximum column height. The last column's height is never
// measured and counts as zero.
func Bumpiness(b *Board) (bumpiness, maxHeight uint64) {
	var heights [Width]int
	for col := 0; col < Width-1; col++ {
		for row := 0; row < Height; row++ {
			if b.cells[row][col] != 0 {
				heights[col] = Height - row
				break
			}
		}
	}

	for col := 0; col < Width-1; col++ {
		d := heights[col+1] - heights[col]
		if d < 0 {
			d = -d
		}
		bumpiness += uint64(d)
	}
	for _, h := range heights {
		maxHeight = max(maxHeight, uint64(h))
	}
	return bumpiness, maxHeight
}

// LineContinuity sums run^2 * row over all rows, where run is the number of
// occupied cells from column 0 up to the first empty cell.
func LineContinuity(b *Board) uint64 {
	var total uint64
	for row := 0; row < Height; row++ {
		var run uint64
		for col := 0; col < Width && b.cells[row][col] != 0; col++ {
			run++
		}
		total += run * run * uint64(row)
	}
	return total
}

// LineFilledness sums count^2 * row over all rows, where count is the number
// of occupied cells in the row.
func LineFilledness(b *Board) uint64 {
	var total uint64
	for row := 0; row < Height; row++ {
		var count uint64
		for col := 0; col < Width; col++ {
			if b.cells[row][col] != 0 {
				count++
			}
		}
		total += count * count * uint64(row)
	}
	return total
}

// FilledLines returns (full rows * 10)^2.
func FilledLines(b *Board) uint64 {
	var full uint64
	for row := 0; row < Height; row++ {
		if b.RowFilled(row) {
			full++
		}
	}
	full *= 10
	return full * full
}

// Fitness scores a board for the given weights. Higher is better.
func Fitness(b *Board, w Weights) uint64 {
	return Measure(b).Fitness(w)
}

// Fitness combines the terms. Each adjustment is applied in order and the
// running value never drops below zero or wraps above MaxUint64.
func (m Metrics) Fitness(w Weights) uint64 {
	f := fitnessBase
	f = subSat(f, scaled(float64(w[TermHoles])*10, m.HoleFactor*m.HoleFactor))
	f = subSat(f, mulSat(mulSat(w[TermBumpiness], 2500), m.Bumpiness))
	f = subSat(f, scaled(float64(w[TermMaxHeight])*20, m.MaxHeight))
	f = addSat(f, scaled(float64(w[TermContinuity])/50, m.Continuity))
	f = addSat(f, scaled(float64(w[TermFilledness])*50, m.Filledness))
	f = addSat(f, scaled(float64(w[TermFilledLines])*300, m.FilledLines))
	return f
}

// scaled returns factor*v truncated toward zero and clamped to the uint64 range.
func scaled(factor float64, v uint64) uint64 {
	p := factor * float64(v)
	switch {
	case math.IsNaN(p), p <= 0:
		return 0
	case p >= math.MaxUint64:
		return math.MaxUint64
	}
	return uint64(p)
}

func subSat(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}

func addSat(a, b uint64) uint64 {
	s, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return s
}

func mulSat(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}
