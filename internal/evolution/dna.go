// Package evolution tunes the bot's heuristic weights with a genetic
// algorithm: a population of weight vectors is scored by simulated games,
// ranked, and bred into the next generation.
package evolution

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/vovakirdan/tetris-ga/internal/tetris"
)

// DNA is one weight vector and the score its evaluation produced.
type DNA struct {
	Weights   tetris.Weights
	Score     uint64 // Average game score
	Evaluated bool   // Whether Score belongs to Weights
}

// RandomDNA draws every weight uniformly from [0, maxWeight).
func RandomDNA(rng *rand.Rand, maxWeight uint64) DNA {
	var d DNA
	for i := range d.Weights {
		d.Weights[i] = rng.Uint64() % maxWeight
	}
	return d
}

// String renders the weights as "[w0] [w1] ... [w5]".
func (d DNA) String() string {
	parts := make([]string, len(d.Weights))
	for i, w := range d.Weights {
		parts[i] = fmt.Sprintf("[%d]", w)
	}
	return strings.Join(parts, " ")
}
