package evolution

import (
	"math/rand"
)

// Reproduction constants.
const (
	// CrossoverGenes is how many leading weights may come from the second
	// parent. The last weight always comes from the first.
	CrossoverGenes = 5

	largeMutationOdds   = 3 // one in three mutations is large
	largeMutationFactor = 0.25
	smallMutationFactor = 0.05
)

// SelectParents returns the breeding pool drawn from a population sorted
// by descending score: the top size members, with the trailing diversity
// entries replaced by members sampled uniformly from the top size.
func SelectParents(sorted []DNA, size, diversity int, rng *rand.Rand) []DNA {
	parents := make([]DNA, size)
	copy(parents, sorted[:size])
	for i := size - diversity; i < size; i++ {
		parents[i] = sorted[rng.Intn(size)]
	}
	return parents
}

// PickPair returns two distinct indices into a pool of n >= 2 parents.
func PickPair(n int, rng *rand.Rand) (int, int) {
	a := rng.Intn(n)
	b := rng.Intn(n)
	for a == b {
		b = rng.Intn(n)
	}
	return a, b
}

// Crossover copies p1 and gives each of the first CrossoverGenes weights an
// even chance of coming from p2 instead. The child is unevaluated.
func Crossover(p1, p2 DNA, rng *rand.Rand) DNA {
	child := DNA{Weights: p1.Weights}
	for i := 0; i < CrossoverGenes; i++ {
		if rng.Intn(2) == 0 {
			child.Weights[i] = p2.Weights[i]
		}
	}
	return child
}

// Mutate perturbs one random weight with probability 1/oneIn. The weight is
// multiplied by a factor drawn from [-0.25, 0.25) for large mutations or
// [-0.05, 0.05) otherwise; a negative product leaves the weight unchanged.
// Reports whether a weight was rewritten.
func Mutate(d *DNA, oneIn int, rng *rand.Rand) bool {
	if oneIn < 1 || rng.Intn(oneIn) != 0 {
		return false
	}

	gene := rng.Intn(len(d.Weights))
	spread := smallMutationFactor
	if rng.Intn(largeMutationOdds) == 0 {
		spread = largeMutationFactor
	}
	factor := (rng.Float64()*2 - 1) * spread

	v := float64(d.Weights[gene]) * factor
	if v < 0 {
		return false
	}
	d.Weights[gene] = uint64(v)
	d.Evaluated = false
	return true
}
