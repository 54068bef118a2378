package evolution

import (
	"math/rand"
	"sort"
)

// Population is the ordered set of DNA bred each generation.
type Population struct {
	Members    []DNA
	Generation int
}

// NewPopulation creates size random members.
func NewPopulation(size int, maxWeight uint64, rng *rand.Rand) *Population {
	p := &Population{Members: make([]DNA, size)}
	for i := range p.Members {
		p.Members[i] = RandomDNA(rng, maxWeight)
	}
	return p
}

// Size returns the number of members.
func (p *Population) Size() int {
	return len(p.Members)
}

// SortByScore orders members by descending score. Equal scores keep their
// relative order.
func (p *Population) SortByScore() {
	sort.SliceStable(p.Members, func(i, j int) bool {
		return p.Members[i].Score > p.Members[j].Score
	})
}

// IsSorted reports whether members are in descending score order.
func (p *Population) IsSorted() bool {
	for i := 1; i < len(p.Members); i++ {
		if p.Members[i].Score > p.Members[i-1].Score {
			return false
		}
	}
	return true
}

// Best returns the highest-scoring member. Empty populations return the
// zero DNA.
func (p *Population) Best() DNA {
	var best DNA
	for i, m := range p.Members {
		if i == 0 || m.Score > best.Score {
			best = m
		}
	}
	return best
}

// Worst returns the lowest score.
func (p *Population) Worst() uint64 {
	if len(p.Members) == 0 {
		return 0
	}
	worst := p.Members[0].Score
	for _, m := range p.Members[1:] {
		worst = min(worst, m.Score)
	}
	return worst
}

// AverageScore returns the mean score.
func (p *Population) AverageScore() float64 {
	if len(p.Members) == 0 {
		return 0
	}
	var sum float64
	for _, m := range p.Members {
		sum += float64(m.Score)
	}
	return sum / float64(len(p.Members))
}

// Clone returns a deep copy.
func (p *Population) Clone() *Population {
	members := make([]DNA, len(p.Members))
	copy(members, p.Members)
	return &Population{Members: members, Generation: p.Generation}
}
