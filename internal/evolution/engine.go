package evolution

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"lukechampine.com/frand"

	"github.com/vovakirdan/tetris-ga/internal/tetris"
)

// Config holds the optimizer's hyperparameters.
type Config struct {
	PopulationSize      int
	ParentsRatio        int    // Parent pool is PopulationSize / ParentsRatio
	MutationProbability int    // One offspring in this many mutates
	MaxWeight           uint64 // Random weights are drawn from [0, MaxWeight)
	TargetScore         uint64
	MaxGenerations      int
	DiversityDivisor    int // PopulationSize / DiversityDivisor parents are resampled
	NumWorkers          int
	ChunkSize           int
	Seed                int64 // GA stream seed; 0 draws one from entropy

	// VarySeeds gives every member its own piece-stream seed each
	// generation, drawn from the GA stream. When false every member plays
	// the Sim.Seed sequence, so a score depends only on the weights.
	VarySeeds bool

	Sim tetris.DriverConfig // Per-member simulation template
}

// DefaultConfig returns the stock optimizer settings.
func DefaultConfig() Config {
	return Config{
		PopulationSize:      1000,
		ParentsRatio:        2,
		MutationProbability: 20,
		MaxWeight:           10000,
		TargetScore:         100000,
		MaxGenerations:      1000,
		DiversityDivisor:    12,
		ChunkSize:           DefaultChunkSize,
		Sim: tetris.DriverConfig{
			Rounds:       5,
			GravityEvery: tetris.DefaultGravityEvery,
		},
	}
}

// ParentsSize returns the parent pool size.
func (c Config) ParentsSize() int {
	if c.ParentsRatio <= 0 {
		return 0
	}
	return c.PopulationSize / c.ParentsRatio
}

// Diversity returns how many trailing parents are resampled.
func (c Config) Diversity() int {
	if c.DiversityDivisor <= 0 {
		return 0
	}
	return c.PopulationSize / c.DiversityDivisor
}

// Validate checks that a generation can be bred from the settings.
func (c Config) Validate() error {
	switch {
	case c.PopulationSize < 2:
		return fmt.Errorf("population size must be at least 2, got %d", c.PopulationSize)
	case c.ParentsRatio < 1:
		return fmt.Errorf("parents ratio must be at least 1, got %d", c.ParentsRatio)
	case c.ParentsSize() < 2:
		return fmt.Errorf("parent pool must hold at least 2 members, got %d", c.ParentsSize())
	case c.Diversity() > c.ParentsSize():
		return fmt.Errorf("diversity slice %d exceeds parent pool %d", c.Diversity(), c.ParentsSize())
	case c.MaxWeight == 0:
		return errors.New("max weight must be positive")
	case c.MutationProbability < 0:
		return fmt.Errorf("mutation probability must not be negative, got %d", c.MutationProbability)
	case c.MaxGenerations < 0:
		return fmt.Errorf("max generations must not be negative, got %d", c.MaxGenerations)
	}
	return nil
}

// GenerationStats tracks one generation's outcome.
type GenerationStats struct {
	Generation    int
	BestScore     uint64 // Best of this generation
	BestEverScore uint64
	AvgScore      float64
	WorstScore    uint64
	Best          DNA // Best of this generation
	BestEver      DNA
	Elapsed       time.Duration
	Timestamp     time.Time
}

// Report formats the operator progress line followed by the best-ever
// weights.
func (s GenerationStats) Report(rounds int) string {
	return fmt.Sprintf("Runs #%d, Generation #%d, Current best score %d\n%s",
		rounds, s.Generation, s.BestEverScore, s.BestEver)
}

// Stop reasons.
const (
	ReasonTarget         = "target"
	ReasonMaxGenerations = "max_generations"
	ReasonCancelled      = "cancelled"
)

// Result summarizes a finished Run.
type Result struct {
	Best        DNA
	Generations int
	Reason      string
}

// Engine runs the genetic algorithm.
type Engine struct {
	Config    Config
	Evaluator *Evaluator
	Logger    *log.Logger // Optional

	// OnGenerationComplete is called after every generation.
	OnGenerationComplete func(stats GenerationStats)

	population    *Population
	lastEvaluated []DNA
	bestEver      DNA
	history       []GenerationStats
	rng           *rand.Rand
}

// NewEngine validates the config and creates a random initial population.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid evolution config: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = int64(frand.Uint64n(math.MaxInt64))
	}
	rng := rand.New(rand.NewSource(seed))

	return &Engine{
		Config:     cfg,
		Evaluator:  NewEvaluator(cfg.Sim, cfg.NumWorkers, cfg.ChunkSize),
		population: NewPopulation(cfg.PopulationSize, cfg.MaxWeight, rng),
		rng:        rng,
	}, nil
}

// Population returns the population the next Step evaluates.
func (e *Engine) Population() *Population {
	return e.population
}

// LastEvaluated returns the ranked population of the last Step, sorted by
// descending score.
func (e *Engine) LastEvaluated() []DNA {
	return e.lastEvaluated
}

// BestEver returns the best member seen so far.
func (e *Engine) BestEver() DNA {
	return e.bestEver
}

// Generation returns the number of completed generations.
func (e *Engine) Generation() int {
	return e.population.Generation
}

// History returns the stats of every completed generation.
func (e *Engine) History() []GenerationStats {
	return e.history
}

// Done reports whether the target score or the generation cap was reached.
func (e *Engine) Done() bool {
	return e.stopReason() != ""
}

func (e *Engine) stopReason() string {
	switch {
	case e.bestEver.Score >= e.Config.TargetScore:
		return ReasonTarget
	case e.population.Generation >= e.Config.MaxGenerations:
		return ReasonMaxGenerations
	}
	return ""
}

// Step evaluates the current population, records the generation and breeds
// the next one.
func (e *Engine) Step(ctx context.Context) (GenerationStats, error) {
	start := time.Now()
	pop := e.population
	generation := pop.Generation + 1

	if err := e.Evaluator.Evaluate(ctx, pop.Members, e.gameSeeds(pop.Size())); err != nil {
		return GenerationStats{}, err
	}

	pop.SortByScore()
	ranked := pop.Clone()
	e.lastEvaluated = ranked.Members

	if best := ranked.Members[0]; best.Score > e.bestEver.Score {
		e.bestEver = best
	}

	stats := GenerationStats{
		Generation:    generation,
		BestScore:     ranked.Members[0].Score,
		BestEverScore: e.bestEver.Score,
		AvgScore:      ranked.AverageScore(),
		WorstScore:    ranked.Worst(),
		Best:          ranked.Members[0],
		BestEver:      e.bestEver,
		Elapsed:       time.Since(start),
		Timestamp:     time.Now(),
	}

	e.population = e.breed(ranked.Members)
	e.population.Generation = generation
	e.history = append(e.history, stats)

	if e.Logger != nil {
		e.Logger.Debug("generation complete",
			"generation", generation,
			"best", stats.BestScore,
			"best_ever", stats.BestEverScore,
			"avg", fmt.Sprintf("%.1f", stats.AvgScore),
			"elapsed", stats.Elapsed.Round(time.Millisecond))
	}
	if e.OnGenerationComplete != nil {
		e.OnGenerationComplete(stats)
	}
	return stats, nil
}

// gameSeeds returns the piece-stream seed of every member for one
// evaluation.
func (e *Engine) gameSeeds(n int) []int64 {
	seeds := make([]int64, n)
	for i := range seeds {
		if e.Config.VarySeeds {
			seeds[i] = e.rng.Int63()
		} else {
			seeds[i] = e.Config.Sim.Seed
		}
	}
	return seeds
}

// breed builds the next population from members sorted by descending
// score: one offspring per parent slot, then fresh random members.
func (e *Engine) breed(sorted []DNA) *Population {
	size := e.Config.ParentsSize()
	parents := SelectParents(sorted, size, e.Config.Diversity(), e.rng)

	next := &Population{Members: make([]DNA, len(sorted))}
	for i := 0; i < size; i++ {
		a, b := PickPair(size, e.rng)
		child := Crossover(parents[a], parents[b], e.rng)
		Mutate(&child, e.Config.MutationProbability, e.rng)
		next.Members[i] = child
	}
	for i := size; i < len(next.Members); i++ {
		next.Members[i] = RandomDNA(e.rng, e.Config.MaxWeight)
	}
	return next
}

// Run steps generations until the target score is reached, the generation
// cap is hit or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	for {
		if reason := e.stopReason(); reason != "" {
			return e.result(reason), nil
		}
		if err := ctx.Err(); err != nil {
			return e.result(ReasonCancelled), err
		}

		if _, err := e.Step(ctx); err != nil {
			if ctx.Err() != nil {
				return e.result(ReasonCancelled), ctx.Err()
			}
			return e.result(""), err
		}
	}
}

func (e *Engine) result(reason string) Result {
	return Result{
		Best:        e.bestEver,
		Generations: e.population.Generation,
		Reason:      reason,
	}
}
