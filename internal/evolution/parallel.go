package evolution

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/tetris-ga/internal/tetris"
)

// DefaultChunkSize is how many members one evaluation task scores.
const DefaultChunkSize = 10

// Evaluator scores population members in parallel. Members are split into
// fixed-size chunks and each chunk runs on its own goroutine, bounded by
// NumWorkers.
type Evaluator struct {
	NumWorkers int
	ChunkSize  int
	Sim        tetris.DriverConfig // Template; Weights and Seed are set per member
}

// NewEvaluator creates an evaluator. Non-positive workers default to the
// CPU count and non-positive chunk sizes to DefaultChunkSize.
func NewEvaluator(sim tetris.DriverConfig, numWorkers, chunkSize int) *Evaluator {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Evaluator{
		NumWorkers: numWorkers,
		ChunkSize:  chunkSize,
		Sim:        sim,
	}
}

// Evaluate runs the simulation for every member and stores the average
// score in place. seeds[i] seeds member i's piece sequence. It returns once
// every chunk finished or the first failure.
func (e *Evaluator) Evaluate(ctx context.Context, members []DNA, seeds []int64) error {
	if len(seeds) != len(members) {
		return fmt.Errorf("evaluation: %d seeds for %d members", len(seeds), len(members))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.NumWorkers)

	for start := 0; start < len(members); start += e.ChunkSize {
		end := min(start+e.ChunkSize, len(members))
		g.Go(func() error {
			for i := start; i < end; i++ {
				score, err := e.score(ctx, members[i].Weights, seeds[i])
				if err != nil {
					return fmt.Errorf("evaluation of member %d: %w", i, err)
				}
				members[i].Score = score
				members[i].Evaluated = true
			}
			return nil
		})
	}

	return g.Wait()
}

func (e *Evaluator) score(ctx context.Context, w tetris.Weights, seed int64) (uint64, error) {
	cfg := e.Sim
	cfg.Weights = w
	cfg.Seed = seed
	cfg.Manual = false
	return tetris.NewDriver(cfg).Run(ctx)
}
