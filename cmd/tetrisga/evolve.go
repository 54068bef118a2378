package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"lukechampine.com/frand"

	"github.com/vovakirdan/tetris-ga/internal/evolution"
	"github.com/vovakirdan/tetris-ga/internal/storage"
)

var (
	flagPopulation  int
	flagGenerations int
	flagRounds      int
	flagWorkers     int
	flagTarget      uint64
	flagPieceCap    int
	flagNoDB        bool
	flagVarySeeds   bool
)

var evolveCmd = &cobra.Command{
	Use:   "evolve",
	Short: "Run the genetic optimizer",
	Long: `Evolve bot weights until the best average score reaches the target or
the generation cap is hit.

Every member of the population plays several games on the
simulation.seed piece sequence (see --vary-seeds); scores are averaged,
the top half breeds the next generation, and the rest is refilled with
random weights. Each generation is printed and recorded in the runs
database. Ctrl+C stops after the current evaluation and marks the run as
cancelled.

Examples:
  tetrisga evolve
  tetrisga evolve --population 200 --generations 50 --rounds 3
  tetrisga evolve --seed 42 --no-db
  tetrisga evolve --piece-cap 500 --workers 4`,
	Run: runEvolve,
}

func init() {
	evolveCmd.Flags().IntVar(&flagPopulation, "population", 0, "Population size (0 = config)")
	evolveCmd.Flags().IntVar(&flagGenerations, "generations", 0, "Generation cap (0 = config)")
	evolveCmd.Flags().IntVar(&flagRounds, "rounds", 0, "Games per evaluation (0 = config)")
	evolveCmd.Flags().IntVar(&flagWorkers, "workers", 0, "Evaluation goroutines (0 = config or CPU count)")
	evolveCmd.Flags().Uint64Var(&flagTarget, "target", 0, "Target score (0 = config)")
	evolveCmd.Flags().IntVar(&flagPieceCap, "piece-cap", -1, "Locks per game (-1 = config, 0 = unlimited)")
	evolveCmd.Flags().BoolVar(&flagNoDB, "no-db", false, "Do not record the run")
	evolveCmd.Flags().BoolVar(&flagVarySeeds, "vary-seeds", false, "Give every member its own piece sequence each generation")
}

func runEvolve(cmd *cobra.Command, _ []string) {
	logger := newLogger()
	cfg := loadConfig()

	if flagPopulation > 0 {
		cfg.Evolution.PopulationSize = flagPopulation
	}
	if flagGenerations > 0 {
		cfg.Evolution.MaxGenerations = flagGenerations
	}
	if flagRounds > 0 {
		cfg.Simulation.Rounds = flagRounds
	}
	if flagWorkers > 0 {
		cfg.Evolution.Workers = flagWorkers
	}
	if flagTarget > 0 {
		cfg.Evolution.TargetScore = flagTarget
	}
	if flagPieceCap >= 0 {
		cfg.Simulation.PieceCap = flagPieceCap
	}
	if flagVarySeeds {
		cfg.Evolution.VarySeeds = true
	}

	ecfg := cfg.Engine()
	ecfg.Seed = seedOverride(cmd, ecfg.Seed)
	if ecfg.Seed == 0 {
		ecfg.Seed = int64(frand.Uint64n(math.MaxInt64-1)) + 1
	}

	engine, err := evolution.NewEngine(ecfg)
	if err != nil {
		fatal("%v", err)
	}
	engine.Logger = logger

	var (
		store *storage.Store
		run   storage.Run
	)
	if !flagNoDB {
		store, err = storage.Open(flagDBPath)
		if err != nil {
			fatal("opening runs database: %v", err)
		}
		defer store.Close()

		run, err = store.CreateRun(storage.Run{
			Seed:           ecfg.Seed,
			PopulationSize: ecfg.PopulationSize,
			Rounds:         ecfg.Sim.Rounds,
			TargetScore:    ecfg.TargetScore,
			MaxGenerations: ecfg.MaxGenerations,
		})
		if err != nil {
			fatal("%v", err)
		}
	}

	logger.Info("starting evolution",
		"run", run.ID,
		"seed", ecfg.Seed,
		"game_seed", ecfg.Sim.Seed,
		"vary_seeds", ecfg.VarySeeds,
		"population", ecfg.PopulationSize,
		"parents", ecfg.ParentsSize(),
		"rounds", ecfg.Sim.Rounds,
		"workers", engine.Evaluator.NumWorkers,
		"target", ecfg.TargetScore,
	)

	engine.OnGenerationComplete = func(s evolution.GenerationStats) {
		fmt.Printf("Elapsed time %d ms\n", s.Elapsed.Milliseconds())
		fmt.Println(s.Report(ecfg.Sim.Rounds))
		fmt.Println(strings.Repeat("-", 47))
		if store == nil {
			return
		}
		if err := store.SaveGeneration(generationRecord(run.ID, s)); err != nil {
			logger.Warn("could not record generation", "generation", s.Generation, "error", err)
		}
	}

	ctx, stop := signalContext()
	defer stop()

	res, runErr := engine.Run(ctx)
	status := storage.StatusCompleted
	switch {
	case errors.Is(runErr, context.Canceled):
		status = storage.StatusCancelled
		logger.Warn("evolution cancelled", "generations", res.Generations)
	case runErr != nil:
		status = storage.StatusFailed
		logger.Error("evolution failed", "error", runErr)
	}

	if store != nil {
		if err := store.FinishRun(run.ID, status, res.Generations, res.Best.Score, res.Best.Weights); err != nil {
			logger.Warn("could not finish run record", "error", err)
		}
	}

	printResult(logger, run.ID, res)
	if status == storage.StatusFailed {
		fatal("%v", runErr)
	}
}

func generationRecord(runID string, s evolution.GenerationStats) storage.Generation {
	return storage.Generation{
		RunID:         runID,
		Generation:    s.Generation,
		BestScore:     s.BestScore,
		BestEverScore: s.BestEverScore,
		AvgScore:      s.AvgScore,
		WorstScore:    s.WorstScore,
		BestWeights:   s.BestEver.Weights,
		Elapsed:       s.Elapsed,
	}
}

func printResult(logger *log.Logger, runID string, res evolution.Result) {
	logger.Info("evolution finished",
		"reason", res.Reason,
		"generations", res.Generations,
		"best", res.Best.Score,
	)
	fmt.Println()
	fmt.Printf("Best score: %d after %d generations\n", res.Best.Score, res.Generations)
	fmt.Printf("Weights:    %s\n", res.Best.Weights.Encode())
	if runID != "" {
		fmt.Printf("Run:        %s\n", runID)
		fmt.Printf("Watch it:   tetrisga watch --run %s\n", runID[:8])
	}
}
