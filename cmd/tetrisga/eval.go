package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tetris-ga/internal/tetris"
)

var (
	evalWeights  weightFlags
	evalRounds   int
	evalPieceCap int
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Score a weight vector over several games",
	Long: `Play several headless games with one weight vector and print each
game's score and the average, the same number the optimizer ranks by.

Examples:
  tetrisga eval
  tetrisga eval --weights 1497,1605,225,142,1095,718 --rounds 10
  tetrisga eval --best --seed 7
  tetrisga eval --run 1a2b3c4d --piece-cap 1000`,
	Run: runEval,
}

func init() {
	evalWeights.register(evalCmd)
	evalCmd.Flags().IntVar(&evalRounds, "rounds", 0, "Games to play (0 = config)")
	evalCmd.Flags().IntVar(&evalPieceCap, "piece-cap", -1, "Locks per game (-1 = config, 0 = unlimited)")
}

func runEval(cmd *cobra.Command, _ []string) {
	logger := newLogger()
	cfg := loadConfig()

	w, source, err := evalWeights.resolve(cfg)
	if err != nil {
		fatal("%v", err)
	}

	sim := cfg.Driver(w)
	sim.Seed = seedOverride(cmd, sim.Seed)
	if evalRounds > 0 {
		sim.Rounds = evalRounds
	}
	if evalPieceCap >= 0 {
		sim.PieceCap = evalPieceCap
	}

	logger.Debug("evaluating", "weights", w.Encode(), "source", source, "rounds", sim.Rounds, "seed", sim.Seed)

	ctx, stop := signalContext()
	defer stop()

	driver := tetris.NewDriver(sim)
	avg, err := driver.Run(ctx)
	if err != nil {
		fatal("evaluation interrupted after %d games: %v", len(driver.Scores()), err)
	}

	fmt.Printf("Weights: %s (%s)\n\n", w.Encode(), source)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Game\tScore\t")
	for i, s := range driver.Scores() {
		fmt.Fprintf(tw, "%d\t%d\t\n", i+1, s)
	}
	fmt.Fprintf(tw, "Average\t%d\t\n", avg)
	tw.Flush()
}
