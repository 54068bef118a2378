// tetrisga evolves Tetris-playing heuristics with a genetic algorithm and
// lets you watch the resulting bots play in the terminal.
//
// Usage:
//
//	tetrisga evolve          - Run the genetic optimizer
//	tetrisga eval            - Score a weight vector over several games
//	tetrisga watch           - Watch a bot play in the terminal
//	tetrisga serve           - Start SSH server for spectators
//	tetrisga runs            - List recorded optimizer runs
//
// Global flags:
//
//	--config <path>  - Use a custom YAML config
//	--db <path>      - Set database path (default: ~/.tetrisga/runs.db)
//	--seed <value>   - Set RNG seed for reproducible runs
//	--verbose        - Enable debug logging
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tetris-ga/internal/config"
	"github.com/vovakirdan/tetris-ga/internal/storage"
	"github.com/vovakirdan/tetris-ga/internal/tetris"
)

var (
	// Global flags
	flagConfig  string
	flagDBPath  string
	flagSeed    int64
	flagVerbose bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tetrisga",
	Short: "Evolve and watch Tetris bots",
	Long: `tetrisga tunes the six weights of a two-ply Tetris placement bot with
a genetic algorithm, records every run, and plays the results back in the
terminal or over SSH.

Available commands:
  evolve   - Run the genetic optimizer
  eval     - Score a weight vector over several games
  watch    - Watch a bot play
  serve    - Start SSH server for spectators
  runs     - List and inspect recorded runs

Examples:
  tetrisga evolve --population 200 --generations 50
  tetrisga eval --weights 1497,1605,225,142,1095,718
  tetrisga watch --best
  tetrisga serve --ssh :2323
  tetrisga runs show 1a2b3c4d`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.tetrisga/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = config value or random)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(evolveCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
}

// fatal prints the message to stderr and exits.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "tetrisga",
	})
	if flagVerbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func loadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		fatal("%v", err)
	}
	return cfg
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// weightFlags selects the weights eval and watch play with.
type weightFlags struct {
	weights string
	runID   string
	best    bool
}

func (f *weightFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.weights, "weights", "", "Comma-separated weights w0,...,w5")
	cmd.Flags().StringVar(&f.runID, "run", "", "Use the best weights of a recorded run (id or prefix)")
	cmd.Flags().BoolVar(&f.best, "best", false, "Use the best weights ever recorded")
	cmd.MarkFlagsMutuallyExclusive("weights", "run", "best")
}

// resolve returns the selected weights and a short description of where
// they came from. Without flags the configured default weights are used.
func (f *weightFlags) resolve(cfg config.Config) (tetris.Weights, string, error) {
	switch {
	case f.weights != "":
		w, err := tetris.ParseWeights(f.weights)
		return w, "command line", err

	case f.runID != "" || f.best:
		store, err := storage.Open(flagDBPath)
		if err != nil {
			return tetris.Weights{}, "", err
		}
		defer store.Close()

		var run *storage.Run
		if f.best {
			run, err = store.BestRun()
		} else {
			run, err = store.RunByPrefix(f.runID)
		}
		if err != nil {
			return tetris.Weights{}, "", err
		}
		if run == nil {
			if f.best {
				return tetris.Weights{}, "", errors.New("no recorded run has completed a generation")
			}
			return tetris.Weights{}, "", fmt.Errorf("run %q not found", f.runID)
		}
		return run.BestWeights, fmt.Sprintf("run %s (best %d)", run.ID, run.BestScore), nil
	}

	w, err := cfg.DefaultWeights()
	return w, "config", err
}

// seedOverride applies --seed when it was given.
func seedOverride(cmd *cobra.Command, seed int64) int64 {
	if cmd.Flags().Changed("seed") {
		return flagSeed
	}
	return seed
}
