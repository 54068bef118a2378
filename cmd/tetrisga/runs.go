package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tetris-ga/internal/platform/tui"
	"github.com/vovakirdan/tetris-ga/internal/storage"
)

var (
	runsLimit int
	runsTUI   bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List and inspect recorded runs",
	Long: `List the most recent optimizer runs recorded in the runs database.

Examples:
  tetrisga runs
  tetrisga runs --limit 50
  tetrisga runs --tui
  tetrisga runs show 1a2b3c4d`,
	Run: runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the generation history of a run",
	Args:  cobra.ExactArgs(1),
	Run:   runRunsShow,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "Number of runs to list")
	runsCmd.Flags().BoolVar(&runsTUI, "tui", false, "Browse runs interactively")
	runsCmd.AddCommand(runsShowCmd)
}

func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fatal("opening runs database: %v", err)
	}
	return store
}

func runRuns(_ *cobra.Command, _ []string) {
	store := openStore()
	defer store.Close()

	if runsTUI {
		width, height := 80, 24
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width, height = w, h
		}
		if err := tui.RunHistory(store, runsLimit, width, height); err != nil {
			fatal("%v", err)
		}
		return
	}

	runs, err := store.RecentRuns(runsLimit)
	if err != nil {
		fatal("%v", err)
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet. Start one with `tetrisga evolve`.")
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTARTED\tSTATUS\tGENS\tBEST\tWEIGHTS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			tui.ShortID(r.ID),
			r.StartedAt.Local().Format("2006-01-02 15:04"),
			r.Status,
			r.Generations,
			r.BestScore,
			r.BestWeights.Encode(),
		)
	}
	tw.Flush()
}

func runRunsShow(_ *cobra.Command, args []string) {
	store := openStore()
	defer store.Close()

	run, err := store.RunByPrefix(args[0])
	if err != nil {
		fatal("%v", err)
	}
	if run == nil {
		fatal("run %q not found", args[0])
	}
	gens, err := store.Generations(run.ID)
	if err != nil {
		fatal("%v", err)
	}

	fmt.Printf("Run:         %s\n", run.ID)
	fmt.Printf("Status:      %s\n", run.Status)
	fmt.Printf("Started:     %s\n", run.StartedAt.Local().Format(time.RFC1123))
	if !run.FinishedAt.IsZero() {
		fmt.Printf("Finished:    %s\n", run.FinishedAt.Local().Format(time.RFC1123))
	}
	fmt.Printf("Seed:        %d\n", run.Seed)
	fmt.Printf("Population:  %d, %d games per evaluation\n", run.PopulationSize, run.Rounds)
	fmt.Printf("Target:      %d in at most %d generations\n", run.TargetScore, run.MaxGenerations)
	fmt.Printf("Best:        %d %s\n\n", run.BestScore, run.BestWeights.Encode())

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "GEN\tBEST\tBEST EVER\tAVG\tWORST\tTIME\t")
	for _, g := range gens {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.1f\t%d\t%s\t\n",
			g.Generation, g.BestScore, g.BestEverScore, g.AvgScore, g.WorstScore,
			g.Elapsed.Round(time.Millisecond))
	}
	tw.Flush()
}
