package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tetris-ga/internal/core"
	"github.com/vovakirdan/tetris-ga/internal/platform/tui"
)

var (
	watchWeights  weightFlags
	watchManual   bool
	watchTickRate int
	watchSteps    int
	watchRounds   int
	watchLoop     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a bot play",
	Long: `Watch a bot play in the terminal, or steer the pieces yourself with
--manual.

Controls:
  p/space  pause          +/-  faster / slower
  ?        help           q    quit
  arrows or hjkl move and rotate in manual mode

Examples:
  tetrisga watch
  tetrisga watch --best
  tetrisga watch --run 1a2b3c4d --steps 32
  tetrisga watch --manual --steps 1`,
	Run: runWatch,
}

func init() {
	watchWeights.register(watchCmd)
	watchCmd.Flags().BoolVar(&watchManual, "manual", false, "Drive the pieces with the keyboard")
	watchCmd.Flags().IntVar(&watchTickRate, "tick-rate", 0, "Frames per second (0 = config)")
	watchCmd.Flags().IntVar(&watchSteps, "steps", 0, "Simulation steps per frame (0 = config)")
	watchCmd.Flags().IntVar(&watchRounds, "rounds", 1, "Games to play before stopping")
	watchCmd.Flags().BoolVar(&watchLoop, "loop", false, "Start a new game with a fresh seed when the run ends")
}

func runWatch(cmd *cobra.Command, _ []string) {
	cfg := loadConfig()

	w, _, err := watchWeights.resolve(cfg)
	if err != nil {
		fatal("%v", err)
	}

	sim := cfg.Driver(w)
	sim.Seed = seedOverride(cmd, sim.Seed)
	if sim.Seed == 0 {
		sim.Seed = time.Now().UnixNano()
	}
	sim.Rounds = watchRounds
	sim.Manual = watchManual

	rc := core.DefaultConfig()
	rc.TickRate = cfg.Viewer.TickRate
	rc.StepsPerTick = cfg.Viewer.StepsPerTick
	rc.Seed = sim.Seed
	if watchTickRate > 0 {
		rc.TickRate = watchTickRate
	}
	if watchSteps > 0 {
		rc.StepsPerTick = watchSteps
	}

	// Get terminal size
	if width, height, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		rc.ScreenW = width
		rc.ScreenH = height
	}

	if err := tui.Watch(tui.WatchOptions{
		Sim:         sim,
		Runtime:     rc,
		AutoRestart: watchLoop,
	}); err != nil {
		fatal("%v", err)
	}
}
