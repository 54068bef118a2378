package tetris

import (
	"context"
	"math/rand"

	"github.com/vovakirdan/tetris-ga/internal/core"
)

// DefaultGravityEvery is the number of steps between forced down-moves.
const DefaultGravityEvery = 20

// ctxCheckEvery is how many steps Run takes between context checks.
const ctxCheckEvery = 1024

// DriverConfig describes one evaluation run.
type DriverConfig struct {
	Weights      Weights
	Seed         int64
	Rounds       int  // Games to play; values below 1 mean 1
	GravityEvery int  // Steps per gravity tick; values below 1 mean DefaultGravityEvery
	PieceCap     int  // Locks per game before it is scored and ended; 0 is unlimited
	Manual       bool // Apply intents instead of bot moves
}

// Driver plays games with the bot at a fixed step rate. Gravity forces the
// falling piece down every GravityEvery steps; the bot (or, in manual mode,
// the caller's intent) moves it on every step.
type Driver struct {
	cfg    DriverConfig
	rng    *rand.Rand
	game   *Game
	steps  uint64
	phase  int
	round  int
	total  uint64
	scores []uint64
	done   bool
}

// NewDriver creates a driver with its own seeded piece stream.
func NewDriver(cfg DriverConfig) *Driver {
	if cfg.Rounds < 1 {
		cfg.Rounds = 1
	}
	if cfg.GravityEvery < 1 {
		cfg.GravityEvery = DefaultGravityEvery
	}

	d := &Driver{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
		scores: make([]uint64, 0, cfg.Rounds),
	}
	d.game = d.newGame()
	return d
}

func (d *Driver) draw() Kind {
	return Kind(d.rng.Intn(KindCount))
}

func (d *Driver) newGame() *Game {
	first := d.draw()
	return NewGame(first, d.draw())
}

// Config returns the effective configuration.
func (d *Driver) Config() DriverConfig { return d.cfg }

// Game returns the game in progress.
func (d *Driver) Game() *Game { return d.game }

// Done reports whether the round budget is exhausted or a quit was received.
func (d *Driver) Done() bool { return d.done }

// Scores returns the final score of every finished round.
func (d *Driver) Scores() []uint64 {
	out := make([]uint64, len(d.scores))
	copy(out, d.scores)
	return out
}

// Average returns the integer mean of the finished rounds' scores over the
// round budget.
func (d *Driver) Average() uint64 {
	return d.total / uint64(d.cfg.Rounds)
}

// State returns the visible game status.
func (d *Driver) State() core.GameState {
	return core.GameState{
		Score:  d.game.Score(),
		Lines:  d.game.Lines(),
		Pieces: d.game.Pieces(),
		Round:  d.round,
		Rounds: d.cfg.Rounds,
		Done:   d.done,
	}
}

// Step advances the simulation by one step. A Quit intent ends the run.
func (d *Driver) Step(intent core.Action) core.StepResult {
	if intent == core.ActionQuit {
		d.done = true
	}
	if d.done {
		return core.StepResult{State: d.State()}
	}

	var res core.StepResult
	d.steps++
	d.phase++

	if d.phase >= d.cfg.GravityEvery {
		d.phase = 0
		res.Gravity = true
		if !d.game.MoveDown() {
			res.Locked = true
			cleared, ok := d.game.Settle(d.draw())
			res.Cleared = cleared
			if !ok || (d.cfg.PieceCap > 0 && d.game.Pieces() >= d.cfg.PieceCap) {
				d.finishRound()
				res.State = d.State()
				res.State.GameOver = true
				return res
			}
		}
		// gravity already moved the piece down this step
		if intent == core.ActionDown {
			intent = core.ActionNone
		}
	}

	action := intent
	if !d.cfg.Manual {
		action = d.game.BotAction(d.cfg.Weights)
	}
	d.game.Apply(action)

	res.Action = action
	res.State = d.State()
	return res
}

func (d *Driver) finishRound() {
	score := d.game.Score()
	d.scores = append(d.scores, score)
	d.total += score
	d.round++
	if d.round >= d.cfg.Rounds {
		d.done = true
		return
	}
	d.game = d.newGame()
}

// Run plays until the round budget is exhausted and returns the average
// score. It returns early with ctx.Err() if ctx is cancelled.
func (d *Driver) Run(ctx context.Context) (uint64, error) {
	for !d.done {
		if d.steps%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return d.Average(), err
			}
		}
		d.Step(core.ActionNone)
	}
	return d.Average(), nil
}
