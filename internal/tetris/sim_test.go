package tetris

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vovakirdan/tetris-ga/internal/core"
)

func shortRun(seed int64) DriverConfig {
	return DriverConfig{
		Weights:  testWeights,
		Seed:     seed,
		Rounds:   2,
		PieceCap: 25,
	}
}

func TestDriverDeterminism(t *testing.T) {
	d1 := NewDriver(shortRun(12345))
	d2 := NewDriver(shortRun(12345))

	avg1, err := d1.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	avg2, err := d2.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if avg1 != avg2 {
		t.Errorf("Average mismatch: %d vs %d", avg1, avg2)
	}
	if s1, s2 := d1.Snapshot(), d2.Snapshot(); s1 != s2 {
		t.Errorf("Snapshot mismatch:\n%+v\n%+v", s1, s2)
	}
}

func TestDriverStepDeterminism(t *testing.T) {
	d1 := NewDriver(shortRun(99))
	d2 := NewDriver(shortRun(99))

	for i := 0; i < 500; i++ {
		r1 := d1.Step(core.ActionNone)
		r2 := d2.Step(core.ActionNone)
		if r1 != r2 {
			t.Fatalf("step %d diverged: %+v vs %+v", i, r1, r2)
		}
	}
}

func TestDriverRounds(t *testing.T) {
	d := NewDriver(DriverConfig{Weights: testWeights, Seed: 1, Rounds: 3, PieceCap: 10})

	avg, err := d.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	scores := d.Scores()
	if len(scores) != 3 {
		t.Fatalf("Scores() has %d entries, want 3", len(scores))
	}
	var sum uint64
	for i, s := range scores {
		if s < 10 {
			t.Errorf("round %d score = %d, want at least one point per lock", i, s)
		}
		sum += s
	}
	if avg != sum/3 {
		t.Errorf("Run() = %d, want integer mean %d", avg, sum/3)
	}
	if !d.Done() {
		t.Error("driver should be done after the round budget")
	}
}

func TestDriverGravity(t *testing.T) {
	d := NewDriver(DriverConfig{Seed: 4, Manual: true})

	for i := 1; i < DefaultGravityEvery; i++ {
		if res := d.Step(core.ActionNone); res.Gravity {
			t.Fatalf("step %d should not be a gravity tick", i)
		}
	}
	if d.Game().Current().Row != SpawnRow {
		t.Fatalf("piece moved before gravity: row %d", d.Game().Current().Row)
	}

	// Down on a gravity tick is dropped: the piece moves one row, not two.
	res := d.Step(core.ActionDown)
	if !res.Gravity {
		t.Fatal("step 20 should be a gravity tick")
	}
	if got := d.Game().Current().Row; got != SpawnRow+1 {
		t.Errorf("row after gravity = %d, want %d", got, SpawnRow+1)
	}
	if res.Action != core.ActionNone {
		t.Errorf("applied action = %v, want None", res.Action)
	}
}

func TestDriverManualIntents(t *testing.T) {
	d := NewDriver(DriverConfig{Seed: 4, Manual: true})
	col := d.Game().Current().Col

	res := d.Step(core.ActionLeft)
	if res.Action != core.ActionLeft {
		t.Errorf("applied action = %v, want Left", res.Action)
	}
	if got := d.Game().Current().Col; got != col-1 {
		t.Errorf("column after Left = %d, want %d", got, col-1)
	}
}

func TestDriverBotIgnoresMoveIntents(t *testing.T) {
	d := NewDriver(DriverConfig{Weights: testWeights, Seed: 4})
	res := d.Step(core.ActionLeft)
	if !d.Game().Plan().Ready {
		t.Fatal("bot should plan on the first step")
	}
	if want := d.Game().Plan().Action(Spawn(d.Game().Current().Kind)); res.Action != want {
		t.Errorf("applied action = %v, want bot action %v", res.Action, want)
	}
}

func TestDriverQuit(t *testing.T) {
	d := NewDriver(shortRun(5))
	d.Step(core.ActionNone)

	res := d.Step(core.ActionQuit)
	if !res.State.Done || !d.Done() {
		t.Error("Quit should finish the run")
	}

	before := d.Snapshot()
	d.Step(core.ActionNone)
	if d.Snapshot() != before {
		t.Error("steps after Quit must not change state")
	}
}

func TestDriverRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDriver(DriverConfig{Weights: testWeights, Seed: 1})
	if _, err := d.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestDriverDefaults(t *testing.T) {
	d := NewDriver(DriverConfig{})
	cfg := d.Config()
	if cfg.Rounds != 1 {
		t.Errorf("Rounds = %d, want 1", cfg.Rounds)
	}
	if cfg.GravityEvery != DefaultGravityEvery {
		t.Errorf("GravityEvery = %d, want %d", cfg.GravityEvery, DefaultGravityEvery)
	}
	if !d.Game().Current().Kind.Valid() || !d.Game().Next().Valid() {
		t.Error("fresh game should draw valid kinds")
	}
}

func TestDriverRender(t *testing.T) {
	d := NewDriver(shortRun(8))
	for i := 0; i < 100; i++ {
		d.Step(core.ActionNone)
	}

	s := core.NewScreen(80, 24)
	d.Render(s)
	out := s.String()

	for _, want := range []string{"NEXT", "Score", "Round", "Weights", "┌"} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q", want)
		}
	}
}

func TestDriverRenderTooSmall(t *testing.T) {
	d := NewDriver(shortRun(8))
	s := core.NewScreen(30, 10)
	d.Render(s)

	if !strings.Contains(s.String(), "Need") {
		t.Error("small screens should show the size hint")
	}
}
