// Package config provides YAML-based configuration loading for the
// optimizer, the evaluation simulator and the game viewer.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tetris-ga/internal/evolution"
	"github.com/vovakirdan/tetris-ga/internal/tetris"
)

// Config contains the full tetrisga configuration.
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Evolution  EvolutionConfig  `yaml:"evolution"`
	Viewer     ViewerConfig     `yaml:"viewer"`
}

// SimulationConfig defines how one set of weights is played.
type SimulationConfig struct {
	Rounds       int      `yaml:"rounds"`        // Games averaged per evaluation
	GravityEvery int      `yaml:"gravity_every"` // Steps between forced down moves
	PieceCap     int      `yaml:"piece_cap"`     // Locks per game, 0 = unlimited
	Seed         int64    `yaml:"seed"`          // Piece sequence seed for eval, watch and evolve
	Weights      []uint64 `yaml:"weights"`       // Default weights for eval and watch
}

// EvolutionConfig defines the genetic algorithm hyperparameters.
type EvolutionConfig struct {
	PopulationSize      int    `yaml:"population_size"`
	ParentsRatio        int    `yaml:"parents_ratio"`
	MutationProbability int    `yaml:"mutation_probability"` // One offspring in N mutates
	MaxWeight           uint64 `yaml:"max_weight"`
	TargetScore         uint64 `yaml:"target_score"`
	MaxGenerations      int    `yaml:"max_generations"`
	DiversityDivisor    int    `yaml:"diversity_divisor"`
	Workers             int    `yaml:"workers"` // 0 = CPU count
	ChunkSize           int    `yaml:"chunk_size"`
	Seed                int64  `yaml:"seed"`       // 0 = random
	VarySeeds           bool   `yaml:"vary_seeds"` // Per-member piece sequences instead of simulation.seed
}

// ViewerConfig defines the terminal viewer and the SSH spectator server.
type ViewerConfig struct {
	TickRate           int    `yaml:"tick_rate"`      // Frames per second
	StepsPerTick       int    `yaml:"steps_per_tick"` // Simulation steps per frame
	SSHAddress         string `yaml:"ssh_address"`
	IdleTimeoutMinutes int    `yaml:"idle_timeout_minutes"`
	HostKeyPath        string `yaml:"host_key_path"`
}

// IdleTimeout returns the SSH idle timeout.
func (v ViewerConfig) IdleTimeout() time.Duration {
	return time.Duration(v.IdleTimeoutMinutes) * time.Minute
}

// DefaultWeights returns the configured simulation weights.
func (c Config) DefaultWeights() (tetris.Weights, error) {
	var w tetris.Weights
	if len(c.Simulation.Weights) != tetris.WeightCount {
		return w, fmt.Errorf("simulation.weights needs %d values, got %d", tetris.WeightCount, len(c.Simulation.Weights))
	}
	copy(w[:], c.Simulation.Weights)
	return w, nil
}

// Driver returns the simulation template for the given weights.
func (c Config) Driver(w tetris.Weights) tetris.DriverConfig {
	return tetris.DriverConfig{
		Weights:      w,
		Seed:         c.Simulation.Seed,
		Rounds:       c.Simulation.Rounds,
		GravityEvery: c.Simulation.GravityEvery,
		PieceCap:     c.Simulation.PieceCap,
	}
}

// Engine converts the configuration into optimizer settings.
func (c Config) Engine() evolution.Config {
	e := c.Evolution
	return evolution.Config{
		PopulationSize:      e.PopulationSize,
		ParentsRatio:        e.ParentsRatio,
		MutationProbability: e.MutationProbability,
		MaxWeight:           e.MaxWeight,
		TargetScore:         e.TargetScore,
		MaxGenerations:      e.MaxGenerations,
		DiversityDivisor:    e.DiversityDivisor,
		NumWorkers:          e.Workers,
		ChunkSize:           e.ChunkSize,
		Seed:                e.Seed,
		VarySeeds:           e.VarySeeds,
		Sim:                 c.Driver(tetris.Weights{}),
	}
}

// Validate checks the configuration for values the simulator and the
// optimizer cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Simulation.Rounds < 1 {
		errs = append(errs, fmt.Errorf("simulation.rounds must be at least 1, got %d", c.Simulation.Rounds))
	}
	if c.Simulation.GravityEvery < 1 {
		errs = append(errs, fmt.Errorf("simulation.gravity_every must be at least 1, got %d", c.Simulation.GravityEvery))
	}
	if c.Simulation.PieceCap < 0 {
		errs = append(errs, fmt.Errorf("simulation.piece_cap must not be negative, got %d", c.Simulation.PieceCap))
	}
	if _, err := c.DefaultWeights(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Engine().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("evolution: %w", err))
	}
	if c.Viewer.TickRate < 1 {
		errs = append(errs, fmt.Errorf("viewer.tick_rate must be at least 1, got %d", c.Viewer.TickRate))
	}
	if c.Viewer.StepsPerTick < 1 {
		errs = append(errs, fmt.Errorf("viewer.steps_per_tick must be at least 1, got %d", c.Viewer.StepsPerTick))
	}
	return errors.Join(errs...)
}
