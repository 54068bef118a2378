package config

import (
	_ "embed"
)

//go:embed defaults/tetrisga.yaml
var defaultYAML []byte

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Simulation: SimulationConfig{
			Rounds:       5,
			GravityEvery: 20,
			PieceCap:     0,
			Seed:         1,
			Weights:      []uint64{1497, 1605, 225, 142, 1095, 718},
		},
		Evolution: EvolutionConfig{
			PopulationSize:      1000,
			ParentsRatio:        2,
			MutationProbability: 20,
			MaxWeight:           10000,
			TargetScore:         100000,
			MaxGenerations:      1000,
			DiversityDivisor:    12,
			Workers:             0,
			ChunkSize:           10,
			Seed:                0,
			VarySeeds:           false,
		},
		Viewer: ViewerConfig{
			TickRate:           30,
			StepsPerTick:       4,
			SSHAddress:         ":2323",
			IdleTimeoutMinutes: 10,
			HostKeyPath:        "~/.tetrisga/ssh_host_ed25519",
		},
	}
}
