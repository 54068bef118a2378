package core

// RuntimeConfig contains the platform-facing settings of a viewer session.
type RuntimeConfig struct {
	ScreenW      int   // Screen width in characters
	ScreenH      int   // Screen height in characters
	TickRate     int   // Viewer ticks per second
	StepsPerTick int   // Simulation steps advanced per viewer tick
	Seed         int64 // Piece sequence seed
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:      80,
		ScreenH:      24,
		TickRate:     30,
		StepsPerTick: 4,
		Seed:         0, // 0 means use current time in platform layer
	}
}

// GameState is the externally visible status of a simulated game.
type GameState struct {
	Score    uint64 // Score of the game in progress
	Lines    int    // Lines cleared in the game in progress
	Pieces   int    // Pieces locked in the game in progress
	Round    int    // Rounds finished so far
	Rounds   int    // Round budget
	GameOver bool   // Whether the last step ended a round
	Done     bool   // Whether the whole run has finished
}

// StepResult is returned by the driver after each simulation step.
type StepResult struct {
	State   GameState
	Action  Action // Action actually applied this step
	Gravity bool   // Whether this step was a gravity tick
	Locked  bool   // Whether a piece locked this step
	Cleared int    // Lines cleared by the lock
}
