package tetris

// Snapshot captures the driver state for determinism checks.
type Snapshot struct {
	Steps   uint64
	Round   int
	Total   uint64
	Score   uint64
	Pieces  int
	Lines   int
	Current Piece
	Next    Kind
	Target  Piece
	Board   Board
	Done    bool
}

// Snapshot returns the current driver snapshot.
func (d *Driver) Snapshot() Snapshot {
	return Snapshot{
		Steps:   d.steps,
		Round:   d.round,
		Total:   d.total,
		Score:   d.game.Score(),
		Pieces:  d.game.Pieces(),
		Lines:   d.game.Lines(),
		Current: d.game.Current(),
		Next:    d.game.Next(),
		Target:  d.game.Plan().Target,
		Board:   d.game.Board(),
		Done:    d.done,
	}
}
