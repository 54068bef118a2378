package core

// Action is a discrete move intent. The simulation driver consumes exactly
// these values, whether they come from the bot or from an input collaborator.
type Action int

const (
	ActionNone   Action = iota
	ActionLeft          // shift one column left
	ActionRight         // shift one column right
	ActionDown          // drop one row
	ActionRotate        // next rotation quadrant
	ActionQuit          // stop the run
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionDown:
		return "Down"
	case ActionRotate:
		return "Rotate"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// IsMove reports whether the action moves or rotates the active piece.
func (a Action) IsMove() bool {
	return a == ActionLeft || a == ActionRight || a == ActionDown || a == ActionRotate
}
