package mastery

import "github.com/abhisek/guru/internal/skill"

// DisplayState is how a stage is presented in reports.
type DisplayState string

const (
	DisplayLocked    DisplayState = "locked"
	DisplayAvailable DisplayState = "available"
	DisplayCurrent   DisplayState = "current"
	DisplayCompleted DisplayState = "completed"
)

// ResolveDisplayState maps a stage record and the player's current stage
// into the display state used by the UI.
func ResolveDisplayState(c StageCompletion, current skill.Stage) DisplayState {
	switch c.State() {
	case StateCompleted:
		return DisplayCompleted
	case StateUnlocked:
		if c.Stage == current {
			return DisplayCurrent
		}
		return DisplayAvailable
	default:
		return DisplayLocked
	}
}
