package mastery

import "github.com/abhisek/guru/internal/skill"

// StageState is a stage's position on the ladder.
type StageState string

const (
	StateLocked    StageState = "locked"
	StateUnlocked  StageState = "unlocked"
	StateCompleted StageState = "completed"
)

// StateTransition records a stage state change for display and logging.
type StateTransition struct {
	Stage   skill.Stage `json:"stage"`
	From    StageState  `json:"from"`
	To      StageState  `json:"to"`
	Trigger string      `json:"trigger"` // "stage-passed", "previous-completed"
}
