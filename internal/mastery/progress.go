package mastery

import (
	"time"

	"github.com/abhisek/guru/internal/achievements"
	"github.com/abhisek/guru/internal/skill"
)

// StageCompletion is a player's record for one stage.
type StageCompletion struct {
	Stage        skill.Stage   `json:"stage"`
	IsUnlocked   bool          `json:"isUnlocked"`
	IsCompleted  bool          `json:"isCompleted"`
	AttemptCount int           `json:"attemptCount"`
	BestMetrics  skill.Metrics `json:"bestMetrics"`
	CompletedAt  *int64        `json:"completedAt,omitempty"` // unix ms
}

// State reports where the stage sits on the ladder.
func (c StageCompletion) State() StageState {
	switch {
	case c.IsCompleted:
		return StateCompleted
	case c.IsUnlocked:
		return StateUnlocked
	default:
		return StateLocked
	}
}

// Progress is the persisted mastery record of one player.
type Progress struct {
	PlayerID          string                            `json:"playerId"`
	CurrentStage      skill.Stage                       `json:"currentStage"`
	StageCompletions  [skill.StageCount]StageCompletion `json:"stageCompletions"`
	GuruScore         int                               `json:"guruScore"`
	TotalPracticeTime int64                             `json:"totalPracticeTime"` // ms
	Achievements      []achievements.Achievement        `json:"achievements"`
	LastSession       int64                             `json:"lastSession"` // unix ms, 0 before the first session
}

// NewProgress returns the starting record: stage 1 unlocked, nothing else.
func NewProgress(playerID string) Progress {
	p := Progress{
		PlayerID:     playerID,
		CurrentStage: skill.StageFoundation,
		Achievements: []achievements.Achievement{},
	}
	for i := range p.StageCompletions {
		p.StageCompletions[i].Stage = skill.Stage(i + 1)
	}
	p.StageCompletions[0].IsUnlocked = true
	return p
}

// Stage returns the record for s. s must be valid.
func (p Progress) Stage(s skill.Stage) StageCompletion {
	return p.StageCompletions[s-1]
}

// CompletedCount returns how many stages are completed.
func (p Progress) CompletedCount() int {
	n := 0
	for _, c := range p.StageCompletions {
		if c.IsCompleted {
			n++
		}
	}
	return n
}

// PracticeTime returns the cumulative practice time.
func (p Progress) PracticeTime() time.Duration {
	return time.Duration(p.TotalPracticeTime) * time.Millisecond
}

// Clone returns a deep copy.
func (p Progress) Clone() Progress {
	out := p
	for i, c := range p.StageCompletions {
		if c.CompletedAt != nil {
			ts := *c.CompletedAt
			out.StageCompletions[i].CompletedAt = &ts
		}
	}
	out.Achievements = append([]achievements.Achievement{}, p.Achievements...)
	return out
}

// record applies one finished attempt at stage s. The caller has checked
// that s is unlocked.
func (p *Progress) record(s skill.Stage, m skill.Metrics, passed bool, at time.Time) []StateTransition {
	c := &p.StageCompletions[s-1]
	c.AttemptCount++
	if m.Better(c.BestMetrics) {
		c.BestMetrics = m
	}
	if !passed || c.IsCompleted {
		return nil
	}

	ts := at.UnixMilli()
	c.IsCompleted = true
	c.CompletedAt = &ts
	out := []StateTransition{{Stage: s, From: StateUnlocked, To: StateCompleted, Trigger: "stage-passed"}}

	if s < skill.StageMastery {
		next := &p.StageCompletions[s]
		if !next.IsUnlocked {
			next.IsUnlocked = true
			out = append(out, StateTransition{Stage: s + 1, From: StateLocked, To: StateUnlocked, Trigger: "previous-completed"})
		}
		if p.CurrentStage <= s {
			p.CurrentStage = s + 1
		}
	}
	return out
}
