package mastery

import (
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/abhisek/guru/internal/achievements"
	"github.com/abhisek/guru/internal/skill"
)

// ProgressKey is the fixed key of the mastery record on single-record
// key-value tiers.
const ProgressKey = "guru-mastery-progress-v1"

// Encode serializes progress for the persistence chain.
func Encode(p Progress) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, errors.Wrap(err, "encode progress")
	}
	return b, nil
}

// Decode parses a persisted record and repairs anything that breaks the
// ladder rules, so a hand-edited or truncated record still loads.
func Decode(raw []byte) (Progress, error) {
	var p Progress
	if err := json.Unmarshal(raw, &p); err != nil {
		return Progress{}, errors.Wrap(err, "decode progress")
	}
	p.normalize()
	return p, nil
}

// belongsTo matches persisted records owned by playerID.
func belongsTo(playerID string) func([]byte) bool {
	return func(raw []byte) bool {
		var head struct {
			PlayerID string `json:"playerId"`
		}
		return json.Unmarshal(raw, &head) == nil && head.PlayerID == playerID
	}
}

func (p *Progress) normalize() {
	prevCompleted := true
	for i := range p.StageCompletions {
		c := &p.StageCompletions[i]
		c.Stage = skill.Stage(i + 1)
		c.BestMetrics = c.BestMetrics.Sanitized()
		if c.AttemptCount < 0 {
			c.AttemptCount = 0
		}

		// Stage n is open only once stage n-1 is completed.
		c.IsUnlocked = prevCompleted
		if !c.IsUnlocked {
			c.IsCompleted = false
		}
		if c.IsCompleted && c.CompletedAt == nil {
			ts := p.LastSession
			c.CompletedAt = &ts
		}
		if !c.IsCompleted {
			c.CompletedAt = nil
		}
		prevCompleted = c.IsCompleted
	}

	if !p.CurrentStage.Valid() || !p.Stage(p.CurrentStage).IsUnlocked {
		p.CurrentStage = p.frontier()
	}
	if p.TotalPracticeTime < 0 {
		p.TotalPracticeTime = 0
	}
	p.Achievements = achievements.Merge(nil, p.Achievements)
	if p.Achievements == nil {
		p.Achievements = []achievements.Achievement{}
	}
	p.GuruScore = GuruScore(*p)
}

// frontier is the first unlocked stage not yet completed, or the last stage
// when the ladder is finished.
func (p Progress) frontier() skill.Stage {
	for _, c := range p.StageCompletions {
		if c.IsUnlocked && !c.IsCompleted {
			return c.Stage
		}
	}
	return skill.StageMastery
}
