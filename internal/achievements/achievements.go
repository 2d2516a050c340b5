package achievements

import (
	"time"

	"github.com/samber/lo"

	"github.com/abhisek/guru/internal/skill"
)

// Achievement is a permanent award, unique by ID.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	UnlockedAt  int64  `json:"unlockedAt"` // unix ms
	Icon        string `json:"icon"`
}

// Achievement ids.
const (
	FirstStage  = "first-stage"
	Precision   = "precision"
	FlowState   = "flow-state"
	Dedicated   = "dedicated-hour"
	GuruMastery = "guru-mastery"
)

// PracticeGoal is the cumulative practice time that earns Dedicated.
const PracticeGoal = time.Hour

// Facts is what the rules look at: the progress after a session completion
// and the metrics of that session.
type Facts struct {
	CompletedStages   int
	TotalPracticeTime time.Duration
	Metrics           skill.Metrics
}

// Rule awards one achievement when Test holds.
type Rule struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Test        func(Facts) bool
}

var rules = []Rule{
	{
		ID:          FirstStage,
		Name:        "First Steps",
		Description: "Complete your first stage",
		Icon:        "🌱",
		Test:        func(f Facts) bool { return f.CompletedStages >= 1 },
	},
	{
		ID:          Precision,
		Name:        "Precision",
		Description: "Score 95% or higher on any skill metric",
		Icon:        "🎯",
		Test: func(f Facts) bool {
			return lo.SomeBy(skill.AllDimensions(), func(d skill.Dimension) bool {
				return f.Metrics.Sanitized().Get(d) >= 0.95
			})
		},
	},
	{
		ID:          FlowState,
		Name:        "In the Flow",
		Description: "Reach a flow state index above 90%",
		Icon:        "🌊",
		Test:        func(f Facts) bool { return f.Metrics.Sanitized().FlowStateIndex > 0.90 },
	},
	{
		ID:          Dedicated,
		Name:        "Dedicated Practitioner",
		Description: "Practice for a total of one hour",
		Icon:        "⏳",
		Test:        func(f Facts) bool { return f.TotalPracticeTime >= PracticeGoal },
	},
	{
		ID:          GuruMastery,
		Name:        "Guru",
		Description: "Complete all five stages",
		Icon:        "🪷",
		Test:        func(f Facts) bool { return f.CompletedStages >= skill.StageCount },
	},
}

// Rules returns every rule in evaluation order.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

// Evaluate returns the achievements whose rules hold and that are not
// already in earned. Calling it again with the result merged into earned
// returns nothing.
func Evaluate(f Facts, earned []Achievement, now time.Time) []Achievement {
	have := lo.KeyBy(earned, func(a Achievement) string { return a.ID })

	var out []Achievement
	for _, r := range rules {
		if _, ok := have[r.ID]; ok {
			continue
		}
		if !r.Test(f) {
			continue
		}
		out = append(out, Achievement{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			UnlockedAt:  now.UnixMilli(),
			Icon:        r.Icon,
		})
	}
	return out
}

// Merge appends the new achievements to earned, skipping ids already
// present.
func Merge(earned, add []Achievement) []Achievement {
	return lo.UniqBy(append(append([]Achievement(nil), earned...), add...), func(a Achievement) string {
		return a.ID
	})
}
