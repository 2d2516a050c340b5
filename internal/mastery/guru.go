package mastery

import (
	"math"

	"github.com/abhisek/guru/internal/skill"
)

const (
	// CompletionBonus is added once every stage is completed.
	CompletionBonus = 0.10
	// MaxTimeBonus caps the practice-time bonus.
	MaxTimeBonus   = 0.10
	timeBonusScale = 0.05
)

// GuruScore computes the 0-100 headline score: the mean composite of the
// completed stages' best metrics, plus the completion bonus and a
// logarithmic practice-time bonus. A player with no completed stage scores 0.
func GuruScore(p Progress) int {
	var (
		sum       float64
		completed int
	)
	for _, c := range p.StageCompletions {
		if !c.IsCompleted {
			continue
		}
		sum += skill.Composite(c.BestMetrics, c.Stage)
		completed++
	}
	if completed == 0 {
		return 0
	}

	score := sum / float64(completed)
	if completed == skill.StageCount {
		score += CompletionBonus
	}
	hours := math.Max(0, p.PracticeTime().Hours())
	score += math.Min(MaxTimeBonus, math.Log10(hours+1)*timeBonusScale)

	return int(math.Round(math.Min(score*100, 100)))
}
