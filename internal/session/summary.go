package session

import (
	"time"

	"github.com/abhisek/guru/internal/mastery"
	"github.com/abhisek/guru/internal/pattern"
)

// Summary holds the data displayed when a session ends.
type Summary struct {
	Data         Data                  `json:"session"`
	Result       mastery.Result        `json:"result"`
	PatternStats *pattern.PatternStats `json:"pattern,omitempty"`
	// Fallbacks counts scorer requests replaced by the fallback score.
	Fallbacks int `json:"fallbacks"`
}

// Duration returns the session length.
func (s Summary) Duration() time.Duration {
	return time.Duration(s.Data.DurationMs()) * time.Millisecond
}

// Accuracy is the composite score in percent.
func (s Summary) Accuracy() float64 {
	return s.Result.Evaluation.Composite * 100
}
