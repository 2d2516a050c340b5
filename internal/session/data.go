package session

import (
	"github.com/abhisek/guru/internal/skill"
	"github.com/abhisek/guru/internal/stroke"
)

// Data is the full record of one practice session. It is created when the
// session starts and is immutable once written to the session log.
type Data struct {
	SessionID string          `json:"sessionId"`
	PlayerID  string          `json:"playerId"`
	PatternID int             `json:"patternId"`
	Stage     skill.Stage     `json:"stage"`
	StartTime int64           `json:"startTime"` // unix ms
	EndTime   int64           `json:"endTime"`   // unix ms
	Metrics   skill.Metrics   `json:"metrics"`
	Strokes   []stroke.Stroke `json:"strokes"`
}

// DurationMs returns the session length in milliseconds.
func (d Data) DurationMs() int64 {
	if d.EndTime < d.StartTime {
		return 0
	}
	return d.EndTime - d.StartTime
}
