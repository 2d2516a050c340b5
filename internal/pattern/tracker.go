package pattern

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/abhisek/guru/internal/store"
)

// LegacyKey is the key-value key of the per-pattern completion record.
const LegacyKey = "rangoli-learning-progress-v1"

// PatternStats is the completion record of one pattern.
type PatternStats struct {
	Completed        bool    `json:"completed"`
	BestAccuracy     float64 `json:"bestAccuracy"`
	Stars            int     `json:"stars"`
	Attempts         int     `json:"attempts"`
	TotalTimeSeconds float64 `json:"totalTimeSeconds"`
	CompletedAt      string  `json:"completedAt"`
}

// Settings are the player's drawing preferences.
type Settings struct {
	AudioEnabled  bool `json:"audioEnabled"`
	ShowGuideGrid bool `json:"showGuideGrid"`
	TargetOpacity int  `json:"targetOpacity"`
}

// DefaultSettings returns the settings of a new player.
func DefaultSettings() Settings {
	return Settings{AudioEnabled: true, ShowGuideGrid: true, TargetOpacity: 50}
}

// PlayerProgress is the legacy pattern-completion record.
type PlayerProgress struct {
	PlayerID          string                `json:"playerId"`
	PatternsCompleted map[int]*PatternStats `json:"patternsCompleted"`
	TotalXP           int                   `json:"totalXP"`
	Badges            []string              `json:"badges"`
	Settings          Settings              `json:"settings"`
}

// NewPlayerProgress returns an empty record. An empty playerID gets a fresh
// uuid.
func NewPlayerProgress(playerID string) PlayerProgress {
	if playerID == "" {
		playerID = uuid.NewString()
	}
	return PlayerProgress{
		PlayerID:          playerID,
		PatternsCompleted: make(map[int]*PatternStats),
		Badges:            []string{},
		Settings:          DefaultSettings(),
	}
}

// Stars maps an accuracy percentage to a 1-5 star rating.
func Stars(accuracy float64) int {
	switch {
	case accuracy >= 95:
		return 5
	case accuracy >= 85:
		return 4
	case accuracy >= 75:
		return 3
	case accuracy >= 60:
		return 2
	default:
		return 1
	}
}

// XPFor returns the experience awarded for one completion.
func XPFor(stars int) int {
	return 10 + stars*5
}

// Blobs is the persistence the tracker writes through.
type Blobs interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) (string, error)
}

// Tracker owns the legacy PlayerProgress record.
type Tracker struct {
	mu       sync.Mutex
	blobs    Blobs
	progress PlayerProgress
	now      func() time.Time
}

// LoadTracker reads the record from blobs, starting fresh when none exists
// or the stored record cannot be decoded.
func LoadTracker(ctx context.Context, blobs Blobs, playerID string) *Tracker {
	t := &Tracker{blobs: blobs, progress: NewPlayerProgress(playerID), now: time.Now}

	raw, err := blobs.Load(ctx, LegacyKey)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return t
	case err != nil:
		log.Warn().Err(err).Msg("legacy pattern progress unreadable, starting fresh")
		return t
	}

	var p PlayerProgress
	if err := json.Unmarshal(raw, &p); err != nil {
		log.Warn().Err(err).Msg("legacy pattern progress corrupt, starting fresh")
		return t
	}
	if p.PatternsCompleted == nil {
		p.PatternsCompleted = make(map[int]*PatternStats)
	}
	for id, s := range p.PatternsCompleted {
		if s == nil {
			log.Warn().Int("pattern", id).Msg("dropping empty legacy pattern entry")
			delete(p.PatternsCompleted, id)
		}
	}
	if p.PlayerID == "" {
		p.PlayerID = t.progress.PlayerID
	}
	t.progress = p
	return t
}

// IsUnlocked reports whether pattern id is playable: pattern 1 always is,
// any other once its predecessor is completed.
func (t *Tracker) IsUnlocked(id int) bool {
	if id == 1 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	prev, ok := t.progress.PatternsCompleted[id-1]
	return ok && prev.Completed
}

// Status returns the completion record of a pattern.
func (t *Tracker) Status(id int) (PatternStats, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.progress.PatternsCompleted[id]
	if !ok {
		return PatternStats{}, false
	}
	return *s, true
}

// Complete records a finished pattern with accuracy in percent and persists
// the record. Stars only change when the best accuracy improves; XP is
// awarded on every completion.
func (t *Tracker) Complete(ctx context.Context, id int, accuracy, timeSeconds float64) (PatternStats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.progress.PatternsCompleted[id]
	if !ok {
		s = &PatternStats{}
		t.progress.PatternsCompleted[id] = s
	}

	s.Completed = true
	s.Attempts++
	s.TotalTimeSeconds += timeSeconds
	s.CompletedAt = t.now().UTC().Format(time.RFC3339)

	if accuracy > s.BestAccuracy {
		s.BestAccuracy = accuracy
		s.Stars = Stars(accuracy)
	}

	t.progress.TotalXP += XPFor(s.Stars)

	if err := t.save(ctx); err != nil {
		return *s, err
	}
	return *s, nil
}

// Progress returns a copy of the record.
func (t *Tracker) Progress() PlayerProgress {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := t.progress
	out.PatternsCompleted = make(map[int]*PatternStats, len(t.progress.PatternsCompleted))
	for id, s := range t.progress.PatternsCompleted {
		c := *s
		out.PatternsCompleted[id] = &c
	}
	out.Badges = append([]string(nil), t.progress.Badges...)
	return out
}

func (t *Tracker) save(ctx context.Context) error {
	raw, err := json.Marshal(t.progress)
	if err != nil {
		return errors.Wrap(err, "encode legacy progress")
	}
	if _, err := t.blobs.Save(ctx, LegacyKey, raw); err != nil {
		return errors.Wrap(err, "save legacy progress")
	}
	return nil
}
