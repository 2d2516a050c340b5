package mastery

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/abhisek/guru/internal/achievements"
	"github.com/abhisek/guru/internal/feedback"
	"github.com/abhisek/guru/internal/skill"
	"github.com/abhisek/guru/internal/store"
)

var (
	ErrInvalidStage   = errors.New("invalid stage")
	ErrStageLocked    = errors.New("stage is locked")
	ErrInvalidRequest = errors.New("invalid completion request")
)

// Persister stores encoded progress keyed by player id. *store.Chain
// satisfies it.
type Persister interface {
	LoadMatching(ctx context.Context, key string, match func([]byte) bool) ([]byte, error)
	Save(ctx context.Context, key string, blob []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// CompleteRequest is a finished practice session.
type CompleteRequest struct {
	SessionID  string        `json:"sessionId"`
	Stage      skill.Stage   `json:"stage"`
	PatternID  int           `json:"patternId" validate:"gte=0"`
	Metrics    skill.Metrics `json:"metrics"`
	DurationMs int64         `json:"durationMs" validate:"gte=0"`
}

// Result is the outcome of CompleteSession.
type Result struct {
	SessionID       string                     `json:"sessionId"`
	Evaluation      skill.Evaluation           `json:"evaluation"`
	GuruScore       int                        `json:"guruScore"`
	Feedback        []string                   `json:"feedback"`
	NewAchievements []achievements.Achievement `json:"newAchievements"`
	Transitions     []StateTransition          `json:"transitions,omitempty"`
	SavedTo         string                     `json:"savedTo,omitempty"` // persistence tier, empty when every tier failed
}

// Live is the state pushed to subscribers after every change.
type Live struct {
	PlayerID     string
	CurrentStage skill.Stage
	GuruScore    int
}

type openSession struct {
	PatternID int
	Stage     skill.Stage
	StartedAt time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service owns one player's mastery progress. All mutations are serialized
// and applied atomically: readers see either the old or the new progress.
type Service struct {
	mu       sync.Mutex
	progress Progress
	persist  Persister
	validate *validator.Validate
	now      func() time.Time
	open     map[string]openSession
	subs     map[int]chan Live
	nextSub  int
}

// NewService loads the progress of playerID through persist, starting fresh
// when nothing usable is stored. An empty playerID gets a new id. persist may
// be nil, in which case progress lives only in memory.
func NewService(ctx context.Context, playerID string, persist Persister, opts ...Option) *Service {
	if playerID == "" {
		playerID = uuid.NewString()
	}
	s := &Service{
		persist:  persist,
		validate: validator.New(),
		now:      time.Now,
		open:     make(map[string]openSession),
		subs:     make(map[int]chan Live),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.progress = s.load(ctx, playerID)
	return s
}

func (s *Service) load(ctx context.Context, playerID string) Progress {
	if s.persist == nil {
		return NewProgress(playerID)
	}
	raw, err := s.persist.LoadMatching(ctx, playerID, belongsTo(playerID))
	if errors.Is(err, store.ErrNotFound) {
		log.Debug().Str("player", playerID).Msg("no stored progress, starting fresh")
		return NewProgress(playerID)
	}
	if err != nil {
		log.Warn().Err(err).Str("player", playerID).Msg("failed to load progress, starting fresh")
		return NewProgress(playerID)
	}
	p, err := Decode(raw)
	if err != nil {
		log.Warn().Err(err).Str("player", playerID).Msg("stored progress unreadable, starting fresh")
		return NewProgress(playerID)
	}
	return p
}

// PlayerID returns the id of the player this service manages.
func (s *Service) PlayerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.PlayerID
}

// Progress returns a snapshot of the current progress.
func (s *Service) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Clone()
}

// IsStageUnlocked reports whether stage can be practiced. Invalid stages are
// never unlocked.
func (s *Service) IsStageUnlocked(stage skill.Stage) bool {
	if !stage.Valid() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress.Stage(stage).IsUnlocked
}

// StartSession opens a practice session on an unlocked stage and returns its
// id.
func (s *Service) StartSession(_ context.Context, patternID int, stage skill.Stage) (string, error) {
	if !stage.Valid() {
		return "", errors.Wrapf(ErrInvalidStage, "stage %d", stage)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.progress.Stage(stage).IsUnlocked {
		return "", errors.Wrapf(ErrStageLocked, "stage %d", stage)
	}

	id := uuid.NewString()
	s.open[id] = openSession{PatternID: patternID, Stage: stage, StartedAt: s.now()}
	log.Debug().Str("session", id).Int("pattern", patternID).Int("stage", int(stage)).Msg("session started")
	return id, nil
}

// CompleteSession records a finished session: it scores the metrics against
// the stage threshold, updates the stage record, unlocks the next stage on a
// first pass, recomputes the guru score and awards achievements. Progress is
// persisted before the call returns; persistence failures are logged and
// never surfaced.
func (s *Service) CompleteSession(ctx context.Context, req CompleteRequest) (Result, error) {
	if !req.Stage.Valid() {
		return Result{}, errors.Wrapf(ErrInvalidStage, "stage %d", req.Stage)
	}
	if err := s.validate.Struct(req); err != nil {
		return Result{}, errors.Wrap(ErrInvalidRequest, err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.progress.Stage(req.Stage).IsUnlocked {
		return Result{}, errors.Wrapf(ErrStageLocked, "stage %d", req.Stage)
	}
	if open, ok := s.open[req.SessionID]; !ok {
		log.Debug().Str("session", req.SessionID).Msg("completing a session that was not started here")
	} else if open.Stage != req.Stage || open.PatternID != req.PatternID {
		log.Warn().
			Str("session", req.SessionID).
			Int("startedStage", int(open.Stage)).
			Int("stage", int(req.Stage)).
			Int("startedPattern", open.PatternID).
			Int("pattern", req.PatternID).
			Msg("session completed with a different stage or pattern than it started with")
	}
	delete(s.open, req.SessionID)

	now := s.now()
	ev := skill.Evaluate(req.Metrics, req.Stage)

	next := s.progress.Clone()
	transitions := next.record(req.Stage, req.Metrics, ev.Passed, now)
	next.TotalPracticeTime += req.DurationMs
	next.LastSession = now.UnixMilli()
	next.GuruScore = GuruScore(next)

	earned := achievements.Evaluate(achievements.Facts{
		CompletedStages:   next.CompletedCount(),
		TotalPracticeTime: next.PracticeTime(),
		Metrics:           req.Metrics,
	}, next.Achievements, now)
	next.Achievements = achievements.Merge(next.Achievements, earned)

	tier := s.save(ctx, next)
	s.progress = next
	s.broadcastLocked()

	for _, t := range transitions {
		log.Info().Int("stage", int(t.Stage)).Str("from", string(t.From)).Str("to", string(t.To)).
			Str("trigger", t.Trigger).Msg("stage transition")
	}

	return Result{
		SessionID:       req.SessionID,
		Evaluation:      ev,
		GuruScore:       next.GuruScore,
		Feedback:        feedback.Generate(req.Metrics, ev),
		NewAchievements: earned,
		Transitions:     transitions,
		SavedTo:         tier,
	}, nil
}

// Reset discards all progress for the player.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress = NewProgress(s.progress.PlayerID)
	s.open = make(map[string]openSession)
	s.broadcastLocked()
	if s.persist == nil {
		return nil
	}
	if err := s.persist.Delete(ctx, s.progress.PlayerID); err != nil {
		return errors.Wrap(err, "delete stored progress")
	}
	return nil
}

func (s *Service) save(ctx context.Context, p Progress) string {
	if s.persist == nil {
		return ""
	}
	blob, err := Encode(p)
	if err != nil {
		log.Warn().Err(err).Str("player", p.PlayerID).Msg("failed to encode progress")
		return ""
	}
	tier, err := s.persist.Save(ctx, p.PlayerID, blob)
	if err != nil {
		log.Warn().Err(err).Str("player", p.PlayerID).Msg("failed to persist progress, keeping it in memory")
		return ""
	}
	return tier
}

// Subscribe returns a channel that receives the live state now and after
// every change. Slow subscribers only see the latest state. Call the returned
// func to unsubscribe.
func (s *Service) Subscribe() (<-chan Live, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Live, 1)
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.liveLocked()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Service) liveLocked() Live {
	return Live{
		PlayerID:     s.progress.PlayerID,
		CurrentStage: s.progress.CurrentStage,
		GuruScore:    s.progress.GuruScore,
	}
}

func (s *Service) broadcastLocked() {
	live := s.liveLocked()
	for _, ch := range s.subs {
		select {
		case ch <- live:
		default:
			// Drop the stale value so the latest one fits.
			select {
			case <-ch:
			default:
			}
			ch <- live
		}
	}
}
