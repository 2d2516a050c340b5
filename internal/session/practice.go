package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/abhisek/guru/internal/mastery"
	"github.com/abhisek/guru/internal/pattern"
	"github.com/abhisek/guru/internal/scoring"
	"github.com/abhisek/guru/internal/skill"
	"github.com/abhisek/guru/internal/stroke"
)

var (
	ErrNoStrokes = errors.New("session has no strokes")
	ErrFinished  = errors.New("session already finished")
)

// Scorer scores strokes and single requests. *scoring.Evaluator satisfies
// it.
type Scorer interface {
	ScoreStroke(ctx context.Context, in scoring.StrokeInput) scoring.StrokeScores
	Score(ctx context.Context, req scoring.Request) (float64, bool)
}

// Mastery is the progress store a session reports to. *mastery.Service
// satisfies it.
type Mastery interface {
	PlayerID() string
	StartSession(ctx context.Context, patternID int, stage skill.Stage) (string, error)
	CompleteSession(ctx context.Context, req mastery.CompleteRequest) (mastery.Result, error)
}

// Patterns tracks per-pattern completion. *pattern.Tracker satisfies it.
type Patterns interface {
	Complete(ctx context.Context, id int, accuracy, timeSeconds float64) (pattern.PatternStats, error)
}

// Deps wires a practice session. Patterns and Recorder are optional.
type Deps struct {
	Scorer   Scorer
	Mastery  Mastery
	Patterns Patterns
	Recorder *Recorder
	Now      func() time.Time
}

// StrokeResult is what the player sees after each stroke.
type StrokeResult struct {
	Scores scoring.StrokeScores
	Live   skill.Metrics
}

// Practice is one level in progress: a pattern drawn at a stage.
type Practice struct {
	deps    Deps
	pattern pattern.Pattern

	mu        sync.Mutex
	data      Data
	sums      [3]float64
	fallbacks int
	finished  bool
}

// Start opens a practice session on patternID at stage.
func Start(ctx context.Context, deps Deps, patternID int, stage skill.Stage) (*Practice, error) {
	p, err := pattern.Get(patternID)
	if err != nil {
		return nil, err
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	id, err := deps.Mastery.StartSession(ctx, patternID, stage)
	if err != nil {
		return nil, errors.Wrap(err, "start session")
	}

	return &Practice{
		deps:    deps,
		pattern: p,
		data: Data{
			SessionID: id,
			PlayerID:  deps.Mastery.PlayerID(),
			PatternID: patternID,
			Stage:     stage,
			StartTime: deps.Now().UnixMilli(),
		},
	}, nil
}

// Pattern returns the pattern being drawn.
func (p *Practice) Pattern() pattern.Pattern { return p.pattern }

// SessionID returns the mastery session id.
func (p *Practice) SessionID() string { return p.data.SessionID }

// HandleStroke scores a sealed stroke and folds it into the live metrics.
func (p *Practice) HandleStroke(ctx context.Context, s stroke.Stroke) (StrokeResult, error) {
	p.mu.Lock()
	if p.finished {
		p.mu.Unlock()
		return StrokeResult{}, ErrFinished
	}
	p.mu.Unlock()

	scores := p.deps.Scorer.ScoreStroke(ctx, stroke.Input(s, p.pattern.SymmetryAxes))

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finished {
		return StrokeResult{}, ErrFinished
	}
	p.data.Strokes = append(p.data.Strokes, s)
	p.sums[0] += scores.Pressure
	p.sums[1] += scores.Velocity
	p.sums[2] += scores.Angular
	p.fallbacks += len(scores.Fallbacks)

	return StrokeResult{Scores: scores, Live: p.liveLocked(1)}, nil
}

// Live returns the running metrics. Stroke order is not known until the
// session finishes and reads as 1.
func (p *Practice) Live() skill.Metrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.liveLocked(1)
}

func (p *Practice) liveLocked(order float64) skill.Metrics {
	n := float64(len(p.data.Strokes))
	if n == 0 {
		return skill.Metrics{StrokeOrderCompliance: order}
	}
	m := skill.Metrics{
		PressureConsistency:   p.sums[0] / n,
		VelocityConsistency:   p.sums[1] / n,
		AngularPrecision:      p.sums[2] / n,
		StrokeOrderCompliance: order,
	}
	m.FlowStateIndex = (m.PressureConsistency + m.VelocityConsistency + m.AngularPrecision) / 3
	return m.Sanitized()
}

// Finish scores stroke order, completes the mastery session, credits the
// pattern and writes the session log. Failures of the pattern tracker or the
// session log are logged and do not fail the session.
func (p *Practice) Finish(ctx context.Context) (Summary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finished {
		return Summary{}, ErrFinished
	}
	if len(p.data.Strokes) == 0 {
		return Summary{}, ErrNoStrokes
	}

	order := 1.0
	if p.pattern.HasRequiredOrder() {
		score, fellBack := p.deps.Scorer.Score(ctx, scoring.Request{
			Type:          scoring.TypeLCS,
			RequiredOrder: p.pattern.RequiredOrder,
			UserOrder:     stroke.Order(p.data.Strokes),
		})
		if fellBack {
			p.fallbacks++
		}
		order = score
	}

	p.data.Metrics = p.liveLocked(order)
	p.data.EndTime = p.deps.Now().UnixMilli()

	res, err := p.deps.Mastery.CompleteSession(ctx, mastery.CompleteRequest{
		SessionID:  p.data.SessionID,
		Stage:      p.data.Stage,
		PatternID:  p.data.PatternID,
		Metrics:    p.data.Metrics,
		DurationMs: p.data.DurationMs(),
	})
	if err != nil {
		return Summary{}, errors.Wrap(err, "complete session")
	}
	p.finished = true

	sum := Summary{Data: p.data, Result: res, Fallbacks: p.fallbacks}

	if p.deps.Patterns != nil {
		stats, err := p.deps.Patterns.Complete(ctx, p.data.PatternID,
			res.Evaluation.Composite*100, float64(p.data.DurationMs())/1000)
		if err != nil {
			log.Warn().Err(err).Int("pattern", p.data.PatternID).Msg("failed to update pattern progress")
		}
		sum.PatternStats = &stats
	}
	if p.deps.Recorder != nil {
		if err := p.deps.Recorder.Record(ctx, p.data); err != nil {
			log.Warn().Err(err).Str("session", p.data.SessionID).Msg("failed to write session log")
		}
	}

	log.Info().
		Str("session", p.data.SessionID).
		Int("pattern", p.data.PatternID).
		Int("stage", int(p.data.Stage)).
		Float64("composite", res.Evaluation.Composite).
		Bool("passed", res.Evaluation.Passed).
		Int("guruScore", res.GuruScore).
		Msg("session completed")

	return sum, nil
}
