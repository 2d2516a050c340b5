package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/guru/internal/achievements"
	"github.com/abhisek/guru/internal/mastery"
	"github.com/abhisek/guru/internal/pattern"
	"github.com/abhisek/guru/internal/scoring"
	"github.com/abhisek/guru/internal/skill"
	"github.com/abhisek/guru/internal/store"
	"github.com/abhisek/guru/internal/stroke"
)

// line builds a horizontal stroke moving at 1 px/ms at a fixed angle.
func line(id, layer int, pressures ...float64) stroke.Stroke {
	if len(pressures) == 0 {
		pressures = []float64{0.7, 0.7, 0.7, 0.7, 0.7, 0.7}
	}
	s := stroke.Stroke{ID: id, Layer: layer}
	for i, pr := range pressures {
		s.Points = append(s.Points, stroke.Point{
			Timestamp: int64(i * 10),
			X:         300 + float64(i*10),
			Y:         300,
			Pressure:  pr,
			Velocity:  1,
			Angle:     0,
		})
	}
	s.StartTime = s.Points[0].Timestamp
	s.EndTime = s.Points[len(s.Points)-1].Timestamp
	return s
}

type fixture struct {
	deps    Deps
	mastery *mastery.Service
	tracker *pattern.Tracker
	st      *store.Store
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(filepath.Join(t.TempDir(), "guru.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	pool := scoring.NewPool(2, nil)
	t.Cleanup(pool.Close)

	chain := store.NewChain([]store.Backend{store.NewMemory()}, store.WithRetry(1, 0))
	f := &fixture{
		mastery: mastery.NewService(ctx, "p1", chain),
		tracker: pattern.LoadTracker(ctx, chain, "p1"),
		st:      st,
		clock:   time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	f.deps = Deps{
		Scorer:   scoring.NewEvaluator(pool),
		Mastery:  f.mastery,
		Patterns: f.tracker,
		Recorder: NewRecorder(st.SessionRepo()),
		Now:      func() time.Time { return f.clock },
	}
	return f
}

func TestPractice_PerfectSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := Start(ctx, f.deps, 1, skill.StageFoundation)
	require.NoError(t, err)
	assert.NotEmpty(t, p.SessionID())
	assert.Equal(t, "Simple Flower", p.Pattern().Name)

	for i, s := range []stroke.Stroke{line(1, 1), line(2, 2)} {
		res, err := p.HandleStroke(ctx, s)
		require.NoError(t, err, "stroke %d", i)
		assert.InDelta(t, 1.0, res.Scores.Pressure, 1e-9)
		assert.InDelta(t, 1.0, res.Scores.Velocity, 1e-9)
		assert.InDelta(t, 1.0, res.Scores.Angular, 1e-9)
		assert.Empty(t, res.Scores.Fallbacks)
	}

	f.clock = f.clock.Add(90 * time.Second)
	sum, err := p.Finish(ctx)
	require.NoError(t, err)

	assert.True(t, sum.Result.Evaluation.Passed)
	assert.InDelta(t, 1.0, sum.Data.Metrics.StrokeOrderCompliance, 1e-9)
	assert.InDelta(t, 1.0, sum.Data.Metrics.FlowStateIndex, 1e-9)
	assert.Equal(t, 100, sum.Result.GuruScore)
	assert.Equal(t, 90*time.Second, sum.Duration())
	assert.InDelta(t, 100, sum.Accuracy(), 1e-6)
	assert.Zero(t, sum.Fallbacks)

	ids := make([]string, 0, len(sum.Result.NewAchievements))
	for _, a := range sum.Result.NewAchievements {
		ids = append(ids, a.ID)
	}
	assert.ElementsMatch(t, []string{achievements.FirstStage, achievements.Precision, achievements.FlowState}, ids)

	assert.True(t, f.mastery.IsStageUnlocked(skill.StageControl))
	assert.Equal(t, int64(90_000), f.mastery.Progress().TotalPracticeTime)

	require.NotNil(t, sum.PatternStats)
	assert.Equal(t, 5, sum.PatternStats.Stars)
	assert.True(t, f.tracker.IsUnlocked(2))

	logged, err := f.deps.Recorder.Recent(ctx, store.SessionQuery{PlayerID: "p1"})
	require.NoError(t, err)
	require.Len(t, logged, 1)
	assert.Equal(t, sum.Data.SessionID, logged[0].SessionID)
	assert.Len(t, logged[0].Strokes, 2)
	assert.Equal(t, skill.StageFoundation, logged[0].Stage)
	assert.Equal(t, sum.Data.Metrics, logged[0].Metrics)
}

func TestPractice_WrongLayerOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := Start(ctx, f.deps, 1, skill.StageFoundation)
	require.NoError(t, err)
	_, err = p.HandleStroke(ctx, line(1, 2))
	require.NoError(t, err)
	_, err = p.HandleStroke(ctx, line(2, 1))
	require.NoError(t, err)

	sum, err := p.Finish(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, sum.Data.Metrics.StrokeOrderCompliance, 1e-9)
	// 0.40 + 0.25 + 0.15 + 0.10*0.5 + 0.10
	assert.InDelta(t, 0.95, sum.Result.Evaluation.Composite, 1e-9)
}

func TestPractice_SingleLayerPatternIgnoresOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := Start(ctx, f.deps, 2, skill.StageFoundation)
	require.NoError(t, err)
	require.False(t, p.Pattern().HasRequiredOrder())

	_, err = p.HandleStroke(ctx, line(7, 0))
	require.NoError(t, err)
	_, err = p.HandleStroke(ctx, line(3, 0))
	require.NoError(t, err)

	sum, err := p.Finish(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sum.Data.Metrics.StrokeOrderCompliance, 1e-9)
}

func TestPractice_LiveRunningMean(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := Start(ctx, f.deps, 1, skill.StageFoundation)
	require.NoError(t, err)
	assert.Equal(t, skill.Metrics{StrokeOrderCompliance: 1}, p.Live())

	_, err = p.HandleStroke(ctx, line(1, 1))
	require.NoError(t, err)
	res, err := p.HandleStroke(ctx, line(2, 2, 0.5, 0.9, 0.5, 0.9, 0.5, 0.9))
	require.NoError(t, err)

	assert.InDelta(t, 0.0, res.Scores.Pressure, 1e-9)
	assert.InDelta(t, 0.5, res.Live.PressureConsistency, 1e-9)
	assert.InDelta(t, 1.0, res.Live.VelocityConsistency, 1e-9)
	assert.InDelta(t, (0.5+1+1)/3, res.Live.FlowStateIndex, 1e-9)
	assert.Equal(t, res.Live, p.Live())
}

func TestPractice_ScorerDownUsesFallback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pool := scoring.NewPool(1, nil)
	pool.Close()
	f.deps.Scorer = scoring.NewEvaluator(pool)

	p, err := Start(ctx, f.deps, 1, skill.StageFoundation)
	require.NoError(t, err)
	res, err := p.HandleStroke(ctx, line(1, 1))
	require.NoError(t, err)
	assert.Len(t, res.Scores.Fallbacks, 3)

	sum, err := p.Finish(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Fallbacks)
	assert.InDelta(t, scoring.DefaultFallbackScore, sum.Result.Evaluation.Composite, 1e-9)
	assert.True(t, sum.Result.Evaluation.Passed)
}

func TestPractice_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := Start(ctx, f.deps, 1, skill.StageSymmetry)
	assert.ErrorIs(t, err, mastery.ErrStageLocked)

	_, err = Start(ctx, f.deps, 99, skill.StageFoundation)
	assert.ErrorIs(t, err, pattern.ErrUnknownPattern)

	p, err := Start(ctx, f.deps, 1, skill.StageFoundation)
	require.NoError(t, err)
	_, err = p.Finish(ctx)
	assert.ErrorIs(t, err, ErrNoStrokes)

	_, err = p.HandleStroke(ctx, line(1, 1))
	require.NoError(t, err)
	_, err = p.Finish(ctx)
	require.NoError(t, err)

	_, err = p.Finish(ctx)
	assert.ErrorIs(t, err, ErrFinished)
	_, err = p.HandleStroke(ctx, line(2, 2))
	assert.ErrorIs(t, err, ErrFinished)
}

type failingLog struct{}

func (failingLog) Append(context.Context, store.SessionRecord) error { return assert.AnError }
func (failingLog) Query(context.Context, store.SessionQuery) ([]store.SessionRecord, error) {
	return nil, assert.AnError
}

func TestPractice_LogFailureDoesNotFailSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.deps.Recorder = NewRecorder(failingLog{})
	f.deps.Patterns = nil

	p, err := Start(ctx, f.deps, 1, skill.StageFoundation)
	require.NoError(t, err)
	_, err = p.HandleStroke(ctx, line(1, 1))
	require.NoError(t, err)

	sum, err := p.Finish(ctx)
	require.NoError(t, err)
	assert.Nil(t, sum.PatternStats)

	_, err = f.deps.Recorder.Recent(ctx, store.SessionQuery{})
	assert.Error(t, err)
}

func TestRecorder_SkipsUndecodable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := f.st.SessionRepo()

	require.NoError(t, repo.Append(ctx, store.SessionRecord{SessionID: "bad", PlayerID: "p1", Stage: 1, Data: []byte("{")}))
	require.NoError(t, f.deps.Recorder.Record(ctx, Data{SessionID: "good", PlayerID: "p1", PatternID: 3, Stage: 2, StartTime: 5, EndTime: 10}))

	got, err := f.deps.Recorder.Recent(ctx, store.SessionQuery{PlayerID: "p1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "good", got[0].SessionID)
	assert.Equal(t, int64(5), got[0].DurationMs())

	rec, err := repo.Get(ctx, "good")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Stage)
	assert.Equal(t, 3, rec.PatternID)
}

// gatedScorer holds ScoreStroke until release is closed.
type gatedScorer struct {
	Scorer
	entered chan struct{}
	release chan struct{}
}

func (g *gatedScorer) ScoreStroke(ctx context.Context, in scoring.StrokeInput) scoring.StrokeScores {
	close(g.entered)
	<-g.release
	return g.Scorer.ScoreStroke(ctx, in)
}

func TestPractice_StrokeDuringFinishRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := Start(ctx, f.deps, 2, skill.StageFoundation)
	require.NoError(t, err)
	_, err = p.HandleStroke(ctx, line(1, 0))
	require.NoError(t, err)

	gate := &gatedScorer{Scorer: f.deps.Scorer, entered: make(chan struct{}), release: make(chan struct{})}
	p.deps.Scorer = gate

	done := make(chan error, 1)
	go func() {
		_, err := p.HandleStroke(ctx, line(2, 0))
		done <- err
	}()
	<-gate.entered

	sum, err := p.Finish(ctx)
	require.NoError(t, err)
	close(gate.release)

	assert.ErrorIs(t, <-done, ErrFinished)
	assert.Len(t, sum.Data.Strokes, 1)
	assert.Len(t, p.data.Strokes, 1)
}
