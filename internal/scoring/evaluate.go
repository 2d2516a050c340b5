package scoring

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// DefaultFallbackScore stands in for a metric whose scorer did not answer.
const DefaultFallbackScore = 0.85

// DefaultTimeout bounds a single scorer round trip.
const DefaultTimeout = 2 * time.Second

// StrokeInput is everything the per-stroke scorers need.
type StrokeInput struct {
	PressureSamples []float64
	Points          []TimedPoint
	Angles          []float64
	SymmetryAxes    int
}

// StrokeScores holds the three per-stroke metric scores.
type StrokeScores struct {
	Pressure float64
	Velocity float64
	Angular  float64
	// Fallbacks lists the request types that were replaced by the fallback score.
	Fallbacks []RequestType
}

// FlowIndex is the mean of the three per-stroke scores.
func (s StrokeScores) FlowIndex() float64 {
	return (s.Pressure + s.Velocity + s.Angular) / 3
}

// Evaluator fans per-stroke requests out to a Scorer and joins the results.
// A scorer that fails, times out or reports an error contributes the
// fallback score instead of blocking or skipping the metric.
type Evaluator struct {
	scorer   Scorer
	timeout  time.Duration
	fallback float64
	metrics  *Metrics
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) EvaluatorOption {
	return func(e *Evaluator) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithFallback sets the neutral score used when a scorer cannot answer.
func WithFallback(score float64) EvaluatorOption {
	return func(e *Evaluator) {
		if score >= 0 && score <= 1 {
			e.fallback = score
		}
	}
}

// WithMetrics records fallbacks on m.
func WithMetrics(m *Metrics) EvaluatorOption {
	return func(e *Evaluator) {
		if m != nil {
			e.metrics = m
		}
	}
}

// NewEvaluator creates an Evaluator over scorer.
func NewEvaluator(scorer Scorer, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		scorer:   scorer,
		timeout:  DefaultTimeout,
		fallback: DefaultFallbackScore,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NewMetrics(nil)
	}
	return e
}

// ScoreStroke issues the pressure, velocity and angular requests in parallel
// and waits for all three.
func (e *Evaluator) ScoreStroke(ctx context.Context, in StrokeInput) StrokeScores {
	reqs := [3]Request{
		{Type: TypePressure, PressureSamples: in.PressureSamples},
		{Type: TypeVelocityCV, Points: in.Points},
		{Type: TypeAngular, StrokeAngles: in.Angles, SymmetryAxes: in.SymmetryAxes},
	}

	var (
		scores   [3]float64
		fellBack [3]bool
		g        errgroup.Group
	)
	for i := range reqs {
		g.Go(func() error {
			scores[i], fellBack[i] = e.Score(ctx, reqs[i])
			return nil
		})
	}
	_ = g.Wait()

	out := StrokeScores{Pressure: scores[0], Velocity: scores[1], Angular: scores[2]}
	for i, fb := range fellBack {
		if fb {
			out.Fallbacks = append(out.Fallbacks, reqs[i].Type)
		}
	}
	return out
}

// Score sends one request and returns its score, or the fallback score and
// true when the scorer could not produce a usable answer.
func (e *Evaluator) Score(ctx context.Context, req Request) (float64, bool) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.scorer.Submit(ctx, req)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("type", string(req.Type)).Msg("scorer unavailable, using fallback")
		e.metrics.fallbacks.WithLabelValues(string(req.Type), "unavailable").Inc()
		return e.fallback, true
	case resp.Err() != "":
		log.Warn().Str("type", string(req.Type)).Str("error", resp.Err()).Msg("scorer rejected request, using fallback")
		e.metrics.fallbacks.WithLabelValues(string(req.Type), "rejected").Inc()
		return e.fallback, true
	case math.IsNaN(resp.Score) || math.IsInf(resp.Score, 0):
		e.metrics.fallbacks.WithLabelValues(string(req.Type), "nan").Inc()
		return e.fallback, true
	}
	return resp.Score, false
}
