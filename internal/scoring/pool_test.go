package scoring

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_SubmitAndClose(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	p := NewPool(2, m)

	resp, err := p.Submit(context.Background(), Request{Type: TypeLCS, RequiredOrder: []int{1, 2}, UserOrder: []int{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, 1.0, resp.Score)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(string(TypeLCS), "ok")))

	p.Close()
	p.Close()

	_, err = p.Submit(context.Background(), Request{Type: TypePressure})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

func TestPool_InvalidOutcome(t *testing.T) {
	m := NewMetrics(nil)
	p := NewPool(1, m)
	defer p.Close()

	resp, err := p.Submit(context.Background(), Request{Type: "NOPE"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Err())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("NOPE", "invalid")))
}

func TestPool_RecoversPanics(t *testing.T) {
	m := NewMetrics(nil)
	p := newPool(1, m, func(Request) Response { panic("boom") })
	defer p.Close()

	resp, err := p.Submit(context.Background(), Request{Type: TypePressure})
	require.NoError(t, err)
	assert.Contains(t, resp.Err(), "boom")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(string(TypePressure), "panic")))

	// The worker survives the panic.
	resp, err = p.Submit(context.Background(), Request{Type: TypePressure})
	require.NoError(t, err)
	assert.Contains(t, resp.Err(), "boom")
}

func TestPool_ConcurrentSubmit(t *testing.T) {
	p := NewPool(3, nil)
	defer p.Close()

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := p.Submit(context.Background(), Request{Type: TypePressure, PressureSamples: []float64{0.5, 0.5}})
			if err != nil {
				errs <- err
				return
			}
			if resp.Score != 1.0 {
				t.Errorf("score = %f, want 1.0", resp.Score)
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestPool_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	p := newPool(1, nil, func(Request) Response {
		<-release
		return Response{Score: 1}
	})
	defer p.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := p.Submit(ctx, Request{Type: TypePressure})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type stubScorer struct {
	resp map[RequestType]Response
	err  map[RequestType]error
	slow map[RequestType]bool
}

func (s stubScorer) Submit(ctx context.Context, req Request) (Response, error) {
	if s.slow[req.Type] {
		<-ctx.Done()
		return Response{}, ctx.Err()
	}
	if err := s.err[req.Type]; err != nil {
		return Response{}, err
	}
	return s.resp[req.Type], nil
}

func TestEvaluator_ScoreStroke(t *testing.T) {
	p := NewPool(DefaultWorkers, nil)
	defer p.Close()
	e := NewEvaluator(p)

	got := e.ScoreStroke(context.Background(), StrokeInput{
		PressureSamples: []float64{0.7, 0.7, 0.7},
		Points:          []TimedPoint{{0, 0, 0}, {10, 0, 10}, {20, 0, 20}},
		Angles:          []float64{2, 91, 179, 271},
		SymmetryAxes:    4,
	})
	assert.Equal(t, 1.0, got.Pressure)
	assert.Equal(t, 1.0, got.Velocity)
	assert.Equal(t, 0.9167, got.Angular)
	assert.Empty(t, got.Fallbacks)
	assert.InDelta(t, (2+0.9167)/3, got.FlowIndex(), epsilon)
}

func TestEvaluator_TimeoutFallsBack(t *testing.T) {
	m := NewMetrics(nil)
	s := stubScorer{
		resp: map[RequestType]Response{
			TypePressure: {Score: 0.4},
			TypeAngular:  {Score: 0.6},
		},
		slow: map[RequestType]bool{TypeVelocityCV: true},
	}
	e := NewEvaluator(s, WithTimeout(20*time.Millisecond), WithMetrics(m))

	start := time.Now()
	got := e.ScoreStroke(context.Background(), StrokeInput{SymmetryAxes: 4})
	assert.Less(t, time.Since(start), time.Second)

	assert.Equal(t, 0.4, got.Pressure)
	assert.Equal(t, DefaultFallbackScore, got.Velocity)
	assert.Equal(t, 0.6, got.Angular)
	assert.Equal(t, []RequestType{TypeVelocityCV}, got.Fallbacks)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues(string(TypeVelocityCV), "unavailable")))
}

func TestEvaluator_ErrorDetailFallsBack(t *testing.T) {
	m := NewMetrics(nil)
	p := NewPool(1, nil)
	defer p.Close()
	e := NewEvaluator(p, WithMetrics(m))

	score, fellBack := e.Score(context.Background(), Request{Type: TypeAngular, StrokeAngles: []float64{10}, SymmetryAxes: 0})
	assert.True(t, fellBack)
	assert.Equal(t, DefaultFallbackScore, score)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacks.WithLabelValues(string(TypeAngular), "rejected")))
}

func TestEvaluator_ClosedPoolFallsBack(t *testing.T) {
	p := NewPool(1, nil)
	p.Close()
	e := NewEvaluator(p, WithFallback(0.5))

	got := e.ScoreStroke(context.Background(), StrokeInput{})
	assert.Equal(t, 0.5, got.Pressure)
	assert.Equal(t, 0.5, got.Velocity)
	assert.Equal(t, 0.5, got.Angular)
	assert.Len(t, got.Fallbacks, 3)
}
