package scoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrPoolClosed is returned by Submit once the pool has shut down.
var ErrPoolClosed = errors.New("scorer pool closed")

// DefaultWorkers is the pool size used when none is configured: one worker
// per concurrent per-stroke request.
const DefaultWorkers = 3

// Scorer answers one scorer request.
type Scorer interface {
	Submit(ctx context.Context, req Request) (Response, error)
}

type job struct {
	ctx   context.Context
	req   Request
	reply chan Response
}

// Pool runs scorer requests on a fixed set of worker goroutines so scoring
// never blocks the caller's input loop. Workers share no state; each job is
// one request in and one response out.
type Pool struct {
	jobs    chan job
	quit    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
	handle  func(Request) Response
	metrics *Metrics
}

// NewPool starts a pool with the given number of workers. A nil metrics
// value disables instrumentation.
func NewPool(workers int, metrics *Metrics) *Pool {
	return newPool(workers, metrics, Handle)
}

func newPool(workers int, metrics *Metrics, handle func(Request) Response) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	p := &Pool{
		jobs:    make(chan job, workers*4),
		quit:    make(chan struct{}),
		handle:  handle,
		metrics: metrics,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	return p
}

// Submit queues a request and waits for its response.
func (p *Pool) Submit(ctx context.Context, req Request) (Response, error) {
	j := job{ctx: ctx, req: req, reply: make(chan Response, 1)}

	select {
	case p.jobs <- j:
	case <-p.quit:
		return Response{}, ErrPoolClosed
	case <-ctx.Done():
		return Response{}, errors.Wrap(ctx.Err(), "queue scorer request")
	}

	select {
	case resp := <-j.reply:
		return resp, nil
	case <-p.quit:
		return Response{}, ErrPoolClosed
	case <-ctx.Done():
		return Response{}, errors.Wrap(ctx.Err(), "await scorer response")
	}
}

// Close stops the workers. Requests still queued are abandoned and their
// callers receive ErrPoolClosed.
func (p *Pool) Close() {
	p.once.Do(func() {
		close(p.quit)
		p.wg.Wait()
	})
}

func (p *Pool) work() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case j := <-p.jobs:
			if j.ctx.Err() != nil {
				continue
			}
			j.reply <- p.run(j.req)
		}
	}
}

func (p *Pool) run(req Request) (resp Response) {
	typ := string(req.Type)
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("type", typ).Interface("panic", r).Msg("scorer panicked")
			resp = ErrorResponse(fmt.Sprintf("scorer panic: %v", r))
			p.metrics.requests.WithLabelValues(typ, "panic").Inc()
		}
	}()

	resp = p.handle(req)
	p.metrics.duration.WithLabelValues(typ).Observe(time.Since(start).Seconds())

	outcome := "ok"
	if resp.Err() != "" {
		outcome = "invalid"
	}
	p.metrics.requests.WithLabelValues(typ, outcome).Inc()
	return resp
}
