package store

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// envelope stamps every blob the chain writes so a read can tell a stale
// durable copy from a newer one that fell through to a lower tier.
type envelope struct {
	SavedAt int64           `json:"savedAt"`
	Data    json.RawMessage `json:"data"`
}

// Chain writes through an ordered list of tiers, most durable first. A save
// lands on the first tier that accepts it; a load returns the newest copy
// across tiers. Tier failures are logged and never surfaced, so a chain that
// ends with a Memory tier always succeeds.
type Chain struct {
	tiers    []Backend
	attempts uint
	delay    time.Duration
	now      func() time.Time
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithRetry sets how many times each tier is tried before moving on.
func WithRetry(attempts uint, delay time.Duration) ChainOption {
	return func(c *Chain) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.delay = delay
	}
}

// NewChain builds a chain over tiers. Nil tiers are skipped.
func NewChain(tiers []Backend, opts ...ChainOption) *Chain {
	c := &Chain{attempts: 3, delay: 20 * time.Millisecond, now: time.Now}
	for _, t := range tiers {
		if t != nil {
			c.tiers = append(c.tiers, t)
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tiers returns the tier names in order.
func (c *Chain) Tiers() []string {
	names := make([]string, len(c.tiers))
	for i, t := range c.tiers {
		names[i] = t.Name()
	}
	return names
}

// Save writes blob under key and returns the name of the tier that accepted
// it. It returns an error only when every tier failed.
func (c *Chain) Save(ctx context.Context, key string, blob []byte) (string, error) {
	env, err := json.Marshal(envelope{SavedAt: c.now().UnixNano(), Data: blob})
	if err != nil {
		return "", errors.Wrap(err, "encode envelope")
	}

	var lastErr error
	for _, t := range c.tiers {
		err := c.retry(ctx, func() error { return t.Save(ctx, key, env) })
		if err == nil {
			return t.Name(), nil
		}
		log.Warn().Err(err).Str("tier", t.Name()).Str("key", key).Msg("persistence tier failed, falling back")
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no persistence tiers")
	}
	return "", errors.Wrap(lastErr, "all persistence tiers failed")
}

// Load returns the newest blob stored under key on any tier. Ties go to the
// more durable tier. It returns ErrNotFound when no tier has the key.
// Reading the most durable tier first would let a stale copy there shadow a
// newer save that fell through while that tier was down.
func (c *Chain) Load(ctx context.Context, key string) ([]byte, error) {
	return c.LoadMatching(ctx, key, nil)
}

// LoadMatching is Load restricted to blobs accepted by match. Pinned tiers
// may hold another owner's record under the same key; match filters those
// out. A nil match accepts everything.
func (c *Chain) LoadMatching(ctx context.Context, key string, match func([]byte) bool) ([]byte, error) {
	var (
		best     *envelope
		bestTier string
	)
	for _, t := range c.tiers {
		var raw []byte
		err := c.retry(ctx, func() error {
			var err error
			raw, err = t.Load(ctx, key)
			return err
		})
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			log.Warn().Err(err).Str("tier", t.Name()).Str("key", key).Msg("persistence tier unreadable, skipping")
			continue
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil || len(env.Data) == 0 {
			log.Warn().Str("tier", t.Name()).Str("key", key).Msg("discarding malformed persisted record")
			continue
		}
		if match != nil && !match(env.Data) {
			log.Debug().Str("tier", t.Name()).Str("key", key).Msg("persisted record belongs to someone else")
			continue
		}
		if best == nil || env.SavedAt > best.SavedAt {
			best, bestTier = &env, t.Name()
		}
	}
	if best == nil {
		return nil, ErrNotFound
	}
	log.Debug().Str("tier", bestTier).Str("key", key).Msg("loaded persisted record")
	return []byte(best.Data), nil
}

// Delete removes key from every tier, best effort.
func (c *Chain) Delete(ctx context.Context, key string) error {
	var failed error
	for _, t := range c.tiers {
		if err := t.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("tier", t.Name()).Str("key", key).Msg("failed to delete persisted record")
			failed = err
		}
	}
	return failed
}

func (c *Chain) retry(ctx context.Context, fn func() error) error {
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, ErrNotFound)
		}),
	)
}
