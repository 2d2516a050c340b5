package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/abhisek/guru/internal/config"
	"github.com/abhisek/guru/internal/mastery"
	"github.com/abhisek/guru/internal/pattern"
	"github.com/abhisek/guru/internal/scoring"
	"github.com/abhisek/guru/internal/session"
	"github.com/abhisek/guru/internal/store"
)

// deps is everything a command that touches player data needs.
type deps struct {
	store    *store.Store
	progress *store.Chain
	legacy   *store.Chain
	mastery  *mastery.Service
	tracker  *pattern.Tracker
	recorder *session.Recorder
	closers  []func() error
}

// openDeps opens the store, builds the persistence chains and loads the
// player's progress.
func openDeps(ctx context.Context, cfg config.Config) (*deps, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	d := &deps{store: st, closers: []func() error{st.Close}}

	kv, closeKV := openKV(ctx, cfg.KV)
	if closeKV != nil {
		d.closers = append(d.closers, closeKV)
	}

	var pinned store.Backend
	if kv != nil {
		pinned = store.Pinned(kv, mastery.ProgressKey)
	}
	d.progress = store.NewChain([]store.Backend{st.ProgressRepo(), pinned, store.NewMemory()})
	d.legacy = store.NewChain([]store.Backend{kv, store.NewMemory()})

	player := resolvePlayer(ctx, cfg, st.ProgressRepo())
	d.mastery = mastery.NewService(ctx, player, d.progress)
	d.tracker = pattern.LoadTracker(ctx, d.legacy, d.mastery.PlayerID())
	d.recorder = session.NewRecorder(st.SessionRepo())

	log.Debug().
		Str("db", dbPath).
		Strs("tiers", d.progress.Tiers()).
		Str("player", d.mastery.PlayerID()).
		Msg("dependencies ready")
	return d, nil
}

// openKV builds the key-value tier. A tier that cannot be reached is
// skipped: the chain falls back to memory.
func openKV(ctx context.Context, cfg config.KVConfig) (store.Backend, func() error) {
	switch cfg.Backend {
	case config.KVFile:
		kv, err := store.NewFileKV(cfg.Dir)
		if err != nil {
			log.Warn().Err(err).Str("dir", cfg.Dir).Msg("file key-value tier unavailable")
			return nil, nil
		}
		return kv, nil
	case config.KVRedis:
		kv, err := store.NewRedisKV(ctx, cfg.RedisURL, cfg.Prefix)
		if err != nil {
			log.Warn().Err(err).Msg("redis key-value tier unavailable")
			return nil, nil
		}
		return kv, kv.Close
	default:
		return nil, nil
	}
}

// resolvePlayer picks the player id: configured id first, then the player
// who saved most recently. Empty means a new player.
func resolvePlayer(ctx context.Context, cfg config.Config, repo *store.ProgressRepo) string {
	if cfg.Player != "" {
		return cfg.Player
	}
	id, err := repo.LatestPlayer(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Warn().Err(err).Msg("failed to look up the last player")
	}
	return id
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}

// newEvaluator starts the scorer pool. Callers must close the returned pool.
func newEvaluator(cfg config.ScorerConfig, reg prometheus.Registerer) (*scoring.Evaluator, *scoring.Pool) {
	metrics := scoring.NewMetrics(reg)
	pool := scoring.NewPool(cfg.Workers, metrics)
	return scoring.NewEvaluator(pool,
		scoring.WithTimeout(cfg.Timeout),
		scoring.WithFallback(cfg.Fallback),
		scoring.WithMetrics(metrics),
	), pool
}
