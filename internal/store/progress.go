package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// ProgressRepo is the durable tier for player progress, one row per player.
type ProgressRepo struct {
	db *sql.DB
}

// ProgressRepo returns the progress table backend.
func (s *Store) ProgressRepo() *ProgressRepo {
	return &ProgressRepo{db: s.db}
}

func (r *ProgressRepo) Name() string { return "sqlite" }

func (r *ProgressRepo) Load(ctx context.Context, playerID string) ([]byte, error) {
	var data string
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM progress WHERE player_id = ?`, playerID,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query progress")
	}
	return []byte(data), nil
}

func (r *ProgressRepo) Save(ctx context.Context, playerID string, blob []byte) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO progress (player_id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(player_id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		playerID, string(blob), time.Now().UnixMilli(),
	)
	return errors.Wrap(err, "save progress")
}

func (r *ProgressRepo) Delete(ctx context.Context, playerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM progress WHERE player_id = ?`, playerID)
	return errors.Wrap(err, "delete progress")
}

// LatestPlayer returns the player whose progress was saved most recently.
func (r *ProgressRepo) LatestPlayer(ctx context.Context) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT player_id FROM progress ORDER BY updated_at DESC LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "query latest player")
	}
	return id, nil
}
