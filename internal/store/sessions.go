package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"
)

// SessionRecord is one finished practice session in the session log. Data is
// the full serialized session.
type SessionRecord struct {
	SessionID string
	PlayerID  string
	PatternID int
	Stage     int
	StartTime int64
	EndTime   int64
	Data      []byte
}

// SessionQuery filters session log reads. Zero fields match everything.
type SessionQuery struct {
	PlayerID string
	Stage    int
	Limit    int
}

// SessionRepo is the append-only session log.
type SessionRepo struct {
	db *sql.DB
}

// SessionRepo returns the session log.
func (s *Store) SessionRepo() *SessionRepo {
	return &SessionRepo{db: s.db}
}

// Append writes a finished session. Sessions are immutable, so appending an
// existing id fails.
func (r *SessionRepo) Append(ctx context.Context, rec SessionRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, player_id, pattern_id, stage, start_time, end_time, data)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID, rec.PlayerID, rec.PatternID, rec.Stage, rec.StartTime, rec.EndTime, string(rec.Data),
	)
	return errors.Wrap(err, "append session")
}

// Get returns one session by id.
func (r *SessionRepo) Get(ctx context.Context, sessionID string) (SessionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT session_id, player_id, pattern_id, stage, start_time, end_time, data
		 FROM sessions WHERE session_id = ?`, sessionID)
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, ErrNotFound
	}
	return rec, errors.Wrap(err, "query session")
}

// Query returns sessions newest first.
func (r *SessionRepo) Query(ctx context.Context, q SessionQuery) ([]SessionRecord, error) {
	var (
		where []string
		args  []any
	)
	if q.PlayerID != "" {
		where = append(where, "player_id = ?")
		args = append(args, q.PlayerID)
	}
	if q.Stage > 0 {
		where = append(where, "stage = ?")
		args = append(args, q.Stage)
	}

	stmt := `SELECT session_id, player_id, pattern_id, stage, start_time, end_time, data FROM sessions`
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY end_time DESC, session_id"
	if q.Limit > 0 {
		stmt += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query sessions")
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan session")
		}
		out = append(out, rec)
	}
	return out, errors.Wrap(rows.Err(), "iterate sessions")
}

// CountByStage returns the number of logged sessions per stage.
func (r *SessionRepo) CountByStage(ctx context.Context, playerID string) (map[int]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT stage, COUNT(*) FROM sessions WHERE player_id = ? GROUP BY stage`, playerID)
	if err != nil {
		return nil, errors.Wrap(err, "count sessions")
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var stage, n int
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, errors.Wrap(err, "scan session count")
		}
		counts[stage] = n
	}
	return counts, errors.Wrap(rows.Err(), "iterate session counts")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(s scanner) (SessionRecord, error) {
	var (
		rec  SessionRecord
		data string
	)
	err := s.Scan(&rec.SessionID, &rec.PlayerID, &rec.PatternID, &rec.Stage, &rec.StartTime, &rec.EndTime, &data)
	if err != nil {
		return SessionRecord{}, err
	}
	rec.Data = []byte(data)
	return rec, nil
}
