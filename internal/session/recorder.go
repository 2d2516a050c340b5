package session

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/abhisek/guru/internal/store"
)

// Log is the append-only session log. *store.SessionRepo satisfies it.
type Log interface {
	Append(ctx context.Context, rec store.SessionRecord) error
	Query(ctx context.Context, q store.SessionQuery) ([]store.SessionRecord, error)
}

// Recorder writes finished sessions to the session log. The log is for audit
// and analytics; nothing reads it back to make scoring decisions.
type Recorder struct {
	log Log
}

// NewRecorder creates a Recorder over l.
func NewRecorder(l Log) *Recorder {
	return &Recorder{log: l}
}

// Record appends d to the log.
func (r *Recorder) Record(ctx context.Context, d Data) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	err = r.log.Append(ctx, store.SessionRecord{
		SessionID: d.SessionID,
		PlayerID:  d.PlayerID,
		PatternID: d.PatternID,
		Stage:     int(d.Stage),
		StartTime: d.StartTime,
		EndTime:   d.EndTime,
		Data:      raw,
	})
	if err != nil {
		return errors.Wrapf(err, "record session %s", d.SessionID)
	}
	return nil
}

// Recent returns logged sessions matching q, newest first. Records that no
// longer decode are skipped.
func (r *Recorder) Recent(ctx context.Context, q store.SessionQuery) ([]Data, error) {
	recs, err := r.log.Query(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "query session log")
	}
	return lo.FilterMap(recs, func(rec store.SessionRecord, _ int) (Data, bool) {
		d, err := Decode(rec)
		return d, err == nil
	}), nil
}

// Decode parses a session log record.
func Decode(rec store.SessionRecord) (Data, error) {
	var d Data
	if err := json.Unmarshal(rec.Data, &d); err != nil {
		return Data{}, errors.Wrapf(err, "decode session %s", rec.SessionID)
	}
	return d, nil
}
