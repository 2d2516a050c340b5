package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "guru.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{"progress", "sessions"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
	}

	var idx string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name='sessions_stage'",
	).Scan(&idx)
	if err != nil {
		t.Fatalf("stage index missing: %v", err)
	}
}

func TestProgressRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	_, err := repo.Load(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.LatestPlayer(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Save(ctx, "p1", []byte(`{"v":1}`)))
	require.NoError(t, repo.Save(ctx, "p1", []byte(`{"v":2}`)))

	got, err := repo.Load(ctx, "p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, repo.Save(ctx, "p2", []byte(`{}`)))
	latest, err := repo.LatestPlayer(ctx)
	require.NoError(t, err)
	assert.Equal(t, "p2", latest)

	require.NoError(t, repo.Delete(ctx, "p1"))
	require.NoError(t, repo.Delete(ctx, "p1"))
	_, err = repo.Load(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRepo(t *testing.T) {
	s := openTestStore(t)
	repo := s.SessionRepo()
	ctx := context.Background()

	recs := []SessionRecord{
		{SessionID: "a", PlayerID: "p1", PatternID: 1, Stage: 1, StartTime: 0, EndTime: 100, Data: []byte(`{"n":1}`)},
		{SessionID: "b", PlayerID: "p1", PatternID: 2, Stage: 2, StartTime: 100, EndTime: 200, Data: []byte(`{"n":2}`)},
		{SessionID: "c", PlayerID: "p1", PatternID: 3, Stage: 1, StartTime: 200, EndTime: 300, Data: []byte(`{"n":3}`)},
		{SessionID: "d", PlayerID: "p2", PatternID: 1, Stage: 1, StartTime: 0, EndTime: 50, Data: []byte(`{}`)},
	}
	for _, r := range recs {
		require.NoError(t, repo.Append(ctx, r))
	}
	assert.Error(t, repo.Append(ctx, recs[0]), "sessions are immutable")

	got, err := repo.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, recs[1], got)

	_, err = repo.Get(ctx, "zz")
	assert.ErrorIs(t, err, ErrNotFound)

	stage1, err := repo.Query(ctx, SessionQuery{PlayerID: "p1", Stage: 1})
	require.NoError(t, err)
	require.Len(t, stage1, 2)
	assert.Equal(t, "c", stage1[0].SessionID)
	assert.Equal(t, "a", stage1[1].SessionID)

	limited, err := repo.Query(ctx, SessionQuery{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	counts, err := repo.CountByStage(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 2, 2: 1}, counts)
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.ProgressRepo().Save(ctx, "p1", []byte(`{}`)))
	require.NoError(t, s.SessionRepo().Append(ctx, SessionRecord{SessionID: "a", PlayerID: "p1", Data: []byte(`{}`)}))

	require.NoError(t, s.Reset(ctx))

	_, err := s.ProgressRepo().Load(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound)
	all, err := s.SessionRepo().Query(ctx, SessionQuery{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	_, err := m.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	blob := []byte("abc")
	require.NoError(t, m.Save(ctx, "k", blob))
	blob[0] = 'x'

	got, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, m.Delete(ctx, "k"))
	_, err = m.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileKV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "kv")
	f, err := NewFileKV(dir)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.Load(ctx, "guru-mastery-progress-v1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.Save(ctx, "guru-mastery-progress-v1", []byte(`{"a":1}`)))
	require.NoError(t, f.Save(ctx, "guru-mastery-progress-v1", []byte(`{"a":2}`)))
	got, err := f.Load(ctx, "guru-mastery-progress-v1")
	require.NoError(t, err)
	assert.Equal(t, `{"a":2}`, string(got))

	// Path separators in keys stay inside the directory.
	require.NoError(t, f.Save(ctx, "../escape", []byte(`1`)))
	got, err = f.Load(ctx, "../escape")
	require.NoError(t, err)
	assert.Equal(t, "1", string(got))
	assert.FileExists(t, filepath.Join(dir, ".._escape.json"))

	require.NoError(t, f.Delete(ctx, "guru-mastery-progress-v1"))
	require.NoError(t, f.Delete(ctx, "guru-mastery-progress-v1"))
}

func TestPinned(t *testing.T) {
	m := NewMemory()
	p := Pinned(m, "fixed")
	ctx := context.Background()

	require.NoError(t, p.Save(ctx, "player-1", []byte("x")))
	got, err := m.Load(ctx, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))

	got, err = p.Load(ctx, "player-2")
	require.NoError(t, err)
	assert.Equal(t, "x", string(got))
	assert.Equal(t, "memory", p.Name())
}

// failing is a tier that is always down.
type failing struct {
	name  string
	calls int
}

func (f *failing) Name() string { return f.name }
func (f *failing) Load(context.Context, string) ([]byte, error) {
	f.calls++
	return nil, errors.New("disk on fire")
}
func (f *failing) Save(context.Context, string, []byte) error {
	f.calls++
	return errors.New("disk on fire")
}
func (f *failing) Delete(context.Context, string) error {
	return errors.New("disk on fire")
}

func TestChain_FallsThrough(t *testing.T) {
	down := &failing{name: "sqlite"}
	mem := NewMemory()
	c := NewChain([]Backend{down, nil, mem}, WithRetry(2, 0))
	ctx := context.Background()

	assert.Equal(t, []string{"sqlite", "memory"}, c.Tiers())

	tier, err := c.Save(ctx, "p1", []byte(`{"stage":2}`))
	require.NoError(t, err)
	assert.Equal(t, "memory", tier)
	assert.Equal(t, 2, down.calls, "failing tier retried")

	got, err := c.Load(ctx, "p1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":2}`, string(got))
}

func TestChain_PrefersFirstTier(t *testing.T) {
	durable := NewMemory()
	kv := NewMemory()
	c := NewChain([]Backend{durable, kv}, WithRetry(1, 0))
	ctx := context.Background()

	tier, err := c.Save(ctx, "p1", []byte(`1`))
	require.NoError(t, err)
	assert.Equal(t, "memory", tier)

	_, err = kv.Load(ctx, "p1")
	assert.ErrorIs(t, err, ErrNotFound, "write stops at the first tier that accepts it")
}

func TestChain_LoadsNewestAcrossTiers(t *testing.T) {
	durable := NewMemory()
	fallback := NewMemory()
	ctx := context.Background()

	clock := time.Unix(1000, 0)
	c := NewChain([]Backend{durable, fallback}, WithRetry(1, 0))
	c.now = func() time.Time { return clock }

	_, err := c.Save(ctx, "p1", []byte(`"old"`))
	require.NoError(t, err)

	// A newer write that only reached the fallback tier wins on load.
	clock = clock.Add(time.Second)
	newer := NewChain([]Backend{fallback}, WithRetry(1, 0))
	newer.now = func() time.Time { return clock }
	_, err = newer.Save(ctx, "p1", []byte(`"new"`))
	require.NoError(t, err)

	got, err := c.Load(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, `"new"`, string(got))
}

func TestChain_NotFoundAndMalformed(t *testing.T) {
	mem := NewMemory()
	c := NewChain([]Backend{&failing{name: "sqlite"}, mem}, WithRetry(1, 0))
	ctx := context.Background()

	_, err := c.Load(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mem.Save(ctx, "junk", []byte("not json")))
	_, err = c.Load(ctx, "junk")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChain_AllTiersFail(t *testing.T) {
	c := NewChain([]Backend{&failing{name: "a"}, &failing{name: "b"}}, WithRetry(1, 0))
	_, err := c.Save(context.Background(), "k", []byte(`{}`))
	assert.Error(t, err)

	_, err = NewChain(nil).Save(context.Background(), "k", []byte(`{}`))
	assert.Error(t, err)
}

func TestChain_Delete(t *testing.T) {
	a, b := NewMemory(), NewMemory()
	c := NewChain([]Backend{a, b})
	ctx := context.Background()
	require.NoError(t, a.Save(ctx, "k", []byte("1")))
	require.NoError(t, b.Save(ctx, "k", []byte("2")))

	require.NoError(t, c.Delete(ctx, "k"))
	_, err := a.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = b.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Error(t, NewChain([]Backend{&failing{name: "x"}}).Delete(ctx, "k"))
}

func TestChain_LoadMatching(t *testing.T) {
	durable := NewMemory()
	kv := NewMemory()
	ctx := context.Background()

	clock := time.Unix(1000, 0)
	c := NewChain([]Backend{durable, Pinned(kv, "fixed")}, WithRetry(1, 0))
	c.now = func() time.Time { return clock }
	_, err := c.Save(ctx, "alice", []byte(`{"playerId":"alice"}`))
	require.NoError(t, err)

	// A newer record for someone else sits in the pinned tier.
	clock = clock.Add(time.Second)
	other := NewChain([]Backend{Pinned(kv, "fixed")}, WithRetry(1, 0))
	other.now = func() time.Time { return clock }
	_, err = other.Save(ctx, "bob", []byte(`{"playerId":"bob"}`))
	require.NoError(t, err)

	isAlice := func(b []byte) bool { return string(b) == `{"playerId":"alice"}` }
	got, err := c.LoadMatching(ctx, "alice", isAlice)
	require.NoError(t, err)
	assert.Equal(t, `{"playerId":"alice"}`, string(got))

	_, err = c.LoadMatching(ctx, "alice", func([]byte) bool { return false })
	assert.ErrorIs(t, err, ErrNotFound)
}
