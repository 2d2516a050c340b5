package store

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Memory is the last-resort tier. It never fails and forgets everything on
// exit.
type Memory struct {
	c *cache.Cache
}

// NewMemory creates an empty in-memory tier.
func NewMemory() *Memory {
	return &Memory{c: cache.New(cache.NoExpiration, 10*time.Minute)}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Load(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	blob := v.([]byte)
	return append([]byte(nil), blob...), nil
}

func (m *Memory) Save(_ context.Context, key string, blob []byte) error {
	m.c.Set(key, append([]byte(nil), blob...), cache.NoExpiration)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// FileKV stores each key as a file in a directory. Writes go through a temp
// file and rename so a crash never leaves a torn blob.
type FileKV struct {
	dir string
}

// NewFileKV creates the directory if needed.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create kv dir")
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) Name() string { return "file" }

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, unsafeKeyChars.ReplaceAllString(key, "_")+".json")
}

func (f *FileKV) Load(_ context.Context, key string) ([]byte, error) {
	b, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return b, errors.Wrap(err, "read kv file")
}

func (f *FileKV) Save(_ context.Context, key string, blob []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".kv-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), f.path(key)), "rename kv file")
}

func (f *FileKV) Delete(_ context.Context, key string) error {
	err := os.Remove(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return errors.Wrap(err, "remove kv file")
}

// RedisKV stores blobs in Redis under a key prefix.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV connects to the Redis server at url and pings it.
func NewRedisKV(ctx context.Context, url, prefix string) (*RedisKV, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Error().Err(err).Msg("store: redis: failed to parse redis url")
		return nil, errors.Wrap(err, "parse redis url")
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Error().Err(err).Msg("store: redis: failed to ping")
		client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}

	return NewRedisKVClient(client, prefix), nil
}

// NewRedisKVClient wraps an existing client.
func NewRedisKVClient(client *redis.Client, prefix string) *RedisKV {
	return &RedisKV{client: client, prefix: prefix}
}

func (r *RedisKV) Name() string { return "redis" }

func (r *RedisKV) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, errors.Wrap(err, "redis get")
}

func (r *RedisKV) Save(ctx context.Context, key string, blob []byte) error {
	return errors.Wrap(r.client.Set(ctx, r.prefix+key, blob, 0).Err(), "redis set")
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	return errors.Wrap(r.client.Del(ctx, r.prefix+key).Err(), "redis del")
}

// Close closes the client.
func (r *RedisKV) Close() error {
	return r.client.Close()
}
