package store

import "context"

// Backend persists one opaque blob per key. Chain tiers are Backends.
type Backend interface {
	// Name identifies the tier in logs.
	Name() string

	// Load returns the blob stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Save stores blob under key, replacing any previous value.
	Save(ctx context.Context, key string, blob []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

type pinned struct {
	Backend
	key string
}

// Pinned returns a Backend that stores every key under the single fixed key.
// Flat key-value tiers keep one record per device this way.
func Pinned(b Backend, key string) Backend {
	return &pinned{Backend: b, key: key}
}

func (p *pinned) Load(ctx context.Context, _ string) ([]byte, error) {
	return p.Backend.Load(ctx, p.key)
}

func (p *pinned) Save(ctx context.Context, _ string, blob []byte) error {
	return p.Backend.Save(ctx, p.key, blob)
}

func (p *pinned) Delete(ctx context.Context, _ string) error {
	return p.Backend.Delete(ctx, p.key)
}
