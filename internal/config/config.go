// Package config loads runtime settings from code defaults, an optional TOML
// file and GURU_* environment variables, in that order.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/abhisek/guru/internal/scoring"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "guru"

// KV tier backends.
const (
	KVFile  = "file"
	KVRedis = "redis"
	KVNone  = "none"
)

type Config struct {
	// DB is the SQLite database path. Empty means the XDG default.
	DB string `toml:"db"`

	// Player pins the player id. Empty means the most recent player, or a new
	// one on first run.
	Player string `toml:"player"`

	LogLevel string `toml:"log_level" split_words:"true" validate:"oneof=trace debug info warn error disabled"`

	KV     KVConfig     `toml:"kv"`
	Scorer ScorerConfig `toml:"scorer"`
}

// KVConfig selects the key-value persistence tier that sits between SQLite
// and memory.
type KVConfig struct {
	Backend  string `toml:"backend" validate:"oneof=file redis none"`
	Dir      string `toml:"dir" validate:"required_if=Backend file"`
	RedisURL string `toml:"redis_url" split_words:"true" validate:"required_if=Backend redis"`
	// Prefix namespaces redis keys.
	Prefix string `toml:"prefix"`
}

// ScorerConfig sizes the scorer pool and its fallback behaviour.
type ScorerConfig struct {
	Workers  int           `toml:"workers" validate:"gte=1,lte=64"`
	Timeout  time.Duration `toml:"timeout" validate:"gt=0"`
	Fallback float64       `toml:"fallback" validate:"gte=0,lte=1"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel: "info",
		KV: KVConfig{
			Backend: KVFile,
			Dir:     DefaultKVDir(),
			Prefix:  "guru:",
		},
		Scorer: ScorerConfig{
			Workers:  scoring.DefaultWorkers,
			Timeout:  scoring.DefaultTimeout,
			Fallback: scoring.DefaultFallbackScore,
		},
	}
}

// Load builds the configuration. path may be empty for the default location;
// a missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := decodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "read environment")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "stat config")
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrapf(err, "decode config %s", path)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return errors.Errorf("unknown config keys in %s: %v", path, keys)
	}
	return nil
}

// Validate checks the settings.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}
