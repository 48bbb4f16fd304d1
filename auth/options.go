package auth

import (
	"time"

	"go.uber.org/zap"
)

type StoreOption func(*storeConfig)

type storeConfig struct {
	prefix string
	logger *zap.Logger
}

func newStoreConfig(opts ...StoreOption) storeConfig {
	cfg := storeConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	return cfg
}

// WithKeyPrefix namespaces the persistent keys as "prefix:key", for back ends
// shared with other data.
func WithKeyPrefix(prefix string) StoreOption {
	return func(cfg *storeConfig) {
		cfg.prefix = prefix
	}
}

// WithStoreLogger sets the logger used for session lifecycle events.
func WithStoreLogger(logger *zap.Logger) StoreOption {
	return func(cfg *storeConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

type GuardOption func(*guardConfig)

type guardConfig struct {
	grace  time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func newGuardConfig(opts ...GuardOption) guardConfig {
	cfg := guardConfig{grace: DefaultGrace, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithGrace overrides DefaultGrace. Negative values are treated as zero.
func WithGrace(d time.Duration) GuardOption {
	return func(cfg *guardConfig) {
		if d < 0 {
			d = 0
		}
		cfg.grace = d
	}
}

// WithClock allows injecting a deterministic clock (useful for tests).
func WithClock(fn func() time.Time) GuardOption {
	return func(cfg *guardConfig) {
		if fn != nil {
			cfg.now = fn
		}
	}
}

func WithGuardLogger(logger *zap.Logger) GuardOption {
	return func(cfg *guardConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}
