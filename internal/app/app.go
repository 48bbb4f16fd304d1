// Package app wires configuration, storage and the session into the clients
// used by the command line and the gateway.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/intelliquiz/iqclient/api"
	"github.com/intelliquiz/iqclient/auth"
	"github.com/intelliquiz/iqclient/cache"
	"github.com/intelliquiz/iqclient/cache/memory"
	"github.com/intelliquiz/iqclient/cache/redis"
	"github.com/intelliquiz/iqclient/db/sql/postgres"
	"github.com/intelliquiz/iqclient/db/sql/sqlite"
	"github.com/intelliquiz/iqclient/httpx"
	"github.com/intelliquiz/iqclient/internal/config"
	"github.com/intelliquiz/iqclient/web"
)

// Runtime is one hydrated client session and everything built on it.
type Runtime struct {
	Config    *config.Config
	Logger    *zap.Logger
	Navigator *auth.Tracker
	Store     *auth.Store
	Guard     *auth.Guard
	HTTP      *httpx.Client
	API       *api.Client

	closers []func() error
}

type options struct {
	kv        cache.Store
	location  string
	transport http.RoundTripper
}

type Option func(*options)

// WithKV uses kv instead of opening the configured storage driver.
func WithKV(kv cache.Store) Option {
	return func(o *options) {
		o.kv = kv
	}
}

// WithStartLocation sets where the navigator starts (default "/").
func WithStartLocation(path string) Option {
	return func(o *options) {
		o.location = path
	}
}

func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// New opens storage, hydrates the session and builds the API client.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		return nil, errors.New("app: config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	o := options{location: "/"}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	rt := &Runtime{Config: cfg, Logger: logger}
	kv := o.kv
	if kv == nil {
		opened, closer, err := OpenStorage(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		kv = opened
		rt.closers = append(rt.closers, closer)
	}

	rt.Navigator = auth.NewTracker(o.location, auth.WithRedirectHook(func(path string) {
		logger.Info("redirect", zap.String("to", path))
	}))
	rt.Store = auth.NewStore(kv, rt.Navigator,
		auth.WithKeyPrefix(cfg.Session.KeyPrefix),
		auth.WithStoreLogger(logger.Named("session")),
	)
	if err := rt.Store.Hydrate(ctx); err != nil {
		logger.Warn("session storage unreadable, starting logged out", zap.Error(err))
	}
	rt.Guard = auth.NewGuard(rt.Store,
		auth.WithGrace(cfg.Session.Grace),
		auth.WithGuardLogger(logger.Named("guard")),
	)
	rt.HTTP = httpx.NewClient(
		httpx.WithBaseURL(cfg.API.BaseURL),
		httpx.WithClientTimeout(cfg.API.Timeout),
		httpx.WithTransport(o.transport),
		httpx.WithSession(rt.Store),
		httpx.WithClientLogger(logger.Named("http")),
	)
	rt.API = api.New(rt.HTTP, rt.Store, api.WithLogger(logger.Named("api")))
	return rt, nil
}

// Server builds the gateway server on the configured address.
func (r *Runtime) Server() *httpx.Server {
	srv := httpx.NewServer(
		httpx.WithAddress(r.Config.Server.Address),
		httpx.WithServerLogger(r.Logger.Named("gateway")),
	)
	srv.RegisterRoutes(web.New(r.API, r.Guard, web.WithLogger(r.Logger.Named("web"))).Register)
	return srv
}

func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// OpenStorage opens the configured session storage driver.
func OpenStorage(ctx context.Context, cfg config.StorageConfig) (cache.Store, func() error, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.NewStore(), func() error { return nil }, nil
	case config.DriverSQLite, "":
		store, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.DriverRedis:
		store := redis.NewStore(redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		return store, store.Close, nil
	case config.DriverPostgres:
		db, err := postgres.Connect(ctx, postgres.WithDSN(cfg.Postgres.DSN))
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewKVStore(db), db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrInvalidDriver, cfg.Driver)
	}
}
