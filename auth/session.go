package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/intelliquiz/iqclient/cache"
)

// Store owns the process-wide session. Save and Clear are the only writers of
// the persistent session keys.
type Store struct {
	kv     cache.Store
	nav    Navigator
	prefix string
	logger *zap.Logger

	mu      sync.RWMutex
	session Session
	ready   bool

	// clearMu serialises the check-clear-redirect sequence of Clear.
	clearMu sync.Mutex
}

func NewStore(kv cache.Store, nav Navigator, opts ...StoreOption) *Store {
	cfg := newStoreConfig(opts...)
	if nav == nil {
		nav = NewTracker("/")
	}
	return &Store{
		kv:     kv,
		nav:    nav,
		prefix: cfg.prefix,
		logger: cfg.logger,
	}
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + ":" + name
}

// Navigator returns the navigator the store redirects through.
func (s *Store) Navigator() Navigator { return s.nav }

// Hydrate loads the persisted session into memory. The store reports Ready
// afterwards even when loading failed, in which case it holds no session.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.ready = true }()

	var (
		loaded Session
		errs   []error
	)
	read := func(name string) string {
		v, err := s.kv.Get(ctx, s.key(name))
		if err != nil {
			if !errors.Is(err, cache.ErrNotFound) {
				errs = append(errs, err)
			}
			return ""
		}
		return string(v)
	}

	loaded.Token = read(KeyToken)
	loaded.UserID = read(KeyUserID)
	loaded.Username = read(KeyUsername)
	loaded.Email = read(KeyEmail)
	loaded.RefreshToken = read(KeyRefreshToken)
	if raw := read(KeyRoles); raw != "" {
		if err := json.Unmarshal([]byte(raw), &loaded.Roles); err != nil {
			s.logger.Warn("discarding unreadable roles", zap.Error(err))
			loaded.Roles = nil
		}
	}

	if len(errs) > 0 {
		s.session = Session{}
		return fmt.Errorf("auth: hydrate session: %w", errors.Join(errs...))
	}
	loaded.IsAuthenticated = loaded.Token != ""
	s.session = loaded
	s.logger.Debug("session hydrated", zap.Bool("authenticated", loaded.IsAuthenticated))
	return nil
}

// Ready reports whether Hydrate has completed.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Current returns a copy of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.session
	out.Roles = slices.Clone(s.session.Roles)
	return out
}

// Token returns the in-memory token, falling back to persistent storage when
// memory holds none (another process may have logged in).
func (s *Store) Token(ctx context.Context) string {
	s.mu.RLock()
	token := s.session.Token
	s.mu.RUnlock()
	if token != "" {
		return token
	}
	v, err := s.kv.Get(ctx, s.key(KeyToken))
	if err != nil {
		return ""
	}
	return string(v)
}

// Save writes the provided fields to storage and memory and marks the session
// authenticated.
func (s *Store) Save(ctx context.Context, in SaveInput) error {
	userID, err := formatUserID(in.UserID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.session
	next.Roles = slices.Clone(s.session.Roles)
	var writes []write
	if in.Roles != nil {
		encoded, err := json.Marshal(in.Roles)
		if err != nil {
			return fmt.Errorf("auth: encode roles: %w", err)
		}
		writes = append(writes, write{name: KeyRoles, value: encoded})
		next.Roles = slices.Clone(in.Roles)
	}
	for _, f := range []struct {
		name  string
		value string
		dst   *string
	}{
		{KeyUserID, userID, &next.UserID},
		{KeyUsername, in.Username, &next.Username},
		{KeyEmail, in.Email, &next.Email},
		{KeyRefreshToken, in.RefreshToken, &next.RefreshToken},
		{KeyToken, in.Token, &next.Token},
	} {
		if f.value == "" {
			continue
		}
		writes = append(writes, write{name: f.name, value: []byte(f.value)})
		*f.dst = f.value
	}
	if err := s.persist(ctx, writes); err != nil {
		return err
	}

	next.IsAuthenticated = true
	s.session = next
	s.ready = true
	s.logger.Info("session saved", zap.String("user_id", next.UserID), zap.Strings("roles", next.Roles))
	return nil
}

type write struct {
	name  string
	value []byte
	prev  []byte
	had   bool
}

// persist applies writes in order, the token last. When one fails, the keys
// already written get their previous values back.
func (s *Store) persist(ctx context.Context, writes []write) error {
	for i := range writes {
		w := &writes[i]
		key := s.key(w.name)
		prev, err := s.kv.Get(ctx, key)
		switch {
		case err == nil:
			w.prev, w.had = prev, true
		case !errors.Is(err, cache.ErrNotFound):
			s.rollback(ctx, writes[:i])
			return fmt.Errorf("auth: save %s: %w", w.name, err)
		}
		if err := s.kv.Set(ctx, key, w.value, 0); err != nil {
			s.rollback(ctx, writes[:i])
			return fmt.Errorf("auth: save %s: %w", w.name, err)
		}
	}
	return nil
}

func (s *Store) rollback(ctx context.Context, done []write) {
	for i := len(done) - 1; i >= 0; i-- {
		w := done[i]
		key := s.key(w.name)
		var err error
		if w.had {
			err = s.kv.Set(ctx, key, w.prev, 0)
		} else {
			err = s.kv.Delete(ctx, key)
		}
		if err != nil && !errors.Is(err, cache.ErrNotFound) {
			s.logger.Error("roll back session key", zap.String("key", w.name), zap.Error(err))
		}
	}
}

// Clear logs out: every session key is removed, memory is reset and the
// navigator is hard-redirected to LoginPath. It is a no-op while the
// navigator is already on LoginPath, so concurrent callers clear once.
func (s *Store) Clear(ctx context.Context) error {
	s.clearMu.Lock()
	defer s.clearMu.Unlock()

	if s.nav.Location() == LoginPath {
		return nil
	}

	s.mu.Lock()
	var errs []error
	for _, name := range sessionKeys {
		if err := s.kv.Delete(ctx, s.key(name)); err != nil && !errors.Is(err, cache.ErrNotFound) {
			errs = append(errs, fmt.Errorf("auth: clear %s: %w", name, err))
		}
	}
	s.session = Session{}
	s.ready = true
	s.mu.Unlock()

	s.logger.Info("session cleared, redirecting to login")
	s.nav.Redirect(LoginPath)
	return errors.Join(errs...)
}

func formatUserID(v any) (string, error) {
	switch id := v.(type) {
	case nil:
		return "", nil
	case string:
		return id, nil
	case json.Number:
		return id.String(), nil
	case int:
		return strconv.Itoa(id), nil
	case int32:
		return strconv.FormatInt(int64(id), 10), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	case uint:
		return strconv.FormatUint(uint64(id), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(id), 10), nil
	case uint64:
		return strconv.FormatUint(id, 10), nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	case fmt.Stringer:
		return id.String(), nil
	default:
		return "", fmt.Errorf("auth: unsupported user id type %T", v)
	}
}
