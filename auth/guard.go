package auth

import (
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Outcome is the result of a guard evaluation.
type Outcome int

const (
	// Suspend means the session is not hydrated yet; render nothing.
	Suspend Outcome = iota
	Render
	RedirectLogin
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Suspend:
		return "suspend"
	case Render:
		return "render"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	default:
		return "unknown"
	}
}

// Decision tells the caller what to do with a navigation.
type Decision struct {
	Outcome  Outcome
	Location string
	// From is the originally requested location, for post-login return.
	From    string
	Expired bool
}

// URL returns Location with the login query parameters attached.
func (d Decision) URL() string {
	if d.Outcome != RedirectLogin {
		return d.Location
	}
	q := url.Values{}
	if d.From != "" && d.From != LoginPath {
		q.Set("from", d.From)
	}
	if d.Expired {
		q.Set("expired", "1")
	}
	if len(q) == 0 {
		return d.Location
	}
	return d.Location + "?" + q.Encode()
}

// Guard admits or redirects navigations to protected views.
type Guard struct {
	store  *Store
	grace  time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewGuard(store *Store, opts ...GuardOption) *Guard {
	if store == nil {
		panic("auth: guard requires a session store")
	}
	cfg := newGuardConfig(opts...)
	return &Guard{store: store, grace: cfg.grace, now: cfg.now, logger: cfg.logger}
}

// Store returns the session store the guard reads.
func (g *Guard) Store() *Store { return g.store }

// Decide evaluates a navigation to requested. An empty required set admits
// any valid session. Redirect outcomes also move the navigator.
func (g *Guard) Decide(ctx context.Context, requested string, required ...string) Decision {
	if !g.store.Ready() {
		return Decision{Outcome: Suspend, From: requested}
	}

	nav := g.store.Navigator()
	session := g.store.Current()
	if !session.IsAuthenticated {
		nav.Visit(LoginPath)
		return Decision{Outcome: RedirectLogin, Location: LoginPath, From: requested}
	}

	nav.Visit(requested)
	if !ValidAt(session.Token, g.grace, g.now()) {
		g.logger.Warn("token invalid or expired, logging out", zap.String("path", requested))
		if err := g.store.Clear(ctx); err != nil {
			g.logger.Error("clear session", zap.Error(err))
		}
		return Decision{Outcome: RedirectLogin, Location: LoginPath, From: requested, Expired: true}
	}

	if len(required) > 0 && !session.HasAnyRole(required...) {
		home, ok := HomeFor(session.Roles)
		if !ok {
			nav.Visit(LoginPath)
			return Decision{Outcome: RedirectLogin, Location: LoginPath}
		}
		g.logger.Debug("role mismatch", zap.String("path", requested), zap.Strings("required", required), zap.String("home", home))
		nav.Visit(home)
		return Decision{Outcome: RedirectHome, Location: home, From: requested}
	}

	return Decision{Outcome: Render, Location: requested}
}
