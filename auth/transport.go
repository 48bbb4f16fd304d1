package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// Transport is an http.RoundTripper that attaches the session's bearer token
// and logs the session out when the API rejects it with 401 or 403.
type Transport struct {
	store *Store
	base  http.RoundTripper
}

// NewTransport wraps base (http.DefaultTransport when nil).
func NewTransport(store *Store, base http.RoundTripper) *Transport {
	if store == nil {
		panic("auth: transport requires a session store")
	}
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{store: store, base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req
	if req.Header.Get("Authorization") == "" {
		if token := t.store.Token(req.Context()); token != "" {
			out = req.Clone(req.Context())
			out.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return resp, err
	}

	if rejected(resp.StatusCode) && t.store.Navigator().Location() != LoginPath {
		t.store.logger.Warn("api rejected credential, logging out",
			zap.Int("status", resp.StatusCode),
			zap.String("url", req.URL.String()),
		)
		if err := t.store.Clear(context.WithoutCancel(req.Context())); err != nil {
			t.store.logger.Error("clear session", zap.Error(err))
		}
	}
	return resp, nil
}

func rejected(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}
