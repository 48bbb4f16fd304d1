// Package api is the IntelliQuiz remote API client. Every call goes through
// the session-aware httpx client, so a 401 or 403 from any endpoint logs the
// session out.
package api

import (
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/intelliquiz/iqclient/auth"
	"github.com/intelliquiz/iqclient/httpx"
)

var (
	ErrNoToken        = errors.New("api: login succeeded without a token")
	ErrNoRefreshToken = errors.New("api: no refresh token stored")
	ErrNoAnswers      = errors.New("api: answers list cannot be empty")
	ErrNotPDF         = errors.New("api: only PDF files are allowed")
	ErrNoUser         = errors.New("api: no user id in session")
)

// Defaults applied when the caller leaves a parameter empty.
const (
	DefaultTopic            = "General"
	DefaultDifficulty       = "medium"
	DefaultLeaderboardLimit = 10
)

type Client struct {
	http   *httpx.Client
	store  *auth.Store
	logger *zap.Logger
}

type Option func(*Client)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a client over http, which should carry the same store through
// httpx.WithSession.
func New(http *httpx.Client, store *auth.Store, opts ...Option) *Client {
	c := &Client{http: http, store: store, logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// userID resolves id, falling back to the session's user.
func (c *Client) userID(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	if id = c.store.Current().UserID; id == "" {
		return "", ErrNoUser
	}
	return id, nil
}

func numericID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, errors.Join(ErrNoUser, err)
	}
	return n, nil
}
