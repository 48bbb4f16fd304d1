package api

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/intelliquiz/iqclient/auth"
)

// Login authenticates and saves the session in a single Save. The navigator
// moves to the login view first so a rejected attempt does not trigger a
// logout redirect, and to the role home after success.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	nav := c.store.Navigator()
	nav.Visit(auth.LoginPath)

	var out LoginResponse
	body := map[string]string{"username": username, "password": password}
	if _, err := c.http.Post(ctx, "/auth/login", body, &out); err != nil {
		return LoginResponse{}, fmt.Errorf("api: login: %w", err)
	}
	if out.Token == "" {
		return LoginResponse{}, ErrNoToken
	}

	roles := out.Roles
	if roles == nil {
		roles = []string{}
	}
	err := c.store.Save(ctx, auth.SaveInput{
		Token:        out.Token,
		Roles:        roles,
		UserID:       out.ID,
		Username:     out.Username,
		Email:        out.Email,
		RefreshToken: out.RefreshToken,
	})
	if err != nil {
		return LoginResponse{}, err
	}

	home, ok := auth.HomeFor(roles)
	if !ok {
		home = "/"
	}
	nav.Visit(home)
	c.logger.Info("logged in", zap.String("username", out.Username), zap.Strings("roles", roles))
	return out, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (Message, error) {
	c.store.Navigator().Visit("/register")

	var out Message
	if _, err := c.http.Post(ctx, "/auth/register", req, &out); err != nil {
		return Message{}, fmt.Errorf("api: register: %w", err)
	}
	return out, nil
}

// Refresh trades the stored refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context) error {
	refresh := c.store.Current().RefreshToken
	if refresh == "" {
		return ErrNoRefreshToken
	}

	var out refreshResponse
	if _, err := c.http.Post(ctx, "/auth/refresh", map[string]string{"refreshToken": refresh}, &out); err != nil {
		return fmt.Errorf("api: refresh: %w", err)
	}
	if out.AccessToken == "" {
		return ErrNoToken
	}
	return c.store.Save(ctx, auth.SaveInput{Token: out.AccessToken, RefreshToken: out.RefreshToken})
}

// Logout revokes the refresh token remotely when a user is known, then clears
// the session. The remote call is best effort. The navigator moves to
// LogoutPath first so the clear runs even when the login view was open.
func (c *Client) Logout(ctx context.Context) error {
	c.store.Navigator().Visit(auth.LogoutPath)
	if id := c.store.Current().UserID; id != "" {
		if n, err := numericID(id); err == nil {
			if _, err := c.http.Post(ctx, "/auth/logout", map[string]int64{"userId": n}, nil); err != nil {
				c.logger.Warn("remote logout failed", zap.Error(err))
			}
		}
	}
	return c.store.Clear(ctx)
}
