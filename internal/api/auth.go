// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/jeranaias/rigchat/internal/model"
)

// Auth endpoint paths.
const (
	PathLogin  = "/api/v1/auth/login"
	PathLogout = "/api/v1/auth/logout"
	PathUser   = "/api/v1/auth/user"
)

// ErrNoToken indicates a login response without an access token.
var ErrNoToken = errors.New("login response carried no access token")

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse accepts the token field names used by chat backends.
type loginResponse struct {
	AccessToken      string        `json:"accessToken"`
	AccessTokenSnake string        `json:"access_token"`
	Token            string        `json:"token"`
	User             model.Profile `json:"user"`
}

func (r loginResponse) token() string {
	for _, t := range []string{r.AccessToken, r.AccessTokenSnake, r.Token} {
		if t = strings.TrimSpace(t); t != "" {
			return t
		}
	}
	return ""
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	var resp loginResponse
	err := c.do(ctx, request{
		op:     "auth.login",
		method: http.MethodPost,
		path:   PathLogin,
		body:   Credentials{Email: strings.TrimSpace(email), Password: password},
	}, &resp)
	if err != nil {
		return nil, err
	}

	token := resp.token()
	if token == "" {
		return nil, ErrNoToken
	}
	if resp.User.Email == "" {
		resp.User.Email = strings.TrimSpace(email)
	}
	return &model.User{AccessToken: token, Profile: resp.User}, nil
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, request{
		op:     "auth.logout",
		method: http.MethodPost,
		path:   PathLogout,
	}, nil)
}

// CurrentUser returns the profile of the authenticated account.
func (c *Client) CurrentUser(ctx context.Context) (*model.Profile, error) {
	var wrapper struct {
		User *model.Profile `json:"user"`
		model.Profile
	}
	err := c.do(ctx, request{
		op:     "auth.user",
		method: http.MethodGet,
		path:   PathUser,
	}, &wrapper)
	if err != nil {
		return nil, err
	}
	if wrapper.User != nil {
		return wrapper.User, nil
	}
	profile := wrapper.Profile
	return &profile, nil
}
