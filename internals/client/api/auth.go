package api

import (
	"context"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"edudirectory_backend/internals/normalize"
)

// Login exchanges admin credentials for a token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	env, err := c.sendJSON(ctx, fasthttp.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}
	data, _ := env.Data.(map[string]any)
	token := normalize.String(data["access_token"])
	if token == "" {
		return errors.New("login response carried no token")
	}
	return errors.Wrap(c.Auth.Store.SetToken(token), "save session")
}

// Logout only forgets the local token; the backend keeps no sessions.
func (c *Client) Logout() error {
	return c.Auth.Store.Clear()
}
