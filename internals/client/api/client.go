// Package api is the typed client for the directory backend. Every
// response is decoded through the normalize boundary, so callers get
// Listing values whose lists and objects are already in canonical form.
package api

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/client/session"
)

const DefaultLoginRoute = "/admin/login"

// AuthContext carries the session token store and what to do when the
// backend rejects it. OnUnauthorized runs after the store was cleared.
type AuthContext struct {
	Store          session.Store
	LoginRoute     string
	OnUnauthorized func(loginRoute string)
}

type Client struct {
	BaseURL string
	HTTP    *fasthttp.Client
	Auth    AuthContext
	Timeout time.Duration

	mu       sync.Mutex
	entities map[catalog.Kind]*EntityClient
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.Timeout = d }
}

func WithHTTPClient(h *fasthttp.Client) Option {
	return func(c *Client) { c.HTTP = h }
}

func New(baseURL string, auth AuthContext, opts ...Option) *Client {
	if auth.Store == nil {
		auth.Store = session.NewMemoryStore("")
	}
	if auth.LoginRoute == "" {
		auth.LoginRoute = DefaultLoginRoute
	}
	c := &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &fasthttp.Client{
			Name:                "edudirectory-client",
			MaxIdleConnDuration: 30 * time.Second,
		},
		Auth:     auth,
		Timeout:  15 * time.Second,
		entities: map[catalog.Kind]*EntityClient{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Entity returns the client for one kind.
func (c *Client) Entity(kind catalog.Kind) (*EntityClient, error) {
	s, err := catalog.Lookup(kind)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entities[kind]; ok {
		return e, nil
	}
	e := &EntityClient{c: c, Schema: s}
	c.entities[kind] = e
	return e, nil
}

type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

type envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	ErrorCode  string      `json:"error_code"`
	Data       any         `json:"data"`
	Errors     any         `json:"errors"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

func (c *Client) url(path string, q url.Values) string {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// do runs one call. Cancelling ctx returns at once; the in-flight fasthttp
// request finishes in the background and its buffers are released then.
func (c *Client) do(ctx context.Context, r request) (*envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s %s", r.method, r.path)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	release := func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}

	req.SetRequestURI(c.url(r.path, r.query))
	req.Header.SetMethod(r.method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if tok := c.Auth.Store.Token(); tok != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+tok)
	}
	if r.body != nil {
		req.Header.SetContentType(r.contentType)
		req.SetBodyRaw(r.body)
	}

	timeout := c.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if until := time.Until(dl); until < timeout || timeout <= 0 {
			timeout = until
		}
	}

	done := make(chan error, 1)
	go func() { done <- c.HTTP.DoTimeout(req, resp, timeout) }()

	select {
	case <-ctx.Done():
		go func() {
			<-done
			release()
		}()
		return nil, errors.Wrapf(ctx.Err(), "%s %s", r.method, r.path)
	case err := <-done:
		defer release()
		if err != nil {
			return nil, errors.Wrapf(err, "%s %s", r.method, r.path)
		}
	}

	status := resp.StatusCode()
	body := resp.Body()

	var env envelope
	var decodeErr error
	if len(body) > 0 {
		decodeErr = sonic.Unmarshal(body, &env)
	}

	if status == fasthttp.StatusUnauthorized {
		c.unauthorized()
	}
	if status < 200 || status >= 300 {
		return nil, newError(status, &env, decodeErr == nil && len(body) > 0)
	}
	if decodeErr != nil {
		return nil, errors.Wrapf(decodeErr, "decode %s %s", r.method, r.path)
	}
	return &env, nil
}

func (c *Client) unauthorized() {
	_ = c.Auth.Store.Clear()
	if c.Auth.OnUnauthorized != nil {
		c.Auth.OnUnauthorized(c.Auth.LoginRoute)
	}
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values) (*envelope, error) {
	return c.do(ctx, request{method: fasthttp.MethodGet, path: path, query: q})
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload any) (*envelope, error) {
	var body []byte
	if payload != nil {
		b, err := sonic.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "encode body")
		}
		body = b
	}
	return c.do(ctx, request{method: method, path: path, body: body, contentType: "application/json"})
}
