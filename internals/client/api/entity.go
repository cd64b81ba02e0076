package api

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"edudirectory_backend/internals/catalog"
)

// EntityClient wraps the endpoints of one kind.
type EntityClient struct {
	c      *Client
	Schema *catalog.Schema
}

type ListOptions struct {
	Page    int
	PerPage int
}

func (e *EntityClient) decodeOne(env *envelope) (*Listing, error) {
	raw, ok := env.Data.(map[string]any)
	if !ok {
		return nil, errors.New("unexpected response: data is not an object")
	}
	l := DecodeListing(raw, e.Schema)
	return &l, nil
}

func (e *EntityClient) decodeMany(env *envelope) []Listing {
	rows := objects(env.Data)
	out := make([]Listing, 0, len(rows))
	for _, r := range rows {
		out = append(out, DecodeListing(r, e.Schema))
	}
	return out
}

// List fetches the collection; zero options ask for everything.
func (e *EntityClient) List(ctx context.Context, opt ListOptions) ([]Listing, *Pagination, error) {
	q := url.Values{}
	if opt.Page > 0 {
		q.Set("page", strconv.Itoa(opt.Page))
	}
	if opt.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(opt.PerPage))
	}
	env, err := e.c.getJSON(ctx, e.Schema.ListPath(), q)
	if err != nil {
		return nil, nil, err
	}
	return e.decodeMany(env), env.Pagination, nil
}

func (e *EntityClient) Get(ctx context.Context, id string) (*Listing, error) {
	env, err := e.c.getJSON(ctx, e.Schema.ItemPath(url.PathEscape(id)), nil)
	if err != nil {
		return nil, err
	}
	return e.decodeOne(env)
}

// Search sends only the non-empty filters.
func (e *EntityClient) Search(ctx context.Context, filters map[string]string) ([]Listing, error) {
	q := url.Values{}
	for k, v := range filters {
		if v = strings.TrimSpace(v); v != "" {
			q.Set(k, v)
		}
	}
	env, err := e.c.getJSON(ctx, e.Schema.SearchPath(), q)
	if err != nil {
		return nil, err
	}
	return e.decodeMany(env), nil
}

func (e *EntityClient) Create(ctx context.Context, form *Form) (*Listing, error) {
	return e.submit(ctx, fasthttp.MethodPost, e.Schema.CreatePath(), form)
}

func (e *EntityClient) Update(ctx context.Context, id string, form *Form) (*Listing, error) {
	return e.submit(ctx, fasthttp.MethodPut, e.Schema.UpdatePath(url.PathEscape(id)), form)
}

func (e *EntityClient) submit(ctx context.Context, method, path string, form *Form) (*Listing, error) {
	body, ct, err := form.encode()
	if err != nil {
		return nil, err
	}
	env, err := e.c.do(ctx, request{method: method, path: path, body: body, contentType: ct})
	if err != nil {
		return nil, err
	}
	return e.decodeOne(env)
}

func (e *EntityClient) Delete(ctx context.Context, id string) error {
	_, err := e.c.do(ctx, request{method: fasthttp.MethodDelete, path: e.Schema.DeletePath(url.PathEscape(id))})
	return err
}

func (e *EntityClient) Reviews(listingID string) *ReviewClient {
	return &ReviewClient{c: e.c, base: e.Schema.ReviewsPath(url.PathEscape(listingID))}
}

func (e *EntityClient) Types() *TypeClient {
	return &TypeClient{c: e.c, base: e.Schema.TypesPath()}
}

type ReviewClient struct {
	c    *Client
	base string
}

type NewReview struct {
	Rating int    `json:"rating"`
	Text   string `json:"text"`
	Author string `json:"author,omitempty"`
}

func (r *ReviewClient) List(ctx context.Context) ([]Review, error) {
	env, err := r.c.getJSON(ctx, r.base, nil)
	if err != nil {
		return nil, err
	}
	rows := objects(env.Data)
	out := make([]Review, 0, len(rows))
	for _, row := range rows {
		out = append(out, DecodeReview(row))
	}
	return out, nil
}

func (r *ReviewClient) Add(ctx context.Context, in NewReview) (*Review, error) {
	env, err := r.c.sendJSON(ctx, fasthttp.MethodPost, r.base, in)
	if err != nil {
		return nil, err
	}
	return reviewFrom(env)
}

func (r *ReviewClient) Like(ctx context.Context, reviewID string) (*Review, error) {
	return r.vote(ctx, reviewID, "like")
}

func (r *ReviewClient) Dislike(ctx context.Context, reviewID string) (*Review, error) {
	return r.vote(ctx, reviewID, "dislike")
}

func (r *ReviewClient) vote(ctx context.Context, reviewID, action string) (*Review, error) {
	env, err := r.c.sendJSON(ctx, fasthttp.MethodPut, r.base+"/"+url.PathEscape(reviewID)+"/"+action, nil)
	if err != nil {
		return nil, err
	}
	return reviewFrom(env)
}

func reviewFrom(env *envelope) (*Review, error) {
	raw, ok := env.Data.(map[string]any)
	if !ok {
		return nil, errors.New("unexpected response: data is not an object")
	}
	rv := DecodeReview(raw)
	return &rv, nil
}

type TypeClient struct {
	c    *Client
	base string
}

func (t *TypeClient) List(ctx context.Context) ([]ListingType, error) {
	env, err := t.c.getJSON(ctx, t.base, nil)
	if err != nil {
		return nil, err
	}
	rows := objects(env.Data)
	out := make([]ListingType, 0, len(rows))
	for _, row := range rows {
		out = append(out, DecodeListingType(row))
	}
	return out, nil
}

func (t *TypeClient) Add(ctx context.Context, name string) (*ListingType, error) {
	env, err := t.c.sendJSON(ctx, fasthttp.MethodPost, t.base, map[string]string{"name": name})
	if err != nil {
		return nil, err
	}
	raw, ok := env.Data.(map[string]any)
	if !ok {
		return nil, errors.New("unexpected response: data is not an object")
	}
	lt := DecodeListingType(raw)
	return &lt, nil
}

func (t *TypeClient) Delete(ctx context.Context, id string) error {
	_, err := t.c.do(ctx, request{method: fasthttp.MethodDelete, path: t.base + "/" + url.PathEscape(id)})
	return err
}
