package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/client/api"
	"edudirectory_backend/internals/client/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newClient(t *testing.T, h http.HandlerFunc, auth api.AuthContext) *api.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return api.New(srv.URL, auth, api.WithTimeout(5*time.Second))
}

func entity(t *testing.T, c *api.Client, k catalog.Kind) *api.EntityClient {
	t.Helper()
	e, err := c.Entity(k)
	require.NoError(t, err)
	return e
}

type countingStore struct {
	session.MemoryStore
	clears int32
}

func (s *countingStore) Clear() error {
	atomic.AddInt32(&s.clears, 1)
	return s.MemoryStore.Clear()
}

func TestUnauthorizedClearsSessionAndCallsBack(t *testing.T) {
	store := &countingStore{}
	require.NoError(t, store.SetToken("stale"))

	var routes []string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expired"})
	}, api.AuthContext{Store: store, OnUnauthorized: func(route string) { routes = append(routes, route) }})

	err := entity(t, c, catalog.KindCollege).Delete(context.Background(), "1")
	require.Error(t, err)
	assert.True(t, api.IsStatus(err, http.StatusUnauthorized))
	assert.Equal(t, "Token expired", api.Message(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&store.clears))
	assert.Empty(t, store.Token())
	assert.Equal(t, []string{api.DefaultLoginRoute}, routes)
}

func TestBearerHeaderAttachedWhenPresent(t *testing.T) {
	var got []string
	h := func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	}

	store := session.NewMemoryStore("abc")
	c := newClient(t, h, api.AuthContext{Store: store})
	_, _, err := entity(t, c, catalog.KindSchool).List(context.Background(), api.ListOptions{})
	require.NoError(t, err)

	require.NoError(t, store.Clear())
	_, _, err = entity(t, c, catalog.KindSchool).List(context.Background(), api.ListOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer abc", ""}, got)
}

func TestSearchDropsEmptyFilters(t *testing.T) {
	var path, rawQuery string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		path, rawQuery = r.URL.Path, r.URL.RawQuery
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	}, api.AuthContext{})

	_, err := entity(t, c, catalog.KindPUCollege).Search(context.Background(),
		map[string]string{"city": "Bangalore", "name": "", "type": "  "})
	require.NoError(t, err)
	assert.Equal(t, "/admin/search/pucolleges", path)
	assert.Equal(t, "city=Bangalore", rawQuery)
}

func TestGetNormalizesLooseFields(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/getcolleges/42", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{
			"id":             42,
			"name":           "Greenfield College",
			"facilities":     `["Library","CCTV"]`,
			"coursesOffered": "Science, Commerce, Arts",
			"socialMedia":    "{not json",
			"infrastructure": `{"wifi":"yes","cctv":false,"bogus":"maybe"}`,
			"totalAnnualFee": "1,20,000",
			"photos":         []any{"1", "2", "3", "4", "5", "6", "7"},
			"collegeImage":   "https://cdn.test/c.webp",
		}})
	}, api.AuthContext{})

	l, err := entity(t, c, catalog.KindCollege).Get(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", l.ID)
	assert.Equal(t, []string{"Library", "CCTV"}, l.Facilities)
	assert.Equal(t, []string{"Science", "Commerce", "Arts"}, l.Offerings)
	assert.Equal(t, map[string]string{"facebook": "", "twitter": "", "instagram": ""}, l.SocialMedia)
	assert.Equal(t, map[string]string{"wifi": "Yes", "cctv": "No"}, l.Infrastructure)
	require.NotNil(t, l.Fees[catalog.FeeTotalAnnual])
	assert.Equal(t, 120000.0, *l.Fees[catalog.FeeTotalAnnual])
	assert.Nil(t, l.Fees[catalog.FeeAdmission])
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7"}, l.Photos)
	assert.Equal(t, "https://cdn.test/c.webp", l.CoverImage)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		message string
		fields  map[string][]string
	}{
		{"message", http.StatusNotFound, map[string]any{"success": false, "message": "College not found"}, "College not found", nil},
		{"errors list", http.StatusBadRequest, map[string]any{"success": false, "errors": []any{"bad a", "bad b"}}, "bad a; bad b", map[string][]string{"_": {"bad a", "bad b"}}},
		{"field map", http.StatusUnprocessableEntity, map[string]any{"success": false, "message": "Validation failed", "errors": map[string]any{"name": "name is required"}}, "Validation failed", map[string][]string{"name": {"name is required"}}},
		{"no body", http.StatusBadGateway, nil, "Bad Gateway", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.body == nil {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, tt.body)
			}, api.AuthContext{})

			_, err := entity(t, c, catalog.KindSchool).Get(context.Background(), "x")
			var apiErr *api.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.fields, apiErr.Errors)
		})
	}
}

func TestCancelledRequestReturnsPromptly(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{}})
	}))
	defer srv.Close()
	defer close(release)

	c := api.New(srv.URL, api.AuthContext{})
	e := entity(t, c, catalog.KindSchool)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, _, err := e.List(ctx, api.ListOptions{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestCreateSendsMultipart(t *testing.T) {
	var fields map[string][]string
	var fileNames []string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/addcolleges", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = r.MultipartForm.Value
		for _, fh := range r.MultipartForm.File["galleryFiles"] {
			f, err := fh.Open()
			require.NoError(t, err)
			b, _ := io.ReadAll(f)
			_ = f.Close()
			fileNames = append(fileNames, fh.Filename+":"+string(b))
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"id": "new", "name": "X"}})
	}, api.AuthContext{})

	form := api.NewForm().Set("name", "X")
	require.NoError(t, form.SetJSON("facilities", []string{"Library"}))
	form.AddFile(api.File{Field: "galleryFiles", Name: "a.png", Data: []byte("aa")})

	l, err := entity(t, c, catalog.KindCollege).Create(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, "new", l.ID)
	assert.Equal(t, []string{"X"}, fields["name"])
	assert.Equal(t, []string{`["Library"]`}, fields["facilities"])
	assert.Equal(t, []string{"a.png:aa"}, fileNames)
}

func TestReviewsAndTypes(t *testing.T) {
	var calls []string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/colleges/7/reviews":
			if r.Method == http.MethodPost {
				writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"id": "r1", "rating": 4, "text": "ok"}})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": []any{map[string]any{"id": "r0", "rating": 5, "likes": 2}}})
		case "/colleges/7/reviews/r1/like":
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"id": "r1", "likes": 1}})
		case "/admin/colleges-types":
			writeJSON(w, http.StatusCreated, map[string]any{"success": true, "data": map[string]any{"id": "t1", "name": "Engineering College", "kind": "college"}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, api.AuthContext{})

	e := entity(t, c, catalog.KindCollege)
	ctx := context.Background()

	list, err := e.Reviews("7").List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Likes)

	rv, err := e.Reviews("7").Add(ctx, api.NewReview{Rating: 4, Text: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "r1", rv.ID)

	rv, err = e.Reviews("7").Like(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, rv.Likes)

	lt, err := e.Types().Add(ctx, "Engineering College")
	require.NoError(t, err)
	assert.Equal(t, "t1", lt.ID)

	assert.Equal(t, []string{
		"GET /colleges/7/reviews",
		"POST /colleges/7/reviews",
		"PUT /colleges/7/reviews/r1/like",
		"POST /admin/colleges-types",
	}, calls)
}

func TestLoginStoresToken(t *testing.T) {
	store := session.NewMemoryStore("")
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"access_token": "tok"}})
	}, api.AuthContext{Store: store})

	require.NoError(t, c.Login(context.Background(), "a@b.c", "pw"))
	assert.Equal(t, "tok", store.Token())
	require.NoError(t, c.Logout())
	assert.Empty(t, store.Token())
}
