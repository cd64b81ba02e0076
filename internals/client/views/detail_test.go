package views_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/client/api"
	"edudirectory_backend/internals/client/views"
)

func collegeServer(t *testing.T, record map[string]any, hits *int32) *api.EntityClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": record})
	}))
	t.Cleanup(srv.Close)
	e, err := api.New(srv.URL, api.AuthContext{}).Entity(catalog.KindCollege)
	require.NoError(t, err)
	return e
}

func valuesOf(fields []views.Field) map[string]string {
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		out[f.Label] = f.Value
	}
	return out
}

func TestDetailFacilitiesFromJSONString(t *testing.T) {
	var hits int32
	e := collegeServer(t, map[string]any{
		"id":         42,
		"name":       "Greenfield College",
		"facilities": `["Library","CCTV"]`,
	}, &hits)

	page := views.NewDetailPage(e, catalog.MustLookup(catalog.KindCollege), "42")
	ctx := context.Background()

	var facilities, flags []views.Field
	var basic views.BasicInfo
	var fees []views.Field
	var contact views.Contact
	var faq []views.FAQEntry

	var g errgroup.Group
	g.Go(func() (err error) { facilities, flags, err = page.Infrastructure(ctx); return })
	g.Go(func() (err error) { basic, err = page.BasicInfo(ctx); return })
	g.Go(func() (err error) { fees, err = page.FeeStructure(ctx); return })
	g.Go(func() (err error) { contact, err = page.Contact(ctx); return })
	g.Go(func() (err error) { faq, _, err = page.FAQ(ctx); return })
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	assert.Equal(t, map[string]string{
		"Library": "Yes", "CCTV": "Yes",
		"Wifi": "No", "Hostel": "No", "Canteen": "No", "Sports": "No",
	}, valuesOf(facilities))
	for _, f := range flags {
		assert.Equal(t, "N/A", f.Value, f.Key)
	}

	assert.Equal(t, "Greenfield College", basic.Name)
	assert.Equal(t, "N/A", basic.City)
	assert.Equal(t, "N/A", basic.EstablishmentYear)
	for _, f := range fees {
		assert.Equal(t, "N/A", f.Value, f.Key)
	}
	assert.Equal(t, "N/A", contact.Phone)
	assert.Equal(t, map[string]string{"Facebook": "N/A", "Twitter": "N/A", "Instagram": "N/A"}, valuesOf(contact.SocialMedia))
	require.NotEmpty(t, faq)
	assert.Equal(t, "When was Greenfield College established?", faq[0].Question)
	assert.Equal(t, "N/A", faq[0].Answer)
}

func TestBuildDisplayFormatsValues(t *testing.T) {
	year := 1998
	fee := 120000.0
	l := &api.Listing{
		ID:                "p1",
		Name:              "Sunrise PU",
		EstablishmentYear: &year,
		Offerings:         []string{"Science", "Commerce"},
		Fees:              map[string]*float64{catalog.FeeTotalAnnual: &fee},
		Infrastructure:    map[string]string{"wifi": "Yes", "library": "No"},
		AverageRating:     4.25,
	}
	d := views.BuildDisplay(l, catalog.MustLookup(catalog.KindPUCollege))

	assert.Equal(t, "1998", d.EstablishmentYear)
	assert.Equal(t, "Science, Commerce", d.OfferingsText)
	assert.Equal(t, "Streams", d.OfferingsLabel)
	assert.Equal(t, "₹120000", valuesOf(d.Fees)["Total Annual Fee"])
	assert.Equal(t, "N/A", valuesOf(d.Fees)["Transport Fee"])

	infra := valuesOf(d.Infrastructure)
	assert.Equal(t, "Yes", infra["WiFi"])
	assert.Equal(t, "No", infra["Library"])
	assert.Equal(t, "N/A", infra["Laboratories"])

	facilities := valuesOf(d.Facilities)
	assert.Equal(t, "Yes", facilities["Wifi"])
	assert.Equal(t, "No", facilities["Library"])

	assert.Equal(t, "Which streams are available at Sunrise PU?", d.FAQ[1].Question)
	assert.Equal(t, "Science, Commerce", d.FAQ[1].Answer)
	assert.Equal(t, "₹120000", d.FAQ[2].Answer)
}

func TestAccordionModes(t *testing.T) {
	single := views.NewAccordion(catalog.AccordionSingle, 3)
	single.Toggle(0)
	single.Toggle(1)
	assert.False(t, single.IsOpen(0))
	assert.True(t, single.IsOpen(1))
	single.Toggle(1)
	assert.Equal(t, 0, single.OpenCount())

	multi := views.NewAccordion(catalog.AccordionMulti, 3)
	multi.Toggle(0)
	multi.Toggle(2)
	multi.Toggle(7)
	assert.True(t, multi.IsOpen(0))
	assert.True(t, multi.IsOpen(2))
	assert.Equal(t, 2, multi.OpenCount())
}

func TestDetailErrorIsNotCached(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "db down"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]any{"id": "x", "name": "Ok"}})
	}))
	defer srv.Close()

	e, err := api.New(srv.URL, api.AuthContext{}).Entity(catalog.KindSchool)
	require.NoError(t, err)
	page := views.NewDetailPage(e, catalog.MustLookup(catalog.KindSchool), "x")

	_, err = page.BasicInfo(context.Background())
	require.Error(t, err)
	assert.Equal(t, "db down", api.Message(err))

	info, err := page.BasicInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ok", info.Name)
}

func TestEntityCacheCallerCancelKeepsSharedFetch(t *testing.T) {
	gate := make(chan struct{})
	src := &fakeListings{
		byID:  map[string]*api.Listing{"42": {ID: "42", Name: "Greenfield"}},
		gates: map[string]chan struct{}{"42": gate},
	}
	cache := views.NewEntityCache()

	firstCtx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := cache.Get(firstCtx, catalog.KindCollege, "42", src)
		first <- err
	}()
	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, time.Millisecond)

	type result struct {
		l   *api.Listing
		err error
	}
	second := make(chan result, 1)
	go func() {
		l, err := cache.Get(context.Background(), catalog.KindCollege, "42", src)
		second <- result{l, err}
	}()

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(gate)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, "Greenfield", got.l.Name)
	assert.Equal(t, 1, src.callCount())
}

func TestDetailPageLoadStates(t *testing.T) {
	gate := make(chan struct{})
	t.Cleanup(func() { close(gate) })
	src := &fakeListings{
		byID: map[string]*api.Listing{
			"a": {ID: "a", Name: "Old College"},
			"b": {ID: "b", Name: "New College"},
		},
		gates: map[string]chan struct{}{"a": gate},
	}
	ctx := context.Background()
	page := views.NewDetailPage(src, catalog.MustLookup(catalog.KindCollege), "a")
	assert.Equal(t, views.Idle, page.State())
	_, ok := page.Display()
	assert.False(t, ok)

	first := make(chan error, 1)
	go func() { first <- page.Load(ctx, "a") }()
	require.Eventually(t, func() bool { return src.callCount() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, views.Loading, page.State())

	require.NoError(t, page.Load(ctx, "b"))
	assert.ErrorIs(t, <-first, views.ErrSuperseded)

	assert.Equal(t, views.Ready, page.State())
	assert.Equal(t, "b", page.ID())
	d, ok := page.Display()
	require.True(t, ok)
	assert.Equal(t, "New College", d.Name)
	info, err := page.BasicInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, "New College", info.Name)

	require.Error(t, page.Load(ctx, "missing"))
	assert.Equal(t, views.Errored, page.State())
	assert.EqualError(t, page.Err(), "listing not found")
}
