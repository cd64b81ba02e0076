package views

import (
	"context"
	"fmt"
	"sync"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/client/api"
)

type ListingSearcher interface {
	Search(ctx context.Context, filters map[string]string) ([]api.Listing, error)
}

type Layout int

const (
	LayoutEmpty Layout = iota
	LayoutSingle
	LayoutCarousel
)

// PerView is how many cards fit at a viewport width.
func PerView(width int) int {
	switch {
	case width >= 1280:
		return 4
	case width >= 1024:
		return 3
	case width >= 640:
		return 2
	default:
		return 1
	}
}

// Dedupe keeps the first listing seen for each id.
func Dedupe(in []api.Listing) []api.Listing {
	seen := make(map[string]struct{}, len(in))
	out := make([]api.Listing, 0, len(in))
	for _, l := range in {
		if _, ok := seen[l.ID]; ok {
			continue
		}
		seen[l.ID] = struct{}{}
		out = append(out, l)
	}
	return out
}

// ListingView is the city-filtered carousel.
type ListingView struct {
	Schema   *catalog.Schema
	Navigate func(route string)

	src  ListingSearcher
	data Async[[]api.Listing]

	mu     sync.Mutex
	city   string
	offset int
}

func NewListingView(src ListingSearcher, schema *catalog.Schema, navigate func(string)) *ListingView {
	return &ListingView{Schema: schema, Navigate: navigate, src: src}
}

// Load (re)fetches for a city. A newer Load drops the result of an older one.
func (v *ListingView) Load(ctx context.Context, city string) error {
	v.mu.Lock()
	v.city = city
	v.offset = 0
	v.mu.Unlock()

	return v.data.Run(ctx, func(ctx context.Context) ([]api.Listing, error) {
		rows, err := v.src.Search(ctx, map[string]string{catalog.FieldCity: city})
		if err != nil {
			return nil, err
		}
		return Dedupe(rows), nil
	})
}

func (v *ListingView) State() State { return v.data.Snapshot().State }

func (v *ListingView) Items() []api.Listing {
	return append([]api.Listing(nil), v.data.Snapshot().Value...)
}

func (v *ListingView) Layout() Layout {
	switch n := len(v.data.Snapshot().Value); {
	case n == 0:
		return LayoutEmpty
	case n == 1:
		return LayoutSingle
	default:
		return LayoutCarousel
	}
}

// Message is the text shown instead of cards, "" when cards are shown.
func (v *ListingView) Message() string {
	snap := v.data.Snapshot()
	switch snap.State {
	case Loading:
		return "Loading..."
	case Errored:
		return api.Message(snap.Err)
	case Ready:
		if len(snap.Value) == 0 {
			v.mu.Lock()
			city := v.city
			v.mu.Unlock()
			return fmt.Sprintf("No %ss found in %s.", v.Schema.Label, city)
		}
	}
	return ""
}

func (v *ListingView) ShowControls() bool {
	return len(v.data.Snapshot().Value) > 1
}

// Visible returns the window of cards for a viewport width, wrapping
// around the end of the set.
func (v *ListingView) Visible(width int) []api.Listing {
	items := v.data.Snapshot().Value
	n := len(items)
	per := PerView(width)
	if n <= per {
		return append([]api.Listing(nil), items...)
	}
	v.mu.Lock()
	off := v.offset
	v.mu.Unlock()
	out := make([]api.Listing, 0, per)
	for k := 0; k < per; k++ {
		out = append(out, items[(off+k)%n])
	}
	return out
}

func (v *ListingView) Next() { v.step(1) }
func (v *ListingView) Prev() { v.step(-1) }

func (v *ListingView) step(d int) {
	n := len(v.data.Snapshot().Value)
	if n < 2 {
		return
	}
	v.mu.Lock()
	v.offset = ((v.offset+d)%n + n) % n
	v.mu.Unlock()
}

// Open navigates to the detail route of the i-th loaded listing.
func (v *ListingView) Open(i int) bool {
	items := v.data.Snapshot().Value
	if i < 0 || i >= len(items) || v.Navigate == nil {
		return false
	}
	v.Navigate(v.Schema.DetailRoute(items[i].ID))
	return true
}
