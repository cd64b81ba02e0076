package views

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/client/api"
)

type ListingGetter interface {
	Get(ctx context.Context, id string) (*api.Listing, error)
}

// EntityCache lives for one page. Concurrent requests for the same listing
// share one fetch; failures are not cached. The shared fetch runs detached
// from any single caller, so a caller that gives up only stops waiting.
type EntityCache struct {
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]*api.Listing
}

func NewEntityCache() *EntityCache {
	return &EntityCache{entries: map[string]*api.Listing{}}
}

func (c *EntityCache) Get(ctx context.Context, kind catalog.Kind, id string, src ListingGetter) (*api.Listing, error) {
	key := string(kind) + ":" + id

	c.mu.RLock()
	l, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return l, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		c.mu.RLock()
		hit, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return hit, nil
		}
		l, err := src.Get(fetchCtx, id)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = l
		c.mu.Unlock()
		return l, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*api.Listing), nil
	}
}

type BasicInfo struct {
	Name              string
	Type              string
	City              string
	Address           string
	EstablishmentYear string
	OfferingsLabel    string
	Offerings         []string
	CoverImage        string
	Photos            []string
	AverageRating     string
	ReviewCount       int
}

type Contact struct {
	Phone       string
	Email       string
	Website     string
	SocialMedia []Field
	MapURL      string
}

type Admission struct {
	Link    string
	Process string
}

// DetailPage composes the detail sections of one listing. Sections load
// independently but read through the page cache; Load drives the
// page-level state and drops results of an id that is no longer current.
type DetailPage struct {
	Schema *catalog.Schema

	src   ListingGetter
	cache *EntityCache

	mu   sync.Mutex
	id   string
	data Async[Display]
}

func NewDetailPage(src ListingGetter, schema *catalog.Schema, id string) *DetailPage {
	return &DetailPage{Schema: schema, id: id, src: src, cache: NewEntityCache()}
}

func (p *DetailPage) ID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.id
}

// Load switches the page to id and fetches it, cancelling a previous load.
func (p *DetailPage) Load(ctx context.Context, id string) error {
	p.mu.Lock()
	p.id = id
	p.mu.Unlock()
	return p.data.Run(ctx, func(ctx context.Context) (Display, error) {
		return p.fetch(ctx, id)
	})
}

func (p *DetailPage) State() State { return p.data.Snapshot().State }

func (p *DetailPage) Err() error { return p.data.Snapshot().Err }

// Display is the loaded value; ok is false until a Load succeeds.
func (p *DetailPage) Display() (Display, bool) {
	snap := p.data.Snapshot()
	return snap.Value, snap.State == Ready
}

func (p *DetailPage) fetch(ctx context.Context, id string) (Display, error) {
	l, err := p.cache.Get(ctx, p.Schema.Kind, id, p.src)
	if err != nil {
		return Display{}, err
	}
	return BuildDisplay(l, p.Schema), nil
}

func (p *DetailPage) display(ctx context.Context) (Display, error) {
	if d, ok := p.Display(); ok {
		return d, nil
	}
	return p.fetch(ctx, p.ID())
}

func (p *DetailPage) BasicInfo(ctx context.Context) (BasicInfo, error) {
	d, err := p.display(ctx)
	if err != nil {
		return BasicInfo{}, err
	}
	return BasicInfo{
		Name:              d.Name,
		Type:              d.Type,
		City:              d.City,
		Address:           d.Address,
		EstablishmentYear: d.EstablishmentYear,
		OfferingsLabel:    d.OfferingsLabel,
		Offerings:         d.Offerings,
		CoverImage:        d.CoverImage,
		Photos:            d.Photos,
		AverageRating:     d.AverageRating,
		ReviewCount:       d.ReviewCount,
	}, nil
}

func (p *DetailPage) FeeStructure(ctx context.Context) ([]Field, error) {
	d, err := p.display(ctx)
	if err != nil {
		return nil, err
	}
	return d.Fees, nil
}

func (p *DetailPage) Contact(ctx context.Context) (Contact, error) {
	d, err := p.display(ctx)
	if err != nil {
		return Contact{}, err
	}
	return Contact{Phone: d.Phone, Email: d.Email, Website: d.Website, SocialMedia: d.SocialMedia, MapURL: d.MapURL}, nil
}

// Infrastructure returns the tracked facilities (Yes/No) followed by the
// kind's tri-state flags.
func (p *DetailPage) Infrastructure(ctx context.Context) (facilities, flags []Field, err error) {
	d, err := p.display(ctx)
	if err != nil {
		return nil, nil, err
	}
	return d.Facilities, d.Infrastructure, nil
}

func (p *DetailPage) Admission(ctx context.Context) (Admission, error) {
	d, err := p.display(ctx)
	if err != nil {
		return Admission{}, err
	}
	return Admission{Link: d.AdmissionLink, Process: d.AdmissionProcess}, nil
}

// FAQ returns the entries with an accordion in the kind's mode.
func (p *DetailPage) FAQ(ctx context.Context) ([]FAQEntry, *Accordion, error) {
	d, err := p.display(ctx)
	if err != nil {
		return nil, nil, err
	}
	return d.FAQ, NewAccordion(p.Schema.AccordionMode, len(d.FAQ)), nil
}
