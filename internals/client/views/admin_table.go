package views

import (
	"context"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/client/api"
)

type AdminAPI interface {
	ListingGetter
	List(ctx context.Context, opt api.ListOptions) ([]api.Listing, *api.Pagination, error)
	Delete(ctx context.Context, id string) error
}

type Row struct {
	ID         string
	Name       string
	City       string
	Type       string
	ViewRoute  string
	EditRoute  string
	DetailPath string
}

// AdminTable is the admin list of one kind with row actions.
type AdminTable struct {
	Schema *catalog.Schema

	api  AdminAPI
	data Async[[]api.Listing]
}

func NewAdminTable(a AdminAPI, schema *catalog.Schema) *AdminTable {
	return &AdminTable{Schema: schema, api: a}
}

func (t *AdminTable) Load(ctx context.Context) error {
	return t.data.Run(ctx, func(ctx context.Context) ([]api.Listing, error) {
		rows, _, err := t.api.List(ctx, api.ListOptions{})
		if err != nil {
			return nil, err
		}
		return Dedupe(rows), nil
	})
}

func (t *AdminTable) State() State { return t.data.Snapshot().State }

func (t *AdminTable) Err() error { return t.data.Snapshot().Err }

func (t *AdminTable) Rows() []Row {
	items := t.data.Snapshot().Value
	out := make([]Row, 0, len(items))
	for _, l := range items {
		out = append(out, Row{
			ID:         l.ID,
			Name:       l.Name,
			City:       l.City,
			Type:       l.Type,
			ViewRoute:  t.Schema.AdminViewRoute(l.ID),
			EditRoute:  t.Schema.AdminEditRoute(l.ID),
			DetailPath: t.Schema.DetailRoute(l.ID),
		})
	}
	return out
}

// Delete removes the listing on the backend, then drops its row.
func (t *AdminTable) Delete(ctx context.Context, id string) error {
	if err := t.api.Delete(ctx, id); err != nil {
		return err
	}
	t.data.Update(func(rows []api.Listing) []api.Listing {
		out := rows[:0:0]
		for _, l := range rows {
			if l.ID != id {
				out = append(out, l)
			}
		}
		return out
	})
	return nil
}

// Detail is the read-only view of one row.
func (t *AdminTable) Detail(ctx context.Context, id string) (Display, error) {
	l, err := t.api.Get(ctx, id)
	if err != nil {
		return Display{}, err
	}
	return BuildDisplay(l, t.Schema), nil
}
