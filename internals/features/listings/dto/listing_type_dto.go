package dto

import (
	"strings"

	"github.com/google/uuid"

	"edudirectory_backend/internals/features/listings/model"
)

type CreateListingTypeRequest struct {
	Name string `json:"name" form:"name" validate:"notblank,max=100"`
}

func (r CreateListingTypeRequest) ToModel(kind string) model.ListingTypeModel {
	name := strings.Join(strings.Fields(r.Name), " ")
	return model.ListingTypeModel{
		Kind:    kind,
		Name:    name,
		NameKey: strings.ToLower(name),
	}
}

type ListingTypeResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Kind string    `json:"kind"`
}

func NewListingTypeResponses(rows []model.ListingTypeModel) []ListingTypeResponse {
	out := make([]ListingTypeResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ListingTypeResponse{ID: r.ID, Name: r.Name, Kind: r.Kind})
	}
	return out
}
