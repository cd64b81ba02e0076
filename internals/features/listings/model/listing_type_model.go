package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListingTypeModel is the managed category vocabulary, unique per kind
// ignoring case.
type ListingTypeModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Kind      string    `gorm:"size:32;not null;uniqueIndex:uq_listing_types_kind_name,priority:1" json:"kind"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	NameKey   string    `gorm:"size:100;not null;uniqueIndex:uq_listing_types_kind_name,priority:2" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (ListingTypeModel) TableName() string {
	return "listing_types"
}

func (m *ListingTypeModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
