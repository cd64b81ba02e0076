package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReviewModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID uuid.UUID `gorm:"type:uuid;not null;index:idx_reviews_listing_created,priority:1" json:"listing_id"`
	Author    string    `gorm:"size:100;not null" json:"author"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Rating    int       `gorm:"not null" json:"rating"`
	Likes     int       `gorm:"not null;default:0" json:"likes"`
	Dislikes  int       `gorm:"not null;default:0" json:"dislikes"`
	CreatedAt time.Time `gorm:"index:idx_reviews_listing_created,priority:2" json:"created_at"`
}

func (ReviewModel) TableName() string {
	return "reviews"
}

func (m *ReviewModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Models lists everything the listings feature migrates.
func Models() []any {
	return []any{&ListingModel{}, &ListingTypeModel{}, &ReviewModel{}}
}
