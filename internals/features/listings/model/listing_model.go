package model

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SocialMedia struct {
	Facebook  string `json:"facebook"`
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
}

// ListingModel stores every kind in one table; Kind selects the schema.
type ListingModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Kind string    `gorm:"size:32;not null;index:idx_listings_kind_city,priority:1" json:"kind"`
	Slug string    `gorm:"size:160;not null;index" json:"slug"`

	Name              string `gorm:"size:255;not null" json:"name"`
	City              string `gorm:"size:120;index:idx_listings_kind_city,priority:2" json:"city"`
	Address           string `gorm:"type:text" json:"address"`
	Type              string `gorm:"size:120" json:"type"`
	EstablishmentYear *int   `json:"establishment_year"`

	Offerings StringList `json:"offerings"`

	TotalAnnualFee   *float64 `json:"total_annual_fee"`
	AdmissionFee     *float64 `json:"admission_fee"`
	TuitionFee       *float64 `json:"tuition_fee"`
	TransportFee     *float64 `json:"transport_fee"`
	BooksUniformsFee *float64 `json:"books_uniforms_fee"`

	Facilities     StringList                             `json:"facilities"`
	Infrastructure datatypes.JSONType[map[string]string] `json:"infrastructure"`

	Phone              string                          `gorm:"size:40" json:"phone"`
	Email              string                          `gorm:"size:255" json:"email"`
	Website            string                          `gorm:"size:255" json:"website"`
	SocialMedia        datatypes.JSONType[SocialMedia] `json:"social_media"`
	GoogleMapsEmbedURL string                          `gorm:"type:text" json:"google_maps_embed_url"`

	CoverImage string     `gorm:"type:text" json:"cover_image"`
	Photos     StringList `json:"photos"`

	AdmissionLink    string `gorm:"size:255" json:"admission_link"`
	AdmissionProcess string `gorm:"type:text" json:"admission_process"`

	ReviewCount int `gorm:"not null;default:0" json:"review_count"`
	RatingSum   int `gorm:"not null;default:0" json:"rating_sum"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ListingModel) TableName() string {
	return "listings"
}

func (m *ListingModel) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// AverageRating is the mean of all ratings, one decimal.
func (m *ListingModel) AverageRating() float64 {
	if m.ReviewCount == 0 {
		return 0
	}
	return math.Round(float64(m.RatingSum)/float64(m.ReviewCount)*10) / 10
}
