package api

import (
	"strings"
	"time"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/normalize"
)

// Listing is one institution after normalization. Offerings and CoverImage
// hold whatever the kind calls them (subjects, streams, collegeImage, ...).
type Listing struct {
	ID                string
	Kind              catalog.Kind
	Slug              string
	Name              string
	City              string
	Address           string
	Type              string
	EstablishmentYear *int

	Offerings []string
	Fees      map[string]*float64

	Facilities     []string
	Infrastructure map[string]string

	Phone              string
	Email              string
	Website            string
	SocialMedia        map[string]string
	GoogleMapsEmbedURL string

	CoverImage string
	Photos     []string

	AdmissionLink    string
	AdmissionProcess string

	AverageRating float64
	ReviewCount   int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func defaultSocial() map[string]string {
	out := make(map[string]string, len(catalog.SocialNetworks))
	for _, n := range catalog.SocialNetworks {
		out[n] = ""
	}
	return out
}

// DecodeListing reads a raw backend object. Lists may arrive as real lists,
// JSON strings or comma-joined text; objects as objects or JSON strings.
// An unreadable socialMedia falls back to the empty three-network shape.
func DecodeListing(raw map[string]any, s *catalog.Schema) Listing {
	l := Listing{
		ID:                 normalize.String(raw[catalog.FieldID]),
		Kind:               s.Kind,
		Slug:               normalize.String(raw["slug"]),
		Name:               normalize.String(raw[catalog.FieldName]),
		City:               normalize.String(raw[catalog.FieldCity]),
		Address:            normalize.String(raw[catalog.FieldAddress]),
		Type:               normalize.String(raw[catalog.FieldType]),
		Offerings:          normalize.List(raw[s.OfferingsKey]),
		Fees:               map[string]*float64{},
		Facilities:         normalize.List(raw[catalog.FieldFacilities]),
		Infrastructure:     normalize.Flags(raw[catalog.FieldInfrastructure]),
		Phone:              normalize.String(raw[catalog.FieldPhone]),
		Email:              normalize.String(raw[catalog.FieldEmail]),
		Website:            normalize.String(raw[catalog.FieldWebsite]),
		SocialMedia:        normalize.Object(raw[catalog.FieldSocialMedia], defaultSocial()),
		GoogleMapsEmbedURL: normalize.String(raw[catalog.FieldGoogleMaps]),
		CoverImage:         normalize.String(raw[s.ImageKey]),
		Photos:             normalize.List(raw[catalog.FieldPhotos]),
		AdmissionLink:      normalize.String(raw[catalog.FieldAdmissionLink]),
		AdmissionProcess:   normalize.String(raw[catalog.FieldAdmissionProcess]),
		CreatedAt:          parseTime(raw["createdAt"]),
		UpdatedAt:          parseTime(raw["updatedAt"]),
	}
	if y, ok := normalize.Int(raw[catalog.FieldEstablishmentYear]); ok {
		l.EstablishmentYear = &y
	}
	for _, f := range []string{
		catalog.FeeTotalAnnual, catalog.FeeAdmission, catalog.FeeTuition,
		catalog.FeeTransport, catalog.FeeBooksUniforms,
	} {
		l.Fees[f] = normalize.Float(raw[f])
	}
	if avg := normalize.Float(raw["averageRating"]); avg != nil {
		l.AverageRating = *avg
	}
	l.ReviewCount, _ = normalize.Int(raw["reviewCount"])
	return l
}

func parseTime(v any) time.Time {
	s := strings.TrimSpace(normalize.String(v))
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

type Review struct {
	ID        string
	ListingID string
	Author    string
	Text      string
	Rating    int
	Likes     int
	Dislikes  int
	CreatedAt time.Time
}

func DecodeReview(raw map[string]any) Review {
	r := Review{
		ID:        normalize.String(raw["id"]),
		ListingID: normalize.String(raw["listingId"]),
		Author:    normalize.String(raw["author"]),
		Text:      normalize.String(raw["text"]),
		CreatedAt: parseTime(raw["createdAt"]),
	}
	r.Rating, _ = normalize.Int(raw["rating"])
	r.Likes, _ = normalize.Int(raw["likes"])
	r.Dislikes, _ = normalize.Int(raw["dislikes"])
	return r
}

type ListingType struct {
	ID   string
	Name string
	Kind string
}

func DecodeListingType(raw map[string]any) ListingType {
	return ListingType{
		ID:   normalize.String(raw["id"]),
		Name: normalize.String(raw["name"]),
		Kind: normalize.String(raw["kind"]),
	}
}

// objects keeps the map elements of a JSON array.
func objects(v any) []map[string]any {
	arr, _ := v.([]any)
	out := make([]map[string]any, 0, len(arr))
	for _, e := range arr {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
