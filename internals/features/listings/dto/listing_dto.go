package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/features/listings/model"
	"edudirectory_backend/internals/normalize"
)

/* =========================================================
 * REQUEST
 * ========================================================= */

// ListingRequest is the create/update body after normalization. Multipart
// forms carry arrays and objects as JSON strings or comma-joined text; JSON
// bodies carry them natively. Only keys the client sent are applied on
// update.
type ListingRequest struct {
	Name              string `json:"name" validate:"omitempty,max=255"`
	City              string `json:"city" validate:"omitempty,max=120"`
	Address           string `json:"address" validate:"omitempty,max=1000"`
	Type              string `json:"type" validate:"omitempty,max=120"`
	EstablishmentYear *int   `json:"establishmentYear" validate:"omitempty,min=1800,max=2100"`

	Offerings []string `json:"offerings" validate:"max=100,dive,max=120"`

	TotalAnnualFee   *float64 `json:"totalAnnualFee" validate:"omitempty,gte=0"`
	AdmissionFee     *float64 `json:"admissionFee" validate:"omitempty,gte=0"`
	TuitionFee       *float64 `json:"tuitionFee" validate:"omitempty,gte=0"`
	TransportFee     *float64 `json:"transportFee" validate:"omitempty,gte=0"`
	BooksUniformsFee *float64 `json:"booksUniformsFee" validate:"omitempty,gte=0"`

	Facilities     []string          `json:"facilities" validate:"max=50,dive,max=120"`
	Infrastructure map[string]string `json:"infrastructure"`

	Phone              string            `json:"phone" validate:"omitempty,max=40"`
	Email              string            `json:"email" validate:"omitempty,email,max=255"`
	Website            string            `json:"website" validate:"omitempty,max=255"`
	SocialMedia        model.SocialMedia `json:"socialMedia"`
	GoogleMapsEmbedURL string            `json:"googleMapsEmbedUrl" validate:"omitempty,max=2000"`

	AdmissionLink    string `json:"admissionLink" validate:"omitempty,max=255"`
	AdmissionProcess string `json:"admissionProcess" validate:"omitempty,max=5000"`

	present map[string]bool
}

// NewListingRequest reads a flattened form (field -> raw value).
func NewListingRequest(raw map[string]any, s *catalog.Schema) ListingRequest {
	r := ListingRequest{present: map[string]bool{}}
	str := func(key string) string {
		v, ok := raw[key]
		if !ok {
			return ""
		}
		r.present[key] = true
		return strings.TrimSpace(normalize.String(v))
	}
	fee := func(key string) *float64 {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		r.present[key] = true
		return normalize.Float(v)
	}

	r.Name = str(catalog.FieldName)
	r.City = str(catalog.FieldCity)
	r.Address = str(catalog.FieldAddress)
	r.Type = str(catalog.FieldType)
	if v, ok := raw[catalog.FieldEstablishmentYear]; ok {
		r.present[catalog.FieldEstablishmentYear] = true
		if y, ok := normalize.Int(v); ok {
			r.EstablishmentYear = &y
		}
	}

	for _, key := range []string{s.OfferingsKey, "offerings"} {
		if v, ok := raw[key]; ok {
			r.present["offerings"] = true
			r.Offerings = normalize.List(v)
			break
		}
	}

	r.TotalAnnualFee = fee(catalog.FeeTotalAnnual)
	r.AdmissionFee = fee(catalog.FeeAdmission)
	r.TuitionFee = fee(catalog.FeeTuition)
	r.TransportFee = fee(catalog.FeeTransport)
	r.BooksUniformsFee = fee(catalog.FeeBooksUniforms)

	if v, ok := raw[catalog.FieldFacilities]; ok {
		r.present[catalog.FieldFacilities] = true
		r.Facilities = normalize.List(v)
	}

	// infrastructure arrives as one object or as one radio value per flag
	infra := map[string]string{}
	if v, ok := raw[catalog.FieldInfrastructure]; ok {
		r.present[catalog.FieldInfrastructure] = true
		for k, val := range normalize.Flags(v) {
			if s.HasFlag(k) {
				infra[k] = val
			}
		}
	}
	for _, flag := range s.InfrastructureFlags {
		if v, ok := raw[flag]; ok {
			r.present[catalog.FieldInfrastructure] = true
			if ts := normalize.TriState(v); ts != "" {
				infra[flag] = ts
			}
		}
	}
	r.Infrastructure = infra

	r.Phone = str(catalog.FieldPhone)
	r.Email = str(catalog.FieldEmail)
	r.Website = str(catalog.FieldWebsite)
	r.GoogleMapsEmbedURL = str(catalog.FieldGoogleMaps)

	social := map[string]string{}
	if v, ok := raw[catalog.FieldSocialMedia]; ok {
		r.present[catalog.FieldSocialMedia] = true
		social = normalize.Object(v, nil)
	}
	for _, network := range catalog.SocialNetworks {
		if v, ok := raw[catalog.FieldSocialMedia+"."+network]; ok {
			r.present[catalog.FieldSocialMedia] = true
			social[network] = normalize.String(v)
		}
	}
	r.SocialMedia = model.SocialMedia{
		Facebook:  strings.TrimSpace(social["facebook"]),
		Twitter:   strings.TrimSpace(social["twitter"]),
		Instagram: strings.TrimSpace(social["instagram"]),
	}

	r.AdmissionLink = str(catalog.FieldAdmissionLink)
	r.AdmissionProcess = str(catalog.FieldAdmissionProcess)
	return r
}

func (r *ListingRequest) Has(field string) bool {
	return r.present[field]
}

func (r *ListingRequest) scalar(field string) string {
	switch field {
	case catalog.FieldName:
		return r.Name
	case catalog.FieldCity:
		return r.City
	case catalog.FieldAddress:
		return r.Address
	case catalog.FieldType:
		return r.Type
	case catalog.FieldPhone:
		return r.Phone
	case catalog.FieldEmail:
		return r.Email
	case catalog.FieldWebsite:
		return r.Website
	case catalog.FieldAdmissionProcess:
		return r.AdmissionProcess
	}
	return ""
}

// MissingRequired reports required fields that are blank. On create every
// required field must be sent; on update only the ones sent are checked.
func (r *ListingRequest) MissingRequired(s *catalog.Schema, creating bool) map[string][]string {
	out := map[string][]string{}
	for _, f := range s.RequiredFields {
		if !creating && !r.Has(f) {
			continue
		}
		if strings.TrimSpace(r.scalar(f)) == "" {
			out[f] = append(out[f], f+" is required")
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// ApplyTo copies the sent fields onto m. Images are handled by the caller.
func (r *ListingRequest) ApplyTo(m *model.ListingModel) {
	set := func(field string, dst *string, v string) {
		if r.Has(field) {
			*dst = v
		}
	}
	set(catalog.FieldName, &m.Name, r.Name)
	set(catalog.FieldCity, &m.City, r.City)
	set(catalog.FieldAddress, &m.Address, r.Address)
	set(catalog.FieldType, &m.Type, r.Type)
	set(catalog.FieldPhone, &m.Phone, r.Phone)
	set(catalog.FieldEmail, &m.Email, r.Email)
	set(catalog.FieldWebsite, &m.Website, r.Website)
	set(catalog.FieldGoogleMaps, &m.GoogleMapsEmbedURL, r.GoogleMapsEmbedURL)
	set(catalog.FieldAdmissionLink, &m.AdmissionLink, r.AdmissionLink)
	set(catalog.FieldAdmissionProcess, &m.AdmissionProcess, r.AdmissionProcess)

	if r.Has(catalog.FieldEstablishmentYear) {
		m.EstablishmentYear = r.EstablishmentYear
	}
	if r.Has("offerings") {
		m.Offerings = model.StringList(r.Offerings)
	}

	fees := []struct {
		field string
		dst   **float64
		v     *float64
	}{
		{catalog.FeeTotalAnnual, &m.TotalAnnualFee, r.TotalAnnualFee},
		{catalog.FeeAdmission, &m.AdmissionFee, r.AdmissionFee},
		{catalog.FeeTuition, &m.TuitionFee, r.TuitionFee},
		{catalog.FeeTransport, &m.TransportFee, r.TransportFee},
		{catalog.FeeBooksUniforms, &m.BooksUniformsFee, r.BooksUniformsFee},
	}
	for _, f := range fees {
		if r.Has(f.field) {
			*f.dst = f.v
		}
	}

	if r.Has(catalog.FieldFacilities) {
		m.Facilities = model.StringList(r.Facilities)
	}
	if r.Has(catalog.FieldInfrastructure) {
		m.Infrastructure = datatypes.NewJSONType(r.Infrastructure)
	}
	if r.Has(catalog.FieldSocialMedia) {
		m.SocialMedia = datatypes.NewJSONType(r.SocialMedia)
	}
}

type ListingFilter struct {
	City string `query:"city"`
	Name string `query:"name"`
	Type string `query:"type"`
}

/* =========================================================
 * RESPONSE
 * ========================================================= */

// ListingResponse carries the offerings and cover image under the key the
// kind uses; the other variant keys are omitted.
type ListingResponse struct {
	ID                uuid.UUID `json:"id"`
	Kind              string    `json:"kind"`
	Slug              string    `json:"slug"`
	Name              string    `json:"name"`
	City              string    `json:"city"`
	Address           string    `json:"address"`
	Type              string    `json:"type"`
	EstablishmentYear *int      `json:"establishmentYear"`

	Subjects       *[]string `json:"subjects,omitempty"`
	Streams        *[]string `json:"streams,omitempty"`
	CoursesOffered *[]string `json:"coursesOffered,omitempty"`

	TotalAnnualFee   *float64 `json:"totalAnnualFee"`
	AdmissionFee     *float64 `json:"admissionFee"`
	TuitionFee       *float64 `json:"tuitionFee"`
	TransportFee     *float64 `json:"transportFee"`
	BooksUniformsFee *float64 `json:"booksUniformsFee"`

	Facilities     []string          `json:"facilities"`
	Infrastructure map[string]string `json:"infrastructure"`

	Phone              string            `json:"phone"`
	Email              string            `json:"email"`
	Website            string            `json:"website"`
	SocialMedia        model.SocialMedia `json:"socialMedia"`
	GoogleMapsEmbedURL string            `json:"googleMapsEmbedUrl"`

	SchoolImage  *string  `json:"schoolImage,omitempty"`
	CollegeImage *string  `json:"collegeImage,omitempty"`
	CenterImage  *string  `json:"centerImage,omitempty"`
	Photos       []string `json:"photos"`

	AdmissionLink    string `json:"admissionLink"`
	AdmissionProcess string `json:"admissionProcess"`

	AverageRating float64   `json:"averageRating"`
	ReviewCount   int       `json:"reviewCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func NewListingResponse(m *model.ListingModel, s *catalog.Schema) ListingResponse {
	resp := ListingResponse{
		ID:                 m.ID,
		Kind:               m.Kind,
		Slug:               m.Slug,
		Name:               m.Name,
		City:               m.City,
		Address:            m.Address,
		Type:               m.Type,
		EstablishmentYear:  m.EstablishmentYear,
		TotalAnnualFee:     m.TotalAnnualFee,
		AdmissionFee:       m.AdmissionFee,
		TuitionFee:         m.TuitionFee,
		TransportFee:       m.TransportFee,
		BooksUniformsFee:   m.BooksUniformsFee,
		Facilities:         nonNil(m.Facilities),
		Infrastructure:     m.Infrastructure.Data(),
		Phone:              m.Phone,
		Email:              m.Email,
		Website:            m.Website,
		SocialMedia:        m.SocialMedia.Data(),
		GoogleMapsEmbedURL: m.GoogleMapsEmbedURL,
		Photos:             nonNil(m.Photos),
		AdmissionLink:      m.AdmissionLink,
		AdmissionProcess:   m.AdmissionProcess,
		AverageRating:      m.AverageRating(),
		ReviewCount:        m.ReviewCount,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
	if resp.Infrastructure == nil {
		resp.Infrastructure = map[string]string{}
	}

	offerings := nonNil(m.Offerings)
	switch s.OfferingsKey {
	case "streams":
		resp.Streams = &offerings
	case "coursesOffered":
		resp.CoursesOffered = &offerings
	default:
		resp.Subjects = &offerings
	}

	cover := m.CoverImage
	switch s.ImageKey {
	case "collegeImage":
		resp.CollegeImage = &cover
	case "centerImage":
		resp.CenterImage = &cover
	default:
		resp.SchoolImage = &cover
	}
	return resp
}

func NewListingResponses(rows []model.ListingModel, s *catalog.Schema) []ListingResponse {
	out := make([]ListingResponse, 0, len(rows))
	for i := range rows {
		out = append(out, NewListingResponse(&rows[i], s))
	}
	return out
}

func nonNil(l model.StringList) []string {
	if l == nil {
		return []string{}
	}
	return []string(l)
}
