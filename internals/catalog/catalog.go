// Package catalog holds the per-kind schema that drives every listing
// component: routes, form fields, required checks, fee and infrastructure
// sections, FAQ templates and the few behaviours that differ per kind.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindSchool          Kind = "school"
	KindCollege         Kind = "college"
	KindPUCollege       Kind = "pucollege"
	KindTuitionCoaching Kind = "tuitioncoaching"
)

// AccordionMode controls how many FAQ entries may be open at once.
type AccordionMode int

const (
	AccordionSingle AccordionMode = iota
	AccordionMulti
)

// ReviewMode controls how like/dislike reach the backend.
type ReviewMode int

const (
	// ReviewLive calls the API and bumps the counter once the call succeeded.
	ReviewLive ReviewMode = iota
	// ReviewLocalDemo only mutates local state, no backend call.
	ReviewLocalDemo
)

const (
	GalleryCap     = 6
	MaxUploadBytes = 5 * 1024 * 1024
)

// Field names shared by every kind (wire names, camelCase).
const (
	FieldID                = "id"
	FieldName              = "name"
	FieldCity              = "city"
	FieldAddress           = "address"
	FieldType              = "type"
	FieldEstablishmentYear = "establishmentYear"
	FieldFacilities        = "facilities"
	FieldInfrastructure    = "infrastructure"
	FieldPhone             = "phone"
	FieldEmail             = "email"
	FieldWebsite           = "website"
	FieldSocialMedia       = "socialMedia"
	FieldGoogleMaps        = "googleMapsEmbedUrl"
	FieldPhotos            = "photos"
	FieldGalleryFiles      = "galleryFiles"
	FieldAdmissionLink     = "admissionLink"
	FieldAdmissionProcess  = "admissionProcess"

	FeeTotalAnnual   = "totalAnnualFee"
	FeeAdmission     = "admissionFee"
	FeeTuition       = "tuitionFee"
	FeeTransport     = "transportFee"
	FeeBooksUniforms = "booksUniformsFee"
)

var SocialNetworks = []string{"facebook", "twitter", "instagram"}

// FAQTemplate binds a question to the display field that answers it.
type FAQTemplate struct {
	Question string // %s is replaced with the listing name
	Field    string
}

type Schema struct {
	Kind        Kind
	Label       string
	PathSegment string

	OfferingsKey   string
	OfferingsLabel string
	ImageKey       string

	RequiredFields      []string
	FeeFields           []string
	InfrastructureFlags []string
	TrackedFacilities   []string
	FAQTemplates        []FAQTemplate

	AccordionMode AccordionMode
	ReviewMode    ReviewMode
	StrictUploads bool
}

var feeLabels = map[string]string{
	FeeTotalAnnual:   "Total Annual Fee",
	FeeAdmission:     "Admission Fee",
	FeeTuition:       "Tuition Fee",
	FeeTransport:     "Transport Fee",
	FeeBooksUniforms: "Books & Uniforms Fee",
}

func FeeLabel(field string) string {
	if l, ok := feeLabels[field]; ok {
		return l
	}
	return field
}

var registry = map[Kind]*Schema{
	KindSchool: {
		Kind:                KindSchool,
		Label:               "School",
		PathSegment:         "schools",
		OfferingsKey:        "subjects",
		OfferingsLabel:      "Subjects",
		ImageKey:            "schoolImage",
		RequiredFields:      []string{FieldName, FieldType, FieldAddress, FieldCity},
		FeeFields:           []string{FeeTotalAnnual, FeeAdmission, FeeTuition, FeeTransport, FeeBooksUniforms},
		InfrastructureFlags: []string{"laboratories", "library", "wifi", "cctv", "playground", "transport", "smartClassrooms"},
		TrackedFacilities:   []string{"Library", "CCTV", "Wifi", "Playground", "Transport", "Canteen"},
		FAQTemplates: []FAQTemplate{
			{Question: "When was %s established?", Field: FieldEstablishmentYear},
			{Question: "Which subjects are taught at %s?", Field: "subjects"},
			{Question: "What is the total annual fee at %s?", Field: FeeTotalAnnual},
			{Question: "How do I apply to %s?", Field: FieldAdmissionProcess},
		},
		AccordionMode: AccordionSingle,
		ReviewMode:    ReviewLocalDemo,
	},
	KindCollege: {
		Kind:                KindCollege,
		Label:               "College",
		PathSegment:         "colleges",
		OfferingsKey:        "coursesOffered",
		OfferingsLabel:      "Courses Offered",
		ImageKey:            "collegeImage",
		RequiredFields:      []string{FieldName, FieldType, FieldAddress, FieldCity},
		FeeFields:           []string{FeeTotalAnnual, FeeAdmission, FeeTuition},
		InfrastructureFlags: []string{"laboratories", "library", "wifi", "cctv", "hostel", "canteen", "sports", "auditorium"},
		TrackedFacilities:   []string{"Library", "CCTV", "Wifi", "Hostel", "Canteen", "Sports"},
		FAQTemplates: []FAQTemplate{
			{Question: "When was %s established?", Field: FieldEstablishmentYear},
			{Question: "What courses does %s offer?", Field: "coursesOffered"},
			{Question: "What is the total annual fee at %s?", Field: FeeTotalAnnual},
			{Question: "What is the admission process at %s?", Field: FieldAdmissionProcess},
			{Question: "Where is %s located?", Field: FieldAddress},
		},
		AccordionMode: AccordionSingle,
		ReviewMode:    ReviewLive,
		StrictUploads: true,
	},
	KindPUCollege: {
		Kind:                KindPUCollege,
		Label:               "PU College",
		PathSegment:         "pucolleges",
		OfferingsKey:        "streams",
		OfferingsLabel:      "Streams",
		ImageKey:            "collegeImage",
		RequiredFields:      []string{FieldName, FieldType, FieldAddress, FieldCity},
		FeeFields:           []string{FeeTotalAnnual, FeeAdmission, FeeTuition, FeeTransport},
		InfrastructureFlags: []string{"laboratories", "library", "wifi", "cctv", "canteen", "transport"},
		TrackedFacilities:   []string{"Library", "CCTV", "Wifi", "Canteen", "Transport"},
		FAQTemplates: []FAQTemplate{
			{Question: "When was %s established?", Field: FieldEstablishmentYear},
			{Question: "Which streams are available at %s?", Field: "streams"},
			{Question: "What is the total annual fee at %s?", Field: FeeTotalAnnual},
			{Question: "How does admission work at %s?", Field: FieldAdmissionProcess},
		},
		AccordionMode: AccordionMulti,
		ReviewMode:    ReviewLive,
	},
	KindTuitionCoaching: {
		Kind:                KindTuitionCoaching,
		Label:               "Tuition / Coaching Center",
		PathSegment:         "tuitioncoaching",
		OfferingsKey:        "subjects",
		OfferingsLabel:      "Subjects",
		ImageKey:            "centerImage",
		RequiredFields:      []string{FieldName, FieldType, FieldAddress, FieldCity},
		FeeFields:           []string{FeeTotalAnnual, FeeAdmission},
		InfrastructureFlags: []string{"library", "wifi", "cctv", "airConditioning", "studyMaterial"},
		TrackedFacilities:   []string{"Library", "CCTV", "Wifi", "Air Conditioning"},
		FAQTemplates: []FAQTemplate{
			{Question: "Since when has %s been running?", Field: FieldEstablishmentYear},
			{Question: "Which subjects does %s coach?", Field: "subjects"},
			{Question: "What are the fees at %s?", Field: FeeTotalAnnual},
			{Question: "How do I enrol at %s?", Field: FieldAdmissionProcess},
		},
		AccordionMode: AccordionSingle,
		ReviewMode:    ReviewLocalDemo,
	},
}

// Lookup returns the schema for a kind.
func Lookup(k Kind) (*Schema, error) {
	s, ok := registry[k]
	if !ok {
		return nil, fmt.Errorf("catalog: unknown kind %q", k)
	}
	return s, nil
}

// MustLookup panics on an unknown kind; for package-level wiring only.
func MustLookup(k Kind) *Schema {
	s, err := Lookup(k)
	if err != nil {
		panic(err)
	}
	return s
}

// BySegment resolves a path segment such as "colleges".
func BySegment(segment string) (*Schema, bool) {
	segment = strings.ToLower(strings.TrimSpace(segment))
	for _, s := range registry {
		if s.PathSegment == segment {
			return s, true
		}
	}
	return nil, false
}

// All returns every schema ordered by kind.
func All() []*Schema {
	out := make([]*Schema, 0, len(registry))
	for _, s := range registry {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

func (s *Schema) ListPath() string { return "/admin/get" + s.PathSegment }
func (s *Schema) ItemPath(id string) string { return s.ListPath() + "/" + id }
func (s *Schema) CreatePath() string { return "/admin/add" + s.PathSegment }
func (s *Schema) UpdatePath(id string) string {
	return "/admin/update" + s.PathSegment + "/" + id
}
func (s *Schema) DeletePath(id string) string {
	return "/admin/del-" + s.PathSegment + "/" + id
}
func (s *Schema) SearchPath() string { return "/admin/search/" + s.PathSegment }
func (s *Schema) TypesPath() string { return "/admin/" + s.PathSegment + "-types" }
func (s *Schema) ReviewsPath(listingID string) string {
	return "/" + s.PathSegment + "/" + listingID + "/reviews"
}

// Front-end routes emitted by navigation events.
func (s *Schema) DetailRoute(id string) string { return "/" + s.PathSegment + "/" + id }
func (s *Schema) AdminListRoute() string { return "/admin/" + s.PathSegment }
func (s *Schema) AdminEditRoute(id string) string { return "/admin/" + s.PathSegment + "/edit/" + id }
func (s *Schema) AdminViewRoute(id string) string { return "/admin/" + s.PathSegment + "/view/" + id }

func (s *Schema) IsRequired(field string) bool {
	for _, f := range s.RequiredFields {
		if f == field {
			return true
		}
	}
	return false
}

func (s *Schema) HasFlag(flag string) bool {
	for _, f := range s.InfrastructureFlags {
		if f == flag {
			return true
		}
	}
	return false
}
