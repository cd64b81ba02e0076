package views

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/client/api"
	"edudirectory_backend/internals/normalize"
)

type Field struct {
	Key   string
	Label string
	Value string
}

type FAQEntry struct {
	Question string
	Answer   string
}

// Display is the flat, render-ready model of a listing. Every scalar has
// a value; blanks are "N/A".
type Display struct {
	ID                string
	Name              string
	City              string
	Address           string
	Type              string
	EstablishmentYear string

	OfferingsLabel string
	Offerings      []string
	OfferingsText  string

	Fees           []Field
	Facilities     []Field
	Infrastructure []Field

	Phone       string
	Email       string
	Website     string
	SocialMedia []Field
	MapURL      string

	CoverImage string
	Photos     []string

	AdmissionLink    string
	AdmissionProcess string

	AverageRating string
	ReviewCount   int

	FAQ []FAQEntry
}

// BuildDisplay flattens a listing for a kind.
func BuildDisplay(l *api.Listing, s *catalog.Schema) Display {
	d := Display{
		ID:               l.ID,
		Name:             normalize.OrNA(l.Name),
		City:             normalize.OrNA(l.City),
		Address:          normalize.OrNA(l.Address),
		Type:             normalize.OrNA(l.Type),
		OfferingsLabel:   s.OfferingsLabel,
		Offerings:        append([]string{}, l.Offerings...),
		OfferingsText:    normalize.JoinOrNA(l.Offerings),
		Phone:            normalize.OrNA(l.Phone),
		Email:            normalize.OrNA(l.Email),
		Website:          normalize.OrNA(l.Website),
		MapURL:           l.GoogleMapsEmbedURL,
		CoverImage:       l.CoverImage,
		Photos:           append([]string{}, l.Photos...),
		AdmissionLink:    normalize.OrNA(l.AdmissionLink),
		AdmissionProcess: normalize.OrNA(l.AdmissionProcess),
		AverageRating:    strconv.FormatFloat(l.AverageRating, 'f', 1, 64),
		ReviewCount:      l.ReviewCount,
	}
	d.EstablishmentYear = normalize.NotAvailable
	if l.EstablishmentYear != nil {
		d.EstablishmentYear = strconv.Itoa(*l.EstablishmentYear)
	}

	for _, f := range s.FeeFields {
		d.Fees = append(d.Fees, Field{Key: f, Label: catalog.FeeLabel(f), Value: normalize.FormatAmount(l.Fees[f])})
	}

	for _, name := range s.TrackedFacilities {
		d.Facilities = append(d.Facilities, Field{Key: name, Label: name, Value: facilityValue(l, name)})
	}

	for _, flag := range s.InfrastructureFlags {
		v, ok := l.Infrastructure[flag]
		if !ok {
			v = normalize.NotAvailable
		}
		d.Infrastructure = append(d.Infrastructure, Field{Key: flag, Label: Humanize(flag), Value: v})
	}

	for _, n := range catalog.SocialNetworks {
		d.SocialMedia = append(d.SocialMedia, Field{Key: n, Label: Humanize(n), Value: normalize.OrNA(l.SocialMedia[n])})
	}

	d.FAQ = buildFAQ(&d, s)
	return d
}

// facilityValue is "Yes" when the facility is listed or its infrastructure
// flag says so, "No" otherwise.
func facilityValue(l *api.Listing, name string) string {
	key := foldKey(name)
	for _, f := range l.Facilities {
		if foldKey(f) == key {
			return normalize.Yes
		}
	}
	for flag, v := range l.Infrastructure {
		if foldKey(flag) == key && v == normalize.Yes {
			return normalize.Yes
		}
	}
	return normalize.No
}

func foldKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// Humanize turns "smartClassrooms" into "Smart Classrooms" and "cctv" into "CCTV".
func Humanize(key string) string {
	switch strings.ToLower(key) {
	case "cctv":
		return "CCTV"
	case "wifi":
		return "WiFi"
	}
	var b strings.Builder
	for i, r := range key {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d *Display) valueOf(field string, s *catalog.Schema) string {
	switch field {
	case catalog.FieldEstablishmentYear:
		return d.EstablishmentYear
	case catalog.FieldAddress:
		return d.Address
	case catalog.FieldCity:
		return d.City
	case catalog.FieldType:
		return d.Type
	case catalog.FieldAdmissionProcess:
		return d.AdmissionProcess
	case catalog.FieldAdmissionLink:
		return d.AdmissionLink
	case s.OfferingsKey:
		return d.OfferingsText
	}
	for _, f := range d.Fees {
		if f.Key == field {
			return f.Value
		}
	}
	return normalize.NotAvailable
}

func buildFAQ(d *Display, s *catalog.Schema) []FAQEntry {
	out := make([]FAQEntry, 0, len(s.FAQTemplates))
	for _, t := range s.FAQTemplates {
		out = append(out, FAQEntry{
			Question: fmt.Sprintf(t.Question, d.Name),
			Answer:   d.valueOf(t.Field, s),
		})
	}
	return out
}

// Accordion tracks which FAQ entries are open.
type Accordion struct {
	mode catalog.AccordionMode
	n    int
	open map[int]bool
}

func NewAccordion(mode catalog.AccordionMode, n int) *Accordion {
	return &Accordion{mode: mode, n: n, open: map[int]bool{}}
}

// Toggle flips entry i; in single mode opening one closes the rest.
func (a *Accordion) Toggle(i int) {
	if i < 0 || i >= a.n {
		return
	}
	if a.open[i] {
		delete(a.open, i)
		return
	}
	if a.mode == catalog.AccordionSingle {
		a.open = map[int]bool{}
	}
	a.open[i] = true
}

func (a *Accordion) IsOpen(i int) bool { return a.open[i] }

func (a *Accordion) OpenCount() int { return len(a.open) }
