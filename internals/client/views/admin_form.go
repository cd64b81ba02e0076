package views

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/client/api"
	"edudirectory_backend/internals/helpers/storage"
	"edudirectory_backend/internals/normalize"
)

type ListingWriter interface {
	ListingGetter
	Create(ctx context.Context, form *api.Form) (*api.Listing, error)
	Update(ctx context.Context, id string, form *api.Form) (*api.Listing, error)
}

type TypeAPI interface {
	List(ctx context.Context) ([]api.ListingType, error)
	Add(ctx context.Context, name string) (*api.ListingType, error)
}

var (
	ErrGalleryFull    = errors.Errorf("gallery is limited to %d images", catalog.GalleryCap)
	ErrFileType       = errors.New("image must be jpeg or png")
	ErrFileSize       = errors.New("image exceeds the upload size limit")
	ErrUnknownField   = errors.New("unknown field")
	ErrInvalidFlag    = errors.New("infrastructure value must be Yes or No")
	ErrCategoryBlank  = errors.New("category name is blank")
	ErrSubmitInFlight = errors.New("a submit is already running")
)

// RequiredFieldsError lists the blank required fields.
type RequiredFieldsError struct {
	Fields []string
}

func (e *RequiredFieldsError) Error() string {
	return "required fields missing: " + strings.Join(e.Fields, ", ")
}

// BannerText is the copy shown to the user for err.
func BannerText(err error) string {
	var req *RequiredFieldsError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &req):
		return "Please fill in all required fields: " + strings.Join(req.Fields, ", ")
	case errors.Is(err, ErrGalleryFull):
		return fmt.Sprintf("You can upload at most %d gallery images", catalog.GalleryCap)
	case errors.Is(err, ErrFileType):
		return "Only JPEG and PNG images are allowed"
	case errors.Is(err, ErrFileSize):
		return fmt.Sprintf("Each image must be %dMB or smaller", catalog.MaxUploadBytes>>20)
	case errors.Is(err, ErrCategoryBlank):
		return "Category name cannot be empty"
	case errors.Is(err, ErrReviewIncomplete):
		return "Please select a rating and write your review"
	default:
		return api.Message(err)
	}
}

type BannerKind int

const (
	BannerNone BannerKind = iota
	BannerSuccess
	BannerError
)

type Banner struct {
	Kind BannerKind
	Text string
}

// scalar fields edited as plain inputs
var formScalars = []string{
	catalog.FieldName, catalog.FieldCity, catalog.FieldAddress, catalog.FieldType,
	catalog.FieldEstablishmentYear, catalog.FieldPhone, catalog.FieldEmail, catalog.FieldWebsite,
	catalog.FieldGoogleMaps, catalog.FieldAdmissionLink, catalog.FieldAdmissionProcess,
}

type FormDeps struct {
	API      ListingWriter
	Types    TypeAPI
	Navigate func(route string)
	// NavigateDelay is the pause between the success banner and leaving.
	NavigateDelay time.Duration
	// After schedules the delayed navigation; time.AfterFunc when nil.
	After func(d time.Duration, fn func())
}

// AdminForm is the create/edit form of one listing.
type AdminForm struct {
	Schema *catalog.Schema
	deps   FormDeps

	mu             sync.Mutex
	id             string
	values         map[string]string
	offerings      []string
	facilities     []string
	infrastructure map[string]string
	social         map[string]string
	coverURL       string
	cover          *api.File
	photos         []string
	gallery        []api.File
	types          []api.ListingType
	banner         Banner
	submitting     bool

	load Async[*api.Listing]
}

func NewCreateForm(schema *catalog.Schema, deps FormDeps) *AdminForm {
	if deps.After == nil {
		deps.After = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	f := &AdminForm{
		Schema:         schema,
		deps:           deps,
		values:         map[string]string{},
		infrastructure: map[string]string{},
		social:         map[string]string{},
	}
	for _, k := range catalog.SocialNetworks {
		f.social[k] = ""
	}
	return f
}

// LoadEditForm fetches a listing and fills the form from it.
func LoadEditForm(ctx context.Context, schema *catalog.Schema, deps FormDeps, id string) (*AdminForm, error) {
	f := NewCreateForm(schema, deps)
	if err := f.Load(ctx, id); err != nil {
		return nil, err
	}
	return f, nil
}

// Load fetches listing id into the form, cancelling an earlier load. A load
// overtaken by a newer one returns ErrSuperseded and leaves the form as is.
func (f *AdminForm) Load(ctx context.Context, id string) error {
	return f.load.RunApply(ctx, func(ctx context.Context) (*api.Listing, error) {
		return f.deps.API.Get(ctx, id)
	}, func(l *api.Listing) {
		f.fill(l, id)
	})
}

func (f *AdminForm) LoadState() State { return f.load.Snapshot().State }

func (f *AdminForm) LoadErr() error { return f.load.Snapshot().Err }

func (f *AdminForm) fill(l *api.Listing, id string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.id = l.ID
	if f.id == "" {
		f.id = id
	}
	f.values = map[string]string{
		catalog.FieldName:             l.Name,
		catalog.FieldCity:             l.City,
		catalog.FieldAddress:          l.Address,
		catalog.FieldType:             l.Type,
		catalog.FieldPhone:            l.Phone,
		catalog.FieldEmail:            l.Email,
		catalog.FieldWebsite:          l.Website,
		catalog.FieldGoogleMaps:       l.GoogleMapsEmbedURL,
		catalog.FieldAdmissionLink:    l.AdmissionLink,
		catalog.FieldAdmissionProcess: l.AdmissionProcess,
	}
	if l.EstablishmentYear != nil {
		f.values[catalog.FieldEstablishmentYear] = strconv.Itoa(*l.EstablishmentYear)
	}
	for _, fee := range f.Schema.FeeFields {
		if v := l.Fees[fee]; v != nil {
			f.values[fee] = strconv.FormatFloat(*v, 'f', -1, 64)
		}
	}
	f.offerings = append([]string{}, l.Offerings...)
	f.facilities = f.canonicalFacilities(l.Facilities)
	f.infrastructure = map[string]string{}
	for k, v := range l.Infrastructure {
		if f.Schema.HasFlag(k) {
			f.infrastructure[k] = v
		}
	}
	for _, k := range catalog.SocialNetworks {
		f.social[k] = ""
	}
	for k, v := range l.SocialMedia {
		f.social[k] = v
	}
	f.coverURL = l.CoverImage
	f.cover = nil
	f.photos = append([]string{}, l.Photos...)
	f.gallery = nil
}

// canonicalFacilities spells tracked facilities the way the schema does and
// drops entries that differ only in case or punctuation.
func (f *AdminForm) canonicalFacilities(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, name := range in {
		key := foldKey(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f.trackedName(name))
	}
	return out
}

func (f *AdminForm) trackedName(name string) string {
	key := foldKey(name)
	for _, t := range f.Schema.TrackedFacilities {
		if foldKey(t) == key {
			return t
		}
	}
	return name
}

func (f *AdminForm) IsEdit() bool { return f.id != "" }

func (f *AdminForm) isScalar(field string) bool {
	for _, k := range formScalars {
		if k == field {
			return true
		}
	}
	for _, k := range f.Schema.FeeFields {
		if k == field {
			return true
		}
	}
	return false
}

// Set assigns one input. "socialMedia.<network>" writes into the nested
// object; list fields accept comma-joined or JSON text.
func (f *AdminForm) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if net, ok := strings.CutPrefix(field, catalog.FieldSocialMedia+"."); ok {
		f.social[net] = value
		return nil
	}
	switch field {
	case f.Schema.OfferingsKey:
		f.offerings = normalize.List(value)
	case catalog.FieldFacilities:
		f.facilities = normalize.List(value)
	default:
		if !f.isScalar(field) {
			return errors.Wrap(ErrUnknownField, field)
		}
		f.values[field] = value
	}
	return nil
}

func (f *AdminForm) Value(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if net, ok := strings.CutPrefix(field, catalog.FieldSocialMedia+"."); ok {
		return f.social[net]
	}
	return f.values[field]
}

// ToggleFacility adds the facility when checked, removes it otherwise.
// Names match ignoring case and punctuation.
func (f *AdminForm) ToggleFacility(name string, checked bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := foldKey(name)
	kept := f.facilities[:0]
	found := false
	for _, v := range f.facilities {
		if foldKey(v) == key {
			found = true
			if !checked {
				continue
			}
		}
		kept = append(kept, v)
	}
	f.facilities = kept
	if checked && !found {
		f.facilities = append(f.facilities, f.trackedName(name))
	}
}

func (f *AdminForm) Facilities() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.facilities...)
}

func (f *AdminForm) SetFlag(flag, value string) error {
	if !f.Schema.HasFlag(flag) {
		return errors.Wrap(ErrUnknownField, flag)
	}
	v := normalize.TriState(value)
	if v == "" {
		return ErrInvalidFlag
	}
	f.mu.Lock()
	f.infrastructure[flag] = v
	f.mu.Unlock()
	return nil
}

func (f *AdminForm) checkFile(file api.File) error {
	if !f.Schema.StrictUploads {
		return nil
	}
	switch storage.DetectFormat(file.Data, file.Name) {
	case "jpeg", "png":
	default:
		return errors.Wrap(ErrFileType, file.Name)
	}
	if len(file.Data) > catalog.MaxUploadBytes {
		return errors.Wrap(ErrFileSize, file.Name)
	}
	return nil
}

func (f *AdminForm) SetCoverImage(file api.File) error {
	if err := f.checkFile(file); err != nil {
		return err
	}
	f.mu.Lock()
	f.cover = &file
	f.mu.Unlock()
	return nil
}

// AddGalleryFiles appends new images. The whole batch is rejected, and
// the form left as it was, when one file fails or the gallery would grow
// past the cap.
func (f *AdminForm) AddGalleryFiles(files ...api.File) error {
	for _, file := range files {
		if err := f.checkFile(file); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.photos)+len(f.gallery)+len(files) > catalog.GalleryCap {
		return ErrGalleryFull
	}
	f.gallery = append(f.gallery, files...)
	return nil
}

// RemovePhoto drops an already uploaded gallery image.
func (f *AdminForm) RemovePhoto(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.photos {
		if p == url {
			f.photos = append(f.photos[:i], f.photos[i+1:]...)
			return
		}
	}
}

// GalleryCount is kept plus pending images.
func (f *AdminForm) GalleryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.photos) + len(f.gallery)
}

func (f *AdminForm) LoadTypes(ctx context.Context) ([]api.ListingType, error) {
	rows, err := f.deps.Types.List(ctx)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.types = rows
	f.mu.Unlock()
	return rows, nil
}

// AddCategory creates a type and selects it.
func (f *AdminForm) AddCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrCategoryBlank
	}
	lt, err := f.deps.Types.Add(ctx, name)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.types = append(f.types, *lt)
	f.values[catalog.FieldType] = lt.Name
	f.mu.Unlock()
	return nil
}

func (f *AdminForm) Types() []api.ListingType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.ListingType(nil), f.types...)
}

// Validate reports the blank required fields in schema order.
func (f *AdminForm) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var missing []string
	for _, k := range f.Schema.RequiredFields {
		if strings.TrimSpace(f.values[k]) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &RequiredFieldsError{Fields: missing}
	}
	return nil
}

// BuildForm serializes the state into a multipart payload: lists and
// objects are JSON strings, images are file parts.
func (f *AdminForm) BuildForm() (*api.Form, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	form := api.NewForm()
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		form.Set(k, strings.TrimSpace(f.values[k]))
	}
	if err := form.SetJSON(f.Schema.OfferingsKey, nonNil(f.offerings)); err != nil {
		return nil, err
	}
	if err := form.SetJSON(catalog.FieldFacilities, nonNil(f.facilities)); err != nil {
		return nil, err
	}
	if err := form.SetJSON(catalog.FieldInfrastructure, f.infrastructure); err != nil {
		return nil, err
	}
	if err := form.SetJSON(catalog.FieldSocialMedia, f.social); err != nil {
		return nil, err
	}
	if err := form.SetJSON(catalog.FieldPhotos, nonNil(f.photos)); err != nil {
		return nil, err
	}
	if f.cover != nil {
		form.AddFile(api.File{Field: f.Schema.ImageKey, Name: f.cover.Name, Data: f.cover.Data})
	}
	for _, g := range f.gallery {
		form.AddFile(api.File{Field: catalog.FieldGalleryFiles, Name: g.Name, Data: g.Data})
	}
	return form, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Submit validates, then creates or updates. On success the banner is set
// and navigation back to the admin list is scheduled; on failure the banner
// carries the error and the form keeps every value.
func (f *AdminForm) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInFlight
	}
	f.submitting = true
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	if err := f.Validate(); err != nil {
		f.setBanner(BannerError, BannerText(err))
		return err
	}
	form, err := f.BuildForm()
	if err != nil {
		f.setBanner(BannerError, BannerText(err))
		return err
	}

	var saved *api.Listing
	verb := "created"
	if f.IsEdit() {
		verb = "updated"
		saved, err = f.deps.API.Update(ctx, f.id, form)
	} else {
		saved, err = f.deps.API.Create(ctx, form)
	}
	if err != nil {
		f.setBanner(BannerError, BannerText(err))
		return err
	}

	f.mu.Lock()
	if saved != nil && saved.ID != "" {
		f.id = saved.ID
	}
	f.cover = nil
	f.gallery = nil
	if saved != nil {
		f.coverURL = saved.CoverImage
		f.photos = append([]string{}, saved.Photos...)
	}
	f.mu.Unlock()

	f.setBanner(BannerSuccess, fmt.Sprintf("%s %s successfully", f.Schema.Label, verb))
	if f.deps.Navigate != nil {
		route := f.Schema.AdminListRoute()
		f.deps.After(f.deps.NavigateDelay, func() { f.deps.Navigate(route) })
	}
	return nil
}

func (f *AdminForm) setBanner(k BannerKind, text string) {
	f.mu.Lock()
	f.banner = Banner{Kind: k, Text: text}
	f.mu.Unlock()
}

func (f *AdminForm) Banner() Banner {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.banner
}

func (f *AdminForm) CoverURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.coverURL
}
