package controller

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/features/listings/dto"
	"edudirectory_backend/internals/features/listings/model"
	helper "edudirectory_backend/internals/helpers"
	"edudirectory_backend/internals/helpers/storage"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// ListingController serves one kind; routes mount one per schema.
type ListingController struct {
	DB       *gorm.DB
	Schema   *catalog.Schema
	Uploader *storage.Uploader
}

func NewListingController(db *gorm.DB, s *catalog.Schema, up *storage.Uploader) *ListingController {
	return &ListingController{DB: db, Schema: s, Uploader: up}
}

func (lc *ListingController) kind() string { return string(lc.Schema.Kind) }

func (lc *ListingController) list(c *fiber.Ctx, q *gorm.DB) error {
	var total int64
	if err := q.Session(&gorm.Session{}).Model(&model.ListingModel{}).Count(&total).Error; err != nil {
		zap.L().Error("count listings", zap.String("kind", lc.kind()), zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch data")
	}

	p := helper.ResolvePaging(c, defaultPerPage, maxPerPage)
	q = q.Order("created_at DESC").Order("id DESC")
	if p.Requested {
		q = q.Offset(p.Offset).Limit(p.Limit)
	}

	var rows []model.ListingModel
	if err := q.Find(&rows).Error; err != nil {
		zap.L().Error("list listings", zap.String("kind", lc.kind()), zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch data")
	}

	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	if !p.Requested {
		pg = helper.BuildPaginationFromPage(total, 1, max(int(total), 1))
	}
	return helper.JsonList(c, "", dto.NewListingResponses(rows, lc.Schema), &pg)
}

// GET /admin/get{X}
func (lc *ListingController) GetAll(c *fiber.Ctx) error {
	q := lc.DB.WithContext(c.UserContext()).Where("kind = ?", lc.kind())
	return lc.list(c, q)
}

// GET /admin/search/{X}?city=&name=&type=
func (lc *ListingController) Search(c *fiber.Ctx) error {
	var f dto.ListingFilter
	if err := c.QueryParser(&f); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid query")
	}

	q := lc.DB.WithContext(c.UserContext()).Where("kind = ?", lc.kind())
	if s := strings.TrimSpace(f.City); s != "" {
		q = q.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if s := strings.TrimSpace(f.Name); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if s := strings.TrimSpace(f.Type); s != "" {
		q = q.Where("LOWER(type) = ?", strings.ToLower(s))
	}
	return lc.list(c, q)
}

// GET /admin/get{X}/:id
func (lc *ListingController) GetByID(c *fiber.Ctx) error {
	m, err := findListing(c.UserContext(), lc.DB, lc.kind(), c.Params("id"))
	if err != nil {
		if helper.IsNotFound(err) {
			return helper.JsonError(c, fiber.StatusNotFound, lc.Schema.Label+" not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch data")
	}
	return helper.JsonOK(c, "", dto.NewListingResponse(m, lc.Schema))
}

// POST /admin/add{X}
func (lc *ListingController) Create(c *fiber.Ctx) error {
	raw, form, err := readForm(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req := dto.NewListingRequest(raw, lc.Schema)
	if errs := validateListing(&req, lc.Schema, true); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	ctx := c.UserContext()
	images, err := lc.resolveImages(ctx, raw, form, nil)
	if err != nil {
		return imageFailure(c, err)
	}

	m := model.ListingModel{Kind: lc.kind()}
	req.ApplyTo(&m)
	m.CoverImage = images.cover
	m.Photos = model.StringList(images.photos)

	slug, err := lc.uniqueSlug(ctx, &m)
	if err != nil {
		lc.rollbackImages(ctx, images)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to generate slug")
	}
	m.Slug = slug

	if err := lc.DB.WithContext(ctx).Create(&m).Error; err != nil {
		lc.rollbackImages(ctx, images)
		zap.L().Error("create listing", zap.String("kind", lc.kind()), zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to save "+lc.Schema.Label)
	}

	zap.L().Info("listing created", zap.String("kind", m.Kind), zap.String("id", m.ID.String()))
	return helper.JsonCreated(c, lc.Schema.Label+" created", dto.NewListingResponse(&m, lc.Schema))
}

// PUT /admin/update{X}/:id
func (lc *ListingController) Update(c *fiber.Ctx) error {
	ctx := c.UserContext()
	m, err := findListing(ctx, lc.DB, lc.kind(), c.Params("id"))
	if err != nil {
		if helper.IsNotFound(err) {
			return helper.JsonError(c, fiber.StatusNotFound, lc.Schema.Label+" not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch data")
	}

	raw, form, err := readForm(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req := dto.NewListingRequest(raw, lc.Schema)
	if errs := validateListing(&req, lc.Schema, false); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	images, err := lc.resolveImages(ctx, raw, form, m)
	if err != nil {
		return imageFailure(c, err)
	}

	req.ApplyTo(m)
	m.CoverImage = images.cover
	m.Photos = model.StringList(images.photos)

	if req.Has(catalog.FieldName) || req.Has(catalog.FieldCity) {
		slug, err := lc.uniqueSlug(ctx, m)
		if err != nil {
			lc.rollbackImages(ctx, images)
			return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to generate slug")
		}
		m.Slug = slug
	}

	// review_count and rating_sum belong to the review endpoints
	err = lc.DB.WithContext(ctx).Model(m).
		Select("*").
		Omit("id", "kind", "review_count", "rating_sum", "created_at", "deleted_at").
		Updates(m).Error
	if err != nil {
		lc.rollbackImages(ctx, images)
		zap.L().Error("update listing", zap.String("id", m.ID.String()), zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update "+lc.Schema.Label)
	}
	lc.commitImages(ctx, images)

	fresh, err := findListing(ctx, lc.DB, lc.kind(), m.ID.String())
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch data")
	}
	return helper.JsonUpdated(c, lc.Schema.Label+" updated", dto.NewListingResponse(fresh, lc.Schema))
}

// uniqueSlug derives the slug from name and city, unique per kind among
// live rows other than m itself.
func (lc *ListingController) uniqueSlug(ctx context.Context, m *model.ListingModel) (string, error) {
	return helper.EnsureUniqueSlugCI(ctx, lc.DB, "listings", "slug",
		helper.Slugify(m.Name+" "+m.City, helper.DefaultSlugMaxLen),
		func(q *gorm.DB) *gorm.DB {
			q = q.Where("kind = ? AND deleted_at IS NULL", m.Kind)
			if m.ID != uuid.Nil {
				q = q.Where("id <> ?", m.ID)
			}
			return q
		},
		helper.DefaultSlugMaxLen)
}

// DELETE /admin/del-{X}/:id
func (lc *ListingController) Delete(c *fiber.Ctx) error {
	ctx := c.UserContext()
	m, err := findListing(ctx, lc.DB, lc.kind(), c.Params("id"))
	if err != nil {
		if helper.IsNotFound(err) {
			return helper.JsonError(c, fiber.StatusNotFound, lc.Schema.Label+" not found")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch data")
	}

	err = lc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", m.ID).Delete(&model.ReviewModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
	if err != nil {
		zap.L().Error("delete listing", zap.String("id", m.ID.String()), zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete "+lc.Schema.Label)
	}

	lc.Uploader.TrashAll(ctx, append([]string{m.CoverImage}, m.Photos...)...)
	return helper.JsonDeleted(c, lc.Schema.Label+" deleted", fiber.Map{"id": m.ID})
}

func validateListing(req *dto.ListingRequest, s *catalog.Schema, creating bool) map[string][]string {
	errs := helper.ValidateStruct(req)
	for f, msgs := range req.MissingRequired(s, creating) {
		if errs == nil {
			errs = map[string][]string{}
		}
		errs[f] = append(errs[f], msgs...)
	}
	return errs
}

func imageFailure(c *fiber.Ctx, err error) error {
	var ie *imageError
	if errors.As(err, &ie) {
		return helper.JsonError(c, ie.status, ie.msg)
	}
	return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to process images")
}
