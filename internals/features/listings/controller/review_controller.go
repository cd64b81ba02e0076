package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/features/listings/dto"
	"edudirectory_backend/internals/features/listings/model"
	helper "edudirectory_backend/internals/helpers"
)

type ReviewController struct {
	DB     *gorm.DB
	Schema *catalog.Schema
}

func NewReviewController(db *gorm.DB, s *catalog.Schema) *ReviewController {
	return &ReviewController{DB: db, Schema: s}
}

func (rc *ReviewController) listing(c *fiber.Ctx) (*model.ListingModel, error) {
	m, err := findListing(c.UserContext(), rc.DB, string(rc.Schema.Kind), c.Params("id"))
	if err != nil {
		if helper.IsNotFound(err) {
			return nil, helper.JsonError(c, fiber.StatusNotFound, rc.Schema.Label+" not found")
		}
		return nil, helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch data")
	}
	return m, nil
}

// GET /{X}/:id/reviews
func (rc *ReviewController) List(c *fiber.Ctx) error {
	l, err := rc.listing(c)
	if l == nil {
		return err
	}
	var rows []model.ReviewModel
	if err := rc.DB.WithContext(c.UserContext()).
		Where("listing_id = ?", l.ID).
		Order("created_at DESC").Order("id DESC").
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch reviews")
	}
	return helper.JsonOK(c, "", dto.NewReviewResponses(rows))
}

// POST /{X}/:id/reviews
func (rc *ReviewController) Create(c *fiber.Ctx) error {
	l, err := rc.listing(c)
	if l == nil {
		return err
	}

	var req dto.CreateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.ValidateStruct(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	review := req.ToModel(l.ID)
	err = rc.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return tx.Model(&model.ListingModel{}).
			Where("id = ?", l.ID).
			UpdateColumns(map[string]any{
				"review_count": gorm.Expr("review_count + 1"),
				"rating_sum":   gorm.Expr("rating_sum + ?", review.Rating),
			}).Error
	})
	if err != nil {
		zap.L().Error("create review", zap.String("listing", l.ID.String()), zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to save review")
	}
	return helper.JsonCreated(c, "Review added", dto.NewReviewResponse(&review))
}

// PUT /{X}/:id/reviews/:reviewId/like
func (rc *ReviewController) Like(c *fiber.Ctx) error {
	return rc.bump(c, "likes")
}

// PUT /{X}/:id/reviews/:reviewId/dislike
func (rc *ReviewController) Dislike(c *fiber.Ctx) error {
	return rc.bump(c, "dislikes")
}

func (rc *ReviewController) bump(c *fiber.Ctx, column string) error {
	l, err := rc.listing(c)
	if l == nil {
		return err
	}
	rid, err := uuid.Parse(c.Params("reviewId"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid review ID")
	}

	db := rc.DB.WithContext(c.UserContext())
	res := db.Model(&model.ReviewModel{}).
		Where("id = ? AND listing_id = ?", rid, l.ID).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update review")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Review not found")
	}

	var review model.ReviewModel
	if err := db.First(&review, "id = ?", rid).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch review")
	}
	return helper.JsonUpdated(c, "", dto.NewReviewResponse(&review))
}
