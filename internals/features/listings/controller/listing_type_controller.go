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

type ListingTypeController struct {
	DB     *gorm.DB
	Schema *catalog.Schema
}

func NewListingTypeController(db *gorm.DB, s *catalog.Schema) *ListingTypeController {
	return &ListingTypeController{DB: db, Schema: s}
}

// GET /admin/{X}-types
func (tc *ListingTypeController) List(c *fiber.Ctx) error {
	var rows []model.ListingTypeModel
	if err := tc.DB.WithContext(c.UserContext()).
		Where("kind = ?", string(tc.Schema.Kind)).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to fetch types")
	}
	return helper.JsonOK(c, "", dto.NewListingTypeResponses(rows))
}

// POST /admin/{X}-types
func (tc *ListingTypeController) Create(c *fiber.Ctx) error {
	var req dto.CreateListingTypeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := helper.ValidateStruct(req); errs != nil {
		return helper.JsonValidationError(c, errs)
	}

	m := req.ToModel(string(tc.Schema.Kind))
	if err := tc.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonError(c, fiber.StatusConflict, "Type already exists")
		}
		zap.L().Error("create type", zap.String("kind", m.Kind), zap.Error(err))
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to save type")
	}
	return helper.JsonCreated(c, "Type added", dto.ListingTypeResponse{ID: m.ID, Name: m.Name, Kind: m.Kind})
}

// DELETE /admin/{X}-types/:id
func (tc *ListingTypeController) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid type ID")
	}
	res := tc.DB.WithContext(c.UserContext()).
		Where("id = ? AND kind = ?", id, string(tc.Schema.Kind)).
		Delete(&model.ListingTypeModel{})
	if res.Error != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to delete type")
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Type not found")
	}
	return helper.JsonDeleted(c, "Type deleted", fiber.Map{"id": id})
}
