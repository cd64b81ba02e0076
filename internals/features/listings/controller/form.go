package controller

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"edudirectory_backend/internals/features/listings/model"
	"edudirectory_backend/internals/helpers/storage"
)

var errEmptyBody = errors.New("empty body")

// readForm flattens a multipart or JSON body into field -> value. Repeated
// multipart keys (or keys ending in []) become lists.
func readForm(c *fiber.Ctx) (map[string]any, *multipart.Form, error) {
	ct := strings.ToLower(string(c.Request().Header.ContentType()))
	if strings.HasPrefix(ct, fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return nil, nil, err
		}
		raw := make(map[string]any, len(form.Value))
		for k, vs := range form.Value {
			key := strings.TrimSuffix(k, "[]")
			if len(vs) == 1 && key == k {
				raw[key] = vs[0]
				continue
			}
			list := make([]any, 0, len(vs))
			for _, v := range vs {
				list = append(list, v)
			}
			raw[key] = list
		}
		return raw, form, nil
	}

	body := c.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil, errEmptyBody
	}
	var raw map[string]any
	if err := c.App().Config().JSONDecoder(body, &raw); err != nil {
		return nil, nil, err
	}
	if raw == nil {
		return nil, nil, errEmptyBody
	}
	return raw, nil, nil
}

func formFiles(form *multipart.Form, keys ...string) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	var out []*multipart.FileHeader
	for _, k := range keys {
		out = append(out, form.File[k]...)
		out = append(out, form.File[k+"[]"]...)
	}
	return out
}

func uploadStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, storage.ErrUnsupportedFormat):
		return fiber.StatusUnsupportedMediaType
	case errors.Is(err, storage.ErrEmptyFile):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// findListing resolves an id or, failing UUID parsing, a slug.
func findListing(ctx context.Context, db *gorm.DB, kind, idOrSlug string) (*model.ListingModel, error) {
	var m model.ListingModel
	q := db.WithContext(ctx).Where("kind = ?", kind)
	if id, err := uuid.Parse(strings.TrimSpace(idOrSlug)); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("LOWER(slug) = ?", strings.ToLower(strings.TrimSpace(idOrSlug)))
	}
	if err := q.First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}
