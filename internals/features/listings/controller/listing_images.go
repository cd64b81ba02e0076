package controller

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/features/listings/model"
	"edudirectory_backend/internals/normalize"
)

// imageChange is the outcome of merging uploaded files with the kept URLs.
// trash holds URLs to retire once the row is saved; uploaded holds new URLs
// to retire if it is not.
type imageChange struct {
	cover    string
	photos   []string
	trash    []string
	uploaded []string
}

type imageError struct {
	status int
	msg    string
}

func (e *imageError) Error() string { return e.msg }

func (lc *ListingController) resolveImages(
	ctx context.Context,
	raw map[string]any,
	form *multipart.Form,
	existing *model.ListingModel,
) (*imageChange, error) {
	s := lc.Schema
	ch := &imageChange{}

	var prevCover string
	var prevPhotos []string
	if existing != nil {
		prevCover = existing.CoverImage
		prevPhotos = existing.Photos
	}

	kept := prevPhotos
	if v, ok := raw[catalog.FieldPhotos]; ok {
		kept = normalize.List(v)
	}
	newFiles := formFiles(form, catalog.FieldGalleryFiles)
	if len(kept)+len(newFiles) > catalog.GalleryCap {
		return nil, &imageError{fiber.StatusBadRequest, fmt.Sprintf("A maximum of %d gallery images is allowed", catalog.GalleryCap)}
	}

	coverFiles := formFiles(form, s.ImageKey, "image")
	all := append(append([]*multipart.FileHeader{}, coverFiles...), newFiles...)
	for _, fh := range all {
		if fh.Size > catalog.MaxUploadBytes {
			return nil, &imageError{fiber.StatusRequestEntityTooLarge, fmt.Sprintf("%s exceeds the 5MB limit", fh.Filename)}
		}
	}

	folder := s.PathSegment
	upload := func(fh *multipart.FileHeader) (string, error) {
		url, err := lc.Uploader.UploadImage(ctx, folder, fh)
		if err != nil {
			lc.Uploader.TrashAll(ctx, ch.uploaded...)
			return "", &imageError{uploadStatus(err), fmt.Sprintf("%s: %v", fh.Filename, err)}
		}
		ch.uploaded = append(ch.uploaded, url)
		return url, nil
	}

	ch.cover = prevCover
	if len(coverFiles) > 0 {
		url, err := upload(coverFiles[0])
		if err != nil {
			return nil, err
		}
		ch.cover = url
	} else if v, ok := raw[s.ImageKey]; ok {
		ch.cover = normalize.String(v)
	}
	if prevCover != "" && prevCover != ch.cover {
		ch.trash = append(ch.trash, prevCover)
	}

	ch.photos = append([]string{}, kept...)
	for _, fh := range newFiles {
		url, err := upload(fh)
		if err != nil {
			return nil, err
		}
		ch.photos = append(ch.photos, url)
	}

	keep := make(map[string]bool, len(kept))
	for _, u := range kept {
		keep[u] = true
	}
	for _, u := range prevPhotos {
		if !keep[u] {
			ch.trash = append(ch.trash, u)
		}
	}
	return ch, nil
}

// commit retires replaced images after a successful save.
func (lc *ListingController) commitImages(ctx context.Context, ch *imageChange) {
	if len(ch.trash) == 0 {
		return
	}
	lc.Uploader.TrashAll(ctx, ch.trash...)
	zap.L().Debug("listing images retired",
		zap.String("kind", string(lc.Schema.Kind)),
		zap.Int("count", len(ch.trash)))
}

// rollback retires freshly uploaded images after a failed save.
func (lc *ListingController) rollbackImages(ctx context.Context, ch *imageChange) {
	lc.Uploader.TrashAll(ctx, ch.uploaded...)
}
