package listings

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/features/listings/dto"
	"edudirectory_backend/internals/features/listings/model"
	helper "edudirectory_backend/internals/helpers"
	"edudirectory_backend/internals/normalize"
)

// Each entry is a listing in wire form plus "kind". Values may use the
// same loose shapes the admin form sends (comma lists, JSON strings).
func SeedListingsFromJSON(db *gorm.DB, filePath string) error {
	zap.L().Info("📥 reading listing seed", zap.String("file", filePath))

	file, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", filePath, err)
	}
	var entries []map[string]any
	if err := sonic.Unmarshal(file, &entries); err != nil {
		return fmt.Errorf("decode %s: %w", filePath, err)
	}

	inserted := 0
	for i, raw := range entries {
		s, err := catalog.Lookup(catalog.Kind(normalize.String(raw["kind"])))
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		req := dto.NewListingRequest(raw, s)
		if missing := req.MissingRequired(s, true); missing != nil {
			return fmt.Errorf("entry %d: missing %v", i, missing)
		}

		m := model.ListingModel{Kind: string(s.Kind)}
		req.ApplyTo(&m)
		m.Slug = helper.Slugify(m.Name+" "+m.City, helper.DefaultSlugMaxLen)
		m.CoverImage = normalize.String(raw[s.ImageKey])
		m.Photos = model.StringList(normalize.List(raw[catalog.FieldPhotos]))
		if len(m.Photos) > catalog.GalleryCap {
			m.Photos = m.Photos[:catalog.GalleryCap]
		}

		var count int64
		if err := db.Model(&model.ListingModel{}).
			Where("kind = ? AND slug = ?", m.Kind, m.Slug).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&m).Error; err != nil {
			return fmt.Errorf("insert %s %q: %w", m.Kind, m.Name, err)
		}
		inserted++
	}
	zap.L().Info("✅ listings seeded", zap.Int("inserted", inserted))
	return nil
}
