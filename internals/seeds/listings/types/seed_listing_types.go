package types

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/features/listings/dto"
	"edudirectory_backend/internals/features/listings/model"
)

// seed file shape: {"college": ["Engineering", "Medical"], ...}
func SeedListingTypesFromJSON(db *gorm.DB, filePath string) error {
	zap.L().Info("📥 reading listing type seed", zap.String("file", filePath))

	file, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", filePath, err)
	}
	var byKind map[string][]string
	if err := sonic.Unmarshal(file, &byKind); err != nil {
		return fmt.Errorf("decode %s: %w", filePath, err)
	}

	inserted := 0
	for kind, names := range byKind {
		if _, err := catalog.Lookup(catalog.Kind(kind)); err != nil {
			return err
		}
		for _, name := range names {
			m := dto.CreateListingTypeRequest{Name: name}.ToModel(kind)
			var count int64
			if err := db.Model(&model.ListingTypeModel{}).
				Where("kind = ? AND name_key = ?", m.Kind, m.NameKey).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			if err := db.Create(&m).Error; err != nil {
				return fmt.Errorf("insert type %s/%s: %w", kind, name, err)
			}
			inserted++
		}
	}
	zap.L().Info("✅ listing types seeded", zap.Int("inserted", inserted))
	return nil
}
