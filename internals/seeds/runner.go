package seeds

import (
	"path/filepath"

	"gorm.io/gorm"

	admins "edudirectory_backend/internals/seeds/auth_admins"
	listings "edudirectory_backend/internals/seeds/listings/listings"
	types "edudirectory_backend/internals/seeds/listings/types"
)

// RunAllSeeds loads every seed file under dir. Seeds are idempotent.
func RunAllSeeds(db *gorm.DB, dir string) error {
	//* Admin
	if err := admins.SeedAdminUsersFromJSON(db, filepath.Join(dir, "data_admin_users.json")); err != nil {
		return err
	}

	//* Listings
	if err := types.SeedListingTypesFromJSON(db, filepath.Join(dir, "data_listing_types.json")); err != nil {
		return err
	}
	return listings.SeedListingsFromJSON(db, filepath.Join(dir, "data_listings.json"))
}
