package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"edudirectory_backend/internals/catalog"
	"edudirectory_backend/internals/constants"
	authRepo "edudirectory_backend/internals/features/auth/repository"
	"edudirectory_backend/internals/features/listings/controller"
	"edudirectory_backend/internals/helpers/storage"
	"edudirectory_backend/internals/middlewares"
	authMiddleware "edudirectory_backend/internals/middlewares/auth"
)

// ListingRoutes mounts the public and admin endpoints of every kind.
// Paths are absolute; see catalog.Schema for the layout.
func ListingRoutes(app fiber.Router, db *gorm.DB, up *storage.Uploader, secret string) {
	admin := []fiber.Handler{
		authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
			Secret:     secret,
			UserActive: authRepo.IsUserActive(db),
		}),
		authMiddleware.OnlyRoles(constants.RoleErrorManager("manage listings"), constants.ManagerRoles...),
	}
	reviewLimit := middlewares.ReviewRateLimiter()

	for _, s := range catalog.All() {
		mountKind(app, db, up, s, admin, reviewLimit)
	}
}

func mountKind(app fiber.Router, db *gorm.DB, up *storage.Uploader, s *catalog.Schema, admin []fiber.Handler, reviewLimit fiber.Handler) {
	lc := controller.NewListingController(db, s, up)
	rc := controller.NewReviewController(db, s)
	tc := controller.NewListingTypeController(db, s)

	guarded := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, admin...), h)
	}

	// 📖 public
	app.Get(s.ListPath(), lc.GetAll)
	app.Get(s.ItemPath(":id"), lc.GetByID)
	app.Get(s.SearchPath(), lc.Search)
	app.Get(s.TypesPath(), tc.List)

	reviews := s.ReviewsPath(":id")
	app.Get(reviews, rc.List)
	app.Post(reviews, reviewLimit, rc.Create)
	app.Put(reviews+"/:reviewId/like", reviewLimit, rc.Like)
	app.Put(reviews+"/:reviewId/dislike", reviewLimit, rc.Dislike)

	// 🔐 admin
	app.Post(s.CreatePath(), guarded(lc.Create)...)
	app.Put(s.UpdatePath(":id"), guarded(lc.Update)...)
	app.Delete(s.DeletePath(":id"), guarded(lc.Delete)...)
	app.Post(s.TypesPath(), guarded(tc.Create)...)
	app.Delete(s.TypesPath()+"/:id", guarded(tc.Delete)...)
}
