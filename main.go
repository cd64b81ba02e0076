package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"go.uber.org/zap"

	"edudirectory_backend/internals/configs"
	database "edudirectory_backend/internals/databases"
	authModel "edudirectory_backend/internals/features/auth/model"
	listingModel "edudirectory_backend/internals/features/listings/model"
	helper "edudirectory_backend/internals/helpers"
	"edudirectory_backend/internals/helpers/storage"
	"edudirectory_backend/internals/logger"
	middlewares "edudirectory_backend/internals/middlewares"
	routes "edudirectory_backend/internals/route"
	"edudirectory_backend/internals/seeds"
)

func main() {
	seed := flag.Bool("seed", false, "load seed data before serving")
	flag.Parse()

	if err := configs.LoadEnv(); err != nil {
		panic(err)
	}
	cfg := configs.Config
	if err := logger.Init(cfg.Log, cfg.App.Mode); err != nil {
		panic(err)
	}
	defer logger.Sync()

	app := fiber.New(fiber.Config{
		// 🚀 JSON
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          helper.FromFiberError,
		DisableStartupMessage: true,
		// cover + 6 gallery images at 5MB each, plus form fields
		BodyLimit:   40 * 1024 * 1024,
		ProxyHeader: fiber.HeaderXForwardedFor,
	})

	// ⚙️ performance
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())

	middlewares.SetupMiddlewares(app, middlewares.Options{
		AllowOrigins:   cfg.App.AllowOrigins,
		RequestTimeout: cfg.App.RequestTimeout,
	})

	// 🔌 DB connect + pool + migrate
	db, err := database.ConnectDB(cfg.DB)
	if err != nil {
		zap.L().Fatal("database", zap.Error(err))
	}
	database.TunePool(db, cfg.DB)
	models := append(listingModel.Models(), &authModel.AdminUserModel{})
	if err := database.Migrate(db, models...); err != nil {
		zap.L().Fatal("migrate", zap.Error(err))
	}
	database.WarmUpQueries(db)

	if *seed {
		if err := seeds.RunAllSeeds(db, cfg.App.SeedDir); err != nil {
			zap.L().Fatal("seed", zap.Error(err))
		}
	}

	// 🗂 blob storage + trash reaper
	store, err := storage.NewStoreFromConfig(cfg.Storage)
	if err != nil {
		zap.L().Fatal("storage", zap.Error(err))
	}
	uploader := storage.NewUploader(store, cfg.Storage.Prefix)
	reaper, err := storage.StartTrashReaper(db, uploader, storage.ReaperConfig{
		Schedule:  cfg.Trash.Schedule,
		Retention: cfg.Trash.Retention,
		Targets:   []storage.SoftDeleteTarget{{Table: "listings", Column: "deleted_at"}},
	})
	if err != nil {
		zap.L().Fatal("trash reaper", zap.Error(err))
	}

	if mem, ok := store.(*storage.MemoryStore); ok {
		app.Get("/storage/*", mem.Handler())
	}

	// ✅ Routes
	routes.SetupRoutes(app, routes.Deps{
		DB:        db,
		Uploader:  uploader,
		JWTSecret: configs.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
	})

	// 🔒 Keep-Alive & timeouts
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		zap.L().Info("✅ listening", zap.String("port", cfg.App.Port))
		if err := app.Listen("0.0.0.0:" + cfg.App.Port); err != nil {
			zap.L().Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown: stop cron, drain http, close pool
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("shutting down")

	<-reaper.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
	database.Close(db)
}
