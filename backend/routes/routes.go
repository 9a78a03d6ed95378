package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"roadmaptracker/backend/catalog"
	"roadmaptracker/backend/config"
	"roadmaptracker/backend/controllers"
	"roadmaptracker/backend/middleware"
	"roadmaptracker/backend/store"
	"roadmaptracker/backend/utils"
)

// Dependencies are shared by every controller. Now defaults to time.Now.
type Dependencies struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Store   store.ProgressStore
	Logger  *zap.Logger
	Catalog *catalog.Catalog
	Now     func() time.Time
}

// NewApp builds the Fiber app with global middleware and all routes mounted.
func NewApp(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "roadmap-tracker",
		ErrorHandler: utils.ErrorHandler,
		// Multipart overhead on top of the largest accepted image.
		BodyLimit: deps.Cfg.MaxUploadBytes + 64*1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(deps.Logger))
	app.Use(middleware.MetricsMiddleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Static("/static/profile_images", deps.Cfg.UploadDir)

	SetupRoutes(app, deps)
	return app
}

func SetupRoutes(app *fiber.App, deps Dependencies) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	db, cfg, logger := deps.DB, deps.Cfg, deps.Logger

	authMiddleware := middleware.AuthMiddleware(db, cfg)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, logger)
	authController.Now = now
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Post("/api/auth/logout", authMiddleware, authController.Logout)

	// User routes
	userController := controllers.NewUserController(db, cfg, logger)
	user := app.Group("/api/user", authMiddleware)
	user.Get("/profile", userController.GetProfile)
	user.Put("/profile", userController.UpdateProfile)
	user.Put("/password", userController.ChangePassword)
	user.Post("/profile/image", userController.UploadProfileImage)

	// Roadmap routes
	roadmapController := controllers.NewRoadmapController(db, cfg, logger, deps.Catalog)
	roadmapController.Now = now
	roadmaps := app.Group("/api/roadmaps", authMiddleware)
	roadmaps.Get("/", roadmapController.ListRoadmaps)
	roadmaps.Get("/roles", roadmapController.ListRoles)
	roadmaps.Post("/generate", roadmapController.GenerateRoadmap)
	roadmaps.Get("/role/:role", roadmapController.GetRoadmap)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg, deps.Store, logger)
	progressController.Now = now
	app.Get("/api/progress", authMiddleware, progressController.GetDocument)
	app.Post("/api/progress/steps", authMiddleware, progressController.ToggleStep)
	app.Get("/api/progress/steps", authMiddleware, progressController.GetStep)

	// Activity routes
	activityController := controllers.NewActivityController(db, cfg, deps.Store, logger)
	activityController.Now = now
	app.Get("/api/activity", authMiddleware, activityController.GetActivity)
}
