package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/adlonymous/cf-ai-sliceread/app/controllers"
)

type AdminRouter struct {
}

func (h AdminRouter) InstallRouter(app *fiber.App) {
	// Initialize admin storage controller with the tiering service
	controllers.InitializeAdminStorageController()

	adminGroup := app.Group("/admin", limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
	}))

	// Content ingestion and catalog management
	adminGroup.Post("/upload", controllers.HandleAdminUpload)
	adminGroup.Post("/textbooks", controllers.HandleAdminCreateTextbook)
	adminGroup.Get("/textbooks", controllers.HandleAdminListTextbooks)
	adminGroup.Get("/textbooks/:slug/sections", controllers.HandleAdminListSections)

	// Storage management
	storageController := controllers.GetAdminStorageController()
	adminGroup.Post("/migrate-to-r2", storageController.HandleMigrateToR2)
	adminGroup.Get("/storage-analysis", storageController.HandleStorageAnalysis)
	adminGroup.Post("/optimize-storage", storageController.HandleOptimizeStorage)
	adminGroup.Post("/cleanup-orphaned", storageController.HandleCleanupOrphaned)
}

func NewAdminRouter() *AdminRouter {
	return &AdminRouter{}
}
