package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/adlonymous/cf-ai-sliceread/app/repository"
	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/cache"
	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/database"
	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/env"
	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/router"
	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/storage"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "0.0.0.0"), env.GetEnv("APP_PORT", "8787")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	repository.InitializeFactory(database.GetDB())
	cache.SetupCache()
	storage.Setup()

	app := fiber.New(fiber.Config{
		BodyLimit: 104857600, // 100 MiB, uploads above the inline ceiling pass through to R2
	})
	app.Use(recover.New(), logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
		AllowHeaders: "Content-Type, Authorization, X-User-ID",
	}))

	// ROUTER
	router.InstallRouter(app)

	return app
}
