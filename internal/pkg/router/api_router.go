package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/adlonymous/cf-ai-sliceread/app/controllers"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	app.Get("/", controllers.HandleIndex)

	// Search and section access
	app.Get("/search", controllers.HandleSearch)
	app.Get("/section/:resource_id", controllers.HandleGetSection)
	app.Get("/section/:resource_id/content", controllers.HandleGetSectionContent)

	// Payment ledger
	app.Post("/payment", controllers.HandlePayment)
	app.Get("/user/:id/sections", controllers.HandleUserSections)
	app.Get("/user/:id/payments", controllers.HandleUserPayments)

	// Textbook catalog
	app.Get("/textbook/:slug", controllers.HandleGetTextbook)
	app.Get("/textbook/:slug/sections", controllers.HandleTextbookSections)

	// AI search and chat
	app.Get("/ai/search", controllers.HandleAISearch)
	app.Post("/ai/chat", controllers.HandleAIChat)
	app.Get("/ai/pdf/:resource_id", controllers.HandleAIPDF)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
