package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/adlonymous/cf-ai-sliceread/app/repository"
	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/access"
	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/aisearch"
	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/database"
	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/storage"
	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/tiering"
)

// newSectionRepo returns the shared section repository instance
func newSectionRepo() repository.SectionRepository {
	return repository.GetGlobalFactory().GetSectionRepository()
}

// getAccessService builds the access/ledger service on the global DB handle
func getAccessService() *access.Service {
	return access.NewService(database.GetDB())
}

// getTieringService builds the tiering service; the object store is nil
// when the R2 tier is disabled and the service runs inline-only
func getTieringService() *tiering.Service {
	var store tiering.ObjectStore
	if client := storage.GetClient(); client != nil {
		store = client
	}
	return tiering.NewService(newSectionRepo(), store)
}

// getAISearchService builds the AI search service with the Workers AI client
func getAISearchService() *aisearch.Service {
	return aisearch.NewService(database.GetDB(), aisearch.NewClientFromEnv())
}

// HandleIndex lists the available endpoints
func HandleIndex(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Fractional Document Unlock API",
		"endpoints": []string{
			"GET /search?q=query&textbook=slug - Search sections",
			"GET /section/:resource_id - Get section metadata",
			"GET /section/:resource_id/content - Get section content (PDF)",
			"POST /payment - Record payment and grant access",
			"GET /user/:id/sections - Get user's accessible sections",
			"GET /user/:id/payments - Get user's payment history",
			"GET /textbook/:slug - Get textbook info",
			"GET /textbook/:slug/sections - Get all sections in textbook",
			"",
			"Admin Endpoints:",
			"POST /admin/upload - Upload PDF section",
			"POST /admin/textbooks - Create new textbook",
			"GET /admin/textbooks - List all textbooks",
			"GET /admin/textbooks/:slug/sections - List sections for textbook",
			"POST /admin/migrate-to-r2 - Migrate inline blobs to R2",
			"GET /admin/storage-analysis - Storage usage analysis",
			"POST /admin/optimize-storage - Threshold-based migration sweep",
			"POST /admin/cleanup-orphaned - Delete unreferenced R2 objects",
			"",
			"AI Endpoints:",
			"GET /ai/search?q=query&textbook=slug - AI-ranked section search",
			"POST /ai/chat - Chat with textbook context",
			"GET /ai/pdf/:resource_id - Retrieve referenced section content",
		},
	})
}
