package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/adlonymous/cf-ai-sliceread/app/models"
	"github.com/adlonymous/cf-ai-sliceread/app/repository"
	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/aisearch"
	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/resolver"
)

// HandleAISearch ranks a textbook's sections against a query using the
// model-backed relevance scorer.
func HandleAISearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": `Query parameter "q" is required`,
		})
	}
	textbookSlug := c.Query("textbook")
	if textbookSlug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Textbook parameter is required",
		})
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	results, total, err := getAISearchService().SearchContent(c.UserContext(), query, textbookSlug, limit)
	if err != nil {
		log.Errorf("[AI] search %q in %s failed: %v", query, textbookSlug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "AI Search failed",
		})
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"query":         query,
		"textbook":      textbookSlug,
		"results":       results,
		"total_results": total,
	})
}

// AIChatRequest is the chat payload. session_id groups turns into a
// conversation whose history feeds the next prompt.
type AIChatRequest struct {
	Message      string `json:"message"`
	TextbookSlug string `json:"textbook_slug"`
	SessionID    string `json:"session_id"`
}

// HandleAIChat answers a question about a textbook, grounded on the top
// search hits and the session's prior turns.
func HandleAIChat(c *fiber.Ctx) error {
	var req AIChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Message == "" || req.TextbookSlug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message and textbook_slug are required",
		})
	}

	svc := getAISearchService()
	results, total, err := svc.SearchContent(c.UserContext(), req.Message, req.TextbookSlug, 5)
	if err != nil {
		log.Errorf("[AI] chat search in %s failed: %v", req.TextbookSlug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "AI Chat failed",
		})
	}

	textbookTitle := req.TextbookSlug
	if textbook, err := repository.GetGlobalFactory().GetTextbookRepository().GetBySlug(req.TextbookSlug); err == nil {
		textbookTitle = textbook.Title
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "default"
	}

	history := aisearch.History(req.TextbookSlug, sessionID)
	answer, referenced := svc.GenerateAnswer(c.UserContext(), req.Message, results, textbookTitle, history)

	aisearch.AppendHistory(req.TextbookSlug, sessionID, "user", req.Message)
	aisearch.AppendHistory(req.TextbookSlug, sessionID, "assistant", answer)

	return c.JSON(fiber.Map{
		"success":              true,
		"response":             answer,
		"referenced_sections":  referenced,
		"search_results_count": total,
		"session_id":           sessionID,
	})
}

// HandleAIPDF serves the content of a section a chat answer referenced.
func HandleAIPDF(c *fiber.Ctx) error {
	resourceID := c.Params("resource_id")
	if resourceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Resource ID is required",
		})
	}

	section, err := newSectionRepo().GetByResourceID(resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Section not found",
			})
		}
		log.Errorf("[AI] section lookup of %s failed: %v", resourceID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "PDF Retrieval failed",
		})
	}

	content, err := resolver.Resolve(section)
	if err != nil {
		if errors.Is(err, resolver.ErrNoContent) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No content available for this section",
			})
		}
		log.Errorf("[AI] resolve of %s failed: %v", resourceID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "PDF Retrieval failed",
		})
	}

	if content.IsInline() {
		c.Set(fiber.HeaderContentType, content.MimeType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", resourceID+".pdf"))
		c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
		return c.Send(content.Bytes)
	}

	response := fiber.Map{
		"success":        true,
		"access_granted": true,
		"resource_id":    section.ResourceID,
		"title":          section.Title,
		"section_number": section.SectionNumber,
	}
	if content.R2URL != "" {
		response["storage_method"] = "r2"
		response["r2_url"] = content.R2URL
	} else {
		response["storage_method"] = models.StorageMethodExternal
		response["external_key"] = content.ExternalKey
	}
	return c.JSON(response)
}
