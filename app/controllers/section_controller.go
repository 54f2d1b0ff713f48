package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/resolver"
)

// HandleSearch runs a full-text search over section titles, summaries
// and keywords, optionally scoped to one textbook.
func HandleSearch(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": `Query parameter "q" is required`,
		})
	}
	textbookSlug := c.Query("textbook")
	limit, _ := strconv.Atoi(c.Query("limit"))

	sections, err := newSectionRepo().Search(query, textbookSlug, limit)
	if err != nil {
		log.Errorf("[Search] query %q failed: %v", query, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Search failed",
		})
	}

	return c.JSON(fiber.Map{"sections": sections})
}

// HandleGetSection returns section metadata. Users without an
// entitlement get 402 with the purchase-relevant fields so a client can
// render a paywall.
func HandleGetSection(c *fiber.Ctx) error {
	resourceID := c.Params("resource_id")
	userID := c.Get("X-User-ID", "anonymous")

	section, err := newSectionRepo().GetByResourceID(resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Section not found",
			})
		}
		log.Errorf("[Section] lookup of %s failed: %v", resourceID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load section",
		})
	}

	hasAccess, err := getAccessService().HasAccess(userID, resourceID)
	if err != nil {
		log.Errorf("[Section] access check for %s/%s failed: %v", userID, resourceID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check access",
		})
	}

	if !hasAccess {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error": "Payment required",
			"section": fiber.Map{
				"resource_id":       section.ResourceID,
				"title":             section.Title,
				"currency_code":     section.CurrencyCode,
				"price_minor_units": section.PriceMinorUnits,
				"summary":           section.Summary,
				"mime_type":         section.MimeType,
				"size_bytes":        section.SizeBytes,
			},
		})
	}

	return c.JSON(fiber.Map{"section": section})
}

// HandleGetSectionContent serves the section bytes for entitled users.
// Inline content streams directly; R2 and external content return the
// pointer for the client to fetch.
func HandleGetSectionContent(c *fiber.Ctx) error {
	resourceID := c.Params("resource_id")
	userID := c.Query("user_id", "anonymous")
	isAdmin := c.Query("admin") == "true"

	if !isAdmin {
		hasAccess, err := getAccessService().HasAccess(userID, resourceID)
		if err != nil {
			log.Errorf("[Content] access check for %s/%s failed: %v", userID, resourceID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to check access",
			})
		}
		if !hasAccess {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Access denied",
			})
		}
	}

	section, err := newSectionRepo().GetByResourceID(resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Section not found",
			})
		}
		log.Errorf("[Content] lookup of %s failed: %v", resourceID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load section",
		})
	}

	content, err := resolver.Resolve(section)
	if err != nil {
		if errors.Is(err, resolver.ErrNoContent) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "No content available",
			})
		}
		log.Errorf("[Content] resolve of %s failed: %v", resourceID, err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Content not available",
		})
	}

	if content.IsInline() {
		c.Set(fiber.HeaderContentType, content.MimeType)
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", resourceID+".pdf"))
		c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
		return c.Send(content.Bytes)
	}

	if content.R2URL != "" {
		return c.JSON(fiber.Map{
			"r2_url":    content.R2URL,
			"mime_type": content.MimeType,
		})
	}

	return c.JSON(fiber.Map{
		"external_key": content.ExternalKey,
		"mime_type":    content.MimeType,
	})
}
