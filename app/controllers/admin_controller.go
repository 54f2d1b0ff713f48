package controllers

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/adlonymous/cf-ai-sliceread/app/models"
	"github.com/adlonymous/cf-ai-sliceread/app/repository"
	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/tiering"
)

// titleFromFilename derives the section title from an uploaded filename,
// e.g. "Introduction_to_Blockchain.pdf" becomes "Introduction to Blockchain".
func titleFromFilename(filename string) string {
	title := filename
	if strings.HasSuffix(strings.ToLower(title), ".pdf") {
		title = title[:len(title)-len(".pdf")]
	}
	return strings.ReplaceAll(title, "_", " ")
}

// HandleAdminUpload ingests one PDF as a section. Placement is decided
// by size: small files are stored inline, larger ones go to R2 when the
// tier is configured. Re-uploading the same slug/number pair replaces
// the existing section.
func HandleAdminUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No PDF file provided",
		})
	}

	textbookSlug := c.FormValue("textbook_slug")
	if textbookSlug == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "textbook_slug is required",
		})
	}

	sectionNumber, _ := strconv.Atoi(c.FormValue("section_number"))
	if sectionNumber <= 0 {
		sectionNumber = 1
	}
	priceMinorUnits, _ := strconv.ParseInt(c.FormValue("price_minor_units"), 10, 64)
	if priceMinorUnits <= 0 {
		priceMinorUnits = 1000
	}

	textbook, err := repository.GetGlobalFactory().GetTextbookRepository().GetBySlug(textbookSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Textbook not found",
			})
		}
		log.Errorf("[Admin] textbook lookup of %s failed: %v", textbookSlug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Upload failed",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to read uploaded file",
		})
	}

	title := titleFromFilename(fileHeader.Filename)
	resourceID := models.BuildResourceID(textbookSlug, sectionNumber)

	placement, err := getTieringService().PlaceContent(raw, textbookSlug, resourceID)
	if err != nil {
		if errors.Is(err, tiering.ErrPayloadTooLarge) {
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error":      "File too large",
				"message":    fmt.Sprintf("File size (%.2fMB) exceeds the 1MB inline limit and no object storage is configured.", float64(len(raw))/1024/1024),
				"maxSize":    tiering.InlineThresholdBytes,
				"actualSize": len(raw),
			})
		}
		log.Errorf("[Admin] placing content for %s failed: %v", resourceID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Upload failed",
		})
	}

	section := &models.Section{
		TextbookID:      textbook.ID,
		SectionNumber:   sectionNumber,
		ResourceID:      resourceID,
		Title:           title,
		PdfBlob:         placement.PdfBlob,
		R2Key:           placement.R2Key,
		R2URL:           placement.R2URL,
		CurrencyCode:    models.DefaultCurrencyCode,
		PriceMinorUnits: priceMinorUnits,
		MimeType:        "application/pdf",
		SizeBytes:       placement.SizeBytes,
		SHA256:          placement.SHA256,
		Summary:         fmt.Sprintf("Uploaded PDF section: %s", title),
		Keywords:        fmt.Sprintf("pdf, %s, section-%d", textbookSlug, sectionNumber),
	}

	factory := repository.GetGlobalFactory()
	if err := factory.GetSectionRepository().Upsert(section); err != nil {
		log.Errorf("[Admin] upserting section %s failed: %v", resourceID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Upload failed",
		})
	}
	if err := factory.GetTextbookRepository().RecalculateTotalSections(textbook.ID); err != nil {
		log.Errorf("[Admin] recalculating section count for %s failed: %v", textbookSlug, err)
	}

	response := fiber.Map{
		"resource_id":       resourceID,
		"title":             title,
		"section_number":    sectionNumber,
		"textbook_slug":     textbookSlug,
		"size_bytes":        placement.SizeBytes,
		"sha256":            placement.SHA256,
		"price_minor_units": priceMinorUnits,
		"currency_code":     models.DefaultCurrencyCode,
		"storage_method":    placement.Method,
	}
	if placement.R2URL != nil {
		response["r2_url"] = *placement.R2URL
	}

	return c.JSON(fiber.Map{
		"success": true,
		"section": response,
	})
}

// AdminTextbookRequest is the create-textbook payload.
type AdminTextbookRequest struct {
	Slug        string `json:"slug" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// HandleAdminCreateTextbook creates a textbook shell sections are later
// uploaded into.
func HandleAdminCreateTextbook(c *fiber.Ctx) error {
	var req AdminTextbookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := paymentValidate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "slug and title are required",
		})
	}

	textbookRepo := repository.GetGlobalFactory().GetTextbookRepository()

	exists, err := textbookRepo.SlugExists(req.Slug)
	if err != nil {
		log.Errorf("[Admin] slug check for %s failed: %v", req.Slug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create textbook",
		})
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Textbook with this slug already exists",
		})
	}

	textbook := &models.Textbook{
		Slug:  req.Slug,
		Title: req.Title,
	}
	if req.Author != "" {
		textbook.Author = &req.Author
	}
	if req.Description != "" {
		textbook.Description = &req.Description
	}

	if err := textbookRepo.Create(textbook); err != nil {
		log.Errorf("[Admin] creating textbook %s failed: %v", req.Slug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create textbook",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"textbook": textbook,
	})
}

// HandleAdminListTextbooks lists all textbooks with live section counts.
func HandleAdminListTextbooks(c *fiber.Ctx) error {
	textbooks, err := repository.GetGlobalFactory().GetTextbookRepository().ListWithSectionCounts()
	if err != nil {
		log.Errorf("[Admin] listing textbooks failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list textbooks",
		})
	}

	return c.JSON(fiber.Map{"textbooks": textbooks})
}

// HandleAdminListSections lists a textbook's sections for the admin UI.
func HandleAdminListSections(c *fiber.Ctx) error {
	slug := c.Params("slug")

	sections, err := newSectionRepo().ListByTextbookSlug(slug)
	if err != nil {
		log.Errorf("[Admin] listing sections of %s failed: %v", slug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list sections",
		})
	}

	return c.JSON(fiber.Map{"sections": sections})
}
