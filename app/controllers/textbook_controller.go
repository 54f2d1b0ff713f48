package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/adlonymous/cf-ai-sliceread/app/repository"
)

// HandleGetTextbook returns one textbook by slug.
func HandleGetTextbook(c *fiber.Ctx) error {
	slug := c.Params("slug")

	textbook, err := repository.GetGlobalFactory().GetTextbookRepository().GetBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Textbook not found",
			})
		}
		log.Errorf("[Textbook] lookup of %s failed: %v", slug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load textbook",
		})
	}

	return c.JSON(fiber.Map{"textbook": textbook})
}

// HandleTextbookSections lists a textbook's sections in section order.
func HandleTextbookSections(c *fiber.Ctx) error {
	slug := c.Params("slug")

	sections, err := newSectionRepo().ListByTextbookSlug(slug)
	if err != nil {
		log.Errorf("[Textbook] listing sections of %s failed: %v", slug, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load sections",
		})
	}

	return c.JSON(fiber.Map{"sections": sections})
}
