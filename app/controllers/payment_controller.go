package controllers

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/adlonymous/cf-ai-sliceread/app/models"
	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/access"
)

var paymentValidate = validator.New()

// PaymentRequest is the recorded payment event. The facilitator has
// already verified the payment; this endpoint only writes the ledger
// entry and the entitlement.
type PaymentRequest struct {
	UserID           string `json:"user_id" validate:"required"`
	ResourceID       string `json:"resource_id" validate:"required"`
	CurrencyCode     string `json:"currency_code"`
	AmountMinorUnits int64  `json:"amount_minor_units" validate:"gte=0"`
	PaymentMethod    string `json:"payment_method"`
	FacilitatorTxID  string `json:"facilitator_tx_id"`
}

// HandlePayment records a completed payment and grants access to the
// section in the same transaction.
func HandlePayment(c *fiber.Ctx) error {
	var req PaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := paymentValidate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user_id and resource_id are required",
		})
	}

	txID, err := getAccessService().RecordPayment(req.UserID, req.ResourceID, req.CurrencyCode, req.AmountMinorUnits, req.FacilitatorTxID)
	if err != nil {
		if errors.Is(err, access.ErrSectionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Section not found",
			})
		}
		log.Errorf("[Payment] recording for %s/%s failed: %v", req.UserID, req.ResourceID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process payment",
		})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"transaction_id": txID,
		"message":        "Payment processed successfully",
	})
}

// HandleUserSections lists the sections a user is entitled to,
// optionally scoped to one textbook via ?textbook=slug.
func HandleUserSections(c *fiber.Ctx) error {
	userID := c.Params("id")
	textbookSlug := c.Query("textbook")

	sections, err := getAccessService().UserSections(userID, textbookSlug)
	if err != nil {
		log.Errorf("[User] listing sections for %s failed: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load user sections",
		})
	}

	return c.JSON(fiber.Map{"sections": sections})
}

// HandleUserPayments lists a user's payment history newest-first,
// optionally filtered by ?status=.
func HandleUserPayments(c *fiber.Ctx) error {
	userID := c.Params("id")
	status := c.Query("status")

	if status != "" && !models.IsValidPaymentStatus(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payment status filter",
		})
	}

	payments, err := getAccessService().UserPayments(userID, status)
	if err != nil {
		log.Errorf("[User] listing payments for %s failed: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load user payments",
		})
	}

	return c.JSON(fiber.Map{"payments": payments})
}
