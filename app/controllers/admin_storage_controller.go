package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/adlonymous/cf-ai-sliceread/internal/pkg/tiering"
)

// AdminStorageController bundles the storage sweep endpoints around one
// tiering service instance.
type AdminStorageController struct {
	tiering *tiering.Service
}

// NewAdminStorageController creates the storage admin controller.
func NewAdminStorageController(svc *tiering.Service) *AdminStorageController {
	return &AdminStorageController{tiering: svc}
}

var adminStorageController *AdminStorageController

// InitializeAdminStorageController wires the controller to the global
// tiering service. Must run before route registration.
func InitializeAdminStorageController() {
	adminStorageController = NewAdminStorageController(getTieringService())
}

// GetAdminStorageController returns the initialized controller instance.
func GetAdminStorageController() *AdminStorageController {
	return adminStorageController
}

// HandleMigrateToR2 moves every inline blob to R2. Safe to re-run; rows
// already migrated are skipped.
func (ctrl *AdminStorageController) HandleMigrateToR2(c *fiber.Ctx) error {
	migrated, results, err := ctrl.tiering.MigrateAll()
	if err != nil {
		log.Errorf("[AdminStorage] migration sweep failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Migration failed",
		})
	}

	errorCount := 0
	for _, r := range results {
		if r.Status == "error" {
			errorCount++
		}
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"migrated_count": migrated,
		"error_count":    errorCount,
		"results":        results,
	})
}

// HandleStorageAnalysis reports inline vs R2 usage plus a per-textbook
// breakdown. Pure read.
func (ctrl *AdminStorageController) HandleStorageAnalysis(c *fiber.Ctx) error {
	analysis, err := ctrl.tiering.Analyze()
	if err != nil {
		log.Errorf("[AdminStorage] analysis failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Analysis failed",
		})
	}

	breakdown, err := ctrl.tiering.Breakdown()
	if err != nil {
		log.Errorf("[AdminStorage] breakdown failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Analysis failed",
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"analysis":  analysis,
		"breakdown": breakdown,
	})
}

// HandleOptimizeStorage migrates inline blobs above ?threshold= MB
// (default 0.5) to R2.
func (ctrl *AdminStorageController) HandleOptimizeStorage(c *fiber.Ctx) error {
	threshold, _ := strconv.ParseFloat(c.Query("threshold"), 64)

	migrated, results, err := ctrl.tiering.Optimize(threshold)
	if err != nil {
		log.Errorf("[AdminStorage] optimize sweep failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Optimization failed",
		})
	}

	errorCount := 0
	for _, r := range results {
		if r.Status == "error" {
			errorCount++
		}
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"migrated": migrated,
		"errors":   errorCount,
		"details":  results,
	})
}

// HandleCleanupOrphaned deletes bucket objects no section references.
func (ctrl *AdminStorageController) HandleCleanupOrphaned(c *fiber.Ctx) error {
	report, err := ctrl.tiering.CleanupOrphaned()
	if err != nil {
		log.Errorf("[AdminStorage] cleanup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Cleanup failed",
		})
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"checked":  report.Checked,
		"orphaned": report.Orphaned,
		"cleaned":  report.Cleaned,
		"errors":   report.Errors,
	})
}
