package tiering

import (
	"encoding/base64"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/adlonymous/cf-ai-sliceread/app/repository"
)

// MigrationResult records the outcome of migrating one section.
type MigrationResult struct {
	ResourceID string `json:"resource_id"`
	Status     string `json:"status"` // success | error
	Message    string `json:"message,omitempty"`
}

// CleanupReport summarizes an orphan-cleanup pass over the bucket.
type CleanupReport struct {
	Checked  int      `json:"checked"`
	Orphaned int      `json:"orphaned"`
	Cleaned  int      `json:"cleaned"`
	Errors   []string `json:"errors"`
}

// Analysis aggregates the two storage tiers for operator decisions.
type Analysis struct {
	D1Blobs         repository.TierStats `json:"d1Blobs"`
	R2Objects       repository.TierStats `json:"r2Objects"`
	Recommendations []string             `json:"recommendations"`
}

// Migrate moves every inline section larger than thresholdBytes to R2.
// Rows already carrying an R2 key are skipped by the candidate query, so
// re-running the sweep is a no-op. A failure on one section is recorded
// and the sweep continues; the row keeps serving from its old location
// because the pointer is written and the blob cleared in one UPDATE.
func (s *Service) Migrate(thresholdBytes int64) (int, []MigrationResult, error) {
	if s.store == nil {
		return 0, nil, fmt.Errorf("R2 storage is not configured")
	}

	candidates, err := s.sections.ListInlineCandidates(thresholdBytes)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to list migration candidates: %w", err)
	}

	results := make([]MigrationResult, 0, len(candidates))
	migrated := 0

	for _, section := range candidates {
		if !section.HasInlineBlob() {
			continue
		}

		raw, err := base64.StdEncoding.DecodeString(*section.PdfBlob)
		if err != nil {
			results = append(results, MigrationResult{
				ResourceID: section.ResourceID,
				Status:     "error",
				Message:    fmt.Sprintf("failed to decode inline blob: %v", err),
			})
			continue
		}

		key := s.store.ObjectKey(section.Textbook.Slug, section.ResourceID)
		url, err := s.store.UploadPDF(key, raw, section.ResourceID, section.Textbook.Slug)
		if err != nil {
			results = append(results, MigrationResult{
				ResourceID: section.ResourceID,
				Status:     "error",
				Message:    fmt.Sprintf("failed to upload to R2: %v", err),
			})
			continue
		}

		if err := s.sections.SwitchToR2(section.ID, key, url); err != nil {
			// Object is uploaded but the row still points at the inline
			// blob; the section stays servable and the next cleanup or
			// sweep reconciles the bucket.
			results = append(results, MigrationResult{
				ResourceID: section.ResourceID,
				Status:     "error",
				Message:    fmt.Sprintf("failed to update section row: %v", err),
			})
			continue
		}

		results = append(results, MigrationResult{ResourceID: section.ResourceID, Status: "success"})
		migrated++
	}

	if migrated > 0 {
		log.Infof("[Tiering] Migrated %d sections to R2 in this sweep", migrated)
	}
	return migrated, results, nil
}

// MigrateAll moves every inline section to R2 regardless of size.
func (s *Service) MigrateAll() (int, []MigrationResult, error) {
	return s.Migrate(0)
}

// Optimize migrates only inline sections above thresholdMB, letting an
// operator progressively tighten the inline ceiling.
func (s *Service) Optimize(thresholdMB float64) (int, []MigrationResult, error) {
	if thresholdMB <= 0 {
		thresholdMB = DefaultOptimizeThresholdMB
	}
	return s.Migrate(int64(thresholdMB * 1024 * 1024))
}

// CleanupOrphaned deletes bucket objects no section row references.
// Referenced objects are never deleted; individual delete failures are
// reported and never abort the scan.
func (s *Service) CleanupOrphaned() (*CleanupReport, error) {
	if s.store == nil {
		return nil, fmt.Errorf("R2 storage is not configured")
	}

	referenced, err := s.sections.ListReferencedR2Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list referenced keys: %w", err)
	}
	referencedSet := make(map[string]struct{}, len(referenced))
	for _, key := range referenced {
		referencedSet[key] = struct{}{}
	}

	bucketKeys, err := s.store.ListKeys()
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket objects: %w", err)
	}

	report := &CleanupReport{Checked: len(bucketKeys), Errors: []string{}}
	for _, key := range bucketKeys {
		if _, ok := referencedSet[key]; ok {
			continue
		}
		report.Orphaned++
		if err := s.store.DeletePDF(key); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("failed to delete %s: %v", key, err))
			continue
		}
		report.Cleaned++
	}

	if report.Cleaned > 0 {
		log.Infof("[Tiering] Cleaned %d orphaned objects (%d checked)", report.Cleaned, report.Checked)
	}
	return report, nil
}

// Analyze aggregates inline vs R2 usage and derives recommendations.
// Pure read, no side effects.
func (s *Service) Analyze() (*Analysis, error) {
	inline, object, err := s.sections.TierStats()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tier stats: %w", err)
	}

	analysis := &Analysis{
		D1Blobs:         inline,
		R2Objects:       object,
		Recommendations: []string{},
	}

	if inline.Count > 0 {
		avgSizeMB := inline.AvgSize / (1024 * 1024)
		if avgSizeMB > DefaultOptimizeThresholdMB {
			analysis.Recommendations = append(analysis.Recommendations,
				fmt.Sprintf("Consider migrating inline blobs to R2 (avg size: %.2fMB)", avgSizeMB))
		}
	}
	if object.Count == 0 && inline.Count > 0 {
		analysis.Recommendations = append(analysis.Recommendations,
			"No R2 objects found. Consider migrating inline blobs to R2 for better performance.")
	}

	return analysis, nil
}

// Breakdown returns the per-textbook storage rollup.
func (s *Service) Breakdown() ([]repository.TextbookStorageBreakdown, error) {
	return s.sections.StorageBreakdown()
}
